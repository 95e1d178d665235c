// internal/groups/service.go

package groups

import (
	"context"
	"errors"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrNotMember     = errors.New("user is not a member of this group")
	ErrNotCreator    = errors.New("only the group creator can do this")
	ErrCreatorLeave  = errors.New("the creator cannot be removed from the group")
)

type Service interface {
	CreateGroup(ctx context.Context, userID int64, dto *CreateGroupDTO) (*Group, error)
	GetGroup(ctx context.Context, userID, groupID int64) (*Group, error)
	GetUserGroups(ctx context.Context, userID int64) ([]*Group, error)
	UpdateGroup(ctx context.Context, userID, groupID int64, dto *UpdateGroupDTO) (*Group, error)
	DeleteGroup(ctx context.Context, userID, groupID int64) error

	AddMember(ctx context.Context, userID, groupID int64, dto *AddMemberDTO) (*Member, error)
	RemoveMember(ctx context.Context, userID, groupID, memberID int64) error
	SetMemberWeight(ctx context.Context, userID, groupID, memberID int64, weight float64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateGroup(ctx context.Context, userID int64, dto *CreateGroupDTO) (*Group, error) {
	group := &Group{
		Name:          dto.Name,
		CreatedBy:     userID,
		MinAttendance: dto.MinAttendance,
	}

	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	// The creator is always a member.
	memberIDs := append([]int64{userID}, dto.MemberIDs...)
	seen := make(map[int64]bool, len(memberIDs))
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		member := &Member{GroupID: group.ID, UserID: id, PriorityWeight: 1.0}
		if err := s.repo.AddMember(ctx, member); err != nil {
			return nil, err
		}
	}

	return s.repo.GetGroup(ctx, group.ID)
}

func (s *service) GetGroup(ctx context.Context, userID, groupID int64) (*Group, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, ErrNotMember
	}
	return group, nil
}

func (s *service) GetUserGroups(ctx context.Context, userID int64) ([]*Group, error) {
	return s.repo.GetUserGroups(ctx, userID)
}

func (s *service) UpdateGroup(ctx context.Context, userID, groupID int64, dto *UpdateGroupDTO) (*Group, error) {
	group, err := s.creatorGroup(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		group.Name = *dto.Name
	}
	if dto.MinAttendance != nil {
		group.MinAttendance = *dto.MinAttendance
	}

	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *service) DeleteGroup(ctx context.Context, userID, groupID int64) error {
	if _, err := s.creatorGroup(ctx, groupID, userID); err != nil {
		return err
	}
	return s.repo.DeleteGroup(ctx, groupID)
}

func (s *service) AddMember(ctx context.Context, userID, groupID int64, dto *AddMemberDTO) (*Member, error) {
	if _, err := s.creatorGroup(ctx, groupID, userID); err != nil {
		return nil, err
	}

	weight := dto.PriorityWeight
	if weight <= 0 {
		weight = 1.0
	}

	member := &Member{GroupID: groupID, UserID: dto.UserID, PriorityWeight: weight}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *service) RemoveMember(ctx context.Context, userID, groupID, memberID int64) error {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}

	// Members may leave on their own; removing someone else is creator-only.
	if memberID != userID && group.CreatedBy != userID {
		return ErrNotCreator
	}
	if memberID == group.CreatedBy {
		return ErrCreatorLeave
	}

	return s.repo.RemoveMember(ctx, groupID, memberID)
}

func (s *service) SetMemberWeight(ctx context.Context, userID, groupID, memberID int64, weight float64) error {
	if _, err := s.creatorGroup(ctx, groupID, userID); err != nil {
		return err
	}
	return s.repo.SetMemberWeight(ctx, groupID, memberID, weight)
}

func (s *service) creatorGroup(ctx context.Context, groupID, userID int64) (*Group, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != userID {
		return nil, ErrNotCreator
	}
	return group, nil
}
