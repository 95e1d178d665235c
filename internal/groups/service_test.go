package groups

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRepository struct {
	groups  map[int64]*Group
	members map[int64][]Member
	nextID  int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{groups: map[int64]*Group{}, members: map[int64][]Member{}}
}

func (f *fakeRepository) CreateGroup(_ context.Context, group *Group) error {
	f.nextID++
	group.ID = f.nextID
	group.CreatedAt = time.Now().UTC()
	f.groups[group.ID] = group
	return nil
}

func (f *fakeRepository) GetGroup(_ context.Context, id int64) (*Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, ErrGroupNotFound
	}
	copied := *g
	copied.Members = append([]Member(nil), f.members[id]...)
	return &copied, nil
}

func (f *fakeRepository) GetUserGroups(_ context.Context, userID int64) ([]*Group, error) {
	var out []*Group
	for id := range f.groups {
		g, _ := f.GetGroup(context.Background(), id)
		if g.HasMember(userID) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeRepository) UpdateGroup(_ context.Context, group *Group) error {
	if _, ok := f.groups[group.ID]; !ok {
		return ErrGroupNotFound
	}
	copied := *group
	copied.Members = nil
	f.groups[group.ID] = &copied
	return nil
}

func (f *fakeRepository) DeleteGroup(_ context.Context, id int64) error {
	if _, ok := f.groups[id]; !ok {
		return ErrGroupNotFound
	}
	delete(f.groups, id)
	delete(f.members, id)
	return nil
}

func (f *fakeRepository) AddMember(_ context.Context, member *Member) error {
	member.JoinedAt = time.Now().UTC()
	for i, m := range f.members[member.GroupID] {
		if m.UserID == member.UserID {
			f.members[member.GroupID][i] = *member
			return nil
		}
	}
	f.members[member.GroupID] = append(f.members[member.GroupID], *member)
	return nil
}

func (f *fakeRepository) RemoveMember(_ context.Context, groupID, userID int64) error {
	members := f.members[groupID]
	for i, m := range members {
		if m.UserID == userID {
			f.members[groupID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return ErrNotMember
}

func (f *fakeRepository) SetMemberWeight(_ context.Context, groupID, userID int64, weight float64) error {
	for i, m := range f.members[groupID] {
		if m.UserID == userID {
			f.members[groupID][i].PriorityWeight = weight
			return nil
		}
	}
	return ErrNotMember
}

func (f *fakeRepository) GetMembers(_ context.Context, groupID int64) ([]Member, error) {
	return f.members[groupID], nil
}

func TestCreateGroup(t *testing.T) {
	svc := NewService(newFakeRepository())

	group, err := svc.CreateGroup(context.Background(), 1, &CreateGroupDTO{
		Name:      "dinner club",
		MemberIDs: []int64{2, 3, 2, 1}, // duplicates and the creator are deduped
	})
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	if group.CreatedBy != 1 {
		t.Errorf("CreatedBy = %d, want 1", group.CreatedBy)
	}
	if len(group.Members) != 3 {
		t.Fatalf("got %d members, want 3 unique", len(group.Members))
	}
	if !group.HasMember(1) {
		t.Error("creator missing from member list")
	}
	for _, m := range group.Members {
		if m.PriorityWeight != 1.0 {
			t.Errorf("member %d weight = %v, want default 1.0", m.UserID, m.PriorityWeight)
		}
	}
}

func TestGetGroup_MembersOnly(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, 1, &CreateGroupDTO{Name: "club", MemberIDs: []int64{2}})
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	if _, err := svc.GetGroup(ctx, 2, group.ID); err != nil {
		t.Errorf("member access error = %v", err)
	}
	if _, err := svc.GetGroup(ctx, 99, group.ID); !errors.Is(err, ErrNotMember) {
		t.Errorf("outsider access error = %v, want ErrNotMember", err)
	}
	if _, err := svc.GetGroup(ctx, 1, 404); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("missing group error = %v, want ErrGroupNotFound", err)
	}
}

func TestUpdateGroup_CreatorOnly(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	group, _ := svc.CreateGroup(ctx, 1, &CreateGroupDTO{Name: "club", MemberIDs: []int64{2}})

	name := "renamed"
	if _, err := svc.UpdateGroup(ctx, 2, group.ID, &UpdateGroupDTO{Name: &name}); !errors.Is(err, ErrNotCreator) {
		t.Errorf("non-creator update error = %v, want ErrNotCreator", err)
	}

	min := 0.75
	updated, err := svc.UpdateGroup(ctx, 1, group.ID, &UpdateGroupDTO{Name: &name, MinAttendance: &min})
	if err != nil {
		t.Fatalf("UpdateGroup() error = %v", err)
	}
	if updated.Name != "renamed" || updated.MinAttendance != 0.75 {
		t.Errorf("updated = %+v, want renamed with min attendance 0.75", updated)
	}
}

func TestDeleteGroup_CreatorOnly(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	group, _ := svc.CreateGroup(ctx, 1, &CreateGroupDTO{Name: "club", MemberIDs: []int64{2}})

	if err := svc.DeleteGroup(ctx, 2, group.ID); !errors.Is(err, ErrNotCreator) {
		t.Errorf("non-creator delete error = %v, want ErrNotCreator", err)
	}
	if err := svc.DeleteGroup(ctx, 1, group.ID); err != nil {
		t.Fatalf("DeleteGroup() error = %v", err)
	}
	if _, err := svc.GetGroup(ctx, 1, group.ID); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("deleted group lookup error = %v, want ErrGroupNotFound", err)
	}
}

func TestAddMember(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	group, _ := svc.CreateGroup(ctx, 1, &CreateGroupDTO{Name: "club"})

	if _, err := svc.AddMember(ctx, 2, group.ID, &AddMemberDTO{UserID: 3}); !errors.Is(err, ErrNotCreator) {
		t.Errorf("non-creator add error = %v, want ErrNotCreator", err)
	}

	member, err := svc.AddMember(ctx, 1, group.ID, &AddMemberDTO{UserID: 3})
	if err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if member.PriorityWeight != 1.0 {
		t.Errorf("default weight = %v, want 1.0", member.PriorityWeight)
	}

	weighted, err := svc.AddMember(ctx, 1, group.ID, &AddMemberDTO{UserID: 4, PriorityWeight: 2.5})
	if err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if weighted.PriorityWeight != 2.5 {
		t.Errorf("weight = %v, want 2.5", weighted.PriorityWeight)
	}
}

func TestRemoveMember(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	group, _ := svc.CreateGroup(ctx, 1, &CreateGroupDTO{Name: "club", MemberIDs: []int64{2, 3}})

	// A member may leave; removing someone else is creator-only; the
	// creator can never be removed.
	if err := svc.RemoveMember(ctx, 2, group.ID, 3); !errors.Is(err, ErrNotCreator) {
		t.Errorf("member removing peer error = %v, want ErrNotCreator", err)
	}
	if err := svc.RemoveMember(ctx, 2, group.ID, 2); err != nil {
		t.Errorf("self-leave error = %v", err)
	}
	if err := svc.RemoveMember(ctx, 1, group.ID, 3); err != nil {
		t.Errorf("creator removal error = %v", err)
	}
	if err := svc.RemoveMember(ctx, 1, group.ID, 1); !errors.Is(err, ErrCreatorLeave) {
		t.Errorf("creator self-removal error = %v, want ErrCreatorLeave", err)
	}
}

func TestSetMemberWeight(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	group, _ := svc.CreateGroup(ctx, 1, &CreateGroupDTO{Name: "club", MemberIDs: []int64{2}})

	if err := svc.SetMemberWeight(ctx, 2, group.ID, 2, 3.0); !errors.Is(err, ErrNotCreator) {
		t.Errorf("non-creator weight change error = %v, want ErrNotCreator", err)
	}
	if err := svc.SetMemberWeight(ctx, 1, group.ID, 2, 3.0); err != nil {
		t.Fatalf("SetMemberWeight() error = %v", err)
	}

	got, _ := repo.GetGroup(ctx, group.ID)
	for _, m := range got.Members {
		if m.UserID == 2 && m.PriorityWeight != 3.0 {
			t.Errorf("weight = %v, want 3.0", m.PriorityWeight)
		}
	}
	if err := svc.SetMemberWeight(ctx, 1, group.ID, 99, 2.0); !errors.Is(err, ErrNotMember) {
		t.Errorf("unknown member error = %v, want ErrNotMember", err)
	}
}

// Members come back in join order: the creator first, then everyone in the
// order they were added. Display code relies on this.
func TestGetGroup_MemberInsertionOrder(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, 1, &CreateGroupDTO{Name: "brunch club", MemberIDs: []int64{5, 2}})
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if _, err := svc.AddMember(ctx, 1, group.ID, &AddMemberDTO{UserID: 9}); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	got, err := svc.GetGroup(ctx, 1, group.ID)
	if err != nil {
		t.Fatalf("GetGroup() error = %v", err)
	}

	want := []int64{1, 5, 2, 9}
	if len(got.Members) != len(want) {
		t.Fatalf("got %d members, want %d", len(got.Members), len(want))
	}
	for i, m := range got.Members {
		if m.UserID != want[i] {
			t.Errorf("members[%d].UserID = %d, want %d", i, m.UserID, want[i])
		}
	}
}
