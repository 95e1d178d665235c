// internal/groups/repository.go

package groups

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateGroup(ctx context.Context, group *Group) error
	GetGroup(ctx context.Context, id int64) (*Group, error)
	GetUserGroups(ctx context.Context, userID int64) ([]*Group, error)
	UpdateGroup(ctx context.Context, group *Group) error
	DeleteGroup(ctx context.Context, id int64) error

	AddMember(ctx context.Context, member *Member) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	SetMemberWeight(ctx context.Context, groupID, userID int64, weight float64) error
	GetMembers(ctx context.Context, groupID int64) ([]Member, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateGroup(ctx context.Context, group *Group) error {
	query := `
        INSERT INTO friend_groups (name, created_by, min_attendance)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		group.Name, group.CreatedBy, group.MinAttendance,
	).Scan(&group.ID, &group.CreatedAt)
}

func (r *postgresRepository) GetGroup(ctx context.Context, id int64) (*Group, error) {
	var group Group
	query := `
        SELECT id, name, created_by, min_attendance, created_at
        FROM friend_groups
        WHERE id = $1
    `

	err := r.db.QueryRowxContext(ctx, query, id).Scan(
		&group.ID, &group.Name, &group.CreatedBy,
		&group.MinAttendance, &group.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	members, err := r.GetMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Members = members

	return &group, nil
}

func (r *postgresRepository) GetUserGroups(ctx context.Context, userID int64) ([]*Group, error) {
	var groups []*Group
	query := `
        SELECT g.id, g.name, g.created_by, g.min_attendance, g.created_at
        FROM friend_groups g
        JOIN group_members gm ON gm.group_id = g.id
        WHERE gm.user_id = $1
        ORDER BY g.created_at DESC
    `

	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedBy, &g.MinAttendance, &g.CreatedAt); err != nil {
			continue
		}
		groups = append(groups, &g)
	}

	return groups, nil
}

func (r *postgresRepository) UpdateGroup(ctx context.Context, group *Group) error {
	query := `
        UPDATE friend_groups
        SET name = $2, min_attendance = $3
        WHERE id = $1
    `

	_, err := r.db.ExecContext(ctx, query, group.ID, group.Name, group.MinAttendance)
	return err
}

func (r *postgresRepository) DeleteGroup(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM friend_groups WHERE id = $1`, id)
	return err
}

func (r *postgresRepository) AddMember(ctx context.Context, member *Member) error {
	query := `
        INSERT INTO group_members (group_id, user_id, priority_weight)
        VALUES ($1, $2, $3)
        ON CONFLICT (group_id, user_id)
        DO UPDATE SET priority_weight = $3
        RETURNING joined_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		member.GroupID, member.UserID, member.PriorityWeight,
	).Scan(&member.JoinedAt)
}

func (r *postgresRepository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	query := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotMember
	}
	return nil
}

func (r *postgresRepository) SetMemberWeight(ctx context.Context, groupID, userID int64, weight float64) error {
	query := `
        UPDATE group_members
        SET priority_weight = $3
        WHERE group_id = $1 AND user_id = $2
    `

	res, err := r.db.ExecContext(ctx, query, groupID, userID, weight)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotMember
	}
	return nil
}

func (r *postgresRepository) GetMembers(ctx context.Context, groupID int64) ([]Member, error) {
	var members []Member
	query := `
        SELECT gm.group_id, gm.user_id, u.username, u.display_name,
               gm.priority_weight, gm.joined_at
        FROM group_members gm
        JOIN users u ON u.id = gm.user_id
        WHERE gm.group_id = $1
        ORDER BY gm.joined_at, gm.user_id
    `

	rows, err := r.db.QueryxContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m Member
		err := rows.Scan(
			&m.GroupID, &m.UserID, &m.Username, &m.DisplayName,
			&m.PriorityWeight, &m.JoinedAt,
		)
		if err != nil {
			continue
		}
		members = append(members, m)
	}

	return members, nil
}
