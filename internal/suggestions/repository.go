// internal/suggestions/repository.go

package suggestions

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateSuggestion(ctx context.Context, s *Suggestion) error
	GetSuggestion(ctx context.Context, id int64) (*Suggestion, error)
	ListSuggestions(ctx context.Context, category string, limit int) ([]*Suggestion, error)
	UpdateSuggestion(ctx context.Context, s *Suggestion) error
	DeleteSuggestion(ctx context.Context, id int64) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateSuggestion(ctx context.Context, s *Suggestion) error {
	attributesJSON, _ := json.Marshal(s.Attributes)

	query := `
        INSERT INTO suggestions (name, category, attributes, created_by)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		s.Name, s.Category, attributesJSON, s.CreatedBy,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *postgresRepository) GetSuggestion(ctx context.Context, id int64) (*Suggestion, error) {
	var s Suggestion
	var attributesJSON []byte

	query := `
        SELECT id, name, category, attributes, created_by, created_at
        FROM suggestions
        WHERE id = $1
    `

	err := r.db.QueryRowxContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Category, &attributesJSON, &s.CreatedBy, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSuggestionNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(attributesJSON, &s.Attributes); err != nil {
		s.Attributes = map[string]string{}
	}

	return &s, nil
}

func (r *postgresRepository) ListSuggestions(ctx context.Context, category string, limit int) ([]*Suggestion, error) {
	query := `
        SELECT id, name, category, attributes, created_by, created_at
        FROM suggestions
    `
	args := []interface{}{}
	if category != "" {
		query += " WHERE category = $1"
		args = append(args, category)
	}
	query += " ORDER BY id"
	if limit > 0 {
		args = append(args, limit)
		if category != "" {
			query += " LIMIT $2"
		} else {
			query += " LIMIT $1"
		}
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []*Suggestion
	for rows.Next() {
		var s Suggestion
		var attributesJSON []byte

		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &attributesJSON, &s.CreatedBy, &s.CreatedAt); err != nil {
			continue
		}
		if err := json.Unmarshal(attributesJSON, &s.Attributes); err != nil {
			s.Attributes = map[string]string{}
		}
		suggestions = append(suggestions, &s)
	}

	return suggestions, nil
}

func (r *postgresRepository) UpdateSuggestion(ctx context.Context, s *Suggestion) error {
	attributesJSON, _ := json.Marshal(s.Attributes)

	query := `
        UPDATE suggestions
        SET name = $2, category = $3, attributes = $4
        WHERE id = $1
    `

	_, err := r.db.ExecContext(ctx, query, s.ID, s.Name, s.Category, attributesJSON)
	return err
}

func (r *postgresRepository) DeleteSuggestion(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM suggestions WHERE id = $1`, id)
	return err
}
