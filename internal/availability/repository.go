// internal/availability/repository.go

package availability

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateWindow(ctx context.Context, window *Window) error
	CreateWindows(ctx context.Context, windows []*Window) error
	GetWindow(ctx context.Context, id int64) (*Window, error)
	GetUserWindows(ctx context.Context, userID int64, from, to time.Time) ([]*Window, error)
	DeleteWindow(ctx context.Context, id int64) error
	DeleteUserWindowsBySource(ctx context.Context, userID int64, source string, from, to time.Time) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateWindow(ctx context.Context, window *Window) error {
	query := `
        INSERT INTO availability_windows (user_id, start_time, end_time, recurrence, source)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		window.UserID, window.Start, window.End, window.Recurrence, window.Source,
	).Scan(&window.ID, &window.CreatedAt)
}

func (r *postgresRepository) CreateWindows(ctx context.Context, windows []*Window) error {
	if len(windows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO availability_windows (user_id, start_time, end_time, recurrence, source)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `

	for _, w := range windows {
		err := tx.QueryRowxContext(
			ctx, query,
			w.UserID, w.Start, w.End, w.Recurrence, w.Source,
		).Scan(&w.ID, &w.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) GetWindow(ctx context.Context, id int64) (*Window, error) {
	var w Window
	query := `
        SELECT id, user_id, start_time, end_time, recurrence, source, created_at
        FROM availability_windows
        WHERE id = $1
    `

	err := r.db.QueryRowxContext(ctx, query, id).Scan(
		&w.ID, &w.UserID, &w.Start, &w.End, &w.Recurrence, &w.Source, &w.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrWindowNotFound
	}

	return &w, err
}

func (r *postgresRepository) GetUserWindows(ctx context.Context, userID int64, from, to time.Time) ([]*Window, error) {
	var windows []*Window
	query := `
        SELECT id, user_id, start_time, end_time, recurrence, source, created_at
        FROM availability_windows
        WHERE user_id = $1 AND end_time > $2 AND start_time < $3
        ORDER BY start_time
    `

	rows, err := r.db.QueryxContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.ID, &w.UserID, &w.Start, &w.End, &w.Recurrence, &w.Source, &w.CreatedAt); err != nil {
			continue
		}
		windows = append(windows, &w)
	}

	return windows, nil
}

func (r *postgresRepository) DeleteWindow(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM availability_windows WHERE id = $1`, id)
	return err
}

func (r *postgresRepository) DeleteUserWindowsBySource(ctx context.Context, userID int64, source string, from, to time.Time) error {
	query := `
        DELETE FROM availability_windows
        WHERE user_id = $1 AND source = $2 AND end_time > $3 AND start_time < $4
    `

	_, err := r.db.ExecContext(ctx, query, userID, source, from, to)
	return err
}
