// internal/notifications/repository.go

package notifications

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetContacts(ctx context.Context, userIDs []int64) ([]Contact, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetContacts(ctx context.Context, userIDs []int64) ([]Contact, error) {
	if len(userIDs) == 0 {
		return []Contact{}, nil
	}

	query, args, err := sqlx.In(`
        SELECT id AS user_id, display_name, email, phone, email_opt_in, sms_opt_in
        FROM users
        WHERE id IN (?)
    `, userIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		if err := rows.StructScan(&c); err != nil {
			continue
		}
		contacts = append(contacts, c)
	}

	return contacts, nil
}
