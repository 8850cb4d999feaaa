package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxcert/cert-services/internal/certsvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrDuplicateEmail   = errors.New("email already in use")
	ErrIdentityNotFound = errors.New("identity not found")
)

type IdentityStore struct {
	db *pgxpool.Pool
}

func NewIdentityStore(db *pgxpool.Pool) *IdentityStore {
	return &IdentityStore{db: db}
}

func (r *IdentityStore) CreateIdentity(ctx context.Context, email, passwordHash string) (int64, error) {
	var id int64

	query := `
        INSERT INTO identities (email, password_hash)
        VALUES ($1, $2)
        RETURNING id;
    `

	err := r.db.QueryRow(ctx, query, email, passwordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("could not create identity: %v", err)
	}

	return id, nil
}

func (r *IdentityStore) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, email, password_hash, created_at
        FROM identities
        WHERE email = $1
    `, email)

	i := &models.Identity{}
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return i, nil
}

// CreateSession records an issued token so logout can revoke it.
func (r *IdentityStore) CreateSession(ctx context.Context, tokenID string, userID int64) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO sessions (token_id, user_id)
        VALUES ($1, $2)
    `, tokenID, userID)
	if err != nil {
		return fmt.Errorf("could not create session: %v", err)
	}

	return nil
}

func (r *IdentityStore) DeleteSession(ctx context.Context, tokenID string) error {
	_, err := r.db.Exec(ctx, `
        DELETE FROM sessions
        WHERE token_id = $1
    `, tokenID)
	if err != nil {
		return fmt.Errorf("could not delete session: %v", err)
	}

	return nil
}

func (r *IdentityStore) SessionExists(ctx context.Context, tokenID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM sessions WHERE token_id = $1)
    `, tokenID).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}
