package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxcert/cert-services/internal/certsvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProfileNotFound marks an identity that never got its profile row
// written (profile absence is not a store failure).
var ErrProfileNotFound = errors.New("profile not found")

type ProfileStore struct {
	db *pgxpool.Pool
}

func NewProfileStore(db *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{db: db}
}

func (r *ProfileStore) CreateProfile(ctx context.Context, p models.Profile) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO profiles (user_id, email, wallet, certifier)
        VALUES ($1, $2, $3, $4)
    `, p.UserID, p.Email, p.Wallet, p.Certifier)
	if err != nil {
		return fmt.Errorf("could not create profile: %v", err)
	}

	return nil
}

func (r *ProfileStore) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	row := r.db.QueryRow(ctx, `
        SELECT user_id, email, wallet, certifier, created_at
        FROM profiles
        WHERE user_id = $1
    `, userID)

	p := &models.Profile{}
	err := row.Scan(
		&p.UserID,
		&p.Email,
		&p.Wallet,
		&p.Certifier,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return p, nil
}
