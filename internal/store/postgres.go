package store

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/cipherpoint/cipherpoint-backend/internal/models"
)

// PostgreSQL-backed user and friendship stores.

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, created_at, name, email, password_hash, google_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.CreatedAt, u.Name, u.Email, u.PasswordHash, u.GoogleID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, created_at, name, email, password_hash, google_id
		FROM users WHERE id = $1
	`, id))
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, created_at, name, email, password_hash, google_id
		FROM users WHERE LOWER(email) = LOWER($1)
	`, email))
}

func (s *PostgresUserStore) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Name, &u.Email, &u.PasswordHash, &u.GoogleID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresUserStore) Search(ctx context.Context, query, excludeID string) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, name, email, password_hash, google_id
		FROM users
		WHERE id != $1 AND (name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		ORDER BY name
	`, excludeID, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.CreatedAt, &u.Name, &u.Email, &u.PasswordHash, &u.GoogleID); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// PostgresFriendStore keeps one row per friendship with the pair stored in
// canonical order (user_a < user_b), so a single insert or delete covers both
// directions atomically.
type PostgresFriendStore struct {
	db *sql.DB
}

func NewPostgresFriendStore(db *sql.DB) *PostgresFriendStore {
	return &PostgresFriendStore{db: db}
}

func orderedPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

func (s *PostgresFriendStore) Add(ctx context.Context, userA, userB string) error {
	lo, hi := orderedPair(userA, userB)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO friendships (user_a, user_b) VALUES ($1, $2)
	`, lo, hi)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *PostgresFriendStore) Remove(ctx context.Context, userA, userB string) error {
	lo, hi := orderedPair(userA, userB)
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM friendships WHERE user_a = $1 AND user_b = $2
	`, lo, hi)
	return err
}

func (s *PostgresFriendStore) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	lo, hi := orderedPair(userA, userB)
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM friendships WHERE user_a = $1 AND user_b = $2)
	`, lo, hi).Scan(&exists)
	return exists, err
}

func (s *PostgresFriendStore) ListFriends(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_b FROM friendships WHERE user_a = $1
		UNION
		SELECT user_a FROM friendships WHERE user_b = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
