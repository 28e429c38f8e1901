package user_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/roombooking/logger"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username or email already taken")
)

// User is an organization member. PasswordHash is bcrypt and never leaves
// the model layer.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store provides user persistence over a pgx pool.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// CreateUser inserts a new user. The caller supplies the bcrypt hash.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash, role string) (*User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for user: %w", err)
	}

	u := &User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := s.db.Exec(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUserExists
		}
		logger.ErrorLogger.Errorf("Failed to insert user %s: %v", username, err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.InfoLogger.Infof("User %s created with ID %s", username, u.ID)
	return u, nil
}

// GetUserByUsername fetches a user for login.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	u := &User{}
	query := `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE username = $1`

	err := s.db.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch user %s: %v", username, err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return u, nil
}

// GetUserByID fetches a user by primary key.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u := &User{}
	query := `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE id = $1`

	err := s.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch user %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return u, nil
}
