package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// UserService looks up and authenticates application users.
type UserService interface {
	// Authenticate verifies a username/password pair against the stored
	// bcrypt hash. Unknown users, inactive users, and wrong passwords all
	// return the same validation error so callers cannot distinguish them.
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		var derr *DomainError
		if errors.As(err, &derr) {
			return nil, NewDomainError(ErrCodeValidation, "invalid username or password")
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, NewDomainError(ErrCodeValidation, "invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, NewDomainError(ErrCodeValidation, "invalid username or password")
	}
	return u, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, is_active, created_at
		FROM users
		WHERE username = $1
		LIMIT 1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "user %q not found", username)
		}
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, userID int) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, is_active, created_at
		FROM users
		WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewDomainError(ErrCodeNotFound, "user %d not found", userID)
		}
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return u, nil
}
