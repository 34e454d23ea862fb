package core_test

import (
	"context"
	"testing"

	"stockroom/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func seedUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool, username, password string, active bool) int {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	var id int
	err = pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		username, username+"@example.com", string(hash), active,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return id
}

func TestAuthenticate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	users := core.NewUserService(pool)

	id := seedUser(t, ctx, pool, "casey", "open-sesame", true)
	seedUser(t, ctx, pool, "dormant", "open-sesame", false)

	u, err := users.Authenticate(ctx, "casey", "open-sesame")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if u.ID != id || u.Username != "casey" {
		t.Errorf("Unexpected user returned: %+v", u)
	}

	// Wrong password, unknown user, and inactive user all produce the same
	// message so login attempts cannot probe which accounts exist.
	for _, c := range []struct{ username, password string }{
		{"casey", "wrong"},
		{"nobody", "open-sesame"},
		{"dormant", "open-sesame"},
	} {
		_, err := users.Authenticate(ctx, c.username, c.password)
		if err == nil {
			t.Fatalf("Expected Authenticate(%q, %q) to fail", c.username, c.password)
		}
		derr, ok := core.AsDomainError(err)
		if !ok || derr.Code != core.ErrCodeValidation {
			t.Errorf("Expected validation error for %q, got %v", c.username, err)
		}
		if derr.Message != "invalid username or password" {
			t.Errorf("Expected uniform failure message, got %q", derr.Message)
		}
	}
}

func TestGetUserByID(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	users := core.NewUserService(pool)

	id := seedUser(t, ctx, pool, "casey", "open-sesame", true)

	u, err := users.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if u.Email != "casey@example.com" {
		t.Errorf("Unexpected email: %q", u.Email)
	}

	_, err = users.GetByID(ctx, 999999)
	derr, ok := core.AsDomainError(err)
	if !ok || derr.Code != core.ErrCodeNotFound {
		t.Errorf("Expected not_found for missing user, got %v", err)
	}
}
