package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Aphidet6/earth-bettashop/internal/domain"
	"github.com/Aphidet6/earth-bettashop/pkg/database"
	apperrors "github.com/Aphidet6/earth-bettashop/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, username, password_hash, role, created_at, updated_at"

// Create inserts a new user and fills in the generated id and timestamps.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, u.Username, nullableHash(u.PasswordHash), u.Role).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "username", u.Username)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

// GetByUsername retrieves a user by their username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(ctx, query, username)
}

// Update modifies an existing user in the database.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET username = $1, password_hash = $2, role = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.db.Exec(ctx, query, u.Username, nullableHash(u.PasswordHash), u.Role, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "username", u.Username)
		}
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", u.ID)
	}

	return nil
}

// Delete removes a user from the database by their ID. Provider mappings go
// with it via the foreign key cascade.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}

	return nil
}

// GetByProvider retrieves the user linked to an external provider account.
func (r *UserRepository) GetByProvider(ctx context.Context, provider, providerID string) (*domain.User, error) {
	query := `
		SELECT u.id, u.username, u.password_hash, u.role, u.created_at, u.updated_at
		FROM users u
		JOIN users_oauth o ON o.user_id = u.id
		WHERE o.provider = $1 AND o.provider_id = $2`

	return r.scanUser(ctx, query, provider, providerID)
}

// LinkProvider records a mapping from a provider account to an existing user.
// ON CONFLICT DO NOTHING makes a concurrent duplicate insert of the same
// mapping a no-op instead of an error.
func (r *UserRepository) LinkProvider(ctx context.Context, m *domain.ProviderMapping) error {
	query := `
		INSERT INTO users_oauth (user_id, provider, provider_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider, provider_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, m.UserID, m.Provider, m.ProviderID); err != nil {
		return fmt.Errorf("link provider %s: %w", m.Provider, err)
	}

	return nil
}

// CreateWithProvider atomically creates a user together with its provider
// mapping. If another request creates the same mapping first, the conflict on
// the mapping insert is ignored so the transaction still commits.
func (r *UserRepository) CreateWithProvider(ctx context.Context, u *domain.User, m *domain.ProviderMapping) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create user with provider: %w", err)
	}
	defer tx.Rollback(ctx)

	insertUser := `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRow(ctx, insertUser, u.Username, nullableHash(u.PasswordHash), u.Role).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "username", u.Username)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	m.UserID = u.ID
	insertMapping := `
		INSERT INTO users_oauth (user_id, provider, provider_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider, provider_id) DO NOTHING`

	if _, err := tx.Exec(ctx, insertMapping, m.UserID, m.Provider, m.ProviderID); err != nil {
		return fmt.Errorf("insert provider mapping: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create user with provider: %w", err)
	}

	return nil
}

// scanUser executes a query expected to return a single user row.
func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var (
		u    domain.User
		hash *string
	)

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Username,
		&hash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if hash != nil {
		u.PasswordHash = *hash
	}

	return &u, nil
}

// nullableHash stores provider-only accounts with a NULL password hash.
func nullableHash(hash string) *string {
	if hash == "" {
		return nil
	}
	return &hash
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
