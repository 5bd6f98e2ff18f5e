package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/auth-service/internal/common"
	"github.com/Dan9191/auth-service/internal/migrations"
	"github.com/Dan9191/auth-service/internal/models"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// ErrUsernameTaken is returned when the unique username constraint is violated
var ErrUsernameTaken = errors.New("username already taken")

const uniqueViolation = "23505"

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate applies the embedded schema migrations
func (r *Repository) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, r.db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password, admin)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.PasswordHash, user.Admin).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByUsername retrieves a user by exact username
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password, admin, created_at
		FROM users
		WHERE username = $1`
	return r.findOne(ctx, query, username)
}

// FindUserByID retrieves a user by identifier
func (r *Repository) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, password, admin, created_at
		FROM users
		WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *Repository) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Admin, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// SetAdmin updates the admin flag of an existing user
func (r *Repository) SetAdmin(ctx context.Context, username string, admin bool) error {
	query := `UPDATE users SET admin = $1 WHERE username = $2`
	res, err := r.db.ExecContext(ctx, query, admin, username)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
