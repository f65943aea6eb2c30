package repository

import (
	"context"
	"fmt"
	"time"

	"fridge-backend/database"
	"fridge-backend/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, pin_hash, max_magnets, max_calendar_events,
			fridge_color, handle_position, created_at`

// Create inserts a user and fills in the schema defaults. A taken username
// yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (username, pin_hash, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, max_magnets, max_calendar_events, fridge_color, handle_position`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.PINHash,
		user.CreatedAt,
	).Scan(
		&user.ID,
		&user.MaxMagnets,
		&user.MaxCalendarEvents,
		&user.FridgeColor,
		&user.HandlePosition,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanOne(ctx, query, username)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

func (r *UserRepository) scanOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PINHash,
		&user.MaxMagnets,
		&user.MaxCalendarEvents,
		&user.FridgeColor,
		&user.HandlePosition,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// LockCalendarLimit returns the user's maxCalendarEvents through a no-op
// UPDATE, so the row stays write-locked until the surrounding transaction
// ends. Concurrent limit checks for the same user run one at a time.
func (r *UserRepository) LockCalendarLimit(ctx context.Context, id int64) (int, error) {
	query := `
		UPDATE users SET max_calendar_events = max_calendar_events
		WHERE id = $1
		RETURNING max_calendar_events`

	var limit int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&limit); err != nil {
		return 0, notFound(err)
	}
	return limit, nil
}

// UpdateConfig updates the display preferences and returns the affected row count.
func (r *UserRepository) UpdateConfig(ctx context.Context, id int64, fridgeColor, handlePosition string) (int64, error) {
	query := `
		UPDATE users SET
			fridge_color = $1,
			handle_position = $2
		WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, fridgeColor, handlePosition, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
