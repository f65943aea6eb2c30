package repository

import (
	"context"
	"fmt"
	"time"

	"fridge-backend/database"
	"fridge-backend/models"
)

// CalendarRepository handles database operations for calendar events
type CalendarRepository struct {
	db database.DBTX
}

// NewCalendarRepository creates a new calendar repository
func NewCalendarRepository(db database.DBTX) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// Create inserts an event and sets its ID.
func (r *CalendarRepository) Create(ctx context.Context, e *models.CalendarEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO calendar_events (user_id, title, date, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		e.UserID,
		e.Title,
		e.Date,
		e.Description,
		e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert calendar event: %w", err)
	}
	return nil
}

// ListByUserID returns a user's events ordered by date ascending.
func (r *CalendarRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.CalendarEvent, error) {
	query := `
		SELECT id, user_id, title, date, description, created_at
		FROM calendar_events
		WHERE user_id = $1
		ORDER BY date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*models.CalendarEvent{}
	for rows.Next() {
		e := &models.CalendarEvent{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Date, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByUserID returns how many events a user has.
func (r *CalendarRepository) CountByUserID(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM calendar_events WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// Delete removes an owned event; 0 when missing or not owned.
func (r *CalendarRepository) Delete(ctx context.Context, id, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteAllForUser clears a user's events.
func (r *CalendarRepository) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
