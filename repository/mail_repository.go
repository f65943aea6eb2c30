package repository

import (
	"context"
	"fmt"
	"time"

	"fridge-backend/database"
	"fridge-backend/models"
)

// MailRepository handles database operations for mail items
type MailRepository struct {
	db database.DBTX
}

// NewMailRepository creates a new mail repository
func NewMailRepository(db database.DBTX) *MailRepository {
	return &MailRepository{db: db}
}

const mailSelect = `
		SELECT m.id, m.from_user_id, m.to_circle_id, m.subject, m.content,
			m.media_path, m.media_type, m.is_converted_to_magnet,
			m.converted_by_user_id, m.converted_at, m.created_at,
			u.username, c.name
		FROM mail_items m
		JOIN users u ON u.id = m.from_user_id
		JOIN circles c ON c.id = m.to_circle_id`

// Create inserts a mail item and sets its ID.
func (r *MailRepository) Create(ctx context.Context, m *models.MailItem) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO mail_items (
			from_user_id, to_circle_id, subject, content, media_path, media_type,
			is_converted_to_magnet, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		m.FromUserID,
		m.ToCircleID,
		m.Subject,
		m.Content,
		m.MediaPath,
		m.MediaType,
		false,
		m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert mail item: %w", err)
	}
	return nil
}

// GetByID retrieves a mail item with sender username and circle name.
func (r *MailRepository) GetByID(ctx context.Context, id int64) (*models.MailItem, error) {
	query := mailSelect + `
		WHERE m.id = $1`

	m := &models.MailItem{}
	if err := scanMail(r.db.QueryRowContext(ctx, query, id), m); err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

// ListForUser returns mail addressed to any circle the user belongs to,
// newest first, at most limit items.
func (r *MailRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]*models.MailItem, error) {
	query := mailSelect + `
		JOIN circle_members cm ON cm.circle_id = m.to_circle_id
		WHERE cm.user_id = $1
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.MailItem{}
	for rows.Next() {
		m := &models.MailItem{}
		if err := scanMail(rows, m); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// MarkConverted flips the conversion flag only if it is still unset. It
// returns 0 when another request already converted the item.
func (r *MailRepository) MarkConverted(ctx context.Context, id, byUserID int64, at time.Time) (int64, error) {
	query := `
		UPDATE mail_items SET
			is_converted_to_magnet = $1,
			converted_by_user_id = $2,
			converted_at = $3
		WHERE id = $4 AND is_converted_to_magnet = $5`

	res, err := r.db.ExecContext(ctx, query, true, byUserID, at, id, false)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanMail(row rowScanner, m *models.MailItem) error {
	return row.Scan(
		&m.ID,
		&m.FromUserID,
		&m.ToCircleID,
		&m.Subject,
		&m.Content,
		&m.MediaPath,
		&m.MediaType,
		&m.IsConvertedToMagnet,
		&m.ConvertedByUserID,
		&m.ConvertedAt,
		&m.CreatedAt,
		&m.FromUsername,
		&m.CircleName,
	)
}
