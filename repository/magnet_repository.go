package repository

import (
	"context"
	"fmt"
	"time"

	"fridge-backend/database"
	"fridge-backend/models"
)

// MagnetRepository handles database operations for magnets
type MagnetRepository struct {
	db database.DBTX
}

// NewMagnetRepository creates a new magnet repository
func NewMagnetRepository(db database.DBTX) *MagnetRepository {
	return &MagnetRepository{db: db}
}

const magnetColumns = `id, user_id, file_path, file_type, caption,
			position_x, position_y, rotation, created_at`

// Create inserts a magnet and sets its ID.
func (r *MagnetRepository) Create(ctx context.Context, m *models.Magnet) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO magnets (
			user_id, file_path, file_type, caption, position_x, position_y, rotation, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		m.UserID,
		m.FilePath,
		m.FileType,
		m.Caption,
		m.PositionX,
		m.PositionY,
		m.Rotation,
		m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert magnet: %w", err)
	}
	return nil
}

// ListByUserID retrieves all magnets for a user, newest first
func (r *MagnetRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Magnet, error) {
	query := `
		SELECT ` + magnetColumns + `
		FROM magnets
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	magnets := []*models.Magnet{}
	for rows.Next() {
		m := &models.Magnet{}
		if err := scanMagnet(rows, m); err != nil {
			return nil, err
		}
		magnets = append(magnets, m)
	}
	return magnets, rows.Err()
}

// CountByUserID returns how many magnets a user has.
func (r *MagnetRepository) CountByUserID(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM magnets WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// GetByID retrieves a magnet regardless of owner.
func (r *MagnetRepository) GetByID(ctx context.Context, id int64) (*models.Magnet, error) {
	query := `SELECT ` + magnetColumns + ` FROM magnets WHERE id = $1`

	m := &models.Magnet{}
	if err := scanMagnet(r.db.QueryRowContext(ctx, query, id), m); err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

// UpdatePosition moves an owned magnet. A nil caption keeps the stored one.
// Returns the number of rows changed (0 when missing or not owned).
func (r *MagnetRepository) UpdatePosition(ctx context.Context, id, userID int64, x, y, rotation float64, caption *string) (int64, error) {
	query := `
		UPDATE magnets SET
			position_x = $1,
			position_y = $2,
			rotation = $3,
			caption = COALESCE($4, caption)
		WHERE id = $5 AND user_id = $6`

	res, err := r.db.ExecContext(ctx, query, x, y, rotation, caption, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes an owned magnet and returns its blob reference. When nothing
// matched, deleted is 0 and filePath is empty.
func (r *MagnetRepository) Delete(ctx context.Context, id, userID int64) (filePath string, deleted int64, err error) {
	query := `DELETE FROM magnets WHERE id = $1 AND user_id = $2 RETURNING file_path`

	err = r.db.QueryRowContext(ctx, query, id, userID).Scan(&filePath)
	if err != nil {
		if notFound(err) == ErrNotFound {
			return "", 0, nil
		}
		return "", 0, err
	}
	return filePath, 1, nil
}

// CountBlobReferences counts magnets and mail items still pointing at ref.
func (r *MagnetRepository) CountBlobReferences(ctx context.Context, ref string) (int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM magnets WHERE file_path = $1) +
			(SELECT COUNT(*) FROM mail_items WHERE media_path = $2)`

	var n int
	err := r.db.QueryRowContext(ctx, query, ref, ref).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMagnet(row rowScanner, m *models.Magnet) error {
	return row.Scan(
		&m.ID,
		&m.UserID,
		&m.FilePath,
		&m.FileType,
		&m.Caption,
		&m.PositionX,
		&m.PositionY,
		&m.Rotation,
		&m.CreatedAt,
	)
}
