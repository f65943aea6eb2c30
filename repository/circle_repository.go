package repository

import (
	"context"
	"fmt"
	"time"

	"fridge-backend/database"
	"fridge-backend/models"
)

// CircleRepository handles database operations for circles and their members
type CircleRepository struct {
	db database.DBTX
}

// NewCircleRepository creates a new circle repository
func NewCircleRepository(db database.DBTX) *CircleRepository {
	return &CircleRepository{db: db}
}

// Create inserts a circle and sets its ID.
func (r *CircleRepository) Create(ctx context.Context, c *models.Circle) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO circles (name, description, created_by, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		c.Name,
		c.Description,
		c.CreatedBy,
		c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert circle: %w", err)
	}
	return nil
}

// GetByID retrieves a circle with its member count.
func (r *CircleRepository) GetByID(ctx context.Context, id int64) (*models.Circle, error) {
	query := `
		SELECT c.id, c.name, c.description, c.created_by, c.created_at,
			(SELECT COUNT(*) FROM circle_members m WHERE m.circle_id = c.id)
		FROM circles c
		WHERE c.id = $1`

	c := &models.Circle{}
	if err := scanCircle(r.db.QueryRowContext(ctx, query, id), c); err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// ListForUser returns circles the user created or belongs to, newest first.
func (r *CircleRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Circle, error) {
	query := `
		SELECT c.id, c.name, c.description, c.created_by, c.created_at,
			(SELECT COUNT(*) FROM circle_members m WHERE m.circle_id = c.id)
		FROM circles c
		WHERE c.created_by = $1
			OR EXISTS (
				SELECT 1 FROM circle_members cm
				WHERE cm.circle_id = c.id AND cm.user_id = $2
			)
		ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	circles := []*models.Circle{}
	for rows.Next() {
		c := &models.Circle{}
		if err := scanCircle(rows, c); err != nil {
			return nil, err
		}
		circles = append(circles, c)
	}
	return circles, rows.Err()
}

func scanCircle(row rowScanner, c *models.Circle) error {
	return row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedBy, &c.CreatedAt, &c.MemberCount)
}

// AddMember inserts a membership row. An existing membership yields ErrDuplicate.
func (r *CircleRepository) AddMember(ctx context.Context, m *models.CircleMember) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO circle_members (circle_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, m.CircleID, m.UserID, m.Role, m.JoinedAt).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert circle member: %w", err)
	}
	return nil
}

// GetMembership returns the user's membership in a circle or ErrNotFound.
func (r *CircleRepository) GetMembership(ctx context.Context, circleID, userID int64) (*models.CircleMember, error) {
	query := `
		SELECT cm.id, cm.circle_id, cm.user_id, u.username, cm.role, cm.joined_at
		FROM circle_members cm
		JOIN users u ON u.id = cm.user_id
		WHERE cm.circle_id = $1 AND cm.user_id = $2`

	m := &models.CircleMember{}
	if err := scanMember(r.db.QueryRowContext(ctx, query, circleID, userID), m); err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

// ListMembers returns a circle's members with usernames, in join order.
func (r *CircleRepository) ListMembers(ctx context.Context, circleID int64) ([]*models.CircleMember, error) {
	query := `
		SELECT cm.id, cm.circle_id, cm.user_id, u.username, cm.role, cm.joined_at
		FROM circle_members cm
		JOIN users u ON u.id = cm.user_id
		WHERE cm.circle_id = $1
		ORDER BY cm.joined_at ASC, cm.id ASC`

	rows, err := r.db.QueryContext(ctx, query, circleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []*models.CircleMember{}
	for rows.Next() {
		m := &models.CircleMember{}
		if err := scanMember(rows, m); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func scanMember(row rowScanner, m *models.CircleMember) error {
	return row.Scan(&m.ID, &m.CircleID, &m.UserID, &m.Username, &m.Role, &m.JoinedAt)
}
