package service

import (
	"context"
	"errors"
	"strings"

	"fridge-backend/apperr"
	"fridge-backend/database"
	"fridge-backend/models"
	"fridge-backend/repository"

	"github.com/rs/zerolog"
)

// CircleService manages sharing circles and their membership
type CircleService struct {
	db     database.Conn
	logger zerolog.Logger
}

// CircleServiceOption is a functional option for CircleService
type CircleServiceOption func(*CircleService)

// CircleWithDatabase sets the database
func CircleWithDatabase(db database.Conn) CircleServiceOption {
	return func(s *CircleService) {
		s.db = db
	}
}

// CircleWithLogger sets the logger
func CircleWithLogger(l zerolog.Logger) CircleServiceOption {
	return func(s *CircleService) {
		s.logger = l
	}
}

// NewCircleService creates a new circle service
func NewCircleService(opts ...CircleServiceOption) *CircleService {
	s := &CircleService{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCircleRequest represents a new circle
type CreateCircleRequest struct {
	UserID      int64   `json:"-"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// CreateCircle creates a circle with its creator as admin, atomically
func (s *CircleService) CreateCircle(ctx context.Context, req CreateCircleRequest) (*models.Circle, error) {
	if s.db == nil {
		return nil, errNotConfigured
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validation(CodeInvalidRequest, "Circle name required")
	}

	circle := &models.Circle{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   req.UserID,
	}
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		repo := repository.NewCircleRepository(tx)
		if err := repo.Create(ctx, circle); err != nil {
			return err
		}
		return repo.AddMember(ctx, &models.CircleMember{
			CircleID: circle.ID,
			UserID:   req.UserID,
			Role:     models.RoleAdmin,
		})
	})
	if err != nil {
		return nil, persistence(err)
	}

	circle.MemberCount = 1
	s.logger.Info().Int64("user_id", req.UserID).Int64("circle_id", circle.ID).Msg("circle created")
	return circle, nil
}

// ListCircles returns circles the user created or belongs to, newest first
func (s *CircleService) ListCircles(ctx context.Context, userID int64) ([]*models.Circle, error) {
	if s.db == nil {
		return nil, errNotConfigured
	}
	circles, err := repository.NewCircleRepository(s.db).ListForUser(ctx, userID)
	if err != nil {
		return nil, persistence(err)
	}
	return circles, nil
}

// ListMembers returns the circle's members; only members may look
func (s *CircleService) ListMembers(ctx context.Context, userID, circleID int64) ([]*models.CircleMember, error) {
	if s.db == nil {
		return nil, errNotConfigured
	}
	repo := repository.NewCircleRepository(s.db)

	if _, err := requireMembership(ctx, repo, circleID, userID); err != nil {
		return nil, err
	}

	members, err := repo.ListMembers(ctx, circleID)
	if err != nil {
		return nil, persistence(err)
	}
	return members, nil
}

// InviteMemberRequest represents an admin adding a user by username
type InviteMemberRequest struct {
	RequesterID int64  `json:"-"`
	CircleID    int64  `json:"-"`
	Username    string `json:"username"`
}

// InviteMemberResult identifies the added member
type InviteMemberResult struct {
	Success  bool   `json:"success"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// InviteMember adds a user to a circle. The admin check comes first so a
// non-admin learns nothing about which usernames exist.
func (s *CircleService) InviteMember(ctx context.Context, req InviteMemberRequest) (*InviteMemberResult, error) {
	if s.db == nil {
		return nil, errNotConfigured
	}
	repo := repository.NewCircleRepository(s.db)

	membership, err := repo.GetMembership(ctx, req.CircleID, req.RequesterID)
	if err != nil && !isNotFound(err) {
		return nil, persistence(err)
	}
	if membership == nil || membership.Role != models.RoleAdmin {
		s.logger.Warn().
			Int64("user_id", req.RequesterID).
			Int64("circle_id", req.CircleID).
			Msg("invite denied: requester is not an admin")
		return nil, apperr.Authorization(CodeAdminRequired, "Only admins can invite members")
	}

	user, err := repository.NewUserRepository(s.db).GetByUsername(ctx, req.Username)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound(CodeUserNotFound, "User not found")
		}
		return nil, persistence(err)
	}

	err = repo.AddMember(ctx, &models.CircleMember{
		CircleID: req.CircleID,
		UserID:   user.ID,
		Role:     models.RoleMember,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(CodeAlreadyMember, "User already in circle")
		}
		return nil, persistence(err)
	}

	return &InviteMemberResult{Success: true, UserID: user.ID, Username: user.Username}, nil
}

// requireMembership returns the user's membership or an authorization error.
func requireMembership(ctx context.Context, repo *repository.CircleRepository, circleID, userID int64) (*models.CircleMember, error) {
	m, err := repo.GetMembership(ctx, circleID, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Authorization(CodeNotMember, "Not a member of this circle")
		}
		return nil, persistence(err)
	}
	return m, nil
}
