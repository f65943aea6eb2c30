package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"fridge-backend/apperr"
	"fridge-backend/database"
	"fridge-backend/models"
	"fridge-backend/repository"
	"fridge-backend/session"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past 72 bytes and refuses to hash it.
const maxPINBytes = 72

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// AuthService handles registration, login and per-user preferences
type AuthService struct {
	userRepo   *repository.UserRepository
	sessions   session.Store
	bcryptCost int
	logger     zerolog.Logger
}

// AuthServiceOption is a functional option for AuthService
type AuthServiceOption func(*AuthService)

// AuthWithDatabase builds the user repository on db
func AuthWithDatabase(db database.DBTX) AuthServiceOption {
	return func(s *AuthService) {
		s.userRepo = repository.NewUserRepository(db)
	}
}

// AuthWithSessionStore sets where login tokens are recorded
func AuthWithSessionStore(store session.Store) AuthServiceOption {
	return func(s *AuthService) {
		s.sessions = store
	}
}

// AuthWithBcryptCost overrides the PIN hashing cost; tests use bcrypt.MinCost
func AuthWithBcryptCost(cost int) AuthServiceOption {
	return func(s *AuthService) {
		s.bcryptCost = cost
	}
}

// AuthWithLogger sets the logger
func AuthWithLogger(l zerolog.Logger) AuthServiceOption {
	return func(s *AuthService) {
		s.logger = l
	}
}

// NewAuthService creates a new auth service
func NewAuthService(opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		bcryptCost: bcrypt.DefaultCost,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRequest represents a request to create an account
type RegisterRequest struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
}

// RegisterResult represents the created account
type RegisterResult struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// Register creates a user with a bcrypt-hashed PIN
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if s.userRepo == nil {
		return nil, errNotConfigured
	}
	if strings.TrimSpace(req.Username) == "" || req.PIN == "" {
		return nil, apperr.Validation(CodeInvalidRequest, "Username and PIN required")
	}
	if len(req.PIN) > maxPINBytes {
		return nil, apperr.Validation(CodeInvalidRequest, "PIN is too long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), s.bcryptCost)
	if err != nil {
		return nil, persistence(err)
	}

	user := &models.User{Username: req.Username, PINHash: string(hash)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(CodeUsernameTaken, "Username already exists")
		}
		return nil, persistence(err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return &RegisterResult{UserID: user.ID, Username: user.Username}, nil
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
}

// LoginResult carries the new session and the user's display configuration
type LoginResult struct {
	SessionID string            `json:"sessionId"`
	UserID    int64             `json:"userId"`
	Username  string            `json:"username"`
	Config    models.UserConfig `json:"config"`
}

// Login verifies the PIN and opens a session. Unknown users and wrong PINs
// fail identically.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if s.userRepo == nil || s.sessions == nil {
		return nil, errNotConfigured
	}
	invalid := apperr.Authentication(CodeInvalidCredentials, "Invalid credentials")

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if isNotFound(err) {
			return nil, invalid
		}
		return nil, persistence(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(req.PIN)); err != nil {
		s.logger.Warn().Int64("user_id", user.ID).Msg("login rejected: wrong pin")
		return nil, invalid
	}

	token, err := session.NewToken()
	if err != nil {
		return nil, persistence(err)
	}
	if err := s.sessions.Put(ctx, token, user.ID); err != nil {
		return nil, persistence(err)
	}

	return &LoginResult{
		SessionID: token,
		UserID:    user.ID,
		Username:  user.Username,
		Config:    user.Config(),
	}, nil
}

// Logout invalidates a session token
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.sessions == nil {
		return errNotConfigured
	}
	if err := s.sessions.Invalidate(ctx, token); err != nil {
		return persistence(err)
	}
	return nil
}

// GetConfig returns the user's display configuration
func (s *AuthService) GetConfig(ctx context.Context, userID int64) (*models.UserConfig, error) {
	if s.userRepo == nil {
		return nil, errNotConfigured
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound(CodeUserNotFound, "User not found")
		}
		return nil, persistence(err)
	}
	cfg := user.Config()
	return &cfg, nil
}

// UpdateConfigRequest represents new display preferences
type UpdateConfigRequest struct {
	UserID         int64  `json:"-"`
	FridgeColor    string `json:"fridgeColor"`
	HandlePosition string `json:"handlePosition"`
}

// UpdateConfig validates and stores display preferences
func (s *AuthService) UpdateConfig(ctx context.Context, req UpdateConfigRequest) error {
	if s.userRepo == nil {
		return errNotConfigured
	}
	if !colorPattern.MatchString(req.FridgeColor) {
		return apperr.Validation(CodeInvalidConfig, "fridgeColor must be a #RRGGBB color")
	}
	if req.HandlePosition != models.HandleLeft && req.HandlePosition != models.HandleRight {
		return apperr.Validation(CodeInvalidConfig, "handlePosition must be left or right")
	}

	n, err := s.userRepo.UpdateConfig(ctx, req.UserID, req.FridgeColor, req.HandlePosition)
	if err != nil {
		return persistence(err)
	}
	if n == 0 {
		return apperr.NotFound(CodeUserNotFound, "User not found")
	}
	return nil
}
