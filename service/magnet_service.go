package service

import (
	"context"

	"fridge-backend/apperr"
	"fridge-backend/coords"
	"fridge-backend/database"
	"fridge-backend/models"
	"fridge-backend/repository"
	"fridge-backend/storage"

	"github.com/rs/zerolog"
)

// MagnetService handles business logic for fridge magnets
type MagnetService struct {
	magnetRepo *repository.MagnetRepository
	userRepo   *repository.UserRepository
	storage    storage.Storage
	logger     zerolog.Logger
}

// MagnetServiceOption is a functional option for MagnetService
type MagnetServiceOption func(*MagnetService)

// MagnetWithDatabase builds the magnet and user repositories on db
func MagnetWithDatabase(db database.DBTX) MagnetServiceOption {
	return func(s *MagnetService) {
		s.magnetRepo = repository.NewMagnetRepository(db)
		s.userRepo = repository.NewUserRepository(db)
	}
}

// MagnetWithStorage sets the blob store backing magnet media
func MagnetWithStorage(st storage.Storage) MagnetServiceOption {
	return func(s *MagnetService) {
		s.storage = st
	}
}

// MagnetWithLogger sets the logger
func MagnetWithLogger(l zerolog.Logger) MagnetServiceOption {
	return func(s *MagnetService) {
		s.logger = l
	}
}

// NewMagnetService creates a new magnet service
func NewMagnetService(opts ...MagnetServiceOption) *MagnetService {
	s := &MagnetService{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListMagnets returns the user's magnets, newest first
func (s *MagnetService) ListMagnets(ctx context.Context, userID int64) ([]*models.Magnet, error) {
	if s.magnetRepo == nil {
		return nil, errNotConfigured
	}
	magnets, err := s.magnetRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, persistence(err)
	}
	return magnets, nil
}

// CreateMagnetRequest represents a new magnet for an already stored blob
type CreateMagnetRequest struct {
	UserID       int64
	FilePath     string
	FileType     models.FileType
	OriginalName string // used as the caption when none is given
	Caption      *string
	PositionX    *float64
	PositionY    *float64
	Rotation     *float64
}

// CreateMagnetResult represents the stored magnet and the user's new total
type CreateMagnetResult struct {
	Magnet       *models.Magnet
	TotalMagnets int
}

// CreateMagnet stores a magnet exactly as given; missing numbers default to 0
func (s *MagnetService) CreateMagnet(ctx context.Context, req CreateMagnetRequest) (*CreateMagnetResult, error) {
	if s.magnetRepo == nil {
		return nil, errNotConfigured
	}
	if req.FilePath == "" {
		return nil, apperr.Validation(CodeMissingFile, "No file uploaded")
	}

	m := &models.Magnet{
		UserID:    req.UserID,
		FilePath:  req.FilePath,
		FileType:  req.FileType,
		PositionX: valueOr(req.PositionX, 0),
		PositionY: valueOr(req.PositionY, 0),
		Rotation:  valueOr(req.Rotation, 0),
	}
	if !coords.IsFinite(m.PositionX) || !coords.IsFinite(m.PositionY) || !coords.IsFinite(m.Rotation) {
		return nil, apperr.Validation(CodeInvalidPosition, "Position and rotation must be finite numbers")
	}
	if m.FileType == "" {
		m.FileType = models.FileTypeImage
	}

	switch {
	case req.Caption != nil && *req.Caption != "":
		m.Caption = req.Caption
	case req.OriginalName != "":
		name := req.OriginalName
		m.Caption = &name
	}

	if err := s.magnetRepo.Create(ctx, m); err != nil {
		return nil, persistence(err)
	}

	total, err := s.magnetRepo.CountByUserID(ctx, req.UserID)
	if err != nil {
		return nil, persistence(err)
	}
	s.warnOverLimit(ctx, req.UserID, total)

	return &CreateMagnetResult{Magnet: m, TotalMagnets: total}, nil
}

// warnOverLimit flags users past maxMagnets. The limit is advisory.
func (s *MagnetService) warnOverLimit(ctx context.Context, userID int64, total int) {
	if s.userRepo == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return
	}
	if total > user.MaxMagnets {
		s.logger.Warn().
			Int64("user_id", userID).
			Int("total_magnets", total).
			Int("max_magnets", user.MaxMagnets).
			Msg("magnet count exceeds maxMagnets")
	}
}

// UpdateMagnetRequest represents a position change
type UpdateMagnetRequest struct {
	UserID    int64
	MagnetID  int64
	PositionX float64
	PositionY float64
	Rotation  float64
	Caption   *string // nil keeps the stored caption
}

// UpdateMagnetResult reports how many magnets changed (0 or 1)
type UpdateMagnetResult struct {
	Updated int64 `json:"updated"`
}

// UpdateMagnetPosition moves a magnet the user owns
func (s *MagnetService) UpdateMagnetPosition(ctx context.Context, req UpdateMagnetRequest) (*UpdateMagnetResult, error) {
	if s.magnetRepo == nil {
		return nil, errNotConfigured
	}
	if !coords.IsFinite(req.PositionX) || !coords.IsFinite(req.PositionY) || !coords.IsFinite(req.Rotation) {
		return nil, apperr.Validation(CodeInvalidPosition, "Position and rotation must be finite numbers")
	}

	n, err := s.magnetRepo.UpdatePosition(ctx, req.MagnetID, req.UserID,
		req.PositionX, req.PositionY, req.Rotation, req.Caption)
	if err != nil {
		return nil, persistence(err)
	}
	if n == 0 {
		s.logMiss(ctx, "update", req.UserID, req.MagnetID)
	}
	return &UpdateMagnetResult{Updated: n}, nil
}

// DeleteMagnetResult reports how many magnets were removed (0 or 1)
type DeleteMagnetResult struct {
	Deleted int64 `json:"deleted"`
}

// DeleteMagnet removes an owned magnet and then its blob. The blob is kept
// while a mail item or another magnet still references it.
func (s *MagnetService) DeleteMagnet(ctx context.Context, userID, magnetID int64) (*DeleteMagnetResult, error) {
	if s.magnetRepo == nil {
		return nil, errNotConfigured
	}

	ref, n, err := s.magnetRepo.Delete(ctx, magnetID, userID)
	if err != nil {
		return nil, persistence(err)
	}
	if n == 0 {
		s.logMiss(ctx, "delete", userID, magnetID)
		return &DeleteMagnetResult{Deleted: 0}, nil
	}

	s.releaseBlob(ctx, ref)
	return &DeleteMagnetResult{Deleted: n}, nil
}

func (s *MagnetService) releaseBlob(ctx context.Context, ref string) {
	if s.storage == nil || ref == "" {
		return
	}
	refs, err := s.magnetRepo.CountBlobReferences(ctx, ref)
	if err != nil {
		s.logger.Error().Err(err).Str("file_path", ref).Msg("failed to count blob references")
		return
	}
	if refs > 0 {
		s.logger.Debug().Str("file_path", ref).Int("references", refs).Msg("blob still referenced, keeping it")
		return
	}
	if err := s.storage.Delete(ctx, ref); err != nil {
		s.logger.Error().Err(err).Str("file_path", ref).Msg("failed to delete magnet blob")
	}
}

// logMiss records why a mutation matched nothing. Callers only ever see a
// zero count; a foreign magnet is worth a warning.
func (s *MagnetService) logMiss(ctx context.Context, op string, userID, magnetID int64) {
	m, err := s.magnetRepo.GetByID(ctx, magnetID)
	switch {
	case err == nil && m.UserID != userID:
		s.logger.Warn().
			Str("op", op).
			Int64("user_id", userID).
			Int64("magnet_id", magnetID).
			Int64("owner_id", m.UserID).
			Msg("magnet mutation denied: not owner")
	case err == nil || isNotFound(err):
		s.logger.Debug().Str("op", op).Int64("user_id", userID).Int64("magnet_id", magnetID).Msg("magnet not found")
	default:
		s.logger.Error().Err(err).Int64("magnet_id", magnetID).Msg("failed to diagnose magnet miss")
	}
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
