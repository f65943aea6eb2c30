package service

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"fridge-backend/apperr"
	"fridge-backend/coords"
	"fridge-backend/database"
	"fridge-backend/models"
	"fridge-backend/repository"

	"github.com/rs/zerolog"
)

const (
	// MailListLimit caps how many items ListMail returns.
	MailListLimit = 50
	// ConvertedTilt bounds the random rotation of a converted magnet, in degrees.
	ConvertedTilt = 15.0
)

// MailService handles mail sent to circles and its conversion into magnets
type MailService struct {
	db     database.Conn
	logger zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// MailServiceOption is a functional option for MailService
type MailServiceOption func(*MailService)

// MailWithDatabase sets the database
func MailWithDatabase(db database.Conn) MailServiceOption {
	return func(s *MailService) {
		s.db = db
	}
}

// MailWithLogger sets the logger
func MailWithLogger(l zerolog.Logger) MailServiceOption {
	return func(s *MailService) {
		s.logger = l
	}
}

// MailWithRand sets the source used to place converted magnets
func MailWithRand(rng *rand.Rand) MailServiceOption {
	return func(s *MailService) {
		s.rng = rng
	}
}

// NewMailService creates a new mail service
func NewMailService(opts ...MailServiceOption) *MailService {
	s := &MailService{
		logger: zerolog.Nop(),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListMail returns up to MailListLimit items addressed to the user's circles
func (s *MailService) ListMail(ctx context.Context, userID int64) ([]*models.MailItem, error) {
	if s.db == nil {
		return nil, errNotConfigured
	}
	items, err := repository.NewMailRepository(s.db).ListForUser(ctx, userID, MailListLimit)
	if err != nil {
		return nil, persistence(err)
	}
	return items, nil
}

// SendMailRequest represents mail to a circle; media is optional
type SendMailRequest struct {
	UserID    int64
	CircleID  int64
	Subject   *string
	Content   *string
	MediaPath *string
	MediaType *models.FileType
}

// SendMail stores mail from a circle member
func (s *MailService) SendMail(ctx context.Context, req SendMailRequest) (*models.MailItem, error) {
	if s.db == nil {
		return nil, errNotConfigured
	}
	if req.CircleID <= 0 {
		return nil, apperr.Validation(CodeInvalidRequest, "Circle ID required")
	}

	if _, err := requireMembership(ctx, repository.NewCircleRepository(s.db), req.CircleID, req.UserID); err != nil {
		if apperr.Is(err, apperr.KindAuthorization) {
			s.logger.Warn().Int64("user_id", req.UserID).Int64("circle_id", req.CircleID).Msg("send denied: not a member")
		}
		return nil, err
	}

	item := &models.MailItem{
		FromUserID: req.UserID,
		ToCircleID: req.CircleID,
		Subject:    req.Subject,
		Content:    req.Content,
		MediaPath:  req.MediaPath,
		MediaType:  req.MediaType,
	}
	if item.MediaPath != nil && item.MediaType == nil {
		image := models.FileTypeImage
		item.MediaType = &image
	}

	if err := repository.NewMailRepository(s.db).Create(ctx, item); err != nil {
		return nil, persistence(err)
	}
	return item, nil
}

// ConvertResult describes the magnet created from a mail item
type ConvertResult struct {
	MagnetID int64           `json:"magnetId"`
	FilePath string          `json:"filePath"`
	FileType models.FileType `json:"fileType"`
	Caption  string          `json:"caption"`
	URL      string          `json:"url,omitempty"`
}

// ConvertMailToMagnet pins a mail item's media to the requester's fridge.
// Each item converts at most once; the flag flip and the magnet insert
// commit together.
func (s *MailService) ConvertMailToMagnet(ctx context.Context, userID, mailID int64) (*ConvertResult, error) {
	if s.db == nil {
		return nil, errNotConfigured
	}

	mail, err := repository.NewMailRepository(s.db).GetByID(ctx, mailID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound(CodeMailNotFound, "Mail not found")
		}
		return nil, persistence(err)
	}

	if _, err := requireMembership(ctx, repository.NewCircleRepository(s.db), mail.ToCircleID, userID); err != nil {
		if apperr.Is(err, apperr.KindAuthorization) {
			s.logger.Warn().Int64("user_id", userID).Int64("mail_id", mailID).Msg("convert denied: not a member")
		}
		return nil, err
	}

	if !mail.HasMedia() {
		return nil, apperr.Validation(CodeNoMedia, "Mail has no media to convert")
	}
	if mail.IsConvertedToMagnet {
		return nil, alreadyConverted()
	}

	caption := convertedCaption(mail)
	fileType := models.FileTypeImage
	if mail.MediaType != nil {
		fileType = *mail.MediaType
	}
	pos, tilt := s.placement()

	magnet := &models.Magnet{
		UserID:    userID,
		FilePath:  *mail.MediaPath,
		FileType:  fileType,
		Caption:   &caption,
		PositionX: pos.X,
		PositionY: pos.Y,
		Rotation:  tilt,
	}

	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		n, err := repository.NewMailRepository(tx).MarkConverted(ctx, mailID, userID, time.Now().UTC())
		if err != nil {
			return err
		}
		if n == 0 {
			return alreadyConverted()
		}
		return repository.NewMagnetRepository(tx).Create(ctx, magnet)
	})
	if err != nil {
		return nil, persistence(err)
	}

	s.logger.Info().
		Int64("user_id", userID).
		Int64("mail_id", mailID).
		Int64("magnet_id", magnet.ID).
		Msg("mail converted to magnet")

	return &ConvertResult{
		MagnetID: magnet.ID,
		FilePath: magnet.FilePath,
		FileType: magnet.FileType,
		Caption:  caption,
	}, nil
}

func alreadyConverted() error {
	return apperr.Validation(CodeAlreadyConverted, "Mail has already been converted to a magnet")
}

// convertedCaption prefers the subject, then the content, then the sender.
func convertedCaption(m *models.MailItem) string {
	if m.Subject != nil && *m.Subject != "" {
		return *m.Subject
	}
	if m.Content != nil && *m.Content != "" {
		return *m.Content
	}
	return "Mail from " + m.FromUsername
}

func (s *MailService) placement() (coords.Point, float64) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return coords.RandomPlacement(s.rng, ConvertedTilt)
}
