package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fridge-backend/apperr"
	"fridge-backend/database"
	"fridge-backend/models"
	"fridge-backend/repository"

	"github.com/rs/zerolog"
)

// CalendarService manages countdown events
type CalendarService struct {
	db     database.Conn
	logger zerolog.Logger
}

// CalendarServiceOption is a functional option for CalendarService
type CalendarServiceOption func(*CalendarService)

// CalendarWithDatabase sets the database
func CalendarWithDatabase(db database.Conn) CalendarServiceOption {
	return func(s *CalendarService) {
		s.db = db
	}
}

// CalendarWithLogger sets the logger
func CalendarWithLogger(l zerolog.Logger) CalendarServiceOption {
	return func(s *CalendarService) {
		s.logger = l
	}
}

// NewCalendarService creates a new calendar service
func NewCalendarService(opts ...CalendarServiceOption) *CalendarService {
	s := &CalendarService{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListEvents returns the user's events ordered by date
func (s *CalendarService) ListEvents(ctx context.Context, userID int64) ([]*models.CalendarEvent, error) {
	if s.db == nil {
		return nil, errNotConfigured
	}
	events, err := repository.NewCalendarRepository(s.db).ListByUserID(ctx, userID)
	if err != nil {
		return nil, persistence(err)
	}
	return events, nil
}

// CreateEventRequest represents a new countdown
type CreateEventRequest struct {
	UserID      int64   `json:"-"`
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Description *string `json:"description"`
}

func (r CreateEventRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return apperr.Validation(CodeInvalidRequest, "Title is required")
	}
	if _, err := time.Parse(models.DateLayout, r.Date); err != nil {
		return apperr.Validation(CodeInvalidRequest, "Date must be YYYY-MM-DD")
	}
	return nil
}

func (r CreateEventRequest) event() *models.CalendarEvent {
	return &models.CalendarEvent{
		UserID:      r.UserID,
		Title:       r.Title,
		Date:        r.Date,
		Description: r.Description,
	}
}

// CreateEvent adds an event unless the user is at maxCalendarEvents
func (s *CalendarService) CreateEvent(ctx context.Context, req CreateEventRequest) (*models.CalendarEvent, error) {
	if s.db == nil {
		return nil, errNotConfigured
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	event := req.event()
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		limit, err := repository.NewUserRepository(tx).LockCalendarLimit(ctx, req.UserID)
		if err != nil {
			if isNotFound(err) {
				return apperr.NotFound(CodeUserNotFound, "User not found")
			}
			return err
		}

		events := repository.NewCalendarRepository(tx)
		count, err := events.CountByUserID(ctx, req.UserID)
		if err != nil {
			return err
		}
		if count >= limit {
			return apperr.Validation(CodeLimitReached,
				fmt.Sprintf("Maximum %d calendar event allowed", limit))
		}
		return events.Create(ctx, event)
	})
	if err != nil {
		return nil, persistence(err)
	}
	return event, nil
}

// ReplaceActiveCountdown swaps all of the user's events for a single new one
func (s *CalendarService) ReplaceActiveCountdown(ctx context.Context, req CreateEventRequest) (*models.CalendarEvent, error) {
	if s.db == nil {
		return nil, errNotConfigured
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	event := req.event()
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		events := repository.NewCalendarRepository(tx)
		removed, err := events.DeleteAllForUser(ctx, req.UserID)
		if err != nil {
			return err
		}
		if removed > 0 {
			s.logger.Debug().Int64("user_id", req.UserID).Int64("removed", removed).Msg("replacing countdown")
		}
		return events.Create(ctx, event)
	})
	if err != nil {
		return nil, persistence(err)
	}
	return event, nil
}

// DeleteEventResult reports how many events were removed (0 or 1)
type DeleteEventResult struct {
	Deleted int64 `json:"deleted"`
}

// DeleteEvent removes an owned event; misses are a zero count
func (s *CalendarService) DeleteEvent(ctx context.Context, userID, eventID int64) (*DeleteEventResult, error) {
	if s.db == nil {
		return nil, errNotConfigured
	}
	n, err := repository.NewCalendarRepository(s.db).Delete(ctx, eventID, userID)
	if err != nil {
		return nil, persistence(err)
	}
	return &DeleteEventResult{Deleted: n}, nil
}
