package service

import (
	"bytes"
	"context"
	"testing"

	"fridge-backend/apperr"
	"fridge-backend/database"
	"fridge-backend/database/dbtest"
	"fridge-backend/session"
	"fridge-backend/storage"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	db       *database.DB
	fs       afero.Fs
	store    storage.Storage
	sessions *session.MemoryStore
	logs     *bytes.Buffer

	auth     *AuthService
	magnets  *MagnetService
	calendar *CalendarService
	circles  *CircleService
	mail     *MailService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.New(t)
	fs := afero.NewMemMapFs()
	logs := &bytes.Buffer{}
	logger := zerolog.New(logs)

	f := &fixture{
		db:       db,
		fs:       fs,
		store:    storage.NewLocalStorageFs(fs),
		sessions: session.NewMemoryStore(),
		logs:     logs,
	}
	f.auth = NewAuthService(
		AuthWithDatabase(db),
		AuthWithSessionStore(f.sessions),
		AuthWithBcryptCost(bcrypt.MinCost),
		AuthWithLogger(logger),
	)
	f.magnets = NewMagnetService(
		MagnetWithDatabase(db),
		MagnetWithStorage(f.store),
		MagnetWithLogger(logger),
	)
	f.calendar = NewCalendarService(CalendarWithDatabase(db), CalendarWithLogger(logger))
	f.circles = NewCircleService(CircleWithDatabase(db), CircleWithLogger(logger))
	f.mail = NewMailService(MailWithDatabase(db), MailWithLogger(logger))
	return f
}

func (f *fixture) register(t *testing.T, username string) int64 {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterRequest{Username: username, PIN: "1234"})
	require.NoError(t, err)
	return res.UserID
}

// putBlob stores a small PNG and returns its reference.
func (f *fixture) putBlob(t *testing.T) string {
	t.Helper()
	ref, err := f.store.Put(context.Background(), bytes.NewReader([]byte("\x89PNG\r\n\x1a\nfake")), "image/png")
	require.NoError(t, err)
	return ref
}

func (f *fixture) blobExists(t *testing.T, ref string) bool {
	t.Helper()
	ok, err := afero.Exists(f.fs, ref)
	require.NoError(t, err)
	return ok
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "error: %v", err)
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
