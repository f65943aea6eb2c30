package service

import (
	"context"
	"strings"
	"testing"

	"fridge-backend/apperr"
	"fridge-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, RegisterRequest{Username: "", PIN: "1234"})
	requireKind(t, err, apperr.KindValidation)

	_, err = f.auth.Register(ctx, RegisterRequest{Username: "alice", PIN: ""})
	requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "Username and PIN required", apperr.PublicMessage(err))

	_, err = f.auth.Register(ctx, RegisterRequest{Username: "alice", PIN: strings.Repeat("9", 73)})
	requireKind(t, err, apperr.KindValidation)
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	_, err := f.auth.Register(context.Background(), RegisterRequest{Username: "alice", PIN: "9999"})
	requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, CodeUsernameTaken, apperr.CodeOf(err))
}

func TestLogin_IssuesSessionWithConfig(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "alice")

	res, err := f.auth.Login(ctx, LoginRequest{Username: "alice", PIN: "1234"})
	require.NoError(t, err)
	assert.Equal(t, id, res.UserID)
	assert.Len(t, res.SessionID, 64)
	assert.Equal(t, models.UserConfig{
		FridgeColor:       models.DefaultFridgeColor,
		HandlePosition:    models.HandleRight,
		MaxMagnets:        models.DefaultMaxMagnets,
		MaxCalendarEvents: models.DefaultMaxCalendarEvents,
	}, res.Config)

	uid, err := f.sessions.Get(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, id, uid)

	require.NoError(t, f.auth.Logout(ctx, res.SessionID))
	_, err = f.sessions.Get(ctx, res.SessionID)
	assert.Error(t, err)
}

func TestLogin_FailuresLookIdentical(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")

	_, wrongPIN := f.auth.Login(ctx, LoginRequest{Username: "alice", PIN: "0000"})
	_, unknown := f.auth.Login(ctx, LoginRequest{Username: "mallory", PIN: "1234"})

	requireKind(t, wrongPIN, apperr.KindAuthentication)
	requireKind(t, unknown, apperr.KindAuthentication)
	assert.Equal(t, apperr.PublicMessage(wrongPIN), apperr.PublicMessage(unknown))
	assert.Zero(t, f.sessions.Len())
}

func TestConfig_GetAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "alice")

	err := f.auth.UpdateConfig(ctx, UpdateConfigRequest{UserID: id, FridgeColor: "red", HandlePosition: "left"})
	requireKind(t, err, apperr.KindValidation)

	err = f.auth.UpdateConfig(ctx, UpdateConfigRequest{UserID: id, FridgeColor: "#FFAA00", HandlePosition: "top"})
	requireKind(t, err, apperr.KindValidation)

	require.NoError(t, f.auth.UpdateConfig(ctx, UpdateConfigRequest{UserID: id, FridgeColor: "#ffaa00", HandlePosition: "left"}))

	cfg, err := f.auth.GetConfig(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "#ffaa00", cfg.FridgeColor)
	assert.Equal(t, models.HandleLeft, cfg.HandlePosition)

	_, err = f.auth.GetConfig(ctx, id+100)
	requireKind(t, err, apperr.KindNotFound)
}
