package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fridge-backend/database/dbtest"
	"fridge-backend/service"
	"fridge-backend/session"
	"fridge-backend/storage"
	"fridge-backend/weather"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	store := storage.NewLocalStorageFs(afero.NewMemMapFs())
	sessions := session.NewMemoryStore()
	logger := zerolog.Nop()

	router := NewRouter(RouterConfig{
		Logger:      logger,
		MaxFileSize: 1024,
		Sessions:    sessions,
		Storage:     store,
		Weather:     weather.NewClient(weather.WithPicker(func(int) int { return 0 })),
		Auth: service.NewAuthService(
			service.AuthWithDatabase(db),
			service.AuthWithSessionStore(sessions),
			service.AuthWithBcryptCost(bcrypt.MinCost),
		),
		Magnets:  service.NewMagnetService(service.MagnetWithDatabase(db), service.MagnetWithStorage(store)),
		Calendar: service.NewCalendarService(service.CalendarWithDatabase(db)),
		Circles:  service.NewCircleService(service.CircleWithDatabase(db)),
		Mail:     service.NewMailService(service.MailWithDatabase(db)),
	})
	return &testServer{t: t, router: router}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) json(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(SessionHeader, token)
	}
	return s.do(req)
}

func (s *testServer) multipart(path, token string, fields map[string]string, file []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", "photo.png")
		require.NoError(s.t, err)
		_, err = fw.Write(file)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(SessionHeader, token)
	return s.do(req)
}

// login registers username and returns a session token.
func (s *testServer) login(username string) string {
	s.t.Helper()
	w := s.json(http.MethodPost, "/api/register", "", gin.H{"username": username, "pin": "1234"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	w = s.json(http.MethodPost, "/api/login", "", gin.H{"username": username, "pin": "1234"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		SessionID string `json:"sessionId"`
	}
	decode(s.t, w, &res)
	require.NotEmpty(s.t, res.SessionID)
	return res.SessionID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) errorBody {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	var body errorBody
	decode(t, w, &body)
	assert.False(t, body.Success)
	if code != "" {
		assert.Equal(t, code, body.Error.Code)
	}
	return body
}

type magnetJSON struct {
	ID        int64   `json:"id"`
	FilePath  string  `json:"filePath"`
	FileType  string  `json:"fileType"`
	Caption   *string `json:"caption"`
	PositionX float64 `json:"positionX"`
	PositionY float64 `json:"positionY"`
	Rotation  float64 `json:"rotation"`
	URL       string  `json:"url"`
}

func TestHealthAndCORS(t *testing.T) {
	s := newTestServer(t)

	w := s.json(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = s.do(httptest.NewRequest(http.MethodOptions, "/api/magnets", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), SessionHeader)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/magnets"},
		{http.MethodPut, "/api/magnets/1"},
		{http.MethodDelete, "/api/magnets/1"},
		{http.MethodGet, "/api/config"},
		{http.MethodGet, "/api/calendar"},
		{http.MethodGet, "/api/circles"},
		{http.MethodPost, "/api/circles/1/members"},
		{http.MethodGet, "/api/mail"},
		{http.MethodPost, "/api/mail/1/convert"},
	}
	for _, rt := range routes {
		w := s.json(rt.method, rt.path, "", nil)
		requireError(t, w, http.StatusUnauthorized, "UNAUTHORIZED")

		w = s.json(rt.method, rt.path, "forged-token", nil)
		requireError(t, w, http.StatusUnauthorized, "UNAUTHORIZED")
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login("alice")

	w := s.json(http.MethodPost, "/api/register", "", gin.H{"username": "alice", "pin": "9"})
	requireError(t, w, http.StatusBadRequest, service.CodeUsernameTaken)

	w = s.json(http.MethodPost, "/api/register", "", gin.H{"username": "bob"})
	body := requireError(t, w, http.StatusBadRequest, "")
	assert.Equal(t, "Username and PIN required", body.Error.Message)

	w = s.json(http.MethodPost, "/api/login", "", gin.H{"username": "alice", "pin": "0000"})
	requireError(t, w, http.StatusUnauthorized, service.CodeInvalidCredentials)

	// Bearer works as well as the session header.
	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = s.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"fridgeColor":"#A3D8F4","handlePosition":"right","maxMagnets":2,"maxCalendarEvents":1}`, w.Body.String())

	w = s.json(http.MethodPut, "/api/config", token, gin.H{"fridgeColor": "#000000", "handlePosition": "left"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"updated":true}`, w.Body.String())

	w = s.json(http.MethodPut, "/api/config", token, gin.H{"fridgeColor": "black", "handlePosition": "left"})
	requireError(t, w, http.StatusBadRequest, service.CodeInvalidConfig)

	w = s.json(http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.json(http.MethodGet, "/api/config", token, nil)
	requireError(t, w, http.StatusUnauthorized, "UNAUTHORIZED")
}

// alice registers, logs in and uploads an image magnet at (10, -20) rotated
// 5 degrees; listing returns exactly that record.
func TestScenario_AliceMagnetRoundTrip(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice")

	w := s.multipart("/api/magnets", alice, map[string]string{
		"positionX": "10",
		"positionY": "-20",
		"rotation":  "5",
	}, pngBytes)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created struct {
		magnetJSON
		TotalMagnets int `json:"totalMagnets"`
	}
	decode(t, w, &created)
	assert.Equal(t, 1, created.TotalMagnets)
	assert.Equal(t, "image", created.FileType)
	require.NotNil(t, created.Caption)
	assert.Equal(t, "photo.png", *created.Caption)

	w = s.json(http.MethodGet, "/api/magnets", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []magnetJSON
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, 10.0, list[0].PositionX)
	assert.Equal(t, -20.0, list[0].PositionY)
	assert.Equal(t, 5.0, list[0].Rotation)
	assert.Equal(t, "/uploads/"+list[0].FilePath, list[0].URL)
	assert.Equal(t, list[0].URL, created.URL)

	// The blob is served back by reference.
	w = s.json(http.MethodGet, list[0].URL, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, w.Body.Bytes())

	// Move it, then delete it twice.
	path := fmt.Sprintf("/api/magnets/%d", created.ID)
	w = s.json(http.MethodPut, path, alice, gin.H{"positionX": 55.5, "positionY": 12.25, "rotation": -3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"updated":1}`, w.Body.String())

	w = s.json(http.MethodPut, path, alice, gin.H{"positionX": 1})
	requireError(t, w, http.StatusBadRequest, "INVALID_REQUEST")

	w = s.json(http.MethodDelete, path, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":1}`, w.Body.String())

	w = s.json(http.MethodDelete, path, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":0}`, w.Body.String())

	w = s.json(http.MethodGet, "/uploads/"+list[0].FilePath, "", nil)
	requireError(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestMagnetUploadRejections(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice")

	w := s.multipart("/api/magnets", alice, map[string]string{"caption": "x"}, nil)
	body := requireError(t, w, http.StatusBadRequest, service.CodeMissingFile)
	assert.Equal(t, "No file uploaded", body.Error.Message)

	w = s.multipart("/api/magnets", alice, nil, []byte("plain text is not a picture"))
	requireError(t, w, http.StatusBadRequest, "INVALID_FILE_TYPE")

	big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{1}, 2048)...)
	w = s.multipart("/api/magnets", alice, nil, big)
	requireError(t, w, http.StatusBadRequest, "FILE_TOO_LARGE")

	w = s.multipart("/api/magnets", alice, map[string]string{"positionX": "left"}, pngBytes)
	requireError(t, w, http.StatusBadRequest, service.CodeInvalidPosition)
}

func TestUploadsRejectTraversal(t *testing.T) {
	s := newTestServer(t)
	w := s.json(http.MethodGet, "/uploads/../secret", "", nil)
	assert.NotEqual(t, http.StatusOK, w.Code)

	w = s.json(http.MethodGet, "/uploads/ab/missing.png", "", nil)
	requireError(t, w, http.StatusNotFound, "NOT_FOUND")
}

// bob creates Family; carol cannot invite; bob invites carol; carol can list
// members and send mail. carol's image mail is converted by bob exactly once.
func TestScenario_CircleAndMail(t *testing.T) {
	s := newTestServer(t)
	bob := s.login("bob")
	carol := s.login("carol")
	s.login("dave")

	w := s.json(http.MethodPost, "/api/circles", bob, gin.H{"name": "Family"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var circle struct {
		ID          int64 `json:"id"`
		MemberCount int   `json:"memberCount"`
	}
	decode(t, w, &circle)
	assert.Equal(t, 1, circle.MemberCount)
	members := fmt.Sprintf("/api/circles/%d/members", circle.ID)

	w = s.json(http.MethodPost, members, carol, gin.H{"username": "dave"})
	requireError(t, w, http.StatusForbidden, service.CodeAdminRequired)

	w = s.json(http.MethodGet, members, carol, nil)
	requireError(t, w, http.StatusForbidden, service.CodeNotMember)

	w = s.json(http.MethodPost, members, bob, gin.H{"username": "carol"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.json(http.MethodPost, members, bob, gin.H{"username": "carol"})
	requireError(t, w, http.StatusConflict, service.CodeAlreadyMember)

	w = s.json(http.MethodPost, members, bob, gin.H{"username": "nobody"})
	requireError(t, w, http.StatusNotFound, service.CodeUserNotFound)

	w = s.json(http.MethodGet, members, carol, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var memberList []struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	decode(t, w, &memberList)
	require.Len(t, memberList, 2)
	assert.Equal(t, "bob", memberList[0].Username)
	assert.Equal(t, "admin", memberList[0].Role)
	assert.Equal(t, "carol", memberList[1].Username)
	assert.Equal(t, "member", memberList[1].Role)

	w = s.json(http.MethodGet, "/api/circles", carol, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"memberCount":2`)

	circleID := fmt.Sprint(circle.ID)
	w = s.multipart("/api/mail", carol, map[string]string{"circleId": circleID}, pngBytes)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var mail struct {
		ID        int64   `json:"id"`
		MediaPath *string `json:"mediaPath"`
		MediaURL  *string `json:"mediaUrl"`
	}
	decode(t, w, &mail)
	require.NotNil(t, mail.MediaPath)
	require.NotNil(t, mail.MediaURL)
	assert.Equal(t, "/uploads/"+*mail.MediaPath, *mail.MediaURL)

	w = s.multipart("/api/mail", carol, map[string]string{"content": "no circle"}, nil)
	requireError(t, w, http.StatusBadRequest, service.CodeInvalidRequest)

	convert := fmt.Sprintf("/api/mail/%d/convert", mail.ID)
	w = s.json(http.MethodPost, convert, bob, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var converted struct {
		MagnetID int64  `json:"magnetId"`
		FilePath string `json:"filePath"`
		FileType string `json:"fileType"`
		Caption  string `json:"caption"`
		URL      string `json:"url"`
	}
	decode(t, w, &converted)
	assert.Equal(t, *mail.MediaURL, converted.URL)
	assert.Equal(t, "Mail from carol", converted.Caption)
	assert.Equal(t, *mail.MediaPath, converted.FilePath)
	assert.Equal(t, "image", converted.FileType)

	w = s.json(http.MethodGet, "/api/magnets", bob, nil)
	var bobMagnets []magnetJSON
	decode(t, w, &bobMagnets)
	require.Len(t, bobMagnets, 1)
	assert.Equal(t, converted.MagnetID, bobMagnets[0].ID)
	assert.Equal(t, "Mail from carol", *bobMagnets[0].Caption)

	w = s.json(http.MethodGet, "/api/mail", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inbox []struct {
		ID                  int64  `json:"id"`
		IsConvertedToMagnet bool   `json:"isConvertedToMagnet"`
		FromUsername        string `json:"fromUsername"`
		MediaURL            string `json:"mediaUrl"`
		CircleName          string `json:"circleName"`
	}
	decode(t, w, &inbox)
	require.Len(t, inbox, 1)
	assert.True(t, inbox[0].IsConvertedToMagnet)
	assert.Equal(t, "carol", inbox[0].FromUsername)
	assert.Equal(t, "Family", inbox[0].CircleName)
	assert.Equal(t, *mail.MediaURL, inbox[0].MediaURL)

	w = s.json(http.MethodPost, convert, bob, nil)
	requireError(t, w, http.StatusBadRequest, service.CodeAlreadyConverted)

	w = s.json(http.MethodGet, "/api/magnets", bob, nil)
	decode(t, w, &bobMagnets)
	assert.Len(t, bobMagnets, 1)

	w = s.json(http.MethodPost, "/api/mail/9999/convert", bob, nil)
	requireError(t, w, http.StatusNotFound, service.CodeMailNotFound)
}

func TestCalendarRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice")

	w := s.json(http.MethodPost, "/api/calendar", alice, gin.H{"title": "Trip", "date": "2026-12-20"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.json(http.MethodPost, "/api/calendar", alice, gin.H{"title": "Again", "date": "2026-12-21"})
	body := requireError(t, w, http.StatusBadRequest, service.CodeLimitReached)
	assert.Equal(t, "Maximum 1 calendar event allowed", body.Error.Message)

	w = s.json(http.MethodPut, "/api/calendar", alice, gin.H{"title": "Party", "date": "2027-01-01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ev struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &ev)

	w = s.json(http.MethodGet, "/api/calendar", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Party"`)
	assert.NotContains(t, w.Body.String(), `"title":"Trip"`)

	w = s.json(http.MethodDelete, fmt.Sprintf("/api/calendar/%d", ev.ID), alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":1}`, w.Body.String())

	w = s.json(http.MethodDelete, "/api/calendar/abc", alice, nil)
	requireError(t, w, http.StatusBadRequest, "INVALID_ID")
}

func TestWeatherAlwaysAnswers(t *testing.T) {
	s := newTestServer(t)

	w := s.json(http.MethodGet, "/api/weather?zip=nope", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var r weather.Report
	decode(t, w, &r)
	assert.Equal(t, weather.SourcePlaceholder, r.Source)
	assert.Equal(t, "Sunny", r.Condition)
}

func TestRequestLoggerRecordsUser(t *testing.T) {
	var buf bytes.Buffer
	gin.SetMode(gin.TestMode)
	r := gin.New()
	sessions := session.NewMemoryStore()
	require.NoError(t, sessions.Put(context.Background(), "tok", 7))
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/x", RequireAuth(sessions), func(c *gin.Context) { c.Status(http.StatusTeapot) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(SessionHeader, "tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	out := buf.String()
	assert.True(t, strings.Contains(out, `"user_id":7`), out)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestMalformedBodiesGetFixedMessages(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice")

	cases := []struct {
		method, path, body, message string
	}{
		{http.MethodPost, "/api/circles/1/members", `{"username":5}`, "Username required"},
		{http.MethodPost, "/api/circles", `{"name":["Family"]}`, "Circle name required"},
		{http.MethodPost, "/api/calendar", `{"title":1,"date":"2026-12-20"}`, "Title and date required"},
		{http.MethodPut, "/api/calendar", `{"title":"Trip","date":20261220}`, "Title and date required"},
		{http.MethodPut, "/api/config", `{"fridgeColor":true}`, "fridgeColor and handlePosition must be strings"},
		{http.MethodPut, "/api/magnets/1", `{"positionX":"left","positionY":0,"rotation":0}`, "positionX, positionY and rotation are required"},
		{http.MethodPost, "/api/register", `{"username":7,"pin":"1234"}`, "Username and PIN required"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(SessionHeader, alice)
			w := s.do(req)

			body := requireError(t, w, http.StatusBadRequest, "INVALID_REQUEST")
			assert.Equal(t, tc.message, body.Error.Message)
			assert.NotContains(t, w.Body.String(), "Go struct")
		})
	}
}

func TestBindErrorsReachRequestLog(t *testing.T) {
	var buf bytes.Buffer
	gin.SetMode(gin.TestMode)
	sessions := session.NewMemoryStore()
	require.NoError(t, sessions.Put(context.Background(), "tok", 1))

	r := NewRouter(RouterConfig{
		Logger:   zerolog.New(&buf),
		Sessions: sessions,
		Storage:  storage.NewLocalStorageFs(afero.NewMemMapFs()),
		Circles:  service.NewCircleService(),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/circles/1/members", strings.NewReader(`{"username":5}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SessionHeader, "tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, buf.String(), "cannot unmarshal number")
}
