package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tournament-desk/internal/services"
)

type nopPublisher struct{}

func (nopPublisher) Publish(channel string, message map[string]any) {}

func newTestContext(t *testing.T, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestSessionHandler_Login(t *testing.T) {
	coordinator := services.NewCoordinator(nopPublisher{}, "secret")
	h := NewSessionHandler(coordinator)

	c, rec := newTestContext(t, http.MethodPost, `{"name":"   "}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(t, http.MethodPost, `{"name":"alice"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["session_id"])
	assert.Equal(t, "alice", body["name"])
	assert.Contains(t, body["channel"], "desk.user.")
}

func TestAdminHandler_LoginUnauthorized(t *testing.T) {
	coordinator := services.NewCoordinator(nopPublisher{}, "secret")
	lottery := services.NewLotteryService(nopPublisher{}, coordinator)
	h := NewAdminHandler(coordinator, lottery)

	c, rec := newTestContext(t, http.MethodPost, `{"password":"wrong"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMatchHandler_FindOpponentConflicts(t *testing.T) {
	coordinator := services.NewCoordinator(nopPublisher{}, "secret")
	h := NewMatchHandler(coordinator)

	session, err := coordinator.Login("alice", "")
	require.NoError(t, err)

	c, rec := newTestContext(t, http.MethodPost, `{"session_id":"`+session.ID+`"}`)
	require.NoError(t, h.FindOpponent(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newTestContext(t, http.MethodPost, `{"session_id":"`+session.ID+`"}`)
	require.NoError(t, h.FindOpponent(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	c, rec = newTestContext(t, http.MethodPost, `{"session_id":"NOPE"}`)
	require.NoError(t, h.FindOpponent(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminHandler_DrawLotteryValidation(t *testing.T) {
	coordinator := services.NewCoordinator(nopPublisher{}, "secret")
	lottery := services.NewLotteryService(nopPublisher{}, coordinator)
	h := NewAdminHandler(coordinator, lottery)

	adminID, err := coordinator.AdminLogin("secret")
	require.NoError(t, err)

	c, rec := newTestContext(t, http.MethodPost,
		`{"admin_id":"`+adminID+`","title":"Prize","pool":["a","b"],"count":5}`)
	require.NoError(t, h.DrawLottery(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(t, http.MethodPost,
		`{"admin_id":"NOPE","title":"Prize","pool":["a","b"],"count":1}`)
	require.NoError(t, h.DrawLottery(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newTestContext(t, http.MethodPost,
		`{"admin_id":"`+adminID+`","title":"Prize","pool":["a","b"],"count":1}`)
	require.NoError(t, h.DrawLottery(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Prize", body["title"])
}
