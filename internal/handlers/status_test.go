package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-client/internal/chat"
)

type stubReporter struct {
	state    chat.State
	attempts int
}

func (s stubReporter) State() chat.State { return s.state }
func (s stubReporter) Attempts() int     { return s.attempts }

func setupStatusRouter(reporter StateReporter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, reporter)
	return r
}

func TestStatusReconnecting(t *testing.T) {
	router := setupStatusRouter(stubReporter{state: chat.Reconnecting, attempts: 3})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "reconnecting", resp["state"])
	assert.Equal(t, float64(3), resp["attempts"])
	assert.Equal(t, true, resp["reconnecting"])
	assert.Equal(t, false, resp["gave_up"])
}

func TestStatusGaveUp(t *testing.T) {
	router := setupStatusRouter(stubReporter{state: chat.Failed, attempts: 10})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "failed", resp["state"])
	assert.Equal(t, true, resp["gave_up"])
	assert.Equal(t, false, resp["reconnecting"])
}

func TestMetricsEndpointServes(t *testing.T) {
	router := setupStatusRouter(stubReporter{state: chat.Connected})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chat_client_ws_connect_attempts_total")
}
