package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chat-client/internal/chat"
)

// StateReporter is the connection surface the status endpoint renders:
// enough for a UI to tell "trying to reconnect" from "gave up".
type StateReporter interface {
	State() chat.State
	Attempts() int
}

// StatusHandler serves the local debug endpoints.
type StatusHandler struct {
	conn StateReporter
}

// NewStatusHandler builds a StatusHandler.
func NewStatusHandler(conn StateReporter) *StatusHandler {
	return &StatusHandler{conn: conn}
}

// Status reports the connection state and attempt count.
func (h *StatusHandler) Status(c *gin.Context) {
	state := h.conn.State()
	c.JSON(http.StatusOK, gin.H{
		"state":        state.String(),
		"attempts":     h.conn.Attempts(),
		"reconnecting": state == chat.Reconnecting || state == chat.Connecting,
		"gave_up":      state == chat.Failed,
	})
}

// RegisterRoutes wires the status and metrics endpoints.
func RegisterRoutes(router *gin.Engine, conn StateReporter) {
	handler := NewStatusHandler(conn)
	router.GET("/status", handler.Status)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
