package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigil-backend/internal/middleware"
	"github.com/vigilo-labs/vigil-backend/internal/service"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// LiveHandler streams a test's proctoring events to the professor's
// live monitoring view over WebSocket.
type LiveHandler struct {
	monitorService *service.MonitorService
	testService    *service.TestService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewLiveHandler creates a new LiveHandler.
func NewLiveHandler(monitorService *service.MonitorService, testService *service.TestService, log zerolog.Logger, allowedOrigins []string) *LiveHandler {
	return &LiveHandler{
		monitorService: monitorService,
		testService:    testService,
		log:            log.With().Str("component", "live_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws/v1/proctor/tests/:test_id/stream?token=...
// Upgrades to WebSocket and forwards live proctoring events from the
// test's Pub/Sub channel until the client disconnects.
func (h *LiveHandler) Stream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	testID := c.Param("test_id")
	if _, err := h.testService.GetOwned(c.Request.Context(), claims.UserID, testID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "test not found or not yours"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("professor_id", claims.UserID).
		Str("test_id", testID).
		Logger()
	wsLog.Info().Msg("Monitor connected")

	ctx := c.Request.Context()
	sub := h.monitorService.Subscribe(ctx, testID)
	defer sub.Close()

	// Reader goroutine: drains control frames and signals disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-done:
			wsLog.Debug().Msg("Monitor disconnected")
			return
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, closing stream")
				return
			}
		}
	}
}
