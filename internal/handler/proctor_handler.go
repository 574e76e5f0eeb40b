package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigilo-labs/vigil-backend/internal/middleware"
	"github.com/vigilo-labs/vigil-backend/internal/model"
	"github.com/vigilo-labs/vigil-backend/internal/response"
	"github.com/vigilo-labs/vigil-backend/internal/service"
	"github.com/vigilo-labs/vigil-backend/internal/validator"
)

// ProctorHandler handles the violation pipeline: student-side event
// ingestion and professor-side monitoring views.
type ProctorHandler struct {
	monitorService *service.MonitorService
	testService    *service.TestService
}

// NewProctorHandler creates a new ProctorHandler.
func NewProctorHandler(monitorService *service.MonitorService, testService *service.TestService) *ProctorHandler {
	return &ProctorHandler{
		monitorService: monitorService,
		testService:    testService,
	}
}

// VideoFeed godoc
// POST /api/v1/proctor/video-feed
// Ingests a camera frame outcome. Clean frames double as liveness
// pings.
func (h *ProctorHandler) VideoFeed(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.VideoFeedRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.monitorService.RecordVideoFeed(c.Request.Context(), claims.UserID, &req); err != nil {
		if errors.Is(err, service.ErrTestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrInvalidTestID)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "recorded"})
}

// WindowEvent godoc
// POST /api/v1/proctor/window-event
// Ingests a browser window integrity event (tab switch, fullscreen
// exit).
func (h *ProctorHandler) WindowEvent(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.WindowEventRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.monitorService.RecordWindowEvent(c.Request.Context(), claims.UserID, &req); err != nil {
		if errors.Is(err, service.ErrTestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrInvalidTestID)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "recorded"})
}

// Logs godoc
// GET /api/v1/proctor/logs/:test_id
// Returns the persisted event log of an owned test.
func (h *ProctorHandler) Logs(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID := c.Param("test_id")
	if _, err := h.testService.GetOwned(c.Request.Context(), claims.UserID, testID); err != nil {
		h.failOwnership(c, err)
		return
	}

	entries, err := h.monitorService.Logs(c.Request.Context(), testID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if entries == nil {
		entries = []model.MonitorEntry{}
	}
	response.Success(c, http.StatusOK, gin.H{"events": entries})
}

// ViolationCounts godoc
// GET /api/v1/proctor/violations/:test_id
// Returns per-student violation totals for an owned test.
func (h *ProctorHandler) ViolationCounts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID := c.Param("test_id")
	if _, err := h.testService.GetOwned(c.Request.Context(), claims.UserID, testID); err != nil {
		h.failOwnership(c, err)
		return
	}

	counts, err := h.monitorService.ViolationCounts(c.Request.Context(), testID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"violations": counts})
}

func (h *ProctorHandler) failOwnership(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTestNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrInvalidTestID)
	case errors.Is(err, service.ErrNotOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
