package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigilo-labs/vigil-backend/internal/ai"
	"github.com/vigilo-labs/vigil-backend/internal/middleware"
	"github.com/vigilo-labs/vigil-backend/internal/response"
	"github.com/vigilo-labs/vigil-backend/internal/service"
	"github.com/vigilo-labs/vigil-backend/internal/validator"
)

// AIHandler exposes Gemini-backed authoring and reporting tools to
// professors.
type AIHandler struct {
	aiService      *ai.Service
	testService    *service.TestService
	monitorService *service.MonitorService
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(aiService *ai.Service, testService *service.TestService, monitorService *service.MonitorService) *AIHandler {
	return &AIHandler{
		aiService:      aiService,
		testService:    testService,
		monitorService: monitorService,
	}
}

// GenerateQuestions godoc
// POST /api/v1/ai/generate-questions
// Drafts multiple choice questions for review; nothing is stored.
func (h *AIHandler) GenerateQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req struct {
		Subject string `json:"subject" binding:"required,min=1,max=200"`
		Topic   string `json:"topic" binding:"required,min=1,max=200"`
		Count   int    `json:"count" binding:"required,min=1,max=30"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.aiService.GenerateQuestions(c.Request.Context(), req.Subject, req.Topic, req.Count)
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrDependencyFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Report godoc
// POST /api/v1/ai/report
// Summarizes an owned test's proctoring log into an integrity report.
func (h *AIHandler) Report(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req struct {
		TestID string `json:"test_id" binding:"required"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.GetOwned(c.Request.Context(), claims.UserID, req.TestID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTestNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrInvalidTestID)
		case errors.Is(err, service.ErrNotOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	entries, err := h.monitorService.Logs(c.Request.Context(), req.TestID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	report, err := h.aiService.GenerateReport(c.Request.Context(), test.Subject, test.Topic, entries)
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrDependencyFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}
