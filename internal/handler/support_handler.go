package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigilo-labs/vigil-backend/internal/middleware"
	"github.com/vigilo-labs/vigil-backend/internal/model"
	"github.com/vigilo-labs/vigil-backend/internal/response"
	"github.com/vigilo-labs/vigil-backend/internal/service"
	"github.com/vigilo-labs/vigil-backend/internal/validator"
)

// SupportHandler handles contact and problem-report submissions.
type SupportHandler struct {
	supportService *service.SupportService
}

// NewSupportHandler creates a new SupportHandler.
func NewSupportHandler(supportService *service.SupportService) *SupportHandler {
	return &SupportHandler{supportService: supportService}
}

// Contact godoc
// POST /api/v1/support/contact
func (h *SupportHandler) Contact(c *gin.Context) {
	h.submit(c, model.SupportCategoryContact)
}

// Report godoc
// POST /api/v1/support/report
func (h *SupportHandler) Report(c *gin.Context) {
	h.submit(c, model.SupportCategoryReport)
}

func (h *SupportHandler) submit(c *gin.Context, category string) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ContactRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	msg, err := h.supportService.Submit(c.Request.Context(), claims.UserID, category, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}
