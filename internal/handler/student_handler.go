package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigilo-labs/vigil-backend/internal/middleware"
	"github.com/vigilo-labs/vigil-backend/internal/model"
	"github.com/vigilo-labs/vigil-backend/internal/repository"
	"github.com/vigilo-labs/vigil-backend/internal/response"
	"github.com/vigilo-labs/vigil-backend/internal/service"
	"github.com/vigilo-labs/vigil-backend/internal/validator"
)

// StudentHandler handles the exam-taking surface: the entry gate, the
// unified in-exam action endpoint and the attempt history.
type StudentHandler struct {
	attemptService *service.AttemptService
	answerService  *service.AnswerService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(attemptService *service.AttemptService, answerService *service.AnswerService) *StudentHandler {
	return &StudentHandler{
		attemptService: attemptService,
		answerService:  answerService,
	}
}

// GiveTest godoc
// POST /api/v1/student/give-test
// Runs the entry gate (test, password, window, identity) and starts or
// resumes the attempt.
func (h *StudentHandler) GiveTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.GiveTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	entry, err := h.attemptService.GiveTest(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTestNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrInvalidTestID)
		case errors.Is(err, service.ErrInvalidTestPassword):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidTestPassword)
		case errors.Is(err, service.ErrWindowClosed):
			response.Fail(c, http.StatusForbidden, response.ErrWindowClosed)
		case errors.Is(err, service.ErrLivenessFailed):
			response.Fail(c, http.StatusForbidden, response.ErrLivenessFailed)
		case errors.Is(err, service.ErrFaceCheckUnavailable):
			response.Fail(c, http.StatusBadGateway, response.ErrDependencyFailed)
		case errors.Is(err, service.ErrAlreadySubmitted):
			response.Fail(c, http.StatusConflict, response.ErrAttemptNotActive)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, entry)
}

// TestAction godoc
// POST /api/v1/student/test
// Unified in-exam endpoint. The flag field selects the operation:
// get, mark, bookmark or submit.
func (h *StudentHandler) TestAction(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.TestActionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ctx := c.Request.Context()
	switch req.Flag {
	case "get":
		entry, err := h.attemptService.GetState(ctx, claims.UserID, req.TestID)
		if err != nil {
			h.failAttempt(c, err)
			return
		}
		response.Success(c, http.StatusOK, entry)

	case "mark":
		answer, err := h.answerService.Record(ctx, claims.UserID, req.TestID, req.QID, req.Answer)
		if err != nil {
			h.failAttempt(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"qid": answer.QID, "status": "saved"})

	case "bookmark":
		add := req.Bookmark != "remove"
		if err := h.attemptService.Bookmark(ctx, claims.UserID, req.TestID, req.QID, add); err != nil {
			h.failAttempt(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"qid": req.QID, "status": "ok"})

	case "submit":
		result, err := h.attemptService.Submit(ctx, claims.UserID, req.TestID)
		if err != nil {
			h.failAttempt(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"result": result})

	default:
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	}
}

// History godoc
// GET /api/v1/student/history
// Returns the student's attempts. Totals of unpublished tests are
// withheld.
func (h *StudentHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	history, err := h.attemptService.ListHistory(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if history == nil {
		history = []repository.AttemptHistory{}
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": history})
}

func (h *StudentHandler) failAttempt(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTestNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrInvalidTestID)
	case errors.Is(err, service.ErrAttemptNotActive):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotActive)
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
	case errors.Is(err, service.ErrGradingFailed):
		response.Fail(c, http.StatusBadGateway, response.ErrDependencyFailed)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
