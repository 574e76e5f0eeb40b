package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vigilo-labs/vigil-backend/internal/csvimport"
	"github.com/vigilo-labs/vigil-backend/internal/middleware"
	"github.com/vigilo-labs/vigil-backend/internal/model"
	"github.com/vigilo-labs/vigil-backend/internal/repository"
	"github.com/vigilo-labs/vigil-backend/internal/response"
	"github.com/vigilo-labs/vigil-backend/internal/service"
	"github.com/vigilo-labs/vigil-backend/internal/validator"
)

// TestHandler handles the professor surface: scheduling tests,
// editing questions, sharing, grading and publishing results.
type TestHandler struct {
	testService *service.TestService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService *service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// CreateObjective godoc
// POST /api/v1/tests/create-test-lqa
func (h *TestHandler) CreateObjective(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateObjectiveTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.CreateObjective(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		h.failTest(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// CreateObjectiveCSV godoc
// POST /api/v1/tests/create-test-csv
// Multipart variant: test metadata as form fields, questions as an
// uploaded CSV.
func (h *TestHandler) CreateObjectiveCSV(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	file, _, err := c.Request.FormFile("questions")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	defer file.Close()

	questions, err := csvimport.ParseObjectiveQuestions(file)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload,
			map[string]string{"questions": err.Error()})
		return
	}

	req, fields := bindTestMetaForm(c)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	req.Questions = questions

	test, err := h.testService.CreateObjective(c.Request.Context(), claims.UserID, req)
	if err != nil {
		h.failTest(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"test": test, "imported": len(questions)})
}

// CreateSubjective godoc
// POST /api/v1/tests/create-test-subjective
func (h *TestHandler) CreateSubjective(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateSubjectiveTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.CreateSubjective(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		h.failTest(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// CreatePractical godoc
// POST /api/v1/tests/create-test-practical
func (h *TestHandler) CreatePractical(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreatePracticalTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.CreatePractical(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		h.failTest(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// History godoc
// GET /api/v1/tests/history
func (h *TestHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	tests, err := h.testService.ListHistory(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if tests == nil {
		tests = []model.Test{}
	}
	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// Questions godoc
// GET /api/v1/tests/:test_id/questions
// Returns the full question set with answer keys.
func (h *TestHandler) Questions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	questions, err := h.testService.ListQuestions(c.Request.Context(), claims.UserID, c.Param("test_id"))
	if err != nil {
		h.failTest(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// ReplaceQuestions godoc
// PUT /api/v1/tests/:test_id/questions
// Swaps the question set of an objective test before its window opens.
func (h *TestHandler) ReplaceQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req struct {
		Questions []model.ObjectiveQuestionInput `json:"questions" binding:"required,min=1,dive"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.testService.ReplaceObjectiveQuestions(c.Request.Context(), claims.UserID, c.Param("test_id"), req.Questions); err != nil {
		h.failTest(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "replaced"})
}

// DeleteQuestion godoc
// DELETE /api/v1/tests/:test_id/questions/:qid
// Removes one objective question before the window opens.
func (h *TestHandler) DeleteQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	qid, err := strconv.Atoi(c.Param("qid"))
	if err != nil || qid < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.testService.DeleteObjectiveQuestion(c.Request.Context(), claims.UserID, c.Param("test_id"), qid); err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
			return
		}
		h.failTest(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

// Students godoc
// GET /api/v1/tests/:test_id/students
// Lists every attempt on a test with the student accounts.
func (h *TestHandler) Students(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	students, err := h.testService.ListStudents(c.Request.Context(), claims.UserID, c.Param("test_id"))
	if err != nil {
		h.failTest(c, err)
		return
	}
	if students == nil {
		students = []repository.StudentAttempt{}
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// Share godoc
// POST /api/v1/tests/share
// Emails the test ID and password to students.
func (h *TestHandler) Share(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ShareTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.testService.Share(c.Request.Context(), claims.UserID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrTestNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrInvalidTestID)
		case errors.Is(err, service.ErrNotOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		default:
			response.Fail(c, http.StatusBadGateway, response.ErrDependencyFailed)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "shared"})
}

// UploadMarks godoc
// POST /api/v1/tests/marks
// Records externally graded totals keyed by student email.
func (h *TestHandler) UploadMarks(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.UploadMarksRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	skipped, err := h.testService.UploadMarks(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMarks) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		h.failTest(c, err)
		return
	}
	if skipped == nil {
		skipped = []string{}
	}
	response.Success(c, http.StatusOK, gin.H{"status": "recorded", "skipped_emails": skipped})
}

// Answers godoc
// GET /api/v1/tests/:test_id/answers
// Returns every answer of a test for grading.
func (h *TestHandler) Answers(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	answers, err := h.testService.ListAnswers(c.Request.Context(), claims.UserID, c.Param("test_id"))
	if err != nil {
		h.failTest(c, err)
		return
	}
	if answers == nil {
		answers = []model.Answer{}
	}
	response.Success(c, http.StatusOK, gin.H{"answers": answers})
}

// GradeSubjective godoc
// POST /api/v1/tests/:test_id/grade
// Sets marks on one subjective answer and recomputes the total.
func (h *TestHandler) GradeSubjective(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req struct {
		StudentID int     `json:"student_id" binding:"required"`
		QID       int     `json:"qid" binding:"required"`
		Marks     float64 `json:"marks"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.testService.GradeSubjective(c.Request.Context(), claims.UserID, c.Param("test_id"), req.StudentID, req.QID, req.Marks); err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
			return
		}
		h.failTest(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "graded"})
}

// ViewResults godoc
// GET /api/v1/tests/:test_id/results
func (h *TestHandler) ViewResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.testService.ViewResults(c.Request.Context(), claims.UserID, c.Param("test_id"))
	if err != nil {
		h.failTest(c, err)
		return
	}
	if results == nil {
		results = []model.StudentResult{}
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// PublishResults godoc
// POST /api/v1/tests/:test_id/publish-results
func (h *TestHandler) PublishResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.testService.PublishResults(c.Request.Context(), claims.UserID, c.Param("test_id")); err != nil {
		h.failTest(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "published"})
}

func (h *TestHandler) failTest(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTestNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrInvalidTestID)
	case errors.Is(err, service.ErrNotOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrEditLocked):
		response.Fail(c, http.StatusConflict, response.ErrEditLocked)
	case errors.Is(err, service.ErrInsufficientCredits):
		response.Fail(c, http.StatusPaymentRequired, response.ErrInsufficientCredits)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// bindTestMetaForm reads objective test metadata from multipart form
// fields. Returns a field error map in the validator's shape when a
// required field is missing or malformed.
func bindTestMetaForm(c *gin.Context) (*model.CreateObjectiveTestRequest, map[string]string) {
	var form struct {
		Subject         string `form:"subject" binding:"required"`
		Topic           string `form:"topic" binding:"required"`
		StartAt         string `form:"start_at" binding:"required"`
		EndAt           string `form:"end_at" binding:"required"`
		DurationSeconds int    `form:"duration_seconds" binding:"required,min=60"`
		Password        string `form:"password" binding:"required,min=4,max=50"`
		ProctorMode     string `form:"proctor_mode" binding:"required,oneof=automated live"`
		NegativeMarking bool   `form:"negative_marking"`
	}
	if err := c.ShouldBind(&form); err != nil {
		return nil, validator.TranslateErrors(err)
	}

	startAt, err := parseFormTime(form.StartAt)
	if err != nil {
		return nil, map[string]string{"start_at": "must be an RFC 3339 timestamp"}
	}
	endAt, err := parseFormTime(form.EndAt)
	if err != nil {
		return nil, map[string]string{"end_at": "must be an RFC 3339 timestamp"}
	}
	if !endAt.After(startAt) {
		return nil, map[string]string{"end_at": "must be after start_at"}
	}

	return &model.CreateObjectiveTestRequest{
		Subject:         form.Subject,
		Topic:           form.Topic,
		StartAt:         startAt,
		EndAt:           endAt,
		DurationSeconds: form.DurationSeconds,
		Password:        form.Password,
		ProctorMode:     form.ProctorMode,
		NegativeMarking: form.NegativeMarking,
	}, nil
}

func parseFormTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}
