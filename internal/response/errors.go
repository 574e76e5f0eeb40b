package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrAlreadyLoggedIn    ErrCode = "ALREADY_LOGGED_IN"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrInvalidOTP         ErrCode = "INVALID_OTP"
	ErrUserExists         ErrCode = "USER_EXISTS"
	ErrResetTokenInvalid  ErrCode = "RESET_TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden           ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly   ErrCode = "STUDENT_ACCESS_ONLY"
	ErrProfessorAccessOnly ErrCode = "PROFESSOR_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam-taking ───────────────────────────────────────────────────
	ErrInvalidTestID       ErrCode = "INVALID_TEST_ID"
	ErrInvalidTestPassword ErrCode = "INVALID_TEST_PASSWORD"
	ErrWindowClosed        ErrCode = "WINDOW_CLOSED"
	ErrLivenessFailed      ErrCode = "LIVENESS_FAILED"
	ErrAttemptNotActive    ErrCode = "ATTEMPT_NOT_ACTIVE"
	ErrQuestionNotFound    ErrCode = "QUESTION_NOT_FOUND"
	ErrEditLocked          ErrCode = "EDIT_LOCKED"
	ErrInsufficientCredits ErrCode = "INSUFFICIENT_CREDITS"

	// ─── External collaborators ────────────────────────────────────────
	ErrDependencyFailed ErrCode = "DEPENDENCY_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrAlreadyLoggedIn:
		return "This account is already logged in elsewhere."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."
	case ErrInvalidOTP:
		return "The verification code is incorrect or has expired."
	case ErrUserExists:
		return "An account with this email already exists."
	case ErrResetTokenInvalid:
		return "The password reset link is invalid or has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrProfessorAccessOnly:
		return "This resource is restricted to professors."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid identifier format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Exam-taking ───────────────────────────────────────────────────
	case ErrInvalidTestID:
		return "No test exists with this ID."
	case ErrInvalidTestPassword:
		return "The test password is incorrect."
	case ErrWindowClosed:
		return "The test is not open at this time."
	case ErrLivenessFailed:
		return "Face verification failed."
	case ErrAttemptNotActive:
		return "There is no active attempt for this test."
	case ErrQuestionNotFound:
		return "No such question in this test."
	case ErrEditLocked:
		return "Questions cannot be modified while the exam window is open."
	case ErrInsufficientCredits:
		return "Not enough exam credits. Please top up."

	// ─── External collaborators ────────────────────────────────────────
	case ErrDependencyFailed:
		return "An external service failed. Please try again."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
