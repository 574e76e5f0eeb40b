package model

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
)

// User represents a platform account. Students carry a reference face
// image for identity checks; professors carry an exam credit balance.
type User struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	FaceImage    string     `json:"face_image,omitempty"`
	LoggedIn     bool       `json:"logged_in"`
	ExamCredits  int        `json:"exam_credits"`
	ResetToken   *string    `json:"-"`
	ResetExpires *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// RegisterRequest is the payload for starting account registration.
// The account is only created after OTP verification.
type RegisterRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	Role      string `json:"role" binding:"required,oneof=student professor"`
	FaceImage string `json:"face_image"`
}

// VerifyOTPRequest confirms a pending registration.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

// LoginRequest is the payload for logging in. Force evicts an existing
// session by resetting the login flag before acquiring it.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Force    bool   `json:"force"`
}

// ForgotPasswordRequest starts a password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset flow.
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// ChangePasswordRequest swaps the password for a logged-in account.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}
