package model

import "time"

// Support message categories.
const (
	SupportCategoryContact = "contact"
	SupportCategoryReport  = "report"
)

// SupportMessage is a stored contact/support request.
type SupportMessage struct {
	ID        int64     `json:"id"`
	UserID    int       `json:"user_id"`
	Category  string    `json:"category"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactRequest is the payload for submitting a support message.
type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required,min=1,max=5000"`
}
