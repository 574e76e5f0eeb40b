package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigil-backend/internal/mailer"
	"github.com/vigilo-labs/vigil-backend/internal/model"
	"github.com/vigilo-labs/vigil-backend/internal/repository"
)

// SupportService stores contact and problem-report messages from
// authenticated users and forwards them to the support inbox.
type SupportService struct {
	messages *repository.SupportRepository
	mail     *mailer.Mailer
	inbox    string
	log      zerolog.Logger
}

// NewSupportService creates a new SupportService.
func NewSupportService(messages *repository.SupportRepository, mail *mailer.Mailer, inbox string, log zerolog.Logger) *SupportService {
	return &SupportService{
		messages: messages,
		mail:     mail,
		inbox:    inbox,
		log:      log.With().Str("component", "support_service").Logger(),
	}
}

// Submit stores one support message under the given category. The
// message is persisted first; a failed forward is logged, not returned,
// so the submission never bounces on a mail outage.
func (s *SupportService) Submit(ctx context.Context, userID int, category string, req *model.ContactRequest) (*model.SupportMessage, error) {
	msg := &model.SupportMessage{
		UserID:   userID,
		Category: category,
		Name:     req.Name,
		Email:    req.Email,
		Message:  req.Message,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("store support message: %w", err)
	}

	if err := s.mail.SendSupportNotice(s.inbox, category, req.Name, req.Email, req.Message); err != nil {
		s.log.Error().Err(err).Int64("id", msg.ID).Msg("Failed to forward support message")
	}

	s.log.Info().Int64("id", msg.ID).Int("user_id", userID).Str("category", category).Msg("Support message received")
	return msg, nil
}
