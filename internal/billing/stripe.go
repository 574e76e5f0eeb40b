package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/vigilo-labs/vigil-backend/internal/repository"
)

const (
	creditsPerPurchase = 10
	unitAmountPaise    = 49900
)

// Service sells exam credit packs through Stripe Checkout. Credits are
// only granted from the webhook, never from the redirect, so a user
// cannot forge a successful payment.
type Service struct {
	webhookSecret string
	successURL    string
	cancelURL     string
	users         *repository.UserRepository
	log           zerolog.Logger
}

// NewService configures the Stripe client and returns the billing
// service.
func NewService(secretKey, webhookSecret, successURL, cancelURL string, users *repository.UserRepository, log zerolog.Logger) *Service {
	stripe.Key = secretKey
	return &Service{
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
		users:         users,
		log:           log.With().Str("component", "billing").Logger(),
	}
}

// CreateCheckoutSession starts a checkout for one credit pack and
// returns the hosted payment page URL.
func (s *Service) CreateCheckoutSession(userID int) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyINR)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Exam Credits"),
					},
					UnitAmount: stripe.Int64(unitAmountPaise),
				},
				Quantity: stripe.Int64(creditsPerPurchase),
			},
		},
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(strconv.Itoa(userID)),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

// Balance returns the current exam credit balance of an account.
func (s *Service) Balance(ctx context.Context, userID int) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load account: %w", err)
	}
	return user.ExamCredits, nil
}

// HandleWebhook verifies a Stripe webhook signature and grants credits
// when a checkout completes.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		return fmt.Errorf("webhook signature verification failed: %w", err)
	}

	if event.Type != "checkout.session.completed" {
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	userID, err := strconv.Atoi(sess.ClientReferenceID)
	if err != nil {
		return fmt.Errorf("invalid client reference id %q: %w", sess.ClientReferenceID, err)
	}

	if err := s.users.AddCredits(ctx, userID, creditsPerPurchase); err != nil {
		return fmt.Errorf("failed to grant credits: %w", err)
	}

	s.log.Info().Int("user_id", userID).Int("credits", creditsPerPurchase).Msg("Credits granted")
	return nil
}
