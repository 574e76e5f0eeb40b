package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigilo-labs/vigil-backend/internal/billing"
	"github.com/vigilo-labs/vigil-backend/internal/middleware"
	"github.com/vigilo-labs/vigil-backend/internal/response"
)

// Stripe recommends rejecting webhook bodies above 64KB.
const maxWebhookBody = 65536

// BillingHandler handles exam credit purchases.
type BillingHandler struct {
	billingService *billing.Service
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(billingService *billing.Service) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// CreateCheckoutSession godoc
// POST /api/v1/billing/create-checkout-session
// Starts a Stripe Checkout for one credit pack and returns the hosted
// payment URL.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	url, err := h.billingService.CreateCheckoutSession(claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrDependencyFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": url})
}

// Balance godoc
// GET /api/v1/billing/balance
func (h *BillingHandler) Balance(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	credits, err := h.billingService.Balance(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam_credits": credits})
}

// Webhook godoc
// POST /api/v1/billing/webhook
// Stripe webhook endpoint. Unauthenticated; the signature header is
// the authentication. Credits are granted here and nowhere else.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	if err := h.billingService.HandleWebhook(c.Request.Context(), payload, sig); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	c.Status(http.StatusOK)
}
