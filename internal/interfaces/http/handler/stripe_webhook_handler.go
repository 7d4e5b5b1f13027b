package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	billingapp "github.com/planhub/backend/internal/application/billing"
	"github.com/planhub/backend/internal/interfaces/http/dto"
)

// Maximum webhook payload size (64KB - Stripe webhooks are typically small)
const maxWebhookPayloadSize = 65536

// StripeWebhookHandler handles Stripe webhook endpoints
// These endpoints are called by Stripe and do not require authentication
type StripeWebhookHandler struct {
	BaseHandler
	webhookService *billingapp.WebhookService
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(webhookService *billingapp.WebhookService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		webhookService: webhookService,
	}
}

// StripeWebhookResponse represents the response for Stripe webhook
//
//	@Description	Stripe webhook response
type StripeWebhookResponse struct {
	Received  bool   `json:"received" example:"true"`
	EventID   string `json:"event_id,omitempty" example:"evt_1234567890"`
	EventType string `json:"event_type,omitempty" example:"customer.subscription.updated"`
	Message   string `json:"message,omitempty" example:"Webhook processed successfully"`
}

// HandleStripeWebhook godoc
//
//	@ID				handleStripeWebhook
//	@Summary		Handle Stripe webhook
//	@Description	Receive and process webhook events from Stripe for subscription reconciliation
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header		string					true	"Stripe webhook signature"
//	@Success		200					{object}	StripeWebhookResponse	"Webhook processed successfully"
//	@Failure		400					{object}	dto.Response			"Invalid request"
//	@Failure		401					{object}	dto.Response			"Invalid signature"
//	@Failure		413					{object}	dto.Response			"Payload too large"
//	@Router			/webhooks/stripe [post]
func (h *StripeWebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// Read the raw request body with size limit to prevent DoS attacks
	// Stripe requires the raw body for signature verification
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	// Check if payload exceeds size limit
	if len(payload) > maxWebhookPayloadSize {
		h.PayloadTooLarge(c, "Payload too large")
		return
	}

	// Get signature from header
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		h.ErrorWithCode(c, dto.ErrCodeInvalidSignature, "Missing Stripe-Signature header")
		return
	}

	// Process the webhook
	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		// A nil result means the event was rejected outright (bad signature)
		if result == nil {
			h.ErrorWithCode(c, dto.ErrCodeInvalidSignature, "Webhook signature verification failed")
			return
		}

		// Handler failures are acknowledged with 200 so Stripe does not retry
		// an event that will fail the same way every time
		// Note: Don't expose internal error details in response for security
		c.JSON(http.StatusOK, StripeWebhookResponse{
			Received:  true,
			EventID:   result.EventID,
			EventType: result.EventType,
			Message:   "Webhook received but processing encountered an issue",
		})
		return
	}

	c.JSON(http.StatusOK, StripeWebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Message:   result.Message,
	})
}
