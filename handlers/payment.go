package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"eventra/config"
	"eventra/models"
	"eventra/services/booking"
	"eventra/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// PaymentWebhookHandler consumes payment-settled signals from the payment
// collaborator. Settlement is applied through the state machine, which makes
// duplicate or replayed deliveries a harmless no-op.
type PaymentWebhookHandler struct {
	Svc booking.LedgerService
}

// NewPaymentWebhookHandler constructs a PaymentWebhookHandler.
func NewPaymentWebhookHandler(svc booking.LedgerService) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{Svc: svc}
}

// HandleStripeWebhook verifies the event signature and applies
// payment_intent.succeeded to the referenced booking.
func (h *PaymentWebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<16))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), config.AppConfig.StripeWebhookSecret)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid signature", "webhook signature verification failed")
		return
	}

	if event.Type != "payment_intent.succeeded" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload", "malformed payment intent")
		return
	}
	bookingID := intent.Metadata["booking_id"]
	if bookingID == "" {
		zap.L().Warn("payment intent without booking reference", zap.String("intentId", intent.ID))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if _, err := h.Svc.Transition(c.Request.Context(), bookingID, models.EventPaymentSettled); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "settled"})
}
