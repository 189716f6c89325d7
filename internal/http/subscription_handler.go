package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"newsletter/internal/service"
)

// SubscriptionHandler mantiene dependencias para los endpoints de suscripcion.
type SubscriptionHandler struct {
	logger *zap.Logger
	subs   *service.SubscriptionService
}

func NewSubscriptionHandler(logger *zap.Logger, subs *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{logger: logger, subs: subs}
}

// Subscribe maneja POST /subscriptions (form: name, email).
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req struct {
		Name  string `form:"name"`
		Email string `form:"email"`
	}
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid subscription request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.subs.Subscribe(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid name or email"})
			return
		case errors.Is(err, service.ErrEmailDeliveryFailed):
			// la fila ya esta guardada en pending_confirmation.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send confirmation email"})
			return
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register subscriber"})
			return
		}
	}

	c.Status(http.StatusOK)
}

// Confirm maneja GET /subscriptions/confirm?subscription_token=...
func (h *SubscriptionHandler) Confirm(c *gin.Context) {
	token, ok := c.GetQuery("subscription_token")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing subscription_token"})
		return
	}

	if err := h.subs.Confirm(c.Request.Context(), token); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown subscription token"})
			return
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not confirm subscription"})
			return
		}
	}

	c.Status(http.StatusOK)
}
