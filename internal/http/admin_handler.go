package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"newsletter/internal/domain"
	"newsletter/internal/service"
)

// AdminHandler agrupa los endpoints detras de RequireOperator.
type AdminHandler struct {
	logger      *zap.Logger
	authServ    *service.AuthService
	newsletters *service.NewsletterService
}

func NewAdminHandler(logger *zap.Logger, authServ *service.AuthService, newsletters *service.NewsletterService) *AdminHandler {
	return &AdminHandler{logger: logger, authServ: authServ, newsletters: newsletters}
}

// Dashboard maneja GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	id, ok := GetOperatorID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	op, err := h.authServ.Operator(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.Redirect(http.StatusSeeOther, "/login")
			return
		}
		h.logger.Error("load operator failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load operator"})
		return
	}
	c.HTML(http.StatusOK, "dashboard", op)
}

// PublishNewsletter maneja POST /admin/newsletters (form: title, html_content, text_content).
func (h *AdminHandler) PublishNewsletter(c *gin.Context) {
	var req struct {
		Title       string `form:"title"`
		HTMLContent string `form:"html_content"`
		TextContent string `form:"text_content"`
	}
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid newsletter request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	report, err := h.newsletters.Publish(c.Request.Context(), domain.Issue{
		Title:       req.Title,
		HTMLContent: req.HTMLContent,
		TextContent: req.TextContent,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			h.logger.Warn("invalid newsletter issue", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid newsletter issue"})
			return
		default:
			h.logger.Error("publish newsletter failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not publish newsletter"})
			return
		}
	}

	c.JSON(http.StatusOK, report)
}
