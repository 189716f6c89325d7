package http

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"newsletter/internal/service"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	healthH *HealthHandler,
	subsH *SubscriptionHandler,
	loginH *LoginHandler,
	adminH *AdminHandler,
	sessions *service.SessionService,
) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("pages").Parse(pageTemplates)))

	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/health_check", healthH.HealthCheck)

	subs := r.Group("/subscriptions")
	subs.POST("", subsH.Subscribe)
	subs.GET("/confirm", subsH.Confirm)

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/admin/dashboard")
	})
	r.GET("/login", loginH.LoginForm)
	r.POST("/login", loginH.Login)

	admin := r.Group("/admin", RequireOperator(logger, sessions))
	admin.GET("/dashboard", adminH.Dashboard)
	admin.POST("/newsletters", adminH.PublishNewsletter)
	admin.POST("/logout", loginH.Logout)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// requestIDMiddleware reutiliza X-Request-Id si es un uuid valido; si no, genera uno.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}
