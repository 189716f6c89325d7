package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"newsletter/internal/service"
)

const operatorIDKey = "operator_id"

// RequireOperator valida la cookie de sesion; sin sesion valida redirige a /login.
func RequireOperator(logger *zap.Logger, sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sessions not configured"})
			c.Abort()
			return
		}

		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		operatorID, err := sessions.Validate(token)
		if err != nil {
			logger.Info("rejected operator session", zap.Error(err))
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.Set(operatorIDKey, operatorID)
		c.Next()
	}
}

// GetOperatorID obtiene el operador autenticado desde el contexto.
func GetOperatorID(c *gin.Context) (uuid.UUID, bool) {
	val, ok := c.Get(operatorIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}
