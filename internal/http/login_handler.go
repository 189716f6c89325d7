package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"newsletter/internal/auth"
	"newsletter/internal/redirect"
	"newsletter/internal/service"
)

const (
	sessionCookie = "session"

	msgAuthFailed     = "Authentication failed"
	msgSomethingWrong = "Something went wrong"
)

// LoginHandler maneja el login de operadores y su sesion.
type LoginHandler struct {
	logger        *zap.Logger
	authServ      *service.AuthService
	sessions      *service.SessionService
	codec         *redirect.Codec
	secureCookies bool
}

func NewLoginHandler(
	logger *zap.Logger,
	authServ *service.AuthService,
	sessions *service.SessionService,
	codec *redirect.Codec,
	secureCookies bool,
) *LoginHandler {
	return &LoginHandler{
		logger:        logger,
		authServ:      authServ,
		sessions:      sessions,
		codec:         codec,
		secureCookies: secureCookies,
	}
}

// LoginForm maneja GET /login. El mensaje de error solo se muestra si su tag verifica.
func (h *LoginHandler) LoginForm(c *gin.Context) {
	var message string
	if query, tag, ok := splitSignedQuery(c.Request.URL.RawQuery); ok {
		msg, err := h.codec.DecodeAndVerify(query, tag)
		if err != nil {
			h.logger.Warn("discarding login error message with invalid tag", zap.Error(err))
		} else {
			message = msg
		}
	}
	c.HTML(http.StatusOK, "login", gin.H{"Error": message})
}

// Login maneja POST /login (form: username, password).
func (h *LoginHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := auth.NewPassword(c.PostForm("password"))

	operatorID, err := h.authServ.ValidateCredentials(c.Request.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.redirectWithError(c, msgAuthFailed)
		default:
			h.logger.Error("login failed", zap.Error(err))
			h.redirectWithError(c, msgSomethingWrong)
		}
		return
	}

	session, err := h.sessions.Issue(operatorID)
	if err != nil {
		h.logger.Error("issue session failed", zap.Error(err))
		h.redirectWithError(c, msgSomethingWrong)
		return
	}

	h.setSessionCookie(c, session.Token, int(h.sessions.TTL().Seconds()))
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout maneja POST /admin/logout.
func (h *LoginHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		if err := h.sessions.Revoke(token); err != nil {
			h.logger.Warn("revoke session failed", zap.Error(err))
		}
	}
	h.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *LoginHandler) redirectWithError(c *gin.Context, message string) {
	c.Redirect(http.StatusSeeOther, h.codec.Encode(message).Location("/login"))
}

func (h *LoginHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookie, value, maxAge, "/", "", h.secureCookies, true)
}

// splitSignedQuery separa "error=...&tag=..." en la query firmada y el tag,
// sin re-codificar nada: el tag se verifica sobre los bytes recibidos.
func splitSignedQuery(rawQuery string) (string, string, bool) {
	sep := "&" + redirect.TagParam + "="
	i := strings.LastIndex(rawQuery, sep)
	if i < 0 {
		return "", "", false
	}
	return rawQuery[:i], rawQuery[i+len(sep):], true
}
