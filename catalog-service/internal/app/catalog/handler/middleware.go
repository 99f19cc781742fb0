package handler

import (
	"errors"
	"net/http"
	"strings"

	"storefront/catalog-service/internal/app/catalog/service"
	"storefront/catalog-service/internal/app/catalog/util"
	"storefront/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Ключи gin.Context, которые выставляет Authenticate
const (
	ctxUserID    = "user_id"
	ctxSessionID = "session_id"
	ctxUser      = "user"
)

// AuthMiddleware проверяет bearer токен identity provider
// и для админских маршрутов загружает роль пользователя из БД
type AuthMiddleware struct {
	verifier util.TokenVerifier
	users    service.UserServiceInterface
}

func NewAuthMiddleware(verifier util.TokenVerifier, users service.UserServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		users:    users,
	}
}

func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondError(c, http.StatusUnauthorized, "authorization header required")
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			respondError(c, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := m.verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			message := "invalid token"
			if errors.Is(err, util.ErrExpiredToken) {
				message = "token has expired"
			}
			logger.Debug().Err(err).Msg("Bearer token rejected")
			respondError(c, http.StatusUnauthorized, message)
			return
		}

		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxSessionID, claims.SessionID)

		c.Next()
	}
}

// RequireAdmin пропускает только пользователей с ролью admin
// Роль берется из таблицы users, а не из токена
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ctxUserID)
		if userID == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := m.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				respondError(c, http.StatusForbidden, "insufficient permissions")
				return
			}
			respondServiceError(c, err, "resolve role")
			return
		}
		if !user.IsAdmin() {
			respondError(c, http.StatusForbidden, "insufficient permissions")
			return
		}

		c.Set(ctxUser, user)
		c.Next()
	}
}
