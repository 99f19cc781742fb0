package handler

import (
	"errors"
	"io"
	"net/http"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody - события провайдера небольшие, больше 1MB не читаем
const maxWebhookBody = 1 << 20

// UserHandler отдает текущего пользователя и принимает webhook провайдера
type UserHandler struct {
	users service.UserServiceInterface
}

func NewUserHandler(users service.UserServiceInterface) *UserHandler {
	return &UserHandler{users: users}
}

// GetMe обрабатывает GET /users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		respondServiceError(c, err, "get current user")
		return
	}

	c.JSON(http.StatusOK, entity.UserResponse{
		Message: "user fetched",
		User:    user,
	})
}

// HandleWebhook обрабатывает POST /webhooks/provider
// подпись проверяется по сырому телу, поэтому оно читается целиком до разбора
func (h *UserHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	user, err := h.users.HandleWebhook(c.Request.Context(), payload, c.Request.Header)
	if err != nil {
		if errors.Is(err, service.ErrDeliveryProcessed) {
			c.JSON(http.StatusOK, entity.MessageResponse{Message: "already processed"})
			return
		}
		respondServiceError(c, err, "handle webhook")
		return
	}

	c.JSON(http.StatusOK, entity.UserResponse{
		Message: "webhook processed",
		User:    user,
	})
}
