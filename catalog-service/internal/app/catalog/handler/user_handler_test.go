package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const webhookPayload = `{"type":"user.created","data":{"id":"user_9","username":"neo","email_addresses":[{"email_address":"neo@example.com"}]}}`

// sendWebhook отправляет доставку с заголовками svix
func (env *testEnv) sendWebhook(path, deliveryID, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("svix-id", deliveryID)
	req.Header.Set("svix-timestamp", "1700000000")
	req.Header.Set("svix-signature", "v1,c2lnbmF0dXJl")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestUserHandler_GetMe(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/users/me", userToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp entity.UserResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "user_1", resp.User.ID)
	assert.Equal(t, entity.RoleUser, resp.User.Role)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/users/me", ghostToken, nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/users/me", "", nil, "").Code)
}

func TestUserHandler_Webhook_CreatesUser(t *testing.T) {
	env := newTestEnv()

	env.webhooks.On("Verify", []byte(webhookPayload), mock.Anything).Return(nil)
	env.deliveries.On("Record", mock.Anything, mock.MatchedBy(func(d *entity.WebhookDelivery) bool {
		return d.DeliveryID == "msg_1" && d.SubjectID == "user_9"
	})).Return(nil)
	env.userRepo.On("FindOrCreate", mock.Anything, mock.AnythingOfType("*entity.User")).
		Return(&entity.User{ID: "user_9", Username: "neo", Email: "neo@example.com", Role: entity.RoleUser}, true, nil)

	rec := env.sendWebhook("/webhooks/provider", "msg_1", webhookPayload)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"neo"`)
}

func TestUserHandler_Webhook_Redelivery(t *testing.T) {
	env := newTestEnv()

	env.webhooks.On("Verify", []byte(webhookPayload), mock.Anything).Return(nil)
	env.deliveries.On("Record", mock.Anything, mock.Anything).Return(repository.ErrDuplicateDelivery)

	rec := env.sendWebhook("/webhooks/clerk", "msg_1", webhookPayload)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already processed")
	env.userRepo.AssertNotCalled(t, "FindOrCreate", mock.Anything, mock.Anything)
}

func TestUserHandler_Webhook_BadSignature(t *testing.T) {
	env := newTestEnv()

	env.webhooks.On("Verify", mock.Anything, mock.Anything).Return(errors.New("no matching signature"))

	rec := env.sendWebhook("/webhooks/provider", "msg_2", webhookPayload)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_Webhook_UnsupportedType(t *testing.T) {
	env := newTestEnv()

	payload := `{"type":"session.created","data":{"id":"sess_1"}}`
	env.webhooks.On("Verify", []byte(payload), mock.Anything).Return(nil)

	rec := env.sendWebhook("/webhooks/provider", "msg_3", payload)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_Webhook_DeliveryLogDown(t *testing.T) {
	env := newTestEnv()

	env.webhooks.On("Verify", []byte(webhookPayload), mock.Anything).Return(nil)
	env.deliveries.On("Record", mock.Anything, mock.Anything).Return(errors.New("server selection timeout"))
	env.userRepo.On("FindOrCreate", mock.Anything, mock.Anything).
		Return(&entity.User{ID: "user_9", Email: "neo@example.com", Role: entity.RoleUser}, false, nil)

	rec := env.sendWebhook("/webhooks/provider", "msg_4", webhookPayload)

	assert.Equal(t, http.StatusOK, rec.Code)
}
