package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/repository/mocks"
	"storefront/catalog-service/internal/app/catalog/service"
	"storefront/catalog-service/internal/app/catalog/util"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	adminToken = "admin-token"
	userToken  = "user-token"
	ghostToken = "ghost-token"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv собирает роутер на настоящих сервисах поверх моков репозиториев
type testEnv struct {
	router       *gin.Engine
	categoryRepo *mocks.MockCategoryRepository
	productRepo  *mocks.MockProductRepository
	reviewRepo   *mocks.MockReviewRepository
	userRepo     *mocks.MockUserRepository
	deliveries   *mocks.MockWebhookDeliveryRepository
	cache        *mocks.MockCategoryCache
	publisher    *mocks.MockMessagePublisher
	storage      *mocks.MockObjectStorage
	webhooks     *mocks.MockWebhookVerifier
	tokens       *mocks.MockTokenVerifier
}

func newTestEnv() *testEnv {
	env := &testEnv{
		categoryRepo: new(mocks.MockCategoryRepository),
		productRepo:  new(mocks.MockProductRepository),
		reviewRepo:   new(mocks.MockReviewRepository),
		userRepo:     new(mocks.MockUserRepository),
		deliveries:   new(mocks.MockWebhookDeliveryRepository),
		cache:        new(mocks.MockCategoryCache),
		publisher:    new(mocks.MockMessagePublisher),
		storage:      new(mocks.MockObjectStorage),
		webhooks:     new(mocks.MockWebhookVerifier),
		tokens:       new(mocks.MockTokenVerifier),
	}

	catalog := service.NewCatalogService(env.categoryRepo, env.productRepo, env.cache, env.publisher, env.storage, time.Minute)
	reviews := service.NewReviewService(env.reviewRepo, env.productRepo, env.userRepo)
	users := service.NewUserService(env.userRepo, env.deliveries, env.webhooks)

	env.router = SetupRoutes(Handlers{
		Categories: NewCategoryHandler(catalog),
		Products:   NewProductHandler(catalog),
		Reviews:    NewReviewHandler(reviews),
		Users:      NewUserHandler(users),
	}, NewAuthMiddleware(env.tokens, users), []string{"http://localhost:3000"})

	env.tokens.On("Verify", adminToken).Return(sessionFor("admin_1"), nil).Maybe()
	env.tokens.On("Verify", userToken).Return(sessionFor("user_1"), nil).Maybe()
	env.tokens.On("Verify", ghostToken).Return(sessionFor("ghost"), nil).Maybe()
	env.tokens.On("Verify", mock.Anything).Return(nil, util.ErrInvalidToken).Maybe()

	env.userRepo.On("GetByID", mock.Anything, "admin_1").Return(&entity.User{ID: "admin_1", Role: entity.RoleAdmin}, nil).Maybe()
	env.userRepo.On("GetByID", mock.Anything, "user_1").Return(&entity.User{ID: "user_1", Role: entity.RoleUser}, nil).Maybe()
	env.userRepo.On("GetByID", mock.Anything, "ghost").Return(nil, repository.ErrUserNotFound).Maybe()

	env.cache.On("InvalidateCategories", mock.Anything).Return(nil).Maybe()
	env.publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	return env
}

func sessionFor(subject string) *util.SessionClaims {
	return &util.SessionClaims{
		SessionID:        "sess_" + subject,
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doJSON(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	return env.do(t, method, path, token, body, "application/json")
}

type formFile struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		header.Set("Content-Type", f.contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), target))
}
