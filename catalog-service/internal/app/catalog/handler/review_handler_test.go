package handler

import (
	"net/http"
	"testing"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReviewHandler_CreateReview_UsesTokenSubject(t *testing.T) {
	env := newTestEnv()

	product := newHandlerTestProduct()
	env.productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	env.reviewRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *entity.Review) bool {
		return r.UserID == "user_1" && r.Rating == 3
	})).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Review).ID = 5
		}).
		Return(nil)
	env.reviewRepo.On("GetByID", mock.Anything, uint(5)).Return(&entity.Review{
		ID: 5, UserID: "user_1", ProductID: product.ID, Rating: 3,
		User: &entity.ReviewAuthor{ID: "user_1", Username: "alice"},
	}, nil)

	rec := env.doJSON(t, http.MethodPost, "/reviews", userToken, map[string]interface{}{
		"productId": product.ID,
		"userId":    "someone_else",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp entity.ReviewResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "user_1", resp.Review.UserID)
	assert.Equal(t, 3, resp.Review.Rating)
}

func TestReviewHandler_CreateReview_Validation(t *testing.T) {
	env := newTestEnv()

	rec := env.doJSON(t, http.MethodPost, "/reviews", userToken, map[string]interface{}{
		"productId": uuid.New(),
		"rating":    6,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/reviews", userToken, map[string]interface{}{"rating": 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/reviews", "", map[string]interface{}{"productId": uuid.New()})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReviewHandler_CreateReview_ProductNotFound(t *testing.T) {
	env := newTestEnv()

	productID := uuid.New()
	env.productRepo.On("GetByID", mock.Anything, productID).Return(nil, repository.ErrProductNotFound)

	rec := env.doJSON(t, http.MethodPost, "/reviews", userToken, map[string]interface{}{"productId": productID})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewHandler_ListReviews(t *testing.T) {
	env := newTestEnv()

	productID := uuid.New()
	env.reviewRepo.On("List", mock.Anything, &productID).Return([]entity.Review{{ID: 1, ProductID: productID, Rating: 5}}, nil)
	env.reviewRepo.On("List", mock.Anything, (*uuid.UUID)(nil)).Return([]entity.Review{}, nil)

	rec := env.do(t, http.MethodGet, "/reviews?productId="+productID.String(), "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp entity.ReviewListResponse
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.Reviews, 1)

	rec = env.do(t, http.MethodGet, "/reviews/product/"+productID.String(), "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/reviews", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reviews":[]`)

	rec = env.do(t, http.MethodGet, "/reviews?productId=bad", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewHandler_UpdateReview_Forbidden(t *testing.T) {
	env := newTestEnv()

	env.reviewRepo.On("GetByID", mock.Anything, uint(7)).Return(&entity.Review{ID: 7, UserID: "admin_1", Rating: 4}, nil)

	rec := env.doJSON(t, http.MethodPut, "/reviews/7", userToken, map[string]interface{}{"comment": "mine now"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env.reviewRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewHandler_DeleteReview_ByAdmin(t *testing.T) {
	env := newTestEnv()

	env.reviewRepo.On("GetByID", mock.Anything, uint(7)).Return(&entity.Review{ID: 7, UserID: "user_1"}, nil)
	env.reviewRepo.On("Delete", mock.Anything, uint(7)).Return(nil)

	rec := env.do(t, http.MethodDelete, "/reviews/7", adminToken, nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
}
