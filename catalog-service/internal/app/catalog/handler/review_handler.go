package handler

import (
	"net/http"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ReviewHandler обрабатывает HTTP запросы отзывов
type ReviewHandler struct {
	reviews   service.ReviewServiceInterface
	validator *validator.Validate
}

func NewReviewHandler(reviews service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviews:   reviews,
		validator: newValidator(),
	}
}

// ListReviews обрабатывает GET /reviews?productId=
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	var productID *uuid.UUID
	if raw := c.Query("productId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid productId")
			return
		}
		productID = &id
	}
	h.respondReviews(c, productID)
}

// ListProductReviews обрабатывает GET /reviews/product/:id
func (h *ReviewHandler) ListProductReviews(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	h.respondReviews(c, &id)
}

func (h *ReviewHandler) respondReviews(c *gin.Context, productID *uuid.UUID) {
	reviews, err := h.reviews.ListReviews(c.Request.Context(), productID)
	if err != nil {
		respondServiceError(c, err, "list reviews")
		return
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{
		Message: "reviews fetched",
		Reviews: reviews,
	})
}

// CreateReview обрабатывает POST /reviews, автор - владелец токена
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), c.GetString(ctxUserID), &req)
	if err != nil {
		respondServiceError(c, err, "create review")
		return
	}

	c.JSON(http.StatusCreated, entity.ReviewResponse{
		Message: "review created",
		Review:  review,
	})
}

// UpdateReview обрабатывает PUT /reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req entity.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	review, err := h.reviews.UpdateReview(c.Request.Context(), c.GetString(ctxUserID), id, &req)
	if err != nil {
		respondServiceError(c, err, "update review")
		return
	}

	c.JSON(http.StatusOK, entity.ReviewResponse{
		Message: "review updated",
		Review:  review,
	})
}

// DeleteReview обрабатывает DELETE /reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviews.DeleteReview(c.Request.Context(), c.GetString(ctxUserID), id); err != nil {
		respondServiceError(c, err, "delete review")
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{Message: "review deleted"})
}
