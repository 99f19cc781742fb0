package handler

import (
	"net/http"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CategoryHandler обрабатывает HTTP запросы категорий
type CategoryHandler struct {
	categories service.CategoryServiceInterface
	validator  *validator.Validate
}

func NewCategoryHandler(categories service.CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		validator:  newValidator(),
	}
}

// ListCategories обрабатывает GET /categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categories.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list categories")
		return
	}

	c.JSON(http.StatusOK, entity.CategoryListResponse{
		Message:    "categories fetched",
		Categories: categories,
	})
}

// ListActiveCategories обрабатывает GET /categories/active
func (h *CategoryHandler) ListActiveCategories(c *gin.Context) {
	categories, err := h.categories.ListActiveCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list active categories")
		return
	}

	c.JSON(http.StatusOK, entity.CategoryListResponse{
		Message:    "active categories fetched",
		Categories: categories,
	})
}

// GetCategory обрабатывает GET /categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	category, err := h.categories.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "get category")
		return
	}

	c.JSON(http.StatusOK, entity.CategoryResponse{
		Message:  "category fetched",
		Category: category,
	})
}

// CreateCategory обрабатывает POST /categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req entity.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	category, err := h.categories.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err, "create category")
		return
	}

	c.JSON(http.StatusCreated, entity.CreateCategoryResponse{
		Message:     "category created",
		NewCategory: category,
	})
}

// UpdateCategory обрабатывает PUT /categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req entity.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	category, err := h.categories.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err, "update category")
		return
	}

	c.JSON(http.StatusOK, entity.CategoryResponse{
		Message:  "category updated",
		Category: category,
	})
}

// DeleteCategory обрабатывает DELETE /categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.categories.DeleteCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete category")
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{Message: "category deleted"})
}

// ToggleHomepage обрабатывает PATCH /categories/:id/toggle-homepage
func (h *CategoryHandler) ToggleHomepage(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req entity.ToggleHomepageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	category, err := h.categories.ToggleHomepage(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		respondServiceError(c, err, "toggle homepage")
		return
	}

	message := "category removed from homepage"
	if category.IsActiveOnHomepage {
		message = "category shown on homepage"
	}
	c.JSON(http.StatusOK, entity.CategoryResponse{
		Message:  message,
		Category: category,
	})
}
