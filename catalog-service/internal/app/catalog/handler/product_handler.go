package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ProductHandler обрабатывает HTTP запросы товаров
type ProductHandler struct {
	products  service.ProductServiceInterface
	validator *validator.Validate
}

func NewProductHandler(products service.ProductServiceInterface) *ProductHandler {
	return &ProductHandler{
		products:  products,
		validator: newValidator(),
	}
}

// ListProducts обрабатывает GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var query entity.ProductQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, http.StatusBadRequest, "invalid query parameters")
		return
	}
	query.Order = strings.ToUpper(query.Order)
	if err := h.validator.Struct(query); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	page, err := h.products.ListProducts(c.Request.Context(), &query)
	if err != nil {
		respondServiceError(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, entity.ProductPageResponse{
		Message:     "products fetched",
		TotalItems:  page.TotalItems,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		Data:        page.Items,
	})
}

// ListFeatured обрабатывает GET /products/featured
func (h *ProductHandler) ListFeatured(c *gin.Context) {
	h.listFlagged(c, entity.FlagFeatured, "featured products fetched")
}

// ListOnSale обрабатывает GET /products/on-sale
func (h *ProductHandler) ListOnSale(c *gin.Context) {
	h.listFlagged(c, entity.FlagOnSale, "on-sale products fetched")
}

func (h *ProductHandler) listFlagged(c *gin.Context, flag entity.ProductFlag, message string) {
	var query entity.FlaggedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, http.StatusBadRequest, "invalid query parameters")
		return
	}
	if err := h.validator.Struct(query); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	products, err := h.products.ListFlagged(c.Request.Context(), flag, query.Limit)
	if err != nil {
		respondServiceError(c, err, "list flagged products")
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Message:  message,
		Products: products,
	})
}

// GetProduct обрабатывает GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, entity.ProductResponse{
		Message: "product fetched",
		Product: product,
	})
}

// CreateProduct обрабатывает POST /products (multipart/form-data)
// name, price, categoryId обязательны; stock без значения или нечисловой считается 0
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	input := entity.CreateProductInput{
		Description: c.PostForm("description"),
		Image:       uploadedImage(c),
	}

	name, ok := c.GetPostForm("name")
	if !ok || strings.TrimSpace(name) == "" {
		respondError(c, http.StatusBadRequest, "name is required")
		return
	}
	input.Name = name

	rawPrice, ok := c.GetPostForm("price")
	if !ok || strings.TrimSpace(rawPrice) == "" {
		respondError(c, http.StatusBadRequest, "price is required")
		return
	}
	price, err := parsePrice(rawPrice)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	input.Price = price

	rawCategoryID, ok := c.GetPostForm("categoryId")
	if !ok || strings.TrimSpace(rawCategoryID) == "" {
		respondError(c, http.StatusBadRequest, "categoryId is required")
		return
	}
	categoryID, err := parseCategoryID(rawCategoryID)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	input.CategoryID = categoryID

	if stock, err := strconv.Atoi(strings.TrimSpace(c.PostForm("stock"))); err == nil {
		input.Stock = stock
	}

	if input.IsFeatured, err = parseOptionalBool(c, "isFeatured"); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if input.IsOnSale, err = parseOptionalBool(c, "isOnSale"); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		respondServiceError(c, err, "create product")
		return
	}

	c.JSON(http.StatusCreated, entity.CreateProductResponse{
		Message:    "product created",
		NewProduct: product,
	})
}

// UpdateProduct обрабатывает PUT /products/:id (multipart/form-data)
// Меняются только переданные поля; без файла image изображение остается прежним
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	patch := entity.ProductPatch{Image: uploadedImage(c)}

	if name, ok := c.GetPostForm("name"); ok {
		patch.Name = &name
	}
	if description, ok := c.GetPostForm("description"); ok {
		patch.Description = &description
	}
	if raw, ok := c.GetPostForm("price"); ok {
		price, err := parsePrice(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		patch.Price = &price
	}
	if raw, ok := c.GetPostForm("stock"); ok {
		stock, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			respondError(c, http.StatusBadRequest, "stock must be an integer")
			return
		}
		patch.Stock = &stock
	}
	if raw, ok := c.GetPostForm("categoryId"); ok {
		categoryID, err := parseCategoryID(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		patch.CategoryID = &categoryID
	}
	for field, target := range map[string]**bool{"isFeatured": &patch.IsFeatured, "isOnSale": &patch.IsOnSale} {
		if _, ok := c.GetPostForm(field); !ok {
			continue
		}
		value, err := parseOptionalBool(c, field)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		*target = &value
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), id, &patch)
	if err != nil {
		respondServiceError(c, err, "update product")
		return
	}

	c.JSON(http.StatusOK, entity.ProductResponse{
		Message: "product updated",
		Product: product,
	})
}

// DeleteProduct обрабатывает DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete product")
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{Message: "product deleted"})
}

// ToggleFeatured обрабатывает PATCH /products/:id/toggle-featured
func (h *ProductHandler) ToggleFeatured(c *gin.Context) {
	var req entity.ToggleFeaturedRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.toggleFlag(c, entity.FlagFeatured, req.IsFeatured)
}

// ToggleOnSale обрабатывает PATCH /products/:id/toggle-on-sale
func (h *ProductHandler) ToggleOnSale(c *gin.Context) {
	var req entity.ToggleOnSaleRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.toggleFlag(c, entity.FlagOnSale, req.IsOnSale)
}

func (h *ProductHandler) toggleFlag(c *gin.Context, flag entity.ProductFlag, value *bool) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.products.ToggleFlag(c.Request.Context(), id, flag, value)
	if err != nil {
		respondServiceError(c, err, "toggle "+string(flag))
		return
	}

	c.JSON(http.StatusOK, entity.ProductResponse{
		Message: "product updated",
		Product: product,
	})
}

// bindOptionalJSON: пустое тело допустимо и оставляет req нулевым
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, errors.New("price must be a number")
	}
	if price.IsNegative() {
		return decimal.Zero, errors.New("price must not be negative")
	}
	return price, nil
}

func parseCategoryID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("categoryId must be a positive integer")
	}
	return uint(id), nil
}

// parseOptionalBool: отсутствующее или пустое поле дает false
func parseOptionalBool(c *gin.Context, field string) (bool, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New(field + " must be a boolean")
	}
	return value, nil
}
