package entity

import (
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// === CATEGORIES ===

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateCategoryRequest - частичное обновление: nil означает "поле не передано"
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type ToggleHomepageRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// === PRODUCTS ===

// ProductQuery - параметры GET /products
type ProductQuery struct {
	Page       *int     `form:"page" validate:"omitempty,min=1"`
	Limit      *int     `form:"limit" validate:"omitempty,min=1,max=100"`
	Search     string   `form:"search" validate:"max=200"`
	CategoryID *uint    `form:"categoryId" validate:"omitempty,min=1"`
	MinPrice   *float64 `form:"minPrice" validate:"omitempty,min=0"`
	MaxPrice   *float64 `form:"maxPrice" validate:"omitempty,min=0"`
	MinStock   *int     `form:"minStock" validate:"omitempty,min=0"`
	MaxStock   *int     `form:"maxStock" validate:"omitempty,min=0"`
	SortBy     string   `form:"sortBy" validate:"omitempty,oneof=createdAt price name"`
	Order      string   `form:"order" validate:"omitempty,oneof=ASC DESC"`
}

// FlaggedQuery - параметры GET /products/featured и /products/on-sale
type FlaggedQuery struct {
	Limit *int `form:"limit" validate:"omitempty,min=1,max=50"`
}

// ProductFilter - разобранные и нормализованные условия выборки товаров
type ProductFilter struct {
	Search     string
	CategoryID *uint
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	MinStock   *int
	MaxStock   *int
	SortBy     string // createdAt | price | name
	Order      string // ASC | DESC
	Page       int
	Limit      int
}

// ProductFlag - булев признак товара для витрин на главной
type ProductFlag string

const (
	FlagFeatured ProductFlag = "is_featured"
	FlagOnSale   ProductFlag = "is_on_sale"
)

// UploadedImage - файл, прошедший проверки загрузки
type UploadedImage struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  uint
	IsFeatured  bool
	IsOnSale    bool
	Image       *UploadedImage
}

// ProductPatch - частичное обновление товара, nil поля не меняются
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *uint
	IsFeatured  *bool
	IsOnSale    *bool
	Image       *UploadedImage
}

type ToggleFeaturedRequest struct {
	IsFeatured *bool `json:"isFeatured"`
}

type ToggleOnSaleRequest struct {
	IsOnSale *bool `json:"isOnSale"`
}

// === REVIEWS ===

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Rating    *int      `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment   string    `json:"comment" validate:"max=5000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=5000"`
}

// === RESPONSES ===

type ErrorResponse struct {
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CategoryResponse struct {
	Message  string    `json:"message"`
	Category *Category `json:"category"`
}

type CreateCategoryResponse struct {
	Message     string    `json:"message"`
	NewCategory *Category `json:"newCategory"`
}

type CategoryListResponse struct {
	Message    string     `json:"message"`
	Categories []Category `json:"categories"`
}

type ProductResponse struct {
	Message string   `json:"message"`
	Product *Product `json:"product"`
}

type CreateProductResponse struct {
	Message    string   `json:"message"`
	NewProduct *Product `json:"newProduct"`
}

type ProductListResponse struct {
	Message  string    `json:"message"`
	Products []Product `json:"products"`
}

// ProductPageResponse - ответ GET /products
type ProductPageResponse struct {
	Message     string    `json:"message"`
	TotalItems  int64     `json:"totalItems"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
	Data        []Product `json:"data"`
}

type ReviewResponse struct {
	Message string  `json:"message"`
	Review  *Review `json:"review"`
}

type ReviewListResponse struct {
	Message string   `json:"message"`
	Reviews []Review `json:"reviews"`
}

type UserResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// ProductPage - страница товаров, которую сервис отдает хендлеру
type ProductPage struct {
	Items       []Product
	TotalItems  int64
	TotalPages  int
	CurrentPage int
}
