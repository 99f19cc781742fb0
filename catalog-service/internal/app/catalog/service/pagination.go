package service

import (
	"strings"

	"storefront/catalog-service/internal/app/catalog/entity"

	"github.com/shopspring/decimal"
)

const (
	defaultPage         = 1
	defaultPageLimit    = 10
	maxPageLimit        = 100
	defaultFlaggedLimit = 8
	maxFlaggedLimit     = 50

	defaultSortBy = "createdAt"
	defaultOrder  = "DESC"
)

// totalPages = ceil(total / limit)
func totalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// buildProductFilter подставляет значения по умолчанию и переводит цены в decimal
func buildProductFilter(q *entity.ProductQuery) entity.ProductFilter {
	filter := entity.ProductFilter{
		Search:     strings.TrimSpace(q.Search),
		CategoryID: q.CategoryID,
		MinStock:   q.MinStock,
		MaxStock:   q.MaxStock,
		SortBy:     q.SortBy,
		Order:      strings.ToUpper(q.Order),
		Page:       defaultPage,
		Limit:      defaultPageLimit,
	}

	if q.Page != nil && *q.Page > 0 {
		filter.Page = *q.Page
	}
	if q.Limit != nil && *q.Limit > 0 {
		filter.Limit = min(*q.Limit, maxPageLimit)
	}
	if filter.SortBy == "" {
		filter.SortBy = defaultSortBy
	}
	if filter.Order != "ASC" {
		filter.Order = defaultOrder
	}
	if q.MinPrice != nil {
		minPrice := decimal.NewFromFloat(*q.MinPrice)
		filter.MinPrice = &minPrice
	}
	if q.MaxPrice != nil {
		maxPrice := decimal.NewFromFloat(*q.MaxPrice)
		filter.MaxPrice = &maxPrice
	}
	return filter
}

func flaggedLimit(limit *int) int {
	if limit == nil || *limit <= 0 {
		return defaultFlaggedLimit
	}
	return min(*limit, maxFlaggedLimit)
}
