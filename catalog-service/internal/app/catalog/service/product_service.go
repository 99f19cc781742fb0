package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxPrice - верхняя граница DECIMAL(10,2)
var maxPrice = decimal.RequireFromString("99999999.99")

func (s *CatalogService) CreateProduct(ctx context.Context, input *entity.CreateProductInput) (*entity.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, newValidationError("name is required")
	}
	if input.CategoryID == 0 {
		return nil, newValidationError("categoryId is required")
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if input.Stock < 0 {
		return nil, newValidationError("stock must not be negative")
	}

	category, err := s.GetCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureProductNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	product := &entity.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		CategoryID:  category.ID,
		IsFeatured:  input.IsFeatured,
		IsOnSale:    input.IsOnSale,
	}

	if input.Image != nil {
		url, err := s.uploadImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		product.ImageURL = url
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.releaseImage(ctx, product.ID, product.ImageURL)
		if errors.Is(err, repository.ErrProductAlreadyExists) || errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	product.Category = &entity.CategoryRef{ID: category.ID, Name: category.Name}
	metrics.CatalogProductsCreated.Inc()
	s.publishProductEvent(ctx, entity.EventProductCreated, product, "")

	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// ListProducts возвращает страницу товаров по фильтрам запроса
func (s *CatalogService) ListProducts(ctx context.Context, query *entity.ProductQuery) (*entity.ProductPage, error) {
	filter := buildProductFilter(query)

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []entity.Product{}
	}

	return &entity.ProductPage{
		Items:       products,
		TotalItems:  total,
		TotalPages:  totalPages(total, filter.Limit),
		CurrentPage: filter.Page,
	}, nil
}

// ListFlagged возвращает новые товары с флагом is_featured или is_on_sale
func (s *CatalogService) ListFlagged(ctx context.Context, flag entity.ProductFlag, limit *int) ([]entity.Product, error) {
	products, err := s.productRepo.ListByFlag(ctx, flag, flaggedLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s products: %w", flag, err)
	}
	if products == nil {
		products = []entity.Product{}
	}
	return products, nil
}

// UpdateProduct применяет переданные поля; без нового изображения imageUrl не меняется
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, patch *entity.ProductPatch) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, newValidationError("name must not be empty")
		}
		if name != product.Name {
			if err := s.ensureProductNameFree(ctx, name, id); err != nil {
				return nil, err
			}
			fields["name"] = name
		}
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
		fields["price"] = *patch.Price
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, newValidationError("stock must not be negative")
		}
		fields["stock"] = *patch.Stock
	}
	if patch.CategoryID != nil && *patch.CategoryID != product.CategoryID {
		if _, err := s.GetCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = *patch.CategoryID
	}
	if patch.IsFeatured != nil {
		fields[string(entity.FlagFeatured)] = *patch.IsFeatured
	}
	if patch.IsOnSale != nil {
		fields[string(entity.FlagOnSale)] = *patch.IsOnSale
	}

	var newImageURL string
	if patch.Image != nil {
		newImageURL, err = s.uploadImage(ctx, patch.Image)
		if err != nil {
			return nil, err
		}
		fields["image_url"] = newImageURL
	}

	if len(fields) == 0 {
		return product, nil
	}

	if err := s.productRepo.Update(ctx, id, fields); err != nil {
		s.releaseImage(ctx, id, newImageURL)
		if errors.Is(err, repository.ErrProductNotFound) ||
			errors.Is(err, repository.ErrProductAlreadyExists) ||
			errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updated, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	previousImageURL := ""
	if newImageURL != "" && product.ImageURL != newImageURL {
		previousImageURL = product.ImageURL
	}
	s.publishProductEvent(ctx, entity.EventProductUpdated, updated, previousImageURL)

	return updated, nil
}

// DeleteProduct удаляет товар вместе с отзывами
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.publishProductEvent(ctx, entity.EventProductDeleted, product, "")
	return nil
}

func (s *CatalogService) ToggleFlag(ctx context.Context, id uuid.UUID, flag entity.ProductFlag, value *bool) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	var current bool
	switch flag {
	case entity.FlagFeatured:
		current = product.IsFeatured
	case entity.FlagOnSale:
		current = product.IsOnSale
	default:
		return nil, newValidationError("unknown product flag")
	}

	next := !current
	if value != nil {
		next = *value
	}

	if err := s.productRepo.Update(ctx, id, map[string]interface{}{string(flag): next}); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to toggle %s: %w", flag, err)
	}

	updated, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishProductEvent(ctx, entity.EventProductUpdated, updated, "")
	return updated, nil
}

func (s *CatalogService) ensureProductNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.productRepo.GetByName(ctx, name)
	if err == nil {
		if existing.ID != self {
			return ErrProductAlreadyExists
		}
		return nil
	}
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil
	}
	return fmt.Errorf("failed to check product name: %w", err)
}

func (s *CatalogService) uploadImage(ctx context.Context, image *entity.UploadedImage) (string, error) {
	url, err := s.storage.Upload(ctx, image.Filename, image.Content)
	if err != nil {
		metrics.CatalogUploads.WithLabelValues("failed").Inc()
		logger.Error().Err(err).Str("filename", image.Filename).Msg("Image upload failed")
		return "", fmt.Errorf("%w: %v", ErrImageUpload, err)
	}
	metrics.CatalogUploads.WithLabelValues("accepted").Inc()
	return url, nil
}

// releaseImage сообщает о файле, на который не ссылается ни одна строка
func (s *CatalogService) releaseImage(ctx context.Context, productID uuid.UUID, imageURL string) {
	if imageURL == "" {
		return
	}
	s.publishEvent(ctx, entity.ProductEvent{
		EventType: entity.EventMediaOrphaned,
		ProductID: productID,
		ImageURL:  imageURL,
		Timestamp: time.Now(),
	})
}

func (s *CatalogService) publishProductEvent(ctx context.Context, eventType string, product *entity.Product, previousImageURL string) {
	s.publishEvent(ctx, entity.ProductEvent{
		EventType:        eventType,
		ProductID:        product.ID,
		Name:             product.Name,
		Price:            product.Price,
		CategoryID:       product.CategoryID,
		ImageURL:         product.ImageURL,
		PreviousImageURL: previousImageURL,
		Timestamp:        time.Now(),
	})
}

// publishEvent: ошибки Kafka логируются, запись в БД уже выполнена
func (s *CatalogService) publishEvent(ctx context.Context, event entity.ProductEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", event.EventType).Msg("Failed to marshal product event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, event.ProductID.String(), data); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", event.EventType).
			Str("product_id", event.ProductID.String()).
			Msg("Failed to publish product event")
	}
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return newValidationError("price must not be negative")
	}
	if price.GreaterThan(maxPrice) {
		return newValidationError("price is too large")
	}
	return nil
}
