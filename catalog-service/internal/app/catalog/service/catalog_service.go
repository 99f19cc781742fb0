package service

import (
	"time"

	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/util"
)

const defaultCategoryCacheTTL = time.Hour

// CatalogService обрабатывает бизнес-логику категорий и товаров
// Координирует работу репозиториев, Redis кеша, Kafka producer и медиа-хостинга
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cache        util.CategoryCache
	publisher    util.MessagePublisher
	storage      util.ObjectStorage
	cacheTTL     time.Duration
}

func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache util.CategoryCache,
	publisher util.MessagePublisher,
	storage util.ObjectStorage,
	cacheTTL time.Duration,
) *CatalogService {
	if cacheTTL <= 0 {
		cacheTTL = defaultCategoryCacheTTL
	}
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
		publisher:    publisher,
		storage:      storage,
		cacheTTL:     cacheTTL,
	}
}
