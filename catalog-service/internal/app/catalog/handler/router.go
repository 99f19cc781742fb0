package handler

import (
	"net/http"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "catalog-service"

// Handlers - все HTTP обработчики сервиса
type Handlers struct {
	Categories *CategoryHandler
	Products   *ProductHandler
	Reviews    *ReviewHandler
	Users      *UserHandler
}

// SetupRoutes настраивает маршруты Catalog Service
// Чтение каталога публичное, изменения категорий и товаров только для admin
func SetupRoutes(h Handlers, auth *AuthMiddleware, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:    []string{logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := []gin.HandlerFunc{auth.Authenticate(), auth.RequireAdmin()}

	categories := router.Group("/categories")
	{
		categories.GET("", h.Categories.ListCategories)
		categories.GET("/active", h.Categories.ListActiveCategories)
		categories.GET("/:id", h.Categories.GetCategory)

		manage := categories.Group("", admin...)
		manage.POST("", h.Categories.CreateCategory)
		manage.PUT("/:id", h.Categories.UpdateCategory)
		manage.DELETE("/:id", h.Categories.DeleteCategory)
		manage.PATCH("/:id/toggle-homepage", h.Categories.ToggleHomepage)
	}

	products := router.Group("/products")
	{
		products.GET("", h.Products.ListProducts)
		products.GET("/featured", h.Products.ListFeatured)
		products.GET("/on-sale", h.Products.ListOnSale)
		products.GET("/:id", h.Products.GetProduct)

		manage := products.Group("", admin...)
		manage.POST("", ImageUpload(), h.Products.CreateProduct)
		manage.PUT("/:id", ImageUpload(), h.Products.UpdateProduct)
		manage.DELETE("/:id", h.Products.DeleteProduct)
		manage.PATCH("/:id/toggle-featured", h.Products.ToggleFeatured)
		manage.PATCH("/:id/toggle-on-sale", h.Products.ToggleOnSale)
	}

	reviews := router.Group("/reviews")
	{
		reviews.GET("", h.Reviews.ListReviews)
		reviews.GET("/product/:id", h.Reviews.ListProductReviews)

		own := reviews.Group("", auth.Authenticate())
		own.POST("", h.Reviews.CreateReview)
		own.PUT("/:id", h.Reviews.UpdateReview)
		own.DELETE("/:id", h.Reviews.DeleteReview)
	}

	router.GET("/users/me", auth.Authenticate(), h.Users.GetMe)

	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/provider", h.Users.HandleWebhook)
		webhooks.POST("/clerk", h.Users.HandleWebhook)
	}

	return router
}
