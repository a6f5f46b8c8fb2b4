package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"clinic-logistics-backend/config"
	"clinic-logistics-backend/internal/mw"
	"clinic-logistics-backend/internal/schedule"
	"clinic-logistics-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s *store.GormStore, engine *schedule.Engine, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, engine, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Booking endpoints read current state on every call; never cached.
		api.POST("/appointments", handler.PostAppointment)
		api.GET("/appointments", handler.GetAppointments)
		api.GET("/appointments/:id", handler.GetAppointment)
		api.PATCH("/appointments/:id", handler.PatchAppointment)
		api.POST("/appointments/:id/cancel", handler.CancelAppointment)

		api.GET("/resources", caching, handler.GetResources)
		api.POST("/resources", handler.PostResource)
		api.PATCH("/resources/:id", handler.PatchResource)
		api.DELETE("/resources/:id", handler.DeleteResource)

		api.GET("/products", caching, handler.GetProducts)
		api.POST("/products", handler.PostProduct)
		api.PATCH("/products/:id", handler.PatchProduct)

		api.GET("/suppliers", caching, handler.GetSuppliers)
		api.POST("/suppliers", handler.PostSupplier)
		api.PATCH("/suppliers/:id", handler.PatchSupplier)

		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
