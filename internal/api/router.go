package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"bed-request-backend/config"
	"bed-request-backend/internal/mw"
	"bed-request-backend/internal/ticket"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(tickets *ticket.Service, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(tickets)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/requests", handler.CreateRequest)
		api.POST("/requests/:request_id/assign", handler.AssignRequest)

		// Read surfaces only; assignments must always see fresh state.
		api.GET("/requests", caching, handler.ListRequests)
		api.GET("/requests/:request_id", caching, handler.GetRequest)
	}

	return r
}
