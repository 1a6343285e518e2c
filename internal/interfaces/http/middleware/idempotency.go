package middleware

import (
	"net/http"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader is the header clients set to make a mutation replayable
const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	// Store tracks which keys have already been accepted
	Store shared.IdempotencyStore
	// TTL is how long an accepted key blocks replays
	TTL time.Duration
	// MaxKeyLength caps the accepted header length
	MaxKeyLength int
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultIdempotencyMiddlewareConfig returns default idempotency middleware configuration
func DefaultIdempotencyMiddlewareConfig(store shared.IdempotencyStore) IdempotencyConfig {
	return IdempotencyConfig{
		Store:        store,
		TTL:          24 * time.Hour,
		MaxKeyLength: 128,
	}
}

// Idempotency returns a middleware that rejects replays of mutation requests
// carrying the same Idempotency-Key. The key is optional; requests without it
// pass through. Keys are scoped per tenant, method and path so the same key
// can be reused across different operations.
//
// The store is consulted before the handler runs, so a replayed request is
// rejected even when the first attempt is still in flight.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.MaxKeyLength <= 0 {
		cfg.MaxKeyLength = 128
	}
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > cfg.MaxKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_IDEMPOTENCY_KEY",
					"message": "Idempotency-Key exceeds maximum allowed length",
				},
			})
			return
		}

		tenantID := GetTenantID(c)
		if tenantID == "" {
			tenantID = c.GetHeader(TenantHeaderKey)
		}
		scoped := tenantID + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key

		newlyMarked, err := cfg.Store.MarkProcessed(c.Request.Context(), scoped, cfg.TTL)
		if err != nil {
			// Store outage must not block mutations; the request proceeds
			// without replay protection.
			if cfg.Logger != nil {
				cfg.Logger.Warn("idempotency store unavailable, skipping replay check",
					zap.String("path", c.FullPath()),
					zap.Error(err),
				)
			}
			c.Next()
			return
		}
		if !newlyMarked {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DUPLICATE_REQUEST",
					"message": "A request with this Idempotency-Key was already accepted",
				},
			})
			return
		}

		c.Next()
	}
}
