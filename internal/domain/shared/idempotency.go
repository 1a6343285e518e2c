package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs a consumer has already
// handled. The event bus delivers at-least-once, so a payment or
// transaction event can arrive twice; the store makes the second
// delivery a no-op.
type IdempotencyStore interface {
	// MarkProcessed records an event ID with a TTL. It returns true when
	// the ID was newly recorded and false when it was already present.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether an event ID has already been recorded
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close releases the store's resources
	Close() error
}

// IdempotencyConfig controls deduplication for an event consumer
type IdempotencyConfig struct {
	// TTL bounds how long an event ID is remembered. A redelivery after
	// the TTL is processed again.
	TTL time.Duration

	// Enabled turns deduplication off entirely when false
	Enabled bool
}

// DefaultIdempotencyConfig remembers event IDs for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
