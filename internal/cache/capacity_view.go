package cache

import (
	"context"
	"fmt"
	"time"
)

const capacityViewKeyPrefix = "capacity:view"

func capacityViewKey(date string) string {
	return fmt.Sprintf("%s:%s", capacityViewKeyPrefix, date)
}

// GetCapacityView reads a cached per-date capacity view into dest.
func GetCapacityView(ctx context.Context, date string, dest interface{}) (bool, error) {
	return GetJSON(ctx, capacityViewKey(date), dest)
}

// SetCapacityView caches a per-date capacity view.
func SetCapacityView(ctx context.Context, date string, value interface{}, ttl time.Duration) error {
	return SetJSON(ctx, capacityViewKey(date), value, ttl)
}

// InvalidateCapacityView drops a date's cached view. Called after any
// reserve, release or limit change for that date.
func InvalidateCapacityView(ctx context.Context, date string) error {
	return Del(ctx, capacityViewKey(date))
}
