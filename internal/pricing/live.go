package pricing

import (
	"context"
	"time"

	"github.com/finopsguard/guardrail/internal/model"
)

// liveTimeout bounds every live pricing call; a provider that doesn't answer
// in this window is treated the same as an error (fall through to static).
const liveTimeout = 10 * time.Second

// liveAdapter looks up a single SKU's price from a cloud's live pricing API.
// kind is the resource category ("instance", "database", "storage", ...)
// and sku is the provider-specific identifier (instance type, tier, SKU
// name). Implementations return an error for anything that isn't a clean
// hit — the caller falls back to the static catalog rather than guess.
type liveAdapter interface {
	Quote(ctx context.Context, kind, sku, region string) (model.PriceQuote, error)
}
