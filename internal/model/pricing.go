package model

import "github.com/shopspring/decimal"

// Confidence tags how trustworthy a price quote is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders confidences for min-reduction: lower rank wins.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// MinConfidence returns the lower of two confidences.
func MinConfidence(a, b Confidence) Confidence {
	if a.Rank() <= b.Rank() {
		return a
	}
	return b
}

// PriceQuote is what a pricing adapter returns for one SKU lookup.
//
// Invariant: MonthlyPrice ≈ HourlyPrice × 730 unless the SKU is inherently
// monthly (e.g. a load balancer flat rate), in which case HourlyPrice is
// zero and only MonthlyPrice is meaningful.
type PriceQuote struct {
	HourlyPrice  decimal.Decimal        `json:"hourly_price"`
	MonthlyPrice decimal.Decimal        `json:"monthly_price"`
	Confidence   Confidence             `json:"confidence"`
	Extra        map[string]interface{} `json:"extra_attrs,omitempty"`
}

// HoursPerMonth is the constant the catalog and simulator use to convert an
// hourly rate to a monthly one.
const HoursPerMonth = 730

// NewHourlyQuote builds a PriceQuote from an hourly rate, deriving the
// monthly price as hourly × 730.
func NewHourlyQuote(hourly decimal.Decimal, confidence Confidence) PriceQuote {
	return PriceQuote{
		HourlyPrice:  hourly,
		MonthlyPrice: hourly.Mul(decimal.NewFromInt(HoursPerMonth)),
		Confidence:   confidence,
	}
}

// NewMonthlyFlatQuote builds a PriceQuote for a resource billed as a flat
// monthly charge regardless of hours elapsed (load balancers, EKS control
// plane).
func NewMonthlyFlatQuote(monthly decimal.Decimal, confidence Confidence) PriceQuote {
	return PriceQuote{
		MonthlyPrice: monthly,
		Confidence:   confidence,
	}
}

// FallbackHourlyRate is the generic rate used when a pricing catalog has no
// entry at all for a requested SKU.
var FallbackHourlyRate = decimal.NewFromFloat(0.10)

// GenericFallbackQuote returns the catalog-wide low-confidence fallback
// quote used when no cloud-specific default applies.
func GenericFallbackQuote() PriceQuote {
	return NewHourlyQuote(FallbackHourlyRate, ConfidenceLow)
}
