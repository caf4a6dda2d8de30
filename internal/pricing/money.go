package pricing

import "github.com/shopspring/decimal"

// decimalRate is the type live-adapter rate extraction returns; kept as an
// alias so conversions from provider-specific money shapes (Cloud Billing's
// units+nanos, AWS's decimal string) read the same way at the call site.
type decimalRate = decimal.Decimal

func zeroRate() decimalRate { return decimal.Zero }

// ratefromUnits converts a Cloud Billing Money value (whole units plus
// nanos, i.e. billionths of a unit) into a decimal hourly rate.
func ratefromUnits(units int64, nanos int32) decimalRate {
	whole := decimal.NewFromInt(units)
	frac := decimal.NewFromInt(int64(nanos)).Div(decimal.NewFromInt(1_000_000_000))
	return whole.Add(frac)
}
