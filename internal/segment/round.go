package segment

import "github.com/shopspring/decimal"

// round rounds half away from zero in decimal arithmetic, so 1.005 becomes 1.01.
func round(f float64, places int32) float64 {
	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}
