package app

import "github.com/shopspring/decimal"

// UseNumericDecimals makes prices and ratings encode as JSON numbers rather
// than quoted strings. It flips a process-wide switch in the decimal package,
// so call it once from main before anything is encoded.
func UseNumericDecimals() {
	decimal.MarshalJSONWithoutQuotes = true
}
