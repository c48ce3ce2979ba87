package economy

import "fmt"

// ClampBalance applies the negative-balance policy for display and downstream
// enforcement. It never rewrites the ledger: a clamped balance is a reported
// value, the underlying entries stay untouched.
func ClampBalance(cents int64, allowNegative bool) int64 {
	if !allowNegative && cents < 0 {
		return 0
	}
	return cents
}

// FormatCents renders an integer-cents amount for humans. With decimals the
// amount is shown exactly; without, the cents/100 quotient is rounded
// half-to-even so repeated formatting introduces no systematic drift.
func FormatCents(cents int64, decimals bool) string {
	if decimals {
		sign := ""
		if cents < 0 {
			sign = "-"
			cents = -cents
		}
		return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
	}
	return fmt.Sprintf("%d", RoundToUnits(cents))
}

// RoundToUnits converts cents to whole currency units using round-half-to-even.
func RoundToUnits(cents int64) int64 {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	units := cents / 100
	rem := cents % 100
	switch {
	case rem > 50:
		units++
	case rem == 50 && units%2 == 1:
		units++
	}
	if neg {
		units = -units
	}
	return units
}
