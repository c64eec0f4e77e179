/**
 * @description
 * American-odds helpers.
 * Comparison uses payout semantics: +120 beats -110, and -105 beats -120,
 * because a bettor keeps more of the payout at the less negative price.
 */

package oddsmath

import (
	"fmt"
	"math"
)

// AmericanToDecimal converts American odds to decimal odds
// American +150 → Decimal 2.50
// American -150 → Decimal 1.67
func AmericanToDecimal(american float64) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}

	if american > 0 {
		return (american / 100.0) + 1.0, nil
	}

	return (100.0 / -american) + 1.0, nil
}

// DecimalToAmerican converts decimal odds to American odds
// Decimal 2.50 → American +150
// Decimal 1.67 → American -150
func DecimalToAmerican(decimal float64) (float64, error) {
	if decimal < 1.0 {
		return 0, fmt.Errorf("invalid decimal odds: must be >= 1.0")
	}

	if decimal >= 2.0 {
		return math.Round((decimal - 1.0) * 100.0), nil
	}

	return math.Round(-100.0 / (decimal - 1.0)), nil
}

// ImpliedProbability converts American odds to the implied win probability
func ImpliedProbability(american float64) (float64, error) {
	decimal, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return 1.0 / decimal, nil
}

// Better reports whether American price a pays out more than price b.
// Comparison happens in decimal space, where the payout multiplier is
// strictly increasing: +120 (2.20) beats -110 (1.91), -105 (1.95) beats
// -120 (1.83). A price of 0 is malformed and never wins.
func Better(a, b float64) bool {
	da, errA := AmericanToDecimal(a)
	db, errB := AmericanToDecimal(b)
	if errA != nil {
		return false
	}
	if errB != nil {
		return true
	}
	return da > db
}
