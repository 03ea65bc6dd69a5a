// Package units normalizes heterogeneous food-portion descriptions into
// canonical gram amounts.
package units

import (
	"errors"
	"fmt"
	"strings"
)

// Grams is a weight expressed in grams.
type Grams float64

// ErrInvalidUnit is returned when a portion-unit token cannot be recognized.
var ErrInvalidUnit = errors.New("invalid portion unit")

// Unit enumerates the portion-unit kinds the normalizer understands.
type Unit int

const (
	UnitGrams Unit = iota
	UnitKilograms
	UnitMilliliters
	UnitLiters
	UnitCup
	UnitTablespoon
	UnitTeaspoon
	UnitPiece
	UnitSlice
	UnitServing
	UnitPortion
	UnitBottle
	UnitCan
	UnitPer100g
)

// gramsPerUnit holds the fixed conversion table. Container and count units
// carry rough averages, not exact weights. UnitPer100g is special-cased in
// ServingSize: the amount is multiplied by 100.
var gramsPerUnit = map[Unit]float64{
	UnitGrams:       1,
	UnitKilograms:   1000,
	UnitMilliliters: 1,
	UnitLiters:      1000,
	UnitCup:         200,
	UnitTablespoon:  15,
	UnitTeaspoon:    5,
	UnitPiece:       20,
	UnitSlice:       30,
	UnitServing:     150,
	UnitPortion:     150,
	UnitBottle:      330,
	UnitCan:         250,
	UnitPer100g:     100,
}

var unitTokens = map[Unit]string{
	UnitGrams:       "g",
	UnitKilograms:   "kg",
	UnitMilliliters: "ml",
	UnitLiters:      "l",
	UnitCup:         "cup",
	UnitTablespoon:  "tbsp",
	UnitTeaspoon:    "tsp",
	UnitPiece:       "piece",
	UnitSlice:       "slice",
	UnitServing:     "serving",
	UnitPortion:     "portion",
	UnitBottle:      "bottle",
	UnitCan:         "can",
	UnitPer100g:     "100g",
}

var unitPlurals = map[Unit]string{
	UnitPiece:   "pieces",
	UnitSlice:   "slices",
	UnitServing: "servings",
	UnitPortion: "portions",
	UnitBottle:  "bottles",
	UnitCan:     "cans",
	UnitCup:     "cups",
}

// ParseUnit resolves a lower-cased, trimmed token into a Unit. Tokens are
// matched in a fixed precedence order so that ambiguous substrings resolve
// deterministically: container units first, then count units, then weight
// units ("100g" before "kg" before bare "g"), then volume units ("ml" and
// spoon/cup tokens before a bare "l"). The bare "l" and "g" forms match only
// the exact token or a digit-adjacent suffix; other words end up invalid.
func ParseUnit(raw string) (Unit, error) {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return 0, fmt.Errorf("%w: empty token", ErrInvalidUnit)
	}

	switch {
	case strings.Contains(token, "bottle"):
		return UnitBottle, nil
	case strings.Contains(token, "can"):
		return UnitCan, nil
	case strings.Contains(token, "slice"):
		return UnitSlice, nil
	case strings.Contains(token, "piece"):
		return UnitPiece, nil
	case strings.Contains(token, "serving"):
		return UnitServing, nil
	case strings.Contains(token, "portion"):
		return UnitPortion, nil
	case strings.Contains(token, "100g") || strings.Contains(token, "100 g"):
		return UnitPer100g, nil
	case strings.Contains(token, "kg") || strings.Contains(token, "kilogram"):
		return UnitKilograms, nil
	case strings.Contains(token, "ml") || strings.Contains(token, "milliliter"):
		return UnitMilliliters, nil
	case strings.Contains(token, "tbsp") || strings.Contains(token, "tablespoon"):
		return UnitTablespoon, nil
	case strings.Contains(token, "tsp") || strings.Contains(token, "teaspoon"):
		return UnitTeaspoon, nil
	case strings.Contains(token, "cup"):
		return UnitCup, nil
	case strings.Contains(token, "liter") || strings.Contains(token, "litre") || isBareUnitSuffix(token, "l"):
		return UnitLiters, nil
	case strings.Contains(token, "gram") || isBareUnitSuffix(token, "g"):
		return UnitGrams, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, raw)
	}
}

// isBareUnitSuffix reports whether token is exactly the unit suffix or ends
// in it immediately after a digit ("500l", "45g"). Ordinary words that merely
// end in the letter ("bowl", "helping") must stay unrecognized.
func isBareUnitSuffix(token, suffix string) bool {
	if token == suffix {
		return true
	}
	if !strings.HasSuffix(token, suffix) || len(token) <= len(suffix) {
		return false
	}
	prev := token[len(token)-len(suffix)-1]
	return prev >= '0' && prev <= '9'
}

// String returns the canonical token for the unit. The token is accepted back
// by ParseUnit, so display strings round-trip.
func (u Unit) String() string {
	if token, ok := unitTokens[u]; ok {
		return token
	}
	return "unknown"
}

// Plural returns the plural display form for count/container units and the
// canonical token for everything else.
func (u Unit) Plural() string {
	if plural, ok := unitPlurals[u]; ok {
		return plural
	}
	return u.String()
}

// IsWeightBased reports whether the unit measures weight directly.
func (u Unit) IsWeightBased() bool {
	switch u {
	case UnitGrams, UnitKilograms, UnitPer100g:
		return true
	}
	return false
}

// IsVolumeBased reports whether the unit measures volume. Volume converts to
// grams under the 1 ml = 1 g approximation.
func (u Unit) IsVolumeBased() bool {
	switch u {
	case UnitMilliliters, UnitLiters, UnitCup, UnitTablespoon, UnitTeaspoon:
		return true
	}
	return false
}

// RequiresContext reports whether the gram equivalent is a rough average that
// needs food-specific context to be exact (count and container units).
func (u Unit) RequiresContext() bool {
	return !u.IsWeightBased() && !u.IsVolumeBased()
}

// GramsPerUnit returns the conversion factor from one unit to grams.
func (u Unit) GramsPerUnit() float64 {
	return gramsPerUnit[u]
}
