package units

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidServing is returned when a serving description cannot be parsed
// or violates the positive-amount invariant.
var ErrInvalidServing = errors.New("invalid serving size")

// amountPattern extracts the first numeric token; a comma may stand in for
// the decimal point ("1,5 kg").
var amountPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ServingSize is an immutable amount + unit pair with its gram equivalent
// precomputed from the conversion table. Construct through NewServingSize or
// ParseServingSize only.
type ServingSize struct {
	amount float64
	unit   Unit
	grams  Grams
}

// NewServingSize builds a ServingSize, computing the gram equivalent.
func NewServingSize(amount float64, unit Unit) (ServingSize, error) {
	if amount <= 0 {
		return ServingSize{}, fmt.Errorf("%w: amount must be > 0, got %v", ErrInvalidServing, amount)
	}
	return ServingSize{
		amount: amount,
		unit:   unit,
		grams:  Grams(amount * unit.GramsPerUnit()),
	}, nil
}

// ParseServingSize parses a free-text portion description such as "1 slice",
// "250ml" or "1,5 kg". The amount defaults to 1 when the text carries only a
// unit token.
func ParseServingSize(text string) (ServingSize, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ServingSize{}, fmt.Errorf("%w: empty text", ErrInvalidServing)
	}

	amount := 1.0
	rest := trimmed
	if match := amountPattern.FindString(trimmed); match != "" {
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
		if err != nil {
			return ServingSize{}, fmt.Errorf("%w: %q", ErrInvalidServing, text)
		}
		amount = parsed
		rest = strings.Replace(trimmed, match, "", 1)
	}
	if amount <= 0 {
		return ServingSize{}, fmt.Errorf("%w: amount must be > 0 in %q", ErrInvalidServing, text)
	}

	unit, err := ParseUnit(rest)
	if err != nil {
		return ServingSize{}, err
	}
	return NewServingSize(amount, unit)
}

// Amount returns the amount in the original unit.
func (s ServingSize) Amount() float64 { return s.amount }

// Unit returns the portion unit.
func (s ServingSize) Unit() Unit { return s.unit }

// ToGrams returns the precomputed gram equivalent.
func (s ServingSize) ToGrams() Grams { return s.grams }

// Scale returns a new ServingSize with the amount multiplied by factor; the
// gram equivalent is recomputed proportionally.
func (s ServingSize) Scale(factor float64) (ServingSize, error) {
	if factor <= 0 {
		return ServingSize{}, fmt.Errorf("%w: scale factor must be > 0, got %v", ErrInvalidServing, factor)
	}
	return NewServingSize(s.amount*factor, s.unit)
}

// WithAmount returns a new ServingSize for the same unit at a new amount.
func (s ServingSize) WithAmount(amount float64) (ServingSize, error) {
	return NewServingSize(amount, s.unit)
}

// ToDisplayString renders the serving in a form ParseServingSize accepts.
func (s ServingSize) ToDisplayString() string {
	return fmt.Sprintf("%s %s", strconv.FormatFloat(s.amount, 'f', -1, 64), s.unit)
}

// maxAmountByUnit holds unit-specific sanity caps on the amount in the
// original unit; portions beyond these are considered nonsensical.
var maxAmountByUnit = map[Unit]float64{
	UnitPiece:  50,
	UnitSlice:  20,
	UnitBottle: 10,
}

// IsValid reports whether the serving is plausible: the gram equivalent must
// lie in [1, 5000] and unit-specific amount caps must hold.
func (s ServingSize) IsValid() bool {
	if s.grams < 1 || s.grams > 5000 {
		return false
	}
	if limit, ok := maxAmountByUnit[s.unit]; ok && s.amount > limit {
		return false
	}
	return true
}

// EstimatedUnits computes how many of the original units correspond to a
// target gram amount, rounded to the nearest whole unit.
func (s ServingSize) EstimatedUnits(target Grams) int {
	if s.grams <= 0 {
		return 0
	}
	return int(math.Round(float64(target) / float64(s.grams) * s.amount))
}
