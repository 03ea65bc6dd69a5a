package units

import (
	"fmt"
	"log"
	"math"

	"example.com/effort/internal/observability"
)

// DisplayContext is a rendering hint derived on demand from a serving and a
// target gram amount. It is never persisted.
type DisplayContext struct {
	QuantityText       string
	IsPerProduct       bool
	ServingDescription string
}

// ConverterOption configures Converter behaviour.
type ConverterOption func(*Converter)

// WithLogger sets a custom logger for fallback warnings.
func WithLogger(l *log.Logger) ConverterOption {
	return func(c *Converter) { c.logger = l }
}

// Converter orchestrates serving parsing, fallback policy, display-context
// generation and suggested-serving generation.
type Converter struct {
	logger *log.Logger
}

// NewConverter constructs a Converter.
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{logger: log.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// defaultServing is substituted when a serving description cannot be parsed.
var defaultServing = ServingSize{amount: 100, unit: UnitGrams, grams: 100}

// NormalizeServingText parses a portion description, substituting a 100 g
// default when the text is unparseable. This is the only silent-fallback
// path in the engine; the substitution is logged and counted.
func (c *Converter) NormalizeServingText(text string) ServingSize {
	size, err := ParseServingSize(text)
	if err != nil {
		c.logger.Printf("unparseable serving %q, defaulting to 100 g: %v", text, err)
		observability.RecordServingFallback()
		return defaultServing
	}
	return size
}

// DisplayContextFor derives the rendering hint for showing target grams of a
// food whose base portion is serving. Contextual units render as a unit
// count ("for 3 slices"); weight and volume units render as plain grams.
func (c *Converter) DisplayContextFor(serving ServingSize, target Grams) DisplayContext {
	description := serving.ToDisplayString()
	if serving.Unit().RequiresContext() {
		n := serving.EstimatedUnits(target)
		name := serving.Unit().Plural()
		if n == 1 {
			name = serving.Unit().String()
		}
		return DisplayContext{
			QuantityText:       fmt.Sprintf("for %d %s", n, name),
			IsPerProduct:       true,
			ServingDescription: description,
		}
	}
	return DisplayContext{
		QuantityText:       fmt.Sprintf("for %dg", int(math.Round(float64(target)))),
		IsPerProduct:       false,
		ServingDescription: description,
	}
}

// suggestionFactors scale the base serving into smaller and larger variants.
var suggestionFactors = []float64{0.5, 1.5, 2.0}

// weightAlternatives are fixed gram fallbacks offered for non-weight bases.
var weightAlternatives = []float64{50, 100, 200}

// SuggestedServings produces plausible portion choices around a base
// serving: the base itself, scaled variants, and fixed weight alternatives
// when the base is not weight-based. Invalid entries are filtered out.
func (c *Converter) SuggestedServings(base ServingSize) []ServingSize {
	candidates := []ServingSize{base}
	for _, factor := range suggestionFactors {
		if scaled, err := base.Scale(factor); err == nil {
			candidates = append(candidates, scaled)
		}
	}
	if !base.Unit().IsWeightBased() {
		for _, grams := range weightAlternatives {
			if alt, err := NewServingSize(grams, UnitGrams); err == nil {
				candidates = append(candidates, alt)
			}
		}
	}

	out := make([]ServingSize, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.IsValid() {
			out = append(out, candidate)
		}
	}
	return out
}

// PortionRatio computes how a new gram amount relates to the original
// serving. A zero-equivalent original yields 1 rather than dividing by zero.
func (c *Converter) PortionRatio(original ServingSize, newGrams Grams) float64 {
	if original.ToGrams() <= 0 {
		return 1
	}
	return float64(newGrams) / float64(original.ToGrams())
}

// CompareServings orders two servings by their resolved gram equivalents.
func (c *Converter) CompareServings(a, b ServingSize) int {
	switch {
	case a.ToGrams() < b.ToGrams():
		return -1
	case a.ToGrams() > b.ToGrams():
		return 1
	default:
		return 0
	}
}
