package effort

import (
	"errors"
	"fmt"
	"math"
)

// Calories is an energy amount in kilocalories.
type Calories float64

// Kilograms is a body weight in kilograms.
type Kilograms float64

// Minutes is a whole-minute duration of physical activity.
type Minutes int

// ErrNonPositiveInput signals a caller bug: the metabolic formula only
// accepts strictly positive calories, weight and MET.
var ErrNonPositiveInput = errors.New("non-positive input")

// Policy converts between calories and activity minutes.
type Policy interface {
	// MinutesToBurn returns how long an activity at the given MET must be
	// sustained to burn the calories. Always at least one minute.
	MinutesToBurn(calories Calories, weight Kilograms, met Met) (Minutes, error)
	// CaloriesBurned is the inverse: energy spent over a duration.
	CaloriesBurned(duration Minutes, weight Kilograms, met Met) (Calories, error)
}

// StandardPolicy implements the plain metabolic-equivalent formula:
// calories per minute = MET x 3.5 x weight / 200.
type StandardPolicy struct{}

func (StandardPolicy) caloriesPerMinute(weight Kilograms, met Met) (float64, error) {
	if weight <= 0 {
		return 0, fmt.Errorf("%w: weight %v", ErrNonPositiveInput, weight)
	}
	if met.Value() <= 0 {
		return 0, fmt.Errorf("%w: met %v", ErrNonPositiveInput, met.Value())
	}
	return met.Value() * 3.5 * float64(weight) / 200, nil
}

// MinutesToBurn implements Policy.
func (p StandardPolicy) MinutesToBurn(calories Calories, weight Kilograms, met Met) (Minutes, error) {
	if calories <= 0 {
		return 0, fmt.Errorf("%w: calories %v", ErrNonPositiveInput, calories)
	}
	rate, err := p.caloriesPerMinute(weight, met)
	if err != nil {
		return 0, err
	}
	minutes := Minutes(math.Round(float64(calories) / rate))
	if minutes < 1 {
		minutes = 1
	}
	return minutes, nil
}

// CaloriesBurned implements Policy.
func (p StandardPolicy) CaloriesBurned(duration Minutes, weight Kilograms, met Met) (Calories, error) {
	if duration <= 0 {
		return 0, fmt.Errorf("%w: duration %v", ErrNonPositiveInput, duration)
	}
	rate, err := p.caloriesPerMinute(weight, met)
	if err != nil {
		return 0, err
	}
	return Calories(rate * float64(duration)), nil
}

// DefaultMarginPercent is the safety margin applied by NewConservativePolicy.
const DefaultMarginPercent = 10

// ConservativePolicy pads the standard estimate with a percentage margin,
// acknowledging that real-world exertion rarely matches tabulated METs.
type ConservativePolicy struct {
	MarginPercent float64
	inner         StandardPolicy
}

// NewConservativePolicy builds a ConservativePolicy with the default margin.
func NewConservativePolicy() ConservativePolicy {
	return ConservativePolicy{MarginPercent: DefaultMarginPercent}
}

// MinutesToBurn implements Policy, adding round(standard x margin/100) extra
// minutes on top of the standard estimate.
func (p ConservativePolicy) MinutesToBurn(calories Calories, weight Kilograms, met Met) (Minutes, error) {
	standard, err := p.inner.MinutesToBurn(calories, weight, met)
	if err != nil {
		return 0, err
	}
	extra := Minutes(math.Round(float64(standard) * p.MarginPercent / 100))
	return standard + extra, nil
}

// CaloriesBurned implements Policy. The inverse stays on the standard rate;
// the margin only inflates recommended durations.
func (p ConservativePolicy) CaloriesBurned(duration Minutes, weight Kilograms, met Met) (Calories, error) {
	return p.inner.CaloriesBurned(duration, weight, met)
}

// Experience describes how trained a user is; it selects the safety margin.
type Experience string

const (
	ExperienceBeginner     Experience = "beginner"
	ExperienceIntermediate Experience = "intermediate"
	ExperienceAdvanced     Experience = "advanced"
)

// PolicyForExperience maps experience levels onto margins: beginners get the
// largest padding, advanced users the raw formula.
func PolicyForExperience(level Experience) Policy {
	switch level {
	case ExperienceBeginner:
		return ConservativePolicy{MarginPercent: 15}
	case ExperienceIntermediate:
		return ConservativePolicy{MarginPercent: 5}
	default:
		return StandardPolicy{}
	}
}
