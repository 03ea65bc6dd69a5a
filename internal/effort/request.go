package effort

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest is returned when a calculation request is built from an
// empty dish or an invalid user profile.
var ErrInvalidRequest = errors.New("invalid effort request")

// HighCalorieThreshold marks the point where a dish is flagged high-calorie.
const HighCalorieThreshold Calories = 500

// Dish is the read-only view of a resolved food item the calculator needs:
// identity for display and a calorie total already adjusted for the portion
// actually consumed.
type Dish struct {
	ID       string
	Name     string
	Calories Calories
}

// UserProfile carries the health information relevant to effort estimates.
// PreferredActivities is ordered by priority, highest first.
type UserProfile struct {
	Weight              Kilograms
	PreferredActivities []string
	Experience          Experience
}

// Request binds a dish and a user profile into one calculation query. It is
// created fresh per calculation and never persisted.
type Request struct {
	dish Dish
	user UserProfile
}

// NewRequest validates inputs and builds a Request.
func NewRequest(dish Dish, user UserProfile) (Request, error) {
	if strings.TrimSpace(dish.Name) == "" {
		return Request{}, fmt.Errorf("%w: dish name is required", ErrInvalidRequest)
	}
	if dish.Calories <= 0 {
		return Request{}, fmt.Errorf("%w: calories must be > 0, got %v", ErrInvalidRequest, dish.Calories)
	}
	if user.Weight <= 0 {
		return Request{}, fmt.Errorf("%w: weight must be > 0, got %v", ErrInvalidRequest, user.Weight)
	}
	return Request{dish: dish, user: user}, nil
}

// Dish returns the dish view.
func (r Request) Dish() Dish { return r.dish }

// Calories returns the calorie total to burn.
func (r Request) Calories() Calories { return r.dish.Calories }

// Weight returns the user's body weight.
func (r Request) Weight() Kilograms { return r.user.Weight }

// Experience returns the user's training level.
func (r Request) Experience() Experience { return r.user.Experience }

// PreferredActivityKeys returns the user's activity preferences in priority
// order. The slice is a copy.
func (r Request) PreferredActivityKeys() []string {
	out := make([]string, len(r.user.PreferredActivities))
	copy(out, r.user.PreferredActivities)
	return out
}

// PrimaryPreference returns the highest-priority preferred key, or "".
func (r Request) PrimaryPreference() string {
	if len(r.user.PreferredActivities) == 0 {
		return ""
	}
	return r.user.PreferredActivities[0]
}

// IsHighCalorie flags dishes at or above the high-calorie threshold.
func (r Request) IsHighCalorie() bool {
	return r.dish.Calories >= HighCalorieThreshold
}
