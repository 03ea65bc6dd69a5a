package effort

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidActivity is returned when an activity is constructed with a
// missing key or label.
var ErrInvalidActivity = errors.New("invalid activity")

// Activity is a physical activity a user can perform to burn energy.
// Identity is carried by Key alone; Label and Met may evolve without
// breaking it.
type Activity struct {
	Key   string
	Label string
	Met   Met
}

// NewActivity validates and builds an Activity.
func NewActivity(key, label string, met Met) (Activity, error) {
	if strings.TrimSpace(key) == "" {
		return Activity{}, fmt.Errorf("%w: key is required", ErrInvalidActivity)
	}
	if strings.TrimSpace(label) == "" {
		return Activity{}, fmt.Errorf("%w: label is required", ErrInvalidActivity)
	}
	if met.Value() <= 0 {
		return Activity{}, fmt.Errorf("%w: %v", ErrInvalidActivity, ErrInvalidMet)
	}
	return Activity{Key: key, Label: label, Met: met}, nil
}

// Equal compares activities by key only.
func (a Activity) Equal(other Activity) bool { return a.Key == other.Key }

// IsLight delegates to the MET classification.
func (a Activity) IsLight() bool { return a.Met.IsLight() }

// IsModerate delegates to the MET classification.
func (a Activity) IsModerate() bool { return a.Met.IsModerate() }

// IsVigorous delegates to the MET classification.
func (a Activity) IsVigorous() bool { return a.Met.IsVigorous() }

// MoreIntenseThan reports whether this activity has a strictly higher MET.
func (a Activity) MoreIntenseThan(other Activity) bool {
	return a.Met.Value() > other.Met.Value()
}
