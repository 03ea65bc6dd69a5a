package effort

import "fmt"

// Item is one activity's minute-cost to burn a fixed calorie amount.
type Item struct {
	ActivityKey   string
	ActivityLabel string
	Minutes       Minutes
	MetValue      float64
}

// NewItem pairs an activity with a computed duration.
func NewItem(activity Activity, minutes Minutes) Item {
	return Item{
		ActivityKey:   activity.Key,
		ActivityLabel: activity.Label,
		Minutes:       minutes,
		MetValue:      activity.Met.Value(),
	}
}

// EffortDescription buckets the duration into a coarse label for display.
func (i Item) EffortDescription() string {
	switch {
	case i.Minutes < 10:
		return "Quick"
	case i.Minutes < 30:
		return "Moderate"
	case i.Minutes < 60:
		return "Substantial"
	default:
		return "Extended"
	}
}

// FormattedDuration renders the duration as "N min" under an hour, otherwise
// "Hh" or "Hh Mmin".
func (i Item) FormattedDuration() string {
	if i.Minutes < 60 {
		return fmt.Sprintf("%d min", i.Minutes)
	}
	hours := i.Minutes / 60
	remainder := i.Minutes % 60
	if remainder == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dmin", hours, remainder)
}
