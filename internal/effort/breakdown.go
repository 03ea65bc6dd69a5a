package effort

import (
	"math"
	"sort"
)

// quickOptionThreshold is the duration below which an option counts as quick.
const quickOptionThreshold Minutes = 20

// Breakdown aggregates a primary recommended activity with a deduplicated
// set of alternatives. No alternative ever shares a key with the primary.
// Construct through ComposeBreakdown.
type Breakdown struct {
	primary      Item
	alternatives []Item
}

// ComposeBreakdown builds a Breakdown, stripping alternatives that duplicate
// the primary or each other (first occurrence wins).
func ComposeBreakdown(primary Item, alternatives []Item) Breakdown {
	seen := map[string]struct{}{primary.ActivityKey: {}}
	deduped := make([]Item, 0, len(alternatives))
	for _, alt := range alternatives {
		if _, ok := seen[alt.ActivityKey]; ok {
			continue
		}
		seen[alt.ActivityKey] = struct{}{}
		deduped = append(deduped, alt)
	}
	return Breakdown{primary: primary, alternatives: deduped}
}

// Primary returns the recommended activity.
func (b Breakdown) Primary() Item { return b.primary }

// Alternatives returns a copy of the alternative items.
func (b Breakdown) Alternatives() []Item {
	out := make([]Item, len(b.alternatives))
	copy(out, b.alternatives)
	return out
}

// All returns the primary followed by the alternatives.
func (b Breakdown) All() []Item {
	out := make([]Item, 0, 1+len(b.alternatives))
	out = append(out, b.primary)
	out = append(out, b.alternatives...)
	return out
}

// WithAdditionalAlternatives merges extra items into the alternatives,
// re-applying primary exclusion and key deduplication.
func (b Breakdown) WithAdditionalAlternatives(extra []Item) Breakdown {
	merged := make([]Item, 0, len(b.alternatives)+len(extra))
	merged = append(merged, b.alternatives...)
	merged = append(merged, extra...)
	return ComposeBreakdown(b.primary, merged)
}

// Quickest returns the item with the fewest minutes.
func (b Breakdown) Quickest() Item {
	quickest := b.primary
	for _, item := range b.alternatives {
		if item.Minutes < quickest.Minutes {
			quickest = item
		}
	}
	return quickest
}

// Longest returns the item with the most minutes.
func (b Breakdown) Longest() Item {
	longest := b.primary
	for _, item := range b.alternatives {
		if item.Minutes > longest.Minutes {
			longest = item
		}
	}
	return longest
}

// SortedByDuration returns all items ordered by minutes ascending.
func (b Breakdown) SortedByDuration() []Item {
	items := b.All()
	sort.SliceStable(items, func(i, j int) bool { return items[i].Minutes < items[j].Minutes })
	return items
}

// SortedByMet returns all items ordered by MET descending.
func (b Breakdown) SortedByMet() []Item {
	items := b.All()
	sort.SliceStable(items, func(i, j int) bool { return items[i].MetValue > items[j].MetValue })
	return items
}

// FilterByDuration returns the items whose minutes fall inside [min, max].
func (b Breakdown) FilterByDuration(min, max Minutes) []Item {
	out := make([]Item, 0)
	for _, item := range b.All() {
		if item.Minutes >= min && item.Minutes <= max {
			out = append(out, item)
		}
	}
	return out
}

// HasQuickOptions reports whether any item takes under twenty minutes.
func (b Breakdown) HasQuickOptions() bool {
	for _, item := range b.All() {
		if item.Minutes < quickOptionThreshold {
			return true
		}
	}
	return false
}

// Summary condenses the breakdown for list displays.
type Summary struct {
	TotalOptions         int
	QuickestTime         Minutes
	LongestTime          Minutes
	AverageTime          Minutes
	PrimaryActivityLabel string
}

// Summarize derives the summary view.
func (b Breakdown) Summarize() Summary {
	items := b.All()
	total := 0
	for _, item := range items {
		total += int(item.Minutes)
	}
	return Summary{
		TotalOptions:         len(items),
		QuickestTime:         b.Quickest().Minutes,
		LongestTime:          b.Longest().Minutes,
		AverageTime:          Minutes(math.Round(float64(total) / float64(len(items)))),
		PrimaryActivityLabel: b.primary.ActivityLabel,
	}
}
