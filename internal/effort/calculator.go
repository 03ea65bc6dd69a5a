package effort

import (
	"context"
	"errors"
	"sort"

	"example.com/effort/internal/observability"
)

// ErrNoSuitableActivity is returned when every primary-selection fallback
// tier comes up empty. There is no sane default beyond this point.
var ErrNoSuitableActivity = errors.New("no suitable activity found")

// maxAlternatives caps the alternative list produced by the selection
// heuristic.
const maxAlternatives = 5

// Intensity bands relative to the primary's MET; a candidate below the lower
// band or above the upper band counts as a markedly different option.
const (
	lowerIntensityBand = 0.7
	upperIntensityBand = 1.3
)

// Calculator selects activities from a catalog and applies a policy to turn
// a request into minute counts. It holds no mutable state and is safe for
// concurrent use.
type Calculator struct {
	catalog Catalog
	policy  Policy
}

// NewCalculator builds a Calculator. A nil policy falls back to the standard
// formula.
func NewCalculator(catalog Catalog, policy Policy) *Calculator {
	if policy == nil {
		policy = StandardPolicy{}
	}
	return &Calculator{catalog: catalog, policy: policy}
}

// Calculate produces the full breakdown: one primary recommendation plus a
// small diverse set of alternatives.
func (c *Calculator) Calculate(ctx context.Context, req Request) (Breakdown, error) {
	primary, err := c.selectPrimary(ctx, req)
	if err != nil {
		return Breakdown{}, err
	}

	alternatives, err := c.selectAlternatives(ctx, req, primary)
	if err != nil {
		return Breakdown{}, err
	}

	primaryItem, err := c.itemFor(req, primary)
	if err != nil {
		return Breakdown{}, err
	}
	altItems := make([]Item, 0, len(alternatives))
	for _, activity := range alternatives {
		item, err := c.itemFor(req, activity)
		if err != nil {
			return Breakdown{}, err
		}
		altItems = append(altItems, item)
	}

	observability.RecordCalculation("standard")
	return ComposeBreakdown(primaryItem, altItems), nil
}

// selectPrimary walks the fallback tiers: preferred keys in priority order,
// the single primary preference, then the head of the default list.
func (c *Calculator) selectPrimary(ctx context.Context, req Request) (Activity, error) {
	for _, key := range req.PreferredActivityKeys() {
		activity, err := c.catalog.GetByKey(ctx, key)
		if err != nil {
			return Activity{}, err
		}
		if activity != nil {
			return *activity, nil
		}
	}

	if key := req.PrimaryPreference(); key != "" {
		activity, err := c.catalog.GetByKey(ctx, key)
		if err != nil {
			return Activity{}, err
		}
		if activity != nil {
			return *activity, nil
		}
	}

	defaults, err := c.catalog.ListDefaults(ctx)
	if err != nil {
		return Activity{}, err
	}
	if len(defaults) > 0 {
		return defaults[0], nil
	}

	return Activity{}, ErrNoSuitableActivity
}

// selectAlternatives assembles a diverse, capped alternative list: at most
// one markedly lighter option, at most one markedly harder option, up to two
// of the user's remaining preferences, then defaults to fill.
func (c *Calculator) selectAlternatives(ctx context.Context, req Request, primary Activity) ([]Activity, error) {
	pool, err := c.catalog.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		// Minimal catalog: degrade to the default list.
		pool, err = c.catalog.ListDefaults(ctx)
		if err != nil {
			return nil, err
		}
	}

	selected := make([]Activity, 0, maxAlternatives)
	seen := map[string]struct{}{primary.Key: {}}
	add := func(activity Activity) bool {
		if len(selected) >= maxAlternatives {
			return false
		}
		if _, ok := seen[activity.Key]; ok {
			return false
		}
		seen[activity.Key] = struct{}{}
		selected = append(selected, activity)
		return true
	}

	primaryMet := primary.Met.Value()
	for _, candidate := range pool {
		if candidate.Key != primary.Key && candidate.Met.Value() < primaryMet*lowerIntensityBand {
			add(candidate)
			break
		}
	}
	for _, candidate := range pool {
		if candidate.Key != primary.Key && candidate.Met.Value() > primaryMet*upperIntensityBand {
			add(candidate)
			break
		}
	}

	preferred := 0
	for _, key := range req.PreferredActivityKeys() {
		if preferred >= 2 || len(selected) >= maxAlternatives {
			break
		}
		if _, ok := seen[key]; ok {
			continue
		}
		activity, err := c.catalog.GetByKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if activity != nil && add(*activity) {
			preferred++
		}
	}

	if len(selected) < maxAlternatives {
		defaults, err := c.catalog.ListDefaults(ctx)
		if err != nil {
			return nil, err
		}
		for _, activity := range defaults {
			if len(selected) >= maxAlternatives {
				break
			}
			add(activity)
		}
	}

	return selected, nil
}

func (c *Calculator) itemFor(req Request, activity Activity) (Item, error) {
	minutes, err := c.policy.MinutesToBurn(req.Calories(), req.Weight(), activity.Met)
	if err != nil {
		return Item{}, err
	}
	return NewItem(activity, minutes), nil
}

// QuickRecommendations restricts the catalog to vigorous activities that
// burn the calories in thirty minutes or less, ordered fastest first. A nil
// breakdown means no activity qualifies; that is not an error.
func (c *Calculator) QuickRecommendations(ctx context.Context, req Request) (*Breakdown, error) {
	return c.bandedRecommendations(ctx, req, IntensityVigorous, "quick", func(m Minutes) bool {
		return m <= 30
	})
}

// EnduranceRecommendations restricts the catalog to moderate activities
// needing at least forty-five minutes, ordered shortest first within the
// band. A nil breakdown means no activity qualifies.
func (c *Calculator) EnduranceRecommendations(ctx context.Context, req Request) (*Breakdown, error) {
	return c.bandedRecommendations(ctx, req, IntensityModerate, "endurance", func(m Minutes) bool {
		return m >= 45
	})
}

func (c *Calculator) bandedRecommendations(ctx context.Context, req Request, intensity Intensity, mode string, keep func(Minutes) bool) (*Breakdown, error) {
	candidates, err := c.catalog.GetByIntensity(ctx, intensity)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(candidates))
	for _, activity := range candidates {
		item, err := c.itemFor(req, activity)
		if err != nil {
			return nil, err
		}
		if keep(item.Minutes) {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, nil
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Minutes < items[j].Minutes })
	observability.RecordCalculation(mode)
	breakdown := ComposeBreakdown(items[0], items[1:])
	return &breakdown, nil
}

// ComparativeBreakdown computes one item per populated intensity category,
// for "see how intensity changes time" displays. Categories without any
// catalog activity are simply skipped.
func (c *Calculator) ComparativeBreakdown(ctx context.Context, req Request) ([]Item, error) {
	intensities := []Intensity{IntensityLight, IntensityModerate, IntensityVigorous}
	items := make([]Item, 0, len(intensities))
	for _, intensity := range intensities {
		candidates, err := c.catalog.GetByIntensity(ctx, intensity)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			continue
		}
		item, err := c.itemFor(req, candidates[0])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	observability.RecordCalculation("comparative")
	return items, nil
}

// PolicyComparison pairs the same request computed under two policies.
type PolicyComparison struct {
	Baseline    Item
	Alternative Item
}

// ComparePolicies computes the primary recommendation under the calculator's
// own policy and under other, side by side.
func (c *Calculator) ComparePolicies(ctx context.Context, req Request, other Policy) (PolicyComparison, error) {
	primary, err := c.selectPrimary(ctx, req)
	if err != nil {
		return PolicyComparison{}, err
	}

	baseline, err := c.itemFor(req, primary)
	if err != nil {
		return PolicyComparison{}, err
	}
	minutes, err := other.MinutesToBurn(req.Calories(), req.Weight(), primary.Met)
	if err != nil {
		return PolicyComparison{}, err
	}

	observability.RecordCalculation("policy_comparison")
	return PolicyComparison{Baseline: baseline, Alternative: NewItem(primary, minutes)}, nil
}
