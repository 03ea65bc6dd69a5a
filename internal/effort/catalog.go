package effort

import "context"

// Catalog is the capability-complete read contract for activity lookups.
// Implementations backed by a minimal data source must still satisfy every
// method; returning an empty slice is the declared "capability missing"
// semantics and degrades the calculator visibly (fewer alternatives, absent
// quick/endurance modes) rather than silently.
type Catalog interface {
	// GetByKey resolves an activity or returns (nil, nil) when unknown.
	GetByKey(ctx context.Context, key string) (*Activity, error)
	// ListDefaults returns the catalog's default recommendation list,
	// non-empty in any usable catalog.
	ListDefaults(ctx context.Context) ([]Activity, error)
	// GetAll returns every activity.
	GetAll(ctx context.Context) ([]Activity, error)
	// GetByIntensity filters by intensity classification.
	GetByIntensity(ctx context.Context, intensity Intensity) ([]Activity, error)
	// GetByMETRange returns activities with min <= MET <= max.
	GetByMETRange(ctx context.Context, min, max float64) ([]Activity, error)
	// Search matches activities by key or label substring.
	Search(ctx context.Context, query string) ([]Activity, error)
}
