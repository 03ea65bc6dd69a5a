// Package catalog provides activity catalog implementations.
package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"example.com/effort/internal/effort"
	"example.com/effort/internal/observability"
)

// seedActivity pairs a catalog entry with its default-list membership.
type seedActivity struct {
	activity  effort.Activity
	isDefault bool
}

// seedActivities is the built-in catalog used when no external store is
// configured. MET values follow the Compendium of Physical Activities.
var seedActivities = []seedActivity{
	{effort.Activity{Key: "walking", Label: "Walking", Met: effort.MustMet(3.5)}, true},
	{effort.Activity{Key: "jogging", Label: "Jogging", Met: effort.MustMet(7.0)}, true},
	{effort.Activity{Key: "running", Label: "Running", Met: effort.MustMet(9.8)}, false},
	{effort.Activity{Key: "cycling", Label: "Cycling", Met: effort.MustMet(6.8)}, true},
	{effort.Activity{Key: "swimming", Label: "Swimming", Met: effort.MustMet(5.8)}, true},
	{effort.Activity{Key: "dancing", Label: "Dancing", Met: effort.MustMet(4.5)}, true},
	{effort.Activity{Key: "strength", Label: "Strength Training", Met: effort.MustMet(5.0)}, false},
	{effort.Activity{Key: "hiit", Label: "HIIT", Met: effort.MustMet(8.0)}, false},
	{effort.Activity{Key: "yoga", Label: "Yoga", Met: effort.MustMet(2.5)}, false},
	{effort.Activity{Key: "stretching", Label: "Stretching", Met: effort.MustMet(2.3)}, false},
}

// InMemoryCatalog stores activities in memory. It is safe for concurrent
// readers and the consumer's writes.
type InMemoryCatalog struct {
	mu         sync.RWMutex
	activities map[string]effort.Activity
	order      []string
	defaults   []string
}

// NewInMemoryCatalog constructs a catalog populated with the built-in seed.
func NewInMemoryCatalog() *InMemoryCatalog {
	c := NewEmptyCatalog()
	for _, seed := range seedActivities {
		c.activities[seed.activity.Key] = seed.activity
		c.order = append(c.order, seed.activity.Key)
		if seed.isDefault {
			c.defaults = append(c.defaults, seed.activity.Key)
		}
	}
	return c
}

// NewEmptyCatalog constructs a catalog with no entries, for tests and for
// consumers that project every entry from events.
func NewEmptyCatalog() *InMemoryCatalog {
	return &InMemoryCatalog{activities: make(map[string]effort.Activity)}
}

// GetByKey implements effort.Catalog.
func (c *InMemoryCatalog) GetByKey(ctx context.Context, key string) (*effort.Activity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	activity, ok := c.activities[key]
	if !ok {
		return nil, nil
	}
	return &activity, nil
}

// ListDefaults implements effort.Catalog.
func (c *InMemoryCatalog) ListDefaults(ctx context.Context) ([]effort.Activity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]effort.Activity, 0, len(c.defaults))
	for _, key := range c.defaults {
		if activity, ok := c.activities[key]; ok {
			out = append(out, activity)
		}
	}
	return out, nil
}

// GetAll implements effort.Catalog, preserving insertion order.
func (c *InMemoryCatalog) GetAll(ctx context.Context) ([]effort.Activity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]effort.Activity, 0, len(c.order))
	for _, key := range c.order {
		if activity, ok := c.activities[key]; ok {
			out = append(out, activity)
		}
	}
	return out, nil
}

// GetByIntensity implements effort.Catalog.
func (c *InMemoryCatalog) GetByIntensity(ctx context.Context, intensity effort.Intensity) ([]effort.Activity, error) {
	all, _ := c.GetAll(ctx)
	out := make([]effort.Activity, 0, len(all))
	for _, activity := range all {
		if activity.Met.Intensity() == intensity {
			out = append(out, activity)
		}
	}
	return out, nil
}

// GetByMETRange implements effort.Catalog.
func (c *InMemoryCatalog) GetByMETRange(ctx context.Context, min, max float64) ([]effort.Activity, error) {
	all, _ := c.GetAll(ctx)
	out := make([]effort.Activity, 0, len(all))
	for _, activity := range all {
		if v := activity.Met.Value(); v >= min && v <= max {
			out = append(out, activity)
		}
	}
	return out, nil
}

// Search implements effort.Catalog with naive substring matching on key and
// label.
func (c *InMemoryCatalog) Search(ctx context.Context, query string) ([]effort.Activity, error) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	all, _ := c.GetAll(ctx)
	if normalized == "" {
		return all, nil
	}
	out := make([]effort.Activity, 0)
	for _, activity := range all {
		if strings.Contains(strings.ToLower(activity.Key), normalized) ||
			strings.Contains(strings.ToLower(activity.Label), normalized) {
			out = append(out, activity)
		}
	}
	return out, nil
}

// Upsert inserts or replaces an activity; used by the event consumer.
func (c *InMemoryCatalog) Upsert(ctx context.Context, activity effort.Activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.activities[activity.Key]; !ok {
		c.order = append(c.order, activity.Key)
	}
	c.activities[activity.Key] = activity
	observability.RecordCatalogUpdate(time.Now().UTC())
	return nil
}

// Delete removes an activity by key.
func (c *InMemoryCatalog) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.activities[key]; !ok {
		return nil
	}
	delete(c.activities, key)
	for i, existing := range c.order {
		if existing == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	for i, existing := range c.defaults {
		if existing == key {
			c.defaults = append(c.defaults[:i], c.defaults[i+1:]...)
			break
		}
	}
	observability.RecordCatalogUpdate(time.Now().UTC())
	return nil
}
