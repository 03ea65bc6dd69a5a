// Package events defines the catalog-events topic payloads consumed by the
// effort service.
package events

import "time"

// ActivityUpserted is emitted when an activity catalog entry is created or
// updated upstream.
type ActivityUpserted struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Met       float64   `json:"met"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActivityDeleted is emitted when an activity is removed from the catalog.
type ActivityDeleted struct {
	Key       string    `json:"key"`
	DeletedAt time.Time `json:"deleted_at"`
}

// DishUpserted is emitted when a dish record changes upstream.
type DishUpserted struct {
	DishID      string    `json:"dish_id"`
	Name        string    `json:"name"`
	Calories    float64   `json:"calories"`
	ServingText string    `json:"serving_text"`
	UpdatedAt   time.Time `json:"updated_at"`
}
