package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"example.com/effort/internal/dish"
	"example.com/effort/internal/effort"
	"example.com/effort/internal/events"
)

// Event type headers the handler routes on.
const (
	EventActivityUpserted = "catalog.activity.upserted"
	EventActivityDeleted  = "catalog.activity.deleted"
	EventDishUpserted     = "catalog.dish.upserted"
)

// ActivityWriter is the catalog write surface the handler projects into.
type ActivityWriter interface {
	Upsert(ctx context.Context, activity effort.Activity) error
	Delete(ctx context.Context, key string) error
}

// CatalogHandler projects catalog events into the activity and dish stores.
type CatalogHandler struct {
	activities ActivityWriter
	dishes     dish.Repository
}

// NewCatalogHandler constructs a handler. Either store may be nil, in which
// case the corresponding events are ignored.
func NewCatalogHandler(activities ActivityWriter, dishes dish.Repository) *CatalogHandler {
	return &CatalogHandler{activities: activities, dishes: dishes}
}

// Handle routes on the event_type header. Unknown event types are skipped
// without error so topic evolution does not break older consumers.
func (h *CatalogHandler) Handle(ctx context.Context, msg Message) error {
	payload := msg.Payload
	// Handle Confluent Schema Registry wire format (magic byte + 4-byte schema id)
	if len(payload) >= 5 && payload[0] == 0x00 {
		payload = payload[5:]
	}

	switch msg.Headers["event_type"] {
	case EventActivityUpserted:
		return h.applyActivityUpsert(ctx, payload)
	case EventActivityDeleted:
		return h.applyActivityDelete(ctx, payload)
	case EventDishUpserted:
		return h.applyDishUpsert(ctx, payload)
	default:
		return nil
	}
}

func (h *CatalogHandler) applyActivityUpsert(ctx context.Context, payload json.RawMessage) error {
	if h.activities == nil {
		return nil
	}

	var evt events.ActivityUpserted
	if err := json.Unmarshal(payload, &evt); err != nil {
		return err
	}

	met, err := effort.NewMet(evt.Met)
	if err != nil {
		return fmt.Errorf("activity %q: %w", evt.Key, err)
	}
	label := evt.Label
	if strings.TrimSpace(label) == "" {
		label = evt.Key
	}
	activity, err := effort.NewActivity(evt.Key, label, met)
	if err != nil {
		return err
	}

	return h.activities.Upsert(ctx, activity)
}

func (h *CatalogHandler) applyActivityDelete(ctx context.Context, payload json.RawMessage) error {
	if h.activities == nil {
		return nil
	}

	var evt events.ActivityDeleted
	if err := json.Unmarshal(payload, &evt); err != nil {
		return err
	}
	if strings.TrimSpace(evt.Key) == "" {
		return fmt.Errorf("activity delete event missing key")
	}
	return h.activities.Delete(ctx, evt.Key)
}

func (h *CatalogHandler) applyDishUpsert(ctx context.Context, payload json.RawMessage) error {
	if h.dishes == nil {
		return nil
	}

	var evt events.DishUpserted
	if err := json.Unmarshal(payload, &evt); err != nil {
		return err
	}
	if strings.TrimSpace(evt.DishID) == "" {
		return fmt.Errorf("dish event missing dish_id")
	}
	if evt.Calories <= 0 {
		return fmt.Errorf("dish %q: calories must be > 0, got %v", evt.DishID, evt.Calories)
	}

	return h.dishes.Upsert(ctx, dish.Dish{
		ID:          evt.DishID,
		Name:        evt.Name,
		Calories:    effort.Calories(evt.Calories),
		ServingText: evt.ServingText,
	})
}
