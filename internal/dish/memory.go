package dish

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"example.com/effort/internal/effort"
)

// InMemoryRepository stores dishes in memory for local development and
// tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	dishes map[string]Dish
}

// NewInMemoryRepository constructs a repository populated with a small seed
// menu.
func NewInMemoryRepository() *InMemoryRepository {
	repo := &InMemoryRepository{dishes: make(map[string]Dish)}
	repo.seed()
	return repo
}

func (r *InMemoryRepository) seed() {
	r.mu.Lock()
	defer r.mu.Unlock()

	seeds := []Dish{
		{Name: "Apple", Calories: effort.Calories(95), ServingText: "1 piece"},
		{Name: "Margherita Pizza", Calories: effort.Calories(270), ServingText: "1 slice"},
		{Name: "Cheeseburger", Calories: effort.Calories(540), ServingText: "1 portion"},
		{Name: "Cola", Calories: effort.Calories(139), ServingText: "330ml"},
		{Name: "Chocolate Bar", Calories: effort.Calories(230), ServingText: "45g"},
	}
	for _, d := range seeds {
		d.ID = uuid.NewString()
		r.dishes[d.ID] = d
	}
}

// GetByID returns a dish by ID, or (nil, nil) when unknown.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Dish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.dishes[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// List returns dishes ordered by name with cursor pagination.
func (r *InMemoryRepository) List(ctx context.Context, cursor *Cursor, limit int) ([]Dish, *Cursor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Dish, 0, len(r.dishes))
	for _, d := range r.dishes {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool {
		ni, nj := strings.ToLower(all[i].Name), strings.ToLower(all[j].Name)
		if ni != nj {
			return ni < nj
		}
		return all[i].ID < all[j].ID
	})

	start := 0
	if cursor != nil {
		cursorName := strings.ToLower(cursor.Name)
		for i, d := range all {
			name := strings.ToLower(d.Name)
			if name > cursorName || (name == cursorName && d.ID > cursor.ID) {
				start = i
				break
			}
			start = len(all)
		}
	}

	if limit <= 0 {
		limit = 20
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	page := append([]Dish(nil), all[start:end]...)

	var next *Cursor
	if end < len(all) && len(page) > 0 {
		last := page[len(page)-1]
		next = &Cursor{Name: last.Name, ID: last.ID}
	}
	return page, next, nil
}

// Upsert inserts or replaces a dish, assigning an ID when absent.
func (r *InMemoryRepository) Upsert(ctx context.Context, d Dish) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		d.ID = uuid.NewString()
	}
	r.dishes[d.ID] = d
	return nil
}
