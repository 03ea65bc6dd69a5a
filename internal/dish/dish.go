// Package dish defines the dish repository contract and its in-memory
// implementation.
package dish

import (
	"context"
	"errors"

	"example.com/effort/internal/effort"
)

// ErrDishNotFound is returned when a dish cannot be located.
var ErrDishNotFound = errors.New("dish not found")

// Dish is a food item with the calories of its base serving.
type Dish struct {
	ID          string
	Name        string
	Calories    effort.Calories
	ServingText string
}

// Cursor models the pagination token for dish listings, ordered by name.
type Cursor struct {
	Name string
	ID   string
}

// Repository captures dish persistence operations.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Dish, error)
	List(ctx context.Context, cursor *Cursor, limit int) ([]Dish, *Cursor, error)
	Upsert(ctx context.Context, d Dish) error
}
