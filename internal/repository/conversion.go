package repository

import (
	"context"

	"docconvert/internal/model"
)

// ConversionRepository stores the outcome of conversion runs.
// No business logic here, strictly persistence operations.
type ConversionRepository interface {
	// Create inserts a conversion record and returns it as stored.
	Create(ctx context.Context, c *model.Conversion) (*model.Conversion, error)

	// FindByID returns a record by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Conversion, error)

	// List returns a page of records, newest first, and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Conversion], error)

	// Ping checks that the underlying database is reachable.
	Ping(ctx context.Context) error
}
