package repository

import (
	"context"

	"price-board/internal/domain"
)

// PriceRepository exposes persistence operations for date-keyed price tables.
type PriceRepository interface {
	Init(ctx context.Context) error
	List(ctx context.Context) ([]domain.PriceTable, error)
	// Get returns ErrNotFound when no table exists for date.
	Get(ctx context.Context, date string) (*domain.PriceTable, error)
	Put(ctx context.Context, table domain.PriceTable) error
	ReplaceAll(ctx context.Context, tables []domain.PriceTable) error
	// Delete returns ErrNotFound when no table exists for date.
	Delete(ctx context.Context, date string) error
}
