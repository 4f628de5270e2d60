package service

import (
	"context"
	"errors"
	"math"

	"price-board/internal/domain"
	"price-board/internal/repository"
)

// PriceService coordinates price table operations backed by a repository.
type PriceService interface {
	ListPrices(ctx context.Context) ([]domain.PriceTable, error)
	GetPrices(ctx context.Context, date string) (*domain.PriceTable, error)
	SetPrices(ctx context.Context, date string, items map[string]float64) (*domain.PriceTable, error)
	ReplacePrices(ctx context.Context, all map[string]map[string]float64) ([]domain.PriceTable, error)
	DeletePrices(ctx context.Context, date string) error
}

type priceService struct {
	prices repository.PriceRepository
}

func NewPriceService(prices repository.PriceRepository) PriceService {
	return &priceService{prices: prices}
}

func (s *priceService) ListPrices(ctx context.Context) ([]domain.PriceTable, error) {
	return s.prices.List(ctx)
}

func (s *priceService) GetPrices(ctx context.Context, date string) (*domain.PriceTable, error) {
	date, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	table, err := s.prices.Get(ctx, date)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPriceDateNotFound
	}
	return table, err
}

func (s *priceService) SetPrices(ctx context.Context, date string, items map[string]float64) (*domain.PriceTable, error) {
	table, err := newTable(date, items)
	if err != nil {
		return nil, err
	}
	if err := s.prices.Put(ctx, table); err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *priceService) ReplacePrices(ctx context.Context, all map[string]map[string]float64) ([]domain.PriceTable, error) {
	tables := make([]domain.PriceTable, 0, len(all))
	for date, items := range all {
		table, err := newTable(date, items)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	if err := s.prices.ReplaceAll(ctx, tables); err != nil {
		return nil, err
	}
	return s.prices.List(ctx)
}

func (s *priceService) DeletePrices(ctx context.Context, date string) error {
	date, err := parseDate(date)
	if err != nil {
		return err
	}
	if err := s.prices.Delete(ctx, date); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPriceDateNotFound
		}
		return err
	}
	return nil
}

func parseDate(date string) (string, error) {
	canonical, err := domain.ParseDate(date)
	if err != nil {
		return "", invalid("date", "must be formatted as YYYY-MM-DD")
	}
	return canonical, nil
}

func newTable(date string, items map[string]float64) (domain.PriceTable, error) {
	date, err := parseDate(date)
	if err != nil {
		return domain.PriceTable{}, err
	}
	if len(items) == 0 {
		return domain.PriceTable{}, invalid("prices", "must contain at least one item")
	}
	for name, price := range items {
		if name == "" {
			return domain.PriceTable{}, invalid("item name", "must not be empty")
		}
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			return domain.PriceTable{}, invalid("price of "+name, "must be a non-negative number")
		}
	}
	return domain.PriceTable{Date: date, Items: items}, nil
}
