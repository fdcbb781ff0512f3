package services

import (
	"context"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// Dashboard is the admin overview.
type Dashboard struct {
	TotalProducts   int64                    `json:"totalProducts"`
	TotalCategories int64                    `json:"totalCategories"`
	Orders          models.OrderStats        `json:"orders"`
	Categories      []models.CategorySummary `json:"categories"`
}

// DashboardService aggregates store-wide figures for administrators.
type DashboardService struct {
	store repositories.Store
}

func NewDashboardService(store repositories.Store) *DashboardService {
	return &DashboardService{store: store}
}

func (s *DashboardService) Overview(ctx context.Context) (*Dashboard, error) {
	products, err := s.store.Products().Count(ctx)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to load dashboard")
	}
	categories, err := s.store.Categories().Count(ctx)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to load dashboard")
	}
	stats, err := s.store.Orders().Stats(ctx)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to load dashboard")
	}
	summaries, err := s.store.Categories().Summaries(ctx, false)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to load dashboard")
	}
	return &Dashboard{
		TotalProducts:   products,
		TotalCategories: categories,
		Orders:          *stats,
		Categories:      summaries,
	}, nil
}
