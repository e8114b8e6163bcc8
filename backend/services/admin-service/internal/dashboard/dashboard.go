// Package dashboard aggregates the figures shown on the console home page.
package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"evadmin/backend/libs/listview"
	"evadmin/backend/services/admin-service/internal/catalog"
	"evadmin/backend/services/admin-service/internal/models"
)

// Service computes models.Summary from the registered resources.
type Service struct {
	registry *catalog.Registry
}

// NewService returns a dashboard service.
func NewService(registry *catalog.Registry) *Service {
	return &Service{registry: registry}
}

// Summary gathers status counts, today's station totals and the number of
// active users. Entities missing from the registry are left empty.
func (s *Service) Summary(ctx context.Context) (models.Summary, error) {
	var sum models.Summary
	g, ctx := errgroup.WithContext(ctx)

	counts := map[string]*map[string]int{
		models.EntityStations:    &sum.Stations,
		models.EntityDevices:     &sum.Devices,
		models.EntityOrders:      &sum.Orders,
		models.EntityMaintenance: &sum.Maintenance,
	}
	for entity, dst := range counts {
		res, ok := s.registry.Lookup(entity)
		if !ok {
			*dst = map[string]int{}
			continue
		}
		g.Go(func() error {
			c, err := res.CountByStatus(ctx)
			if err != nil {
				return fmt.Errorf("count %s: %w", entity, err)
			}
			*dst = c
			return nil
		})
	}

	if res, ok := s.registry.Lookup(models.EntityUsers); ok {
		g.Go(func() error {
			c, err := res.CountByStatus(ctx)
			if err != nil {
				return fmt.Errorf("count users: %w", err)
			}
			sum.ActiveUsers = c["active"]
			return nil
		})
	}

	if res, ok := s.registry.Lookup(models.EntityStations); ok {
		g.Go(func() error {
			energy, revenue, err := stationTotals(ctx, res)
			if err != nil {
				return err
			}
			sum.TodayEnergyKWh, sum.TodayRevenue = energy, revenue
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return models.Summary{}, err
	}
	return sum, nil
}

func stationTotals(ctx context.Context, res catalog.Resource) (float64, float64, error) {
	var energy, revenue float64
	q := listview.Query{Page: 1, PageSize: listview.MaxPageSize}
	for {
		page, err := res.List(ctx, q)
		if err != nil {
			return 0, 0, fmt.Errorf("list stations: %w", err)
		}
		for _, item := range page.Items {
			if st, ok := item.(models.Station); ok {
				energy += st.TodayEnergyKWh
				revenue += st.TodayRevenue
			}
		}
		if page.Page >= page.Pages {
			return energy, revenue, nil
		}
		q.Page = page.Page + 1
	}
}
