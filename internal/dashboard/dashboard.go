// Package dashboard сводка для главного экрана.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/Spok95/cmms-console/internal/domain/assets"
	"github.com/Spok95/cmms-console/internal/domain/spareparts"
	"github.com/Spok95/cmms-console/internal/domain/workorders"
	"github.com/Spok95/cmms-console/internal/infra/metrics"
)

const (
	RecentLimit   = 10
	LowStockLimit = 100
)

type Summary struct {
	ActiveAssets      int
	ActiveWorkOrders  int
	PendingWorkOrders int
	LowStock          []spareparts.Part
	Recent            []workorders.WorkOrder
}

type Service struct {
	assets *assets.Repo
	orders *workorders.Repo
	parts  *spareparts.Repo
	log    *slog.Logger
}

func NewService(a *assets.Repo, wo *workorders.Repo, p *spareparts.Repo, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{assets: a, orders: wo, parts: p, log: log}
}

// Load три независимых запроса параллельно, затем последние наряды.
// Ошибка любого из трёх прерывает сводку целиком.
func (s *Service) Load(ctx context.Context) (*Summary, error) {
	var sum Summary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.assets.Count(gctx, url.Values{"status": {string(assets.StatusActive)}})
		if err != nil {
			return fmt.Errorf("count active assets: %w", err)
		}
		sum.ActiveAssets = n
		return nil
	})
	g.Go(func() error {
		list, err := s.orders.ListAll(gctx, nil)
		if err != nil {
			return fmt.Errorf("load work orders: %w", err)
		}
		sum.ActiveWorkOrders, sum.PendingWorkOrders = workorders.Counts(list)
		return nil
	})
	g.Go(func() error {
		low, err := s.parts.Low(gctx, LowStockLimit)
		if err != nil {
			return fmt.Errorf("load low stock parts: %w", err)
		}
		sum.LowStock = low
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recent, err := s.orders.Recent(ctx, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent work orders: %w", err)
	}
	sum.Recent = recent
	s.log.Debug("dashboard loaded",
		"active_assets", sum.ActiveAssets, "active_wo", sum.ActiveWorkOrders,
		"pending_wo", sum.PendingWorkOrders, "low_stock", len(sum.LowStock))
	return &sum, nil
}

// Publish выставляет метрики сводки (для режима наблюдения).
func (s *Summary) Publish() {
	metrics.ActiveAssets.Set(float64(s.ActiveAssets))
	metrics.ActiveWorkOrders.Set(float64(s.ActiveWorkOrders))
	metrics.PendingWorkOrders.Set(float64(s.PendingWorkOrders))
	metrics.LowStockParts.Set(float64(len(s.LowStock)))
}
