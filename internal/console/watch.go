package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Spok95/cmms-console/internal/api"
	"github.com/Spok95/cmms-console/internal/dashboard"
	"github.com/Spok95/cmms-console/internal/domain/spareparts"
	httpx "github.com/Spok95/cmms-console/internal/infra/http"
	"github.com/Spok95/cmms-console/internal/infra/telegram"
)

type lowStockNotifier interface {
	LowStock(parts []spareparts.Part) error
}

// watcher опрашивает сводку, держит последний результат для /status и /health
// и шлёт оповещение, когда меняется набор запчастей с низким остатком.
type watcher struct {
	svc      *dashboard.Service
	notifier lowStockNotifier
	log      *slog.Logger

	mu      sync.RWMutex
	last    *dashboard.Summary
	lastErr error
	updated time.Time
	lowKey  string
}

type statusView struct {
	ActiveAssets      int       `json:"active_assets"`
	ActiveWorkOrders  int       `json:"active_work_orders"`
	PendingWorkOrders int       `json:"pending_work_orders"`
	LowStock          []string  `json:"low_stock"`
	UpdatedAt         time.Time `json:"updated_at"`
	Error             string    `json:"error,omitempty"`
}

func (w *watcher) poll(ctx context.Context) error {
	sum, err := w.svc.Load(ctx)

	w.mu.Lock()
	w.lastErr = err
	if err != nil {
		w.mu.Unlock()
		w.log.Error("dashboard poll failed", "err", err)
		return err
	}
	w.last = sum
	w.updated = time.Now()
	key := telegram.Key(sum.LowStock)
	changed := key != w.lowKey
	w.lowKey = key
	w.mu.Unlock()

	sum.Publish()
	w.log.Info("dashboard polled",
		"active_assets", sum.ActiveAssets,
		"active_work_orders", sum.ActiveWorkOrders,
		"pending_work_orders", sum.PendingWorkOrders,
		"low_stock", len(sum.LowStock))

	if changed && w.notifier != nil && len(sum.LowStock) > 0 {
		if err := w.notifier.LowStock(sum.LowStock); err != nil {
			// оповещение повторится при следующем изменении набора
			w.log.Error("low stock alert failed", "err", err)
		}
	}
	return nil
}

func (w *watcher) health() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.lastErr != nil {
		return w.lastErr
	}
	if w.last == nil {
		return errors.New("no data yet")
	}
	return nil
}

func (w *watcher) ServeHTTP(rw http.ResponseWriter, _ *http.Request) {
	w.mu.RLock()
	v := statusView{UpdatedAt: w.updated, LowStock: []string{}}
	if w.last != nil {
		v.ActiveAssets = w.last.ActiveAssets
		v.ActiveWorkOrders = w.last.ActiveWorkOrders
		v.PendingWorkOrders = w.last.PendingWorkOrders
		for _, p := range w.last.LowStock {
			v.LowStock = append(v.LowStock, p.Code)
		}
	}
	if w.lastErr != nil {
		v.Error = w.lastErr.Error()
	}
	w.mu.RUnlock()

	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(v)
}

func (a *App) cmdWatch(ctx context.Context, args []string) error {
	fs := a.flags("watch")
	interval := fs.Duration("interval", a.cfg.Watch.Interval, "период опроса")
	addr := fs.String("addr", a.cfg.HTTP.Addr, "адрес /health и /metrics")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *interval < time.Second {
		return fmt.Errorf("interval too small: %s", *interval)
	}

	w := &watcher{svc: dashboard.NewService(a.assets, a.orders, a.parts, a.log), log: a.log}
	if a.cfg.Telegram.Token != "" {
		n, err := telegram.New(a.cfg.Telegram.Token, a.cfg.Telegram.Endpoint, a.cfg.Telegram.AdminChatID, a.log)
		if err != nil {
			return err
		}
		w.notifier = n
	}

	srv := httpx.New(*addr, httpx.Options{Metrics: a.cfg.Metrics.Enabled, Health: w.health, Status: w})
	go func() {
		if err := srv.Start(); err != nil {
			a.log.Error("http server error", "err", err)
		}
	}()
	a.log.Info("HTTP server started", "addr", *addr)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		a.log.Info("graceful shutdown complete")
	}()

	return a.watchLoop(ctx, w, *interval)
}

// watchLoop опрос до отмены ctx. Истёкшая сессия останавливает наблюдение:
// без входа дальнейшие опросы бессмысленны.
func (a *App) watchLoop(ctx context.Context, w *watcher, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if err := w.poll(ctx); errors.Is(err, api.ErrSessionExpired) {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}
