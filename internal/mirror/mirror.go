// Package mirror копия реестра, нарядов и склада в локальном Postgres для офлайн-отчётов.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/Spok95/cmms-console/internal/domain/assets"
	"github.com/Spok95/cmms-console/internal/domain/spareparts"
	"github.com/Spok95/cmms-console/internal/domain/workorders"
)

type Result struct {
	Assets     int
	WorkOrders int
	Parts      int
}

type Mirror struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func New(pool *pgxpool.Pool, log *slog.Logger) *Mirror { return &Mirror{pool: pool, log: log} }

// Sync забирает полные списки с сервера и записывает их одной транзакцией.
// Записи, пропавшие на сервере, из зеркала не удаляются.
func (m *Mirror) Sync(ctx context.Context, ar *assets.Repo, wr *workorders.Repo, pr *spareparts.Repo) (Result, error) {
	var (
		as  []assets.Asset
		wos []workorders.WorkOrder
		ps  []spareparts.Part
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { as, err = ar.ListAll(gctx, nil); return })
	g.Go(func() (err error) { wos, err = wr.ListAll(gctx, nil); return })
	g.Go(func() (err error) { ps, err = pr.ListAll(gctx, nil); return })
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("fetch: %w", err)
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b := &pgx.Batch{}
	for _, a := range as {
		b.Queue(upsertAsset, assetArgs(a)...)
	}
	for _, wo := range wos {
		b.Queue(upsertWorkOrder, workOrderArgs(wo)...)
	}
	for _, p := range ps {
		b.Queue(upsertPart, partArgs(p)...)
	}
	b.Queue(`INSERT INTO mirror_sync_runs (assets, work_orders, spare_parts) VALUES ($1,$2,$3)`,
		len(as), len(wos), len(ps))

	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return Result{}, fmt.Errorf("upsert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Result{}, err
	}

	res := Result{Assets: len(as), WorkOrders: len(wos), Parts: len(ps)}
	m.log.Info("mirror synced", "assets", res.Assets, "work_orders", res.WorkOrders, "parts", res.Parts)
	return res, nil
}

const upsertAsset = `
	INSERT INTO mirror_assets (id, code, name, factory, workshop, line, vendor, status, criticality,
	                           start_date, asset_value, meter_reading, synced_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10::date,$11::numeric,$12::numeric,now())
	ON CONFLICT (id) DO UPDATE SET
	  code=$2, name=$3, factory=$4, workshop=$5, line=$6, vendor=$7, status=$8, criticality=$9,
	  start_date=$10::date, asset_value=$11::numeric, meter_reading=$12::numeric, synced_at=now()
`

const upsertWorkOrder = `
	INSERT INTO mirror_work_orders (id, wo_code, equipment_id, wo_type, status, priority, summary,
	                                assignee_name, downtime_minutes, labor_hours, parts_cost, created_at, synced_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::numeric,$10::numeric,$11::numeric,$12::timestamptz,now())
	ON CONFLICT (id) DO UPDATE SET
	  wo_code=$2, equipment_id=$3, wo_type=$4, status=$5, priority=$6, summary=$7, assignee_name=$8,
	  downtime_minutes=$9::numeric, labor_hours=$10::numeric, parts_cost=$11::numeric,
	  created_at=$12::timestamptz, synced_at=now()
`

const upsertPart = `
	INSERT INTO mirror_spare_parts (id, part_code, name, category, unit, current_stock, min_stock,
	                                safety_stock, low_stock, synced_at)
	VALUES ($1,$2,$3,$4,$5,$6::numeric,$7::numeric,$8::numeric,$9,now())
	ON CONFLICT (id) DO UPDATE SET
	  part_code=$2, name=$3, category=$4, unit=$5, current_stock=$6::numeric, min_stock=$7::numeric,
	  safety_stock=$8::numeric, low_stock=$9, synced_at=now()
`

// nullable пустая строка API пишется как NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func decimal(n json.Number) *string { return nullable(n.String()) }

func assetArgs(a assets.Asset) []any {
	return []any{
		a.ID, a.Code, a.Name, a.Factory, a.Workshop, a.Line, a.Vendor,
		string(a.Status), string(a.Criticality),
		nullable(a.StartDate), decimal(a.AssetValue), decimal(a.CurrentMeterReading),
	}
}

func workOrderArgs(wo workorders.WorkOrder) []any {
	return []any{
		wo.ID, wo.Code, wo.Equipment, string(wo.Type), string(wo.Status), string(wo.Priority),
		wo.Summary, wo.AssigneeName,
		decimal(wo.DowntimeMinutes), decimal(wo.LaborHours), decimal(wo.PartsCost),
		nullable(wo.CreatedAt),
	}
}

func partArgs(p spareparts.Part) []any {
	return []any{
		p.ID, p.Code, p.Name, p.Category, p.Unit,
		decimal(p.CurrentStock), decimal(p.MinStock), decimal(p.SafetyStock), p.LowStock(),
	}
}
