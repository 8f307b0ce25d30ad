// Package batch массовые операции над записями: по запросу на запись, без атомарности.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Spok95/cmms-console/internal/infra/metrics"
)

const DefaultConcurrency = 4

// Failure запись, на которой операция не прошла.
type Failure struct {
	ID  int64
	Err error
}

// Report итог массовой операции. Успешно применённые записи не откатываются.
type Report struct {
	Operation string
	Succeeded []int64
	Failed    []Failure
}

func (r Report) Total() int { return len(r.Succeeded) + len(r.Failed) }
func (r Report) OK() bool   { return len(r.Failed) == 0 }

// Err nil, если все записи обработаны, иначе сводная ошибка.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%s: %d of %d failed, first: id %d: %w",
		r.Operation, len(r.Failed), r.Total(), r.Failed[0].ID, r.Failed[0].Err)
}

type Runner struct {
	log         *slog.Logger
	concurrency int
}

func NewRunner(log *slog.Logger, concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{log: log, concurrency: concurrency}
}

// Run вызывает fn для каждого id параллельно, не больше concurrency одновременно.
// Ошибка одной записи не останавливает остальные; отмена ctx прерывает ещё не начатые.
func (r *Runner) Run(ctx context.Context, op string, ids []int64, fn func(context.Context, int64) error) Report {
	type outcome struct {
		id  int64
		err error
	}
	results := make([]outcome, len(ids))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = outcome{id, err}
				return nil
			}
			results[i] = outcome{id, fn(ctx, id)}
			return nil
		})
	}
	_ = g.Wait()

	rep := Report{Operation: op, Succeeded: []int64{}, Failed: []Failure{}}
	for _, o := range results {
		if o.err != nil {
			r.log.Warn("batch item failed", "op", op, "id", o.id, "err", o.err)
			rep.Failed = append(rep.Failed, Failure{ID: o.id, Err: o.err})
			continue
		}
		rep.Succeeded = append(rep.Succeeded, o.id)
	}
	sort.Slice(rep.Succeeded, func(i, j int) bool { return rep.Succeeded[i] < rep.Succeeded[j] })
	sort.Slice(rep.Failed, func(i, j int) bool { return rep.Failed[i].ID < rep.Failed[j].ID })

	metrics.BatchResultsTotal.WithLabelValues(op, "ok").Add(float64(len(rep.Succeeded)))
	metrics.BatchResultsTotal.WithLabelValues(op, "failed").Add(float64(len(rep.Failed)))
	r.log.Info("batch done", "op", op, "ok", len(rep.Succeeded), "failed", len(rep.Failed))
	return rep
}
