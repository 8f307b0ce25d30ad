// Package reports отчёты API. Структура ответов не фиксирована, поэтому отдаём map.
package reports

import (
	"context"
	"net/url"

	"github.com/Spok95/cmms-console/internal/api"
)

type Report map[string]any

// Kind отчёт и его путь.
type Kind string

const (
	KindWorkOrders Kind = "workorders"
	KindDowntime   Kind = "downtime"
	KindPartsUsage Kind = "spareparts-usage"
)

type Repo struct {
	api *api.Client
}

func NewRepo(c *api.Client) *Repo { return &Repo{api: c} }

func (r *Repo) Get(ctx context.Context, kind Kind, q url.Values) (Report, error) {
	out := Report{}
	if err := r.api.Get(ctx, "/reports/"+string(kind)+"/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) WorkOrders(ctx context.Context, q url.Values) (Report, error) {
	return r.Get(ctx, KindWorkOrders, q)
}

func (r *Repo) Downtime(ctx context.Context, q url.Values) (Report, error) {
	return r.Get(ctx, KindDowntime, q)
}

func (r *Repo) PartsUsage(ctx context.Context, q url.Values) (Report, error) {
	return r.Get(ctx, KindPartsUsage, q)
}
