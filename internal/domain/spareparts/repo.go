package spareparts

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Spok95/cmms-console/internal/api"
)

const basePath = "/spareparts/"

type Repo struct {
	api *api.Client
}

func NewRepo(c *api.Client) *Repo { return &Repo{api: c} }

func itemPath(id int64) string { return fmt.Sprintf("%s%d/", basePath, id) }

func (r *Repo) List(ctx context.Context, q url.Values) (*api.Page[Part], error) {
	return api.List[Part](ctx, r.api, basePath, q)
}

func (r *Repo) ListAll(ctx context.Context, q url.Values) ([]Part, error) {
	p, err := api.FetchAll[Part](ctx, r.api, basePath, q)
	if err != nil {
		return nil, err
	}
	return p.Results, nil
}

// Low детали с low_stock=true; итоговый отбор всё равно по current_stock <= min_stock,
// потому что сервер может игнорировать фильтр.
func (r *Repo) Low(ctx context.Context, limit int) ([]Part, error) {
	p, err := r.List(ctx, url.Values{
		"page_size": {fmt.Sprint(limit)},
		"low_stock": {"true"},
	})
	if err != nil {
		return nil, err
	}
	return FilterLow(p.Results), nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*Part, error) {
	var p Part
	if err := r.api.Get(ctx, itemPath(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, in Input) (*Part, error) {
	var p Part
	if err := r.api.Post(ctx, basePath, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Update(ctx context.Context, id int64, in Input) (*Part, error) {
	var p Part
	if err := r.api.Put(ctx, itemPath(id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, itemPath(id))
}

// StockIn приход на склад.
func (r *Repo) StockIn(ctx context.Context, id int64, m Movement) (*Part, error) {
	if m.Quantity <= 0 {
		return nil, fmt.Errorf("qty must be > 0")
	}
	return r.move(ctx, id, "stock-in", m)
}

// StockOut списание. Нехватку остатка проверяет сервер (400 Insufficient stock).
func (r *Repo) StockOut(ctx context.Context, id int64, m Movement) (*Part, error) {
	if m.Quantity <= 0 {
		return nil, fmt.Errorf("qty must be > 0")
	}
	return r.move(ctx, id, "stock-out", m)
}

func (r *Repo) move(ctx context.Context, id int64, action string, m Movement) (*Part, error) {
	var p Part
	if err := r.api.Post(ctx, itemPath(id)+action+"/", m, &p); err != nil {
		return nil, fmt.Errorf("%s part %d: %w", action, id, err)
	}
	return &p, nil
}
