package inspections

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Spok95/cmms-console/internal/api"
)

const basePath = "/inspections/"

type Repo struct {
	api *api.Client
}

func NewRepo(c *api.Client) *Repo { return &Repo{api: c} }

func (r *Repo) List(ctx context.Context, q url.Values) (*api.Page[Record], error) {
	return api.List[Record](ctx, r.api, basePath, q)
}

func (r *Repo) ListAll(ctx context.Context, q url.Values) ([]Record, error) {
	p, err := api.FetchAll[Record](ctx, r.api, basePath, q)
	if err != nil {
		return nil, err
	}
	return p.Results, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*Record, error) {
	var rec Record
	if err := r.api.Get(ctx, fmt.Sprintf("%s%d/", basePath, id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create фиксирует осмотр. Пустой результат вычисляется по пунктам.
func (r *Repo) Create(ctx context.Context, in Input) (*Record, error) {
	if in.Equipment <= 0 {
		return nil, fmt.Errorf("equipment is required")
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("at least one inspection item is required")
	}
	if in.Result == "" {
		in.Result = Evaluate(in.Items)
	}
	if !Results.Valid(in.Result) {
		return nil, fmt.Errorf("unknown inspection result %q", in.Result)
	}
	var rec Record
	if err := r.api.Post(ctx, basePath, in, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
