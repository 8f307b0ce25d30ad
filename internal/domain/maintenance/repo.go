package maintenance

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Spok95/cmms-console/internal/api"
)

const basePath = "/maintenance/plans/"

type Repo struct {
	api *api.Client
}

func NewRepo(c *api.Client) *Repo { return &Repo{api: c} }

func itemPath(id int64) string { return fmt.Sprintf("%s%d/", basePath, id) }

func (r *Repo) List(ctx context.Context, q url.Values) (*api.Page[Plan], error) {
	return api.List[Plan](ctx, r.api, basePath, q)
}

func (r *Repo) ListAll(ctx context.Context, q url.Values) ([]Plan, error) {
	p, err := api.FetchAll[Plan](ctx, r.api, basePath, q)
	if err != nil {
		return nil, err
	}
	return p.Results, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*Plan, error) {
	var p Plan
	if err := r.api.Get(ctx, itemPath(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, in Input) (*Plan, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var p Plan
	if err := r.api.Post(ctx, basePath, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Update(ctx context.Context, id int64, in Input) (*Plan, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var p Plan
	if err := r.api.Put(ctx, itemPath(id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, itemPath(id))
}

func (r *Repo) Activate(ctx context.Context, id int64) error {
	return r.api.Post(ctx, itemPath(id)+"activate/", struct{}{}, nil)
}

func (r *Repo) Deactivate(ctx context.Context, id int64) error {
	return r.api.Post(ctx, itemPath(id)+"deactivate/", struct{}{}, nil)
}

// Toggle переключает активность плана и возвращает новое состояние.
func (r *Repo) Toggle(ctx context.Context, p Plan) (bool, error) {
	if p.IsActive {
		return false, r.Deactivate(ctx, p.ID)
	}
	return true, r.Activate(ctx, p.ID)
}

// Generated ответ generate_work_order.
type Generated struct {
	Message     string `json:"message"`
	WorkOrderID int64  `json:"work_order_id"`
	Code        string `json:"wo_code"`
}

// GenerateWorkOrder создаёт наряд по плану. Неактивный план сервер отклоняет,
// поэтому проверяем заранее.
func (r *Repo) GenerateWorkOrder(ctx context.Context, p Plan) (*Generated, error) {
	if !p.IsActive {
		return nil, fmt.Errorf("plan %s is inactive", p.Code)
	}
	var g Generated
	if err := r.api.Post(ctx, itemPath(p.ID)+"generate_work_order/", struct{}{}, &g); err != nil {
		return nil, err
	}
	return &g, nil
}
