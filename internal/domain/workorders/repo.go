package workorders

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Spok95/cmms-console/internal/api"
)

const (
	basePath = "/workorders/"

	TemplateName = "workorders_template.xlsx"
	ExportName   = "workorders_export.xlsx"
)

type Repo struct {
	api *api.Client
}

func NewRepo(c *api.Client) *Repo { return &Repo{api: c} }

func itemPath(id int64) string { return fmt.Sprintf("%s%d/", basePath, id) }

// List одна страница по query (page, page_size, status, ordering...).
func (r *Repo) List(ctx context.Context, q url.Values) (*api.Page[WorkOrder], error) {
	return api.List[WorkOrder](ctx, r.api, basePath, q)
}

// ListAll все наряды по фильтру.
func (r *Repo) ListAll(ctx context.Context, q url.Values) ([]WorkOrder, error) {
	p, err := api.FetchAll[WorkOrder](ctx, r.api, basePath, q)
	if err != nil {
		return nil, err
	}
	return p.Results, nil
}

// Recent последние созданные наряды.
func (r *Repo) Recent(ctx context.Context, n int) ([]WorkOrder, error) {
	p, err := r.List(ctx, url.Values{
		"page_size": {fmt.Sprint(n)},
		"ordering":  {"-created_at"},
	})
	if err != nil {
		return nil, err
	}
	return p.Results, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*WorkOrder, error) {
	var wo WorkOrder
	if err := r.api.Get(ctx, itemPath(id), nil, &wo); err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *Repo) Create(ctx context.Context, in Input) (*WorkOrder, error) {
	in.Code = nil
	var wo WorkOrder
	if err := r.api.Post(ctx, basePath, in, &wo); err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *Repo) Update(ctx context.Context, id int64, in Input) (*WorkOrder, error) {
	var wo WorkOrder
	if err := r.api.Put(ctx, itemPath(id), in, &wo); err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, itemPath(id))
}

func (r *Repo) Assign(ctx context.Context, id, assigneeID int64) (*WorkOrder, error) {
	if assigneeID <= 0 {
		return nil, fmt.Errorf("assignee id must be > 0")
	}
	return r.action(ctx, id, "assign", map[string]int64{"assignee_id": assigneeID})
}

func (r *Repo) Start(ctx context.Context, id int64) (*WorkOrder, error) {
	return r.action(ctx, id, "start", nil)
}

func (r *Repo) Complete(ctx context.Context, id int64, in CompleteInput) (*WorkOrder, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return r.action(ctx, id, "complete", in)
}

func (r *Repo) Close(ctx context.Context, id int64) (*WorkOrder, error) {
	return r.action(ctx, id, "close", nil)
}

func (r *Repo) action(ctx context.Context, id int64, name string, body any) (*WorkOrder, error) {
	if body == nil {
		body = struct{}{}
	}
	var wo WorkOrder
	if err := r.api.Post(ctx, itemPath(id)+name+"/", body, &wo); err != nil {
		return nil, fmt.Errorf("%s work order %d: %w", name, id, err)
	}
	return &wo, nil
}

// Mine наряды текущего пользователя.
func (r *Repo) Mine(ctx context.Context) ([]WorkOrder, error) {
	var out []WorkOrder
	if err := r.api.Get(ctx, basePath+"my_orders/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Overdue(ctx context.Context) ([]WorkOrder, error) {
	var out []WorkOrder
	if err := r.api.Get(ctx, basePath+"overdue/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Template(ctx context.Context) (*api.File, error) {
	return r.api.Download(ctx, basePath+"download_template/", nil, TemplateName)
}

func (r *Repo) Export(ctx context.Context, q url.Values) (*api.File, error) {
	return r.api.Download(ctx, basePath+"export_csv/", q, ExportName)
}

func (r *Repo) Import(ctx context.Context, filename string, data []byte) (*api.ImportResult, error) {
	var res api.ImportResult
	if err := r.api.Upload(ctx, basePath+"import_excel/", "file", filename, data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
