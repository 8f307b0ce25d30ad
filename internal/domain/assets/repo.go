package assets

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Spok95/cmms-console/internal/api"
)

const (
	basePath = "/assets/"

	TemplateName = "assets_template.xlsx"
	ExportName   = "assets_export.xlsx"
)

type Repo struct {
	api *api.Client
}

func NewRepo(c *api.Client) *Repo { return &Repo{api: c} }

func itemPath(id int64) string { return fmt.Sprintf("%s%d/", basePath, id) }

// List без page в query возвращает все записи (обход next), с page ровно одну страницу.
func (r *Repo) List(ctx context.Context, q url.Values) (*api.Page[Asset], error) {
	return api.FetchAll[Asset](ctx, r.api, basePath, q)
}

// ListAll все записи по фильтру без постраничности.
func (r *Repo) ListAll(ctx context.Context, q url.Values) ([]Asset, error) {
	qq := url.Values{}
	for k, v := range q {
		if k != "page" {
			qq[k] = v
		}
	}
	p, err := api.FetchAll[Asset](ctx, r.api, basePath, qq)
	if err != nil {
		return nil, err
	}
	return p.Results, nil
}

// Stats сводка по всему реестру.
func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	list, err := r.ListAll(ctx, nil)
	if err != nil {
		return Stats{}, err
	}
	return Summarize(list), nil
}

// Count число записей по фильтру (одна страница из одной записи).
func (r *Repo) Count(ctx context.Context, q url.Values) (int, error) {
	qq := url.Values{}
	for k, v := range q {
		qq[k] = v
	}
	qq.Set("page", "1")
	qq.Set("page_size", "1")
	p, err := api.List[Asset](ctx, r.api, basePath, qq)
	if err != nil {
		return 0, err
	}
	return p.Count, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*Asset, error) {
	var a Asset
	if err := r.api.Get(ctx, itemPath(id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) Create(ctx context.Context, in Input) (*Asset, error) {
	var a Asset
	if err := r.api.Post(ctx, basePath, in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) Update(ctx context.Context, id int64, in Input) (*Asset, error) {
	var a Asset
	if err := r.api.Put(ctx, itemPath(id), in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// SetStatus частичное обновление только статуса (пакетная смена статуса).
func (r *Repo) SetStatus(ctx context.Context, id int64, st Status) error {
	if !Statuses.Valid(st) {
		return fmt.Errorf("unknown asset status %q", st)
	}
	return r.api.Patch(ctx, itemPath(id), map[string]Status{"status": st}, nil)
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, itemPath(id))
}

// Overdue оборудование с просроченным обслуживанием.
func (r *Repo) Overdue(ctx context.Context) ([]Asset, error) {
	var out []Asset
	if err := r.api.Get(ctx, basePath+"overdue/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Children(ctx context.Context, id int64) ([]Asset, error) {
	var out []Asset
	if err := r.api.Get(ctx, itemPath(id)+"children/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Template(ctx context.Context) (*api.File, error) {
	return r.api.Download(ctx, basePath+"download_template/", nil, TemplateName)
}

// Export выгрузка реестра в Excel с теми же фильтрами, что и список.
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

// SyncResult итог синхронизации с внешней системой учёта.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// SyncExternal запускает на сервере загрузку оборудования из внешней системы.
func (r *Repo) SyncExternal(ctx context.Context) (*SyncResult, error) {
	var res SyncResult
	if err := r.api.Post(ctx, basePath+"sync_from_external/", struct{}{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
