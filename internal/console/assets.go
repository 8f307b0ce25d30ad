package console

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Spok95/cmms-console/internal/api"
	"github.com/Spok95/cmms-console/internal/dialog"
	"github.com/Spok95/cmms-console/internal/domain/assets"
	"github.com/Spok95/cmms-console/internal/forms"
	"github.com/Spok95/cmms-console/internal/render"
	"github.com/spf13/pflag"
)

func (a *App) assetListing() listing[assets.Asset] {
	return listing[assets.Asset]{
		screen: dialog.ScreenAssets,
		schema: assetSchema,
		load:   func(ctx context.Context) ([]assets.Asset, error) { return a.assets.ListAll(ctx, nil) },
		table:  render.AssetTable,
	}
}

func (a *App) assetCommands() map[string]command {
	return map[string]command{
		"list":          func(ctx context.Context, args []string) error { return runList(ctx, a, a.assetListing(), args) },
		"page":          func(ctx context.Context, args []string) error { return runPage(ctx, a, a.assetListing(), args) },
		"show":          a.cmdAssetShow,
		"create":        a.cmdAssetCreate,
		"edit":          a.cmdAssetEdit,
		"delete":        a.cmdAssetDelete,
		"status":        a.cmdAssetStatus,
		"batch-status":  a.cmdAssetBatchStatus,
		"batch-delete":  a.cmdAssetBatchDelete,
		"template":      a.cmdAssetTemplate,
		"export":        a.cmdAssetExport,
		"import":        a.cmdAssetImport,
		"stats":         a.cmdAssetStats,
		"overdue":       a.cmdAssetOverdue,
		"children":      a.cmdAssetChildren,
		"sync-external": a.cmdAssetSyncExternal,
	}
}

func (a *App) cmdAssetShow(ctx context.Context, args []string) error {
	fs := a.flags("assets show")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	id, err := a.idArg(fs, "assets show <id>")
	if err != nil {
		return err
	}
	as, err := a.assets.Get(ctx, id)
	if err != nil {
		return err
	}
	return render.AssetCard(*as).Write(a.out)
}

func (a *App) cmdAssetCreate(ctx context.Context, args []string) error {
	return runForm(ctx, a, "assets create", false, forms.NewAssetForm(a.assets), render.AssetCard, args)
}

func (a *App) cmdAssetEdit(ctx context.Context, args []string) error {
	return runForm(ctx, a, "assets edit", true, forms.NewAssetForm(a.assets), render.AssetCard, args)
}

func (a *App) cmdAssetDelete(ctx context.Context, args []string) error {
	fs := a.flags("assets delete")
	yes := fs.BoolP("yes", "y", false, "не спрашивать подтверждение")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	id, err := a.idArg(fs, "assets delete <id> [--yes]")
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Удалить оборудование %d?", id), *yes) {
		fmt.Fprintln(a.out, "Отменено")
		return nil
	}
	if err := a.assets.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Оборудование удалено")
	return nil
}

func (a *App) cmdAssetStatus(ctx context.Context, args []string) error {
	fs := a.flags("assets status")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fmt.Fprintf(a.errOut, "Использование: cmms assets status <id> <%s>\n", strings.Join(assets.Statuses.Strings(), "|"))
		return ErrUsage
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	st, err := assets.Statuses.Parse(fs.Arg(1))
	if err != nil {
		return err
	}
	if err := a.assets.SetStatus(ctx, id, st); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Статус: %s\n", st.Label())
	return nil
}

func (a *App) cmdAssetBatchStatus(ctx context.Context, args []string) error {
	fs := a.flags("assets batch-status")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(a.errOut, "Использование: cmms assets batch-status <статус> <id> [id...]")
		return ErrUsage
	}
	st, err := assets.Statuses.Parse(fs.Arg(0))
	if err != nil {
		return err
	}
	ids, err := parseIDs(fs.Args()[1:])
	if err != nil {
		return err
	}
	rep := a.runner.Run(ctx, "asset_status", ids, func(ctx context.Context, id int64) error {
		return a.assets.SetStatus(ctx, id, st)
	})
	if err := render.BatchReport(a.out, rep); err != nil {
		return err
	}
	return rep.Err()
}

func (a *App) cmdAssetBatchDelete(ctx context.Context, args []string) error {
	fs := a.flags("assets batch-delete")
	yes := fs.BoolP("yes", "y", false, "не спрашивать подтверждение")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	ids, err := parseIDs(fs.Args())
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Удалить оборудование: %d шт.?", len(ids)), *yes) {
		fmt.Fprintln(a.out, "Отменено")
		return nil
	}
	rep := a.runner.Run(ctx, "asset_delete", ids, a.assets.Delete)
	if err := render.BatchReport(a.out, rep); err != nil {
		return err
	}
	return rep.Err()
}

// fileFlags общие флаги сохранения файла.
type fileFlags struct {
	dir    *string
	upload *bool
}

func (a *App) fileFlagsFor(name string) (*pflag.FlagSet, fileFlags) {
	fs := a.flags(name)
	return fs, fileFlags{
		dir:    fs.String("out", ".", "каталог для файла"),
		upload: fs.Bool("upload", false, "загрузить файл в S3"),
	}
}

func (a *App) cmdAssetTemplate(ctx context.Context, args []string) error {
	fs, ff := a.fileFlagsFor("assets template")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	f, err := a.assets.Template(ctx)
	if err != nil {
		return err
	}
	return a.saveDownload(ctx, f, *ff.dir, *ff.upload)
}

func (a *App) cmdAssetExport(ctx context.Context, args []string) error {
	fs, ff := a.fileFlagsFor("assets export")
	search := fs.String("search", "", "поиск")
	status := fs.String("status", "", "статус")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	q := url.Values{}
	if *search != "" {
		q.Set("search", *search)
	}
	if *status != "" {
		st, err := assets.Statuses.Parse(*status)
		if err != nil {
			return err
		}
		q.Set("status", string(st))
	}
	f, err := a.assets.Export(ctx, q)
	if err != nil {
		return err
	}
	return a.saveDownload(ctx, f, *ff.dir, *ff.upload)
}

func (a *App) cmdAssetImport(ctx context.Context, args []string) error {
	return a.importFile(ctx, "assets import", args, a.assets.Import)
}

// importFile общий импорт из Excel: файл проверяется локально, затем уходит на сервер.
func (a *App) importFile(ctx context.Context, name string, args []string,
	upload func(ctx context.Context, filename string, data []byte) (*api.ImportResult, error)) error {

	fs := a.flags(name)
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(a.errOut, "Использование: cmms %s <файл.xlsx>\n", name)
		return ErrUsage
	}
	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		wb, err := render.InspectWorkbook(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Лист «%s»: строк %d\n", wb.Sheet, wb.Rows)
	}
	res, err := upload(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}
	return render.ImportReport(a.out, res)
}

func (a *App) cmdAssetStats(ctx context.Context, args []string) error {
	fs := a.flags("assets stats")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	st, err := a.assets.Stats(ctx)
	if err != nil {
		return err
	}
	return render.AssetStats(st).Write(a.out)
}

func (a *App) cmdAssetSyncExternal(ctx context.Context, args []string) error {
	fs := a.flags("assets sync-external")
	yes := fs.BoolP("yes", "y", false, "не спрашивать подтверждение")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if !a.confirm("Загрузить оборудование из внешней системы?", *yes) {
		fmt.Fprintln(a.out, "Отменено")
		return nil
	}
	res, err := a.assets.SyncExternal(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Создано: %d, обновлено: %d, пропущено: %d\n", res.Created, res.Updated, res.Skipped)
	return nil
}

func (a *App) cmdAssetOverdue(ctx context.Context, args []string) error {
	fs := a.flags("assets overdue")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	list, err := a.assets.Overdue(ctx)
	if err != nil {
		return err
	}
	return render.AssetTable(list).Write(a.out)
}

func (a *App) cmdAssetChildren(ctx context.Context, args []string) error {
	fs := a.flags("assets children")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	id, err := a.idArg(fs, "assets children <id>")
	if err != nil {
		return err
	}
	list, err := a.assets.Children(ctx, id)
	if err != nil {
		return err
	}
	return render.AssetTable(list).Write(a.out)
}
