package console

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/cmms-console/internal/dialog"
	"github.com/Spok95/cmms-console/internal/domain/assets"
	"github.com/Spok95/cmms-console/internal/domain/inspections"
	"github.com/Spok95/cmms-console/internal/domain/maintenance"
	"github.com/Spok95/cmms-console/internal/domain/spareparts"
	"github.com/Spok95/cmms-console/internal/domain/workorders"
	"github.com/Spok95/cmms-console/internal/listview"
	"github.com/Spok95/cmms-console/internal/render"
)

var assetSchema = listview.Schema[assets.Asset]{
	Search: []listview.Field[assets.Asset]{
		func(a assets.Asset) string { return a.Code },
		func(a assets.Asset) string { return a.Name },
	},
	Fields: map[string]listview.Field[assets.Asset]{
		"status":      func(a assets.Asset) string { return string(a.Status) },
		"criticality": func(a assets.Asset) string { return string(a.Criticality) },
		"factory":     func(a assets.Asset) string { return a.Factory },
		"workshop":    func(a assets.Asset) string { return a.Workshop },
		"line":        func(a assets.Asset) string { return a.Line },
		"vendor":      func(a assets.Asset) string { return a.Vendor },
	},
	Date: func(a assets.Asset) string { return a.StartDate },
}

var workOrderSchema = listview.Schema[workorders.WorkOrder]{
	Search: []listview.Field[workorders.WorkOrder]{
		func(wo workorders.WorkOrder) string { return wo.Code },
		func(wo workorders.WorkOrder) string { return wo.Summary },
		func(wo workorders.WorkOrder) string { return wo.EquipmentCode },
		func(wo workorders.WorkOrder) string { return wo.EquipmentName },
	},
	Fields: map[string]listview.Field[workorders.WorkOrder]{
		"status":   func(wo workorders.WorkOrder) string { return string(wo.Status) },
		"priority": func(wo workorders.WorkOrder) string { return string(wo.Priority) },
		"type":     func(wo workorders.WorkOrder) string { return string(wo.Type) },
		"assignee": func(wo workorders.WorkOrder) string { return wo.AssigneeName },
	},
	Date: func(wo workorders.WorkOrder) string { return wo.CreatedAt },
}

var planSchema = listview.Schema[maintenance.Plan]{
	Search: []listview.Field[maintenance.Plan]{
		func(p maintenance.Plan) string { return p.Code },
		func(p maintenance.Plan) string { return p.Title },
		func(p maintenance.Plan) string { return p.EquipmentCode },
	},
	Fields: map[string]listview.Field[maintenance.Plan]{
		"trigger":  func(p maintenance.Plan) string { return string(p.Trigger) },
		"priority": func(p maintenance.Plan) string { return string(p.Priority) },
		"active":   func(p maintenance.Plan) string { return strconv.FormatBool(p.IsActive) },
	},
	Date: func(p maintenance.Plan) string { return p.LastGeneratedDate },
}

var partSchema = listview.Schema[spareparts.Part]{
	Search: []listview.Field[spareparts.Part]{
		func(p spareparts.Part) string { return p.Code },
		func(p spareparts.Part) string { return p.Name },
		func(p spareparts.Part) string { return p.SupplierPartCode },
	},
	Fields: map[string]listview.Field[spareparts.Part]{
		"category":  func(p spareparts.Part) string { return p.Category },
		"lifecycle": func(p spareparts.Part) string { return string(p.Lifecycle) },
		"location":  func(p spareparts.Part) string { return p.Location },
		"low":       func(p spareparts.Part) string { return strconv.FormatBool(p.LowStock()) },
	},
}

var inspectionSchema = listview.Schema[inspections.Record]{
	Search: []listview.Field[inspections.Record]{
		func(r inspections.Record) string { return r.EquipmentCode },
		func(r inspections.Record) string { return r.Route },
		func(r inspections.Record) string { return r.InspectorName },
	},
	Fields: map[string]listview.Field[inspections.Record]{
		"result": func(r inspections.Record) string { return string(r.Result) },
		"route":  func(r inspections.Record) string { return r.Route },
	},
	Date: func(r inspections.Record) string { return r.CreatedAt },
}

// listing описание списка одного экрана.
type listing[T any] struct {
	screen dialog.Screen
	schema listview.Schema[T]
	load   func(ctx context.Context) ([]T, error)
	table  func([]T) render.Table
}

type listFlags struct {
	search   string
	equals   []string
	from     string
	to       string
	page     int
	pageSize int
	all      bool
	reset    bool
	export   string
	outDir   string
	upload   bool
	distinct string
}

// runList загружает снимок, применяет сохранённое состояние и флаги, печатает страницу.
// Состояние после команды запоминается для следующего запуска.
func runList[T any](ctx context.Context, a *App, l listing[T], args []string) error {
	fs := a.flags(string(l.screen) + " list")
	var f listFlags
	fs.StringVarP(&f.search, "search", "s", "", "поиск подстрокой")
	fs.StringArrayVarP(&f.equals, "eq", "e", nil, "точное совпадение поле=значение, можно несколько")
	fs.StringVar(&f.from, "from", "", "дата с (YYYY-MM-DD)")
	fs.StringVar(&f.to, "to", "", "дата по (YYYY-MM-DD)")
	fs.IntVarP(&f.page, "page", "p", 0, "номер страницы")
	fs.IntVar(&f.pageSize, "page-size", 0, "строк на странице")
	fs.BoolVar(&f.all, "all", false, "показать все строки")
	fs.BoolVar(&f.reset, "reset", false, "сбросить условия")
	fs.StringVar(&f.export, "export", "", "выгрузить отфильтрованный список: csv или xlsx")
	fs.StringVar(&f.outDir, "out", ".", "каталог для выгрузки")
	fs.BoolVar(&f.upload, "upload", false, "загрузить выгрузку в S3")
	fs.StringVar(&f.distinct, "distinct", "", "значения поля для фильтра")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	eng, err := openList(ctx, a, l)
	if err != nil {
		return err
	}

	if f.distinct != "" {
		vals, err := eng.Distinct(f.distinct)
		if err != nil {
			return err
		}
		for _, v := range vals {
			fmt.Fprintln(a.out, v)
		}
		return nil
	}

	if f.reset {
		eng.Reset()
	}
	if fs.Changed("search") || fs.Changed("eq") || fs.Changed("from") || fs.Changed("to") {
		c, err := criteriaFromFlags(eng.Criteria(), f, fs.Changed)
		if err != nil {
			return err
		}
		if err := eng.Apply(c); err != nil {
			return err
		}
	}
	if f.all {
		eng.ShowAll()
	} else if f.pageSize != 0 {
		if err := eng.SetPageSize(f.pageSize); err != nil {
			return err
		}
	}
	if f.page != 0 && !eng.GoTo(f.page) {
		return fmt.Errorf("page %d out of range 1..%d", f.page, eng.TotalPages())
	}

	if err := a.states.Set(ctx, l.screen, eng.State()); err != nil {
		a.log.Error("save list state failed", "screen", l.screen, "err", err)
	}

	if f.export != "" {
		return a.exportView(ctx, string(l.screen), f.export, f.outDir, f.upload, l.table(eng.Filtered()))
	}
	return printPage(a, eng.View(), l.table)
}

// runPage листает сохранённый список: next, prev, first, last или номер.
func runPage[T any](ctx context.Context, a *App, l listing[T], args []string) error {
	fs := a.flags(string(l.screen) + " page")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(a.errOut, "Использование: cmms %s page <next|prev|first|last|N>\n", l.screen)
		return ErrUsage
	}

	eng, err := openList(ctx, a, l)
	if err != nil {
		return err
	}
	var moved bool
	switch dir := fs.Arg(0); dir {
	case "next":
		moved = eng.Next()
	case "prev":
		moved = eng.Prev()
	case "first":
		moved = eng.First()
	case "last":
		moved = eng.Last()
	default:
		n, err := strconv.Atoi(dir)
		if err != nil {
			return fmt.Errorf("bad page %q", dir)
		}
		moved = eng.GoTo(n)
	}
	if !moved {
		fmt.Fprintln(a.errOut, "Страница не изменилась")
	}
	if err := a.states.Set(ctx, l.screen, eng.State()); err != nil {
		a.log.Error("save list state failed", "screen", l.screen, "err", err)
	}
	return printPage(a, eng.View(), l.table)
}

func openList[T any](ctx context.Context, a *App, l listing[T]) (*listview.Engine[T], error) {
	rows, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	eng := listview.New(l.schema, a.cfg.List.PageSize)
	eng.Load(rows)

	item, err := a.states.Get(ctx, l.screen)
	if err != nil {
		return nil, err
	}
	if err := eng.Restore(item.List); err != nil {
		// схема могла измениться между версиями, начинаем с чистого списка
		a.log.Warn("saved list state rejected", "screen", l.screen, "err", err)
		eng.Reset()
	}
	return eng, nil
}

func criteriaFromFlags(cur listview.Criteria, f listFlags, changed func(string) bool) (listview.Criteria, error) {
	c := cur
	if changed("search") {
		c.Search = f.search
	}
	if changed("from") {
		c.From = f.from
	}
	if changed("to") {
		c.To = f.to
	}
	if changed("eq") {
		for _, kv := range f.equals {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || strings.TrimSpace(k) == "" {
				return c, fmt.Errorf("bad --eq %q, want field=value", kv)
			}
			c = c.With(strings.TrimSpace(k), strings.TrimSpace(v))
		}
	}
	return c, nil
}

func printPage[T any](a *App, v listview.View[T], table func([]T) render.Table) error {
	if err := table(v.Rows).Write(a.out); err != nil {
		return err
	}
	return render.Footer(a.out, v)
}

// exportView выгрузка отфильтрованного списка целиком, а не текущей страницы.
func (a *App) exportView(ctx context.Context, prefix, format, dir string, upload bool, t render.Table) error {
	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case "csv":
		var buf bytes.Buffer
		err = render.CSV(&buf, t)
		data, contentType = buf.Bytes(), "text/csv; charset=utf-8"
	case "xlsx":
		data, err = render.XLSX(prefix, t)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return err
	}
	name := render.FileName(prefix, format, time.Now().In(a.cfg.Location()))
	return a.saveFile(ctx, name, contentType, data, dir, upload)
}
