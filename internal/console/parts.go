package console

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Spok95/cmms-console/internal/dashboard"
	"github.com/Spok95/cmms-console/internal/dialog"
	"github.com/Spok95/cmms-console/internal/domain/spareparts"
	"github.com/Spok95/cmms-console/internal/forms"
	"github.com/Spok95/cmms-console/internal/render"
)

func (a *App) partListing() listing[spareparts.Part] {
	return listing[spareparts.Part]{
		screen: dialog.ScreenParts,
		schema: partSchema,
		load:   func(ctx context.Context) ([]spareparts.Part, error) { return a.parts.ListAll(ctx, nil) },
		table:  render.PartTable,
	}
}

func (a *App) partCommands() map[string]command {
	return map[string]command{
		"list":      func(ctx context.Context, args []string) error { return runList(ctx, a, a.partListing(), args) },
		"page":      func(ctx context.Context, args []string) error { return runPage(ctx, a, a.partListing(), args) },
		"show":      a.cmdPartShow,
		"create":    a.cmdPartCreate,
		"edit":      a.cmdPartEdit,
		"delete":    a.cmdPartDelete,
		"stock-in":  func(ctx context.Context, args []string) error { return a.cmdPartMove(ctx, "parts stock-in", a.parts.StockIn, args) },
		"stock-out": func(ctx context.Context, args []string) error { return a.cmdPartMove(ctx, "parts stock-out", a.parts.StockOut, args) },
		"low":       a.cmdPartLow,
	}
}

func (a *App) cmdPartShow(ctx context.Context, args []string) error {
	fs := a.flags("parts show")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	id, err := a.idArg(fs, "parts show <id>")
	if err != nil {
		return err
	}
	p, err := a.parts.Get(ctx, id)
	if err != nil {
		return err
	}
	return render.PartCard(*p).Write(a.out)
}

func (a *App) cmdPartCreate(ctx context.Context, args []string) error {
	return runForm(ctx, a, "parts create", false, forms.NewPartForm(a.parts), render.PartCard, args)
}

func (a *App) cmdPartEdit(ctx context.Context, args []string) error {
	return runForm(ctx, a, "parts edit", true, forms.NewPartForm(a.parts), render.PartCard, args)
}

func (a *App) cmdPartDelete(ctx context.Context, args []string) error {
	fs := a.flags("parts delete")
	yes := fs.BoolP("yes", "y", false, "не спрашивать подтверждение")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	id, err := a.idArg(fs, "parts delete <id> [--yes]")
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Удалить запчасть %d?", id), *yes) {
		fmt.Fprintln(a.out, "Отменено")
		return nil
	}
	if err := a.parts.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Запчасть удалена")
	return nil
}

func (a *App) cmdPartMove(ctx context.Context, name string,
	move func(context.Context, int64, spareparts.Movement) (*spareparts.Part, error), args []string) error {

	fs := a.flags(name)
	var m spareparts.Movement
	fs.StringVar(&m.Reference, "ref", "", "основание (накладная, наряд)")
	fs.StringVar(&m.Notes, "notes", "", "примечание")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fmt.Fprintf(a.errOut, "Использование: cmms %s <id> <количество> [--ref ...]\n", name)
		return ErrUsage
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	qty, err := strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil {
		return fmt.Errorf("bad quantity %q", fs.Arg(1))
	}
	m.Quantity = qty
	p, err := move(ctx, id, m)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s: остаток %s %s\n", p.Code, p.Name, p.CurrentStock, p.Unit)
	if p.LowStock() {
		fmt.Fprintf(a.out, "Внимание: остаток не выше минимума (%s)\n", p.MinStock)
	}
	return nil
}

func (a *App) cmdPartLow(ctx context.Context, args []string) error {
	fs := a.flags("parts low")
	limit := fs.Int("limit", dashboard.LowStockLimit, "сколько позиций запросить")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	list, err := a.parts.Low(ctx, *limit)
	if err != nil {
		return err
	}
	if err := render.PartTable(list).Write(a.out); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Мало на складе: %d\n", len(list))
	return nil
}
