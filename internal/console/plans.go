package console

import (
	"context"
	"fmt"

	"github.com/Spok95/cmms-console/internal/dialog"
	"github.com/Spok95/cmms-console/internal/domain/maintenance"
	"github.com/Spok95/cmms-console/internal/forms"
	"github.com/Spok95/cmms-console/internal/render"
)

func (a *App) planListing() listing[maintenance.Plan] {
	return listing[maintenance.Plan]{
		screen: dialog.ScreenPlans,
		schema: planSchema,
		load:   func(ctx context.Context) ([]maintenance.Plan, error) { return a.plans.ListAll(ctx, nil) },
		table:  render.PlanTable,
	}
}

func (a *App) planCommands() map[string]command {
	return map[string]command{
		"list":       func(ctx context.Context, args []string) error { return runList(ctx, a, a.planListing(), args) },
		"page":       func(ctx context.Context, args []string) error { return runPage(ctx, a, a.planListing(), args) },
		"show":       a.cmdPlanShow,
		"create":     a.cmdPlanCreate,
		"edit":       a.cmdPlanEdit,
		"delete":     a.cmdPlanDelete,
		"activate":   a.cmdPlanActivate,
		"deactivate": a.cmdPlanDeactivate,
		"toggle":     a.cmdPlanToggle,
		"generate":   a.cmdPlanGenerate,
	}
}

// planArg план по единственному позиционному номеру.
func (a *App) planArg(ctx context.Context, name string, args []string) (*maintenance.Plan, error) {
	fs := a.flags(name)
	if err := a.parse(fs, args); err != nil {
		return nil, err
	}
	id, err := a.idArg(fs, name+" <id>")
	if err != nil {
		return nil, err
	}
	return a.plans.Get(ctx, id)
}

func (a *App) cmdPlanShow(ctx context.Context, args []string) error {
	p, err := a.planArg(ctx, "plans show", args)
	if err != nil {
		return err
	}
	return render.PlanCard(*p).Write(a.out)
}

func (a *App) cmdPlanCreate(ctx context.Context, args []string) error {
	return runForm(ctx, a, "plans create", false, forms.NewPlanForm(a.plans), render.PlanCard, args)
}

func (a *App) cmdPlanEdit(ctx context.Context, args []string) error {
	return runForm(ctx, a, "plans edit", true, forms.NewPlanForm(a.plans), render.PlanCard, args)
}

func (a *App) cmdPlanDelete(ctx context.Context, args []string) error {
	fs := a.flags("plans delete")
	yes := fs.BoolP("yes", "y", false, "не спрашивать подтверждение")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	id, err := a.idArg(fs, "plans delete <id> [--yes]")
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Удалить план %d?", id), *yes) {
		fmt.Fprintln(a.out, "Отменено")
		return nil
	}
	if err := a.plans.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "План удалён")
	return nil
}

func (a *App) cmdPlanActivate(ctx context.Context, args []string) error {
	fs := a.flags("plans activate")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	id, err := a.idArg(fs, "plans activate <id>")
	if err != nil {
		return err
	}
	if err := a.plans.Activate(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "План включён")
	return nil
}

func (a *App) cmdPlanDeactivate(ctx context.Context, args []string) error {
	fs := a.flags("plans deactivate")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	id, err := a.idArg(fs, "plans deactivate <id>")
	if err != nil {
		return err
	}
	if err := a.plans.Deactivate(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "План выключен")
	return nil
}

func (a *App) cmdPlanToggle(ctx context.Context, args []string) error {
	p, err := a.planArg(ctx, "plans toggle", args)
	if err != nil {
		return err
	}
	active, err := a.plans.Toggle(ctx, *p)
	if err != nil {
		return err
	}
	if active {
		fmt.Fprintf(a.out, "План %s включён\n", p.Code)
	} else {
		fmt.Fprintf(a.out, "План %s выключен\n", p.Code)
	}
	return nil
}

func (a *App) cmdPlanGenerate(ctx context.Context, args []string) error {
	p, err := a.planArg(ctx, "plans generate", args)
	if err != nil {
		return err
	}
	g, err := a.plans.GenerateWorkOrder(ctx, *p)
	if err != nil {
		return err
	}
	if g.Message != "" {
		fmt.Fprintln(a.out, g.Message)
	}
	fmt.Fprintf(a.out, "Создан наряд %s (id %d)\n", g.Code, g.WorkOrderID)
	return nil
}
