package console

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Spok95/cmms-console/internal/dialog"
	"github.com/Spok95/cmms-console/internal/domain/workorders"
	"github.com/Spok95/cmms-console/internal/forms"
	"github.com/Spok95/cmms-console/internal/render"
)

func (a *App) workOrderListing() listing[workorders.WorkOrder] {
	return listing[workorders.WorkOrder]{
		screen: dialog.ScreenWorkOrders,
		schema: workOrderSchema,
		load: func(ctx context.Context) ([]workorders.WorkOrder, error) {
			return a.orders.ListAll(ctx, url.Values{"ordering": {"-created_at"}})
		},
		table: render.WorkOrderTable,
	}
}

func (a *App) workOrderCommands() map[string]command {
	return map[string]command{
		"list":     func(ctx context.Context, args []string) error { return runList(ctx, a, a.workOrderListing(), args) },
		"page":     func(ctx context.Context, args []string) error { return runPage(ctx, a, a.workOrderListing(), args) },
		"show":     a.cmdWorkOrderShow,
		"create":   a.cmdWorkOrderCreate,
		"edit":     a.cmdWorkOrderEdit,
		"delete":   a.cmdWorkOrderDelete,
		"assign":   a.cmdWorkOrderAssign,
		"start":    a.cmdWorkOrderStart,
		"complete": a.cmdWorkOrderComplete,
		"close":    a.cmdWorkOrderClose,
		"mine":     a.cmdWorkOrderMine,
		"overdue":  a.cmdWorkOrderOverdue,
		"export":   a.cmdWorkOrderExport,
		"template": a.cmdWorkOrderTemplate,
		"import": func(ctx context.Context, args []string) error {
			return a.importFile(ctx, "workorders import", args, a.orders.Import)
		},
	}
}

func (a *App) cmdWorkOrderShow(ctx context.Context, args []string) error {
	fs := a.flags("workorders show")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	id, err := a.idArg(fs, "workorders show <id>")
	if err != nil {
		return err
	}
	wo, err := a.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	return render.WorkOrderCard(*wo).Write(a.out)
}

func (a *App) cmdWorkOrderCreate(ctx context.Context, args []string) error {
	return runForm(ctx, a, "workorders create", false, forms.NewWorkOrderForm(a.orders), render.WorkOrderCard, args)
}

func (a *App) cmdWorkOrderEdit(ctx context.Context, args []string) error {
	return runForm(ctx, a, "workorders edit", true, forms.NewWorkOrderForm(a.orders), render.WorkOrderCard, args)
}

func (a *App) cmdWorkOrderDelete(ctx context.Context, args []string) error {
	fs := a.flags("workorders delete")
	yes := fs.BoolP("yes", "y", false, "не спрашивать подтверждение")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	id, err := a.idArg(fs, "workorders delete <id> [--yes]")
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Удалить наряд %d?", id), *yes) {
		fmt.Fprintln(a.out, "Отменено")
		return nil
	}
	if err := a.orders.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Наряд удалён")
	return nil
}

// checkAction загружает наряд и проверяет, что действие доступно в его статусе.
func (a *App) checkAction(ctx context.Context, id int64, act workorders.Action) error {
	wo, err := a.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	if !workorders.Allowed(*wo, act) {
		return fmt.Errorf("action %q is not allowed for work order %s in status %q", act, wo.Code, wo.Status)
	}
	return nil
}

func (a *App) cmdWorkOrderAssign(ctx context.Context, args []string) error {
	fs := a.flags("workorders assign")
	to := fs.Int64("to", 0, "id исполнителя")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	id, err := a.idArg(fs, "workorders assign <id> --to <id исполнителя>")
	if err != nil {
		return err
	}
	if *to <= 0 {
		return fmt.Errorf("assignee is required: --to <user id>")
	}
	if err := a.checkAction(ctx, id, workorders.ActionAssign); err != nil {
		return err
	}
	wo, err := a.orders.Assign(ctx, id, *to)
	if err != nil {
		return err
	}
	return a.actionDone(wo)
}

func (a *App) cmdWorkOrderStart(ctx context.Context, args []string) error {
	return a.simpleAction(ctx, "workorders start", workorders.ActionStart, a.orders.Start, args)
}

func (a *App) cmdWorkOrderClose(ctx context.Context, args []string) error {
	return a.simpleAction(ctx, "workorders close", workorders.ActionClose, a.orders.Close, args)
}

func (a *App) simpleAction(ctx context.Context, name string, act workorders.Action,
	do func(context.Context, int64) (*workorders.WorkOrder, error), args []string) error {

	fs := a.flags(name)
	if err := a.parse(fs, args); err != nil {
		return err
	}
	id, err := a.idArg(fs, name+" <id>")
	if err != nil {
		return err
	}
	if err := a.checkAction(ctx, id, act); err != nil {
		return err
	}
	wo, err := do(ctx, id)
	if err != nil {
		return err
	}
	return a.actionDone(wo)
}

func (a *App) cmdWorkOrderComplete(ctx context.Context, args []string) error {
	fs := a.flags("workorders complete")
	var in workorders.CompleteInput
	fs.StringVar(&in.ActionsTaken, "actions", "", "выполненные работы (обязательно)")
	fs.StringVar(&in.RootCause, "root-cause", "", "причина отказа")
	downtime := fs.String("downtime", "", "простой, мин")
	labor := fs.String("labor", "", "трудозатраты, ч")
	partsCost := fs.String("parts-cost", "", "стоимость запчастей")
	fs.StringVar(&in.Notes, "notes", "", "примечание")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	id, err := a.idArg(fs, "workorders complete <id> --actions \"...\"")
	if err != nil {
		return err
	}
	in.DowntimeMinutes = number(*downtime)
	in.LaborHours = number(*labor)
	in.PartsCost = number(*partsCost)
	if err := in.Validate(); err != nil {
		return err
	}
	if err := a.checkAction(ctx, id, workorders.ActionComplete); err != nil {
		return err
	}
	wo, err := a.orders.Complete(ctx, id, in)
	if err != nil {
		return err
	}
	return a.actionDone(wo)
}

func (a *App) actionDone(wo *workorders.WorkOrder) error {
	fmt.Fprintf(a.out, "Наряд %s: %s\n", wo.Code, wo.Status.Label())
	return nil
}

func (a *App) cmdWorkOrderMine(ctx context.Context, args []string) error {
	return a.plainOrders(ctx, "workorders mine", a.orders.Mine, args)
}

func (a *App) cmdWorkOrderOverdue(ctx context.Context, args []string) error {
	return a.plainOrders(ctx, "workorders overdue", a.orders.Overdue, args)
}

func (a *App) plainOrders(ctx context.Context, name string,
	load func(context.Context) ([]workorders.WorkOrder, error), args []string) error {

	fs := a.flags(name)
	if err := a.parse(fs, args); err != nil {
		return err
	}
	list, err := load(ctx)
	if err != nil {
		return err
	}
	if err := render.WorkOrderTable(list).Write(a.out); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Всего: %d\n", len(list))
	return nil
}

func (a *App) cmdWorkOrderExport(ctx context.Context, args []string) error {
	fs, ff := a.fileFlagsFor("workorders export")
	status := fs.String("status", "", "статус")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	q := url.Values{}
	if *status != "" {
		st, err := workorders.Statuses.Parse(*status)
		if err != nil {
			return err
		}
		q.Set("status", string(st))
	}
	f, err := a.orders.Export(ctx, q)
	if err != nil {
		return err
	}
	return a.saveDownload(ctx, f, *ff.dir, *ff.upload)
}

func (a *App) cmdWorkOrderTemplate(ctx context.Context, args []string) error {
	fs, ff := a.fileFlagsFor("workorders template")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	f, err := a.orders.Template(ctx)
	if err != nil {
		return err
	}
	return a.saveDownload(ctx, f, *ff.dir, *ff.upload)
}
