package console

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Spok95/cmms-console/internal/dashboard"
	"github.com/Spok95/cmms-console/internal/domain/reports"
	"github.com/Spok95/cmms-console/internal/render"
)

func (a *App) cmdDashboard(ctx context.Context, args []string) error {
	fs := a.flags("dashboard")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	sum, err := dashboard.NewService(a.assets, a.orders, a.parts, a.log).Load(ctx)
	if err != nil {
		return err
	}
	if err := render.DashboardCard(*sum).Write(a.out); err != nil {
		return err
	}
	if len(sum.LowStock) > 0 {
		fmt.Fprintln(a.out)
		if err := render.PartTable(sum.LowStock).Write(a.out); err != nil {
			return err
		}
	}
	if len(sum.Recent) > 0 {
		fmt.Fprintln(a.out)
		return render.WorkOrderTable(sum.Recent).Write(a.out)
	}
	return nil
}

func (a *App) reportCommands() map[string]command {
	return map[string]command{
		"workorders":  a.reportCommand("Отчёт по нарядам", a.reports.WorkOrders),
		"downtime":    a.reportCommand("Отчёт по простоям", a.reports.Downtime),
		"parts-usage": a.reportCommand("Расход запчастей", a.reports.PartsUsage),
	}
}

func (a *App) reportCommand(title string,
	load func(context.Context, url.Values) (reports.Report, error)) command {

	return func(ctx context.Context, args []string) error {
		fs := a.flags("reports")
		from := fs.String("from", "", "дата с (YYYY-MM-DD)")
		to := fs.String("to", "", "дата по (YYYY-MM-DD)")
		params := fs.StringArray("param", nil, "доп. параметр запроса ключ=значение")
		if err := a.parse(fs, args); err != nil {
			return err
		}
		q := url.Values{}
		if *from != "" {
			q.Set("start_date", *from)
		}
		if *to != "" {
			q.Set("end_date", *to)
		}
		for _, kv := range *params {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("bad --param %q, want key=value", kv)
			}
			q.Add(k, v)
		}
		rep, err := load(ctx, q)
		if err != nil {
			return err
		}
		return render.ReportCard(title, rep).Write(a.out)
	}
}
