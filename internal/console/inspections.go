package console

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Spok95/cmms-console/internal/dialog"
	"github.com/Spok95/cmms-console/internal/domain/inspections"
	"github.com/Spok95/cmms-console/internal/render"
)

func (a *App) inspectionListing() listing[inspections.Record] {
	return listing[inspections.Record]{
		screen: dialog.ScreenInspections,
		schema: inspectionSchema,
		load:   func(ctx context.Context) ([]inspections.Record, error) { return a.inspections.ListAll(ctx, nil) },
		table:  render.InspectionTable,
	}
}

func (a *App) inspectionCommands() map[string]command {
	return map[string]command{
		"list":   func(ctx context.Context, args []string) error { return runList(ctx, a, a.inspectionListing(), args) },
		"page":   func(ctx context.Context, args []string) error { return runPage(ctx, a, a.inspectionListing(), args) },
		"show":   a.cmdInspectionShow,
		"create": a.cmdInspectionCreate,
	}
}

func (a *App) cmdInspectionShow(ctx context.Context, args []string) error {
	fs := a.flags("inspections show")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	id, err := a.idArg(fs, "inspections show <id>")
	if err != nil {
		return err
	}
	rec, err := a.inspections.Get(ctx, id)
	if err != nil {
		return err
	}
	return render.InspectionCard(*rec).Write(a.out)
}

func (a *App) cmdInspectionCreate(ctx context.Context, args []string) error {
	fs := a.flags("inspections create")
	equipment := fs.Int64("equipment", 0, "id оборудования")
	route := fs.String("route", "", "маршрут обхода")
	items := fs.String("items", "", "пункты JSON-массивом или @файл.json")
	result := fs.String("result", "", "итог: pass, fail, warning (по умолчанию по пунктам)")
	notes := fs.String("notes", "", "примечание")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	in := inspections.Input{Equipment: *equipment}
	if s := strings.TrimSpace(*route); s != "" {
		in.Route = &s
	}
	if s := strings.TrimSpace(*notes); s != "" {
		in.Notes = &s
	}
	list, err := parseItems(*items)
	if err != nil {
		return err
	}
	in.Items = list
	if *result != "" {
		r, err := inspections.Results.Parse(*result)
		if err != nil {
			return err
		}
		in.Result = r
	}

	rec, err := a.inspections.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Осмотр записан")
	return render.InspectionCard(*rec).Write(a.out)
}

// parseItems пункты осмотра из JSON или файла (@path).
func parseItems(raw string) ([]inspections.Item, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "@") {
		data, err := os.ReadFile(raw[1:])
		if err != nil {
			return nil, fmt.Errorf("read items: %w", err)
		}
		raw = string(data)
	}
	if raw == "" {
		return nil, nil
	}
	var items []inspections.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("items must be a JSON array: %w", err)
	}
	return items, nil
}
