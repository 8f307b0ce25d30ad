package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Spok95/cmms-console/internal/api"
	"github.com/Spok95/cmms-console/internal/batch"
	"github.com/Spok95/cmms-console/internal/dashboard"
	"github.com/Spok95/cmms-console/internal/domain/assets"
	"github.com/Spok95/cmms-console/internal/domain/inspections"
	"github.com/Spok95/cmms-console/internal/domain/maintenance"
	"github.com/Spok95/cmms-console/internal/domain/spareparts"
	"github.com/Spok95/cmms-console/internal/domain/users"
	"github.com/Spok95/cmms-console/internal/domain/workorders"
)

var AssetHeaders = []string{"ID", "Код", "Наименование", "Завод", "Цех", "Линия", "Поставщик", "Статус", "Критичность", "Ввод"}

func AssetRow(a assets.Asset) []string {
	return []string{
		fmt.Sprint(a.ID), a.Code, a.Name, a.Factory, a.Workshop, a.Line, a.Vendor,
		a.Status.Label(), a.Criticality.Label(), a.StartDate,
	}
}

func AssetTable(list []assets.Asset) Table {
	t := Table{Headers: AssetHeaders}
	for _, a := range list {
		t.Rows = append(t.Rows, AssetRow(a))
	}
	return t
}

func AssetCard(a assets.Asset) Card {
	return Card{
		Title: fmt.Sprintf("%s %s", a.Code, a.Name),
		Fields: [][2]string{
			{"Статус", a.Status.Label()},
			{"Критичность", a.Criticality.Label()},
			{"Размещение", strings.Join(nonEmpty(a.Factory, a.Workshop, a.Line, a.Station), " / ")},
			{"Процесс", a.Process},
			{"Машина", a.MachineName},
			{"Инв. номер", a.EquipmentID},
			{"Поставщик", a.Vendor},
			{"Модель", a.Model},
			{"Серийный номер", a.SerialNumber},
			{"Ввод в эксплуатацию", a.StartDate},
			{"Гарантия до", a.WarrantyExpiry},
			{"Стоимость", a.AssetValue.String()},
			{"Счётчик", strings.TrimSpace(a.CurrentMeterReading.String() + " " + a.MeterUnit)},
			{"Последнее ТО", a.LastMaintenanceDate},
			{"Следующее ТО", a.NextMaintenanceDate},
			{"Примечание", a.Notes},
		},
	}
}

func AssetStats(st assets.Stats) Card {
	c := Card{Title: "Оборудование", Fields: [][2]string{{"Всего", fmt.Sprint(st.Total)}}}
	for _, s := range assets.Statuses.Values() {
		c.Fields = append(c.Fields, [2]string{s.Label(), fmt.Sprint(st.ByStatus[s])})
	}
	for _, cr := range assets.Criticalities.Values() {
		c.Fields = append(c.Fields, [2]string{cr.Label(), fmt.Sprint(st.ByCriticality[cr])})
	}
	return c
}

var WorkOrderHeaders = []string{"ID", "Номер", "Оборудование", "Тип", "Приоритет", "Статус", "Исполнитель", "Создан", "Действия"}

func WorkOrderRow(wo workorders.WorkOrder) []string {
	acts := make([]string, 0, 2)
	for _, a := range workorders.AllowedActions(wo) {
		acts = append(acts, string(a))
	}
	return []string{
		fmt.Sprint(wo.ID), wo.Code, wo.EquipmentName, wo.Type.Label(), wo.Priority.Label(),
		wo.Status.Label(), wo.AssigneeName, day(wo.CreatedAt), strings.Join(acts, ","),
	}
}

func WorkOrderTable(list []workorders.WorkOrder) Table {
	t := Table{Headers: WorkOrderHeaders}
	for _, wo := range list {
		t.Rows = append(t.Rows, WorkOrderRow(wo))
	}
	return t
}

func WorkOrderCard(wo workorders.WorkOrder) Card {
	return Card{
		Title: fmt.Sprintf("%s %s", wo.Code, wo.Summary),
		Fields: [][2]string{
			{"Оборудование", strings.TrimSpace(wo.EquipmentCode + " " + wo.EquipmentName)},
			{"Тип", wo.Type.Label()},
			{"Статус", wo.Status.Label()},
			{"Приоритет", wo.Priority.Label()},
			{"Исполнитель", wo.AssigneeName},
			{"Плановое начало", wo.PlannedStart},
			{"Плановое окончание", wo.PlannedEnd},
			{"Начат", wo.StartedAt},
			{"Завершён", wo.CompletedAt},
			{"Описание", wo.Description},
			{"Код отказа", wo.FailureCode},
			{"Причина", wo.RootCause},
			{"Выполненные работы", wo.ActionsTaken},
			{"Простой, мин", orZero(wo.DowntimeMinutes.String())},
			{"Трудозатраты, ч", orZero(wo.LaborHours.String())},
			{"Запчасти", orZero(wo.PartsCost.String())},
			{"Итого", orZero(wo.TotalCost.String())},
			{"Доступно", actionLabels(workorders.AllowedActions(wo))},
		},
	}
}

func actionLabels(acts []workorders.Action) string {
	out := make([]string, 0, len(acts))
	for _, a := range acts {
		out = append(out, fmt.Sprintf("%s (%s)", a.Label(), a))
	}
	return strings.Join(out, ", ")
}

var PlanHeaders = []string{"ID", "Код", "Название", "Оборудование", "Запуск", "Периодичность", "Приоритет", "Активен", "Последний наряд"}

func PlanRow(p maintenance.Plan) []string {
	return []string{
		fmt.Sprint(p.ID), p.Code, p.Title, p.EquipmentName, p.Trigger.Label(), p.Schedule(),
		p.Priority.Label(), yesNo(p.IsActive), day(p.LastGeneratedDate),
	}
}

func PlanTable(list []maintenance.Plan) Table {
	t := Table{Headers: PlanHeaders}
	for _, p := range list {
		t.Rows = append(t.Rows, PlanRow(p))
	}
	return t
}

func PlanCard(p maintenance.Plan) Card {
	return Card{
		Title: fmt.Sprintf("%s %s", p.Code, p.Title),
		Fields: [][2]string{
			{"Оборудование", strings.TrimSpace(p.EquipmentCode + " " + p.EquipmentName)},
			{"Запуск", p.Trigger.Label()},
			{"Периодичность", p.Schedule()},
			{"Приоритет", p.Priority.Label()},
			{"Активен", yesNo(p.IsActive)},
			{"Оценка, ч", p.EstimatedHours.String()},
			{"Оценка, руб", p.EstimatedCost.String()},
			{"Квалификация", p.RequiredSkills},
			{"Чек-лист", string(p.ChecklistTemplate)},
			{"Описание", p.Description},
		},
	}
}

var PartHeaders = []string{"ID", "Код", "Наименование", "Категория", "Остаток", "Минимум", "Страховой", "Ед.", "Склад", ""}

func PartRow(p spareparts.Part) []string {
	flag := ""
	if p.LowStock() {
		flag = "мало"
	}
	return []string{
		fmt.Sprint(p.ID), p.Code, p.Name, p.Category, orZero(p.CurrentStock.String()),
		orZero(p.MinStock.String()), orZero(p.SafetyStock.String()), p.Unit,
		strings.TrimSpace(p.Location + " " + p.Shelf), flag,
	}
}

func PartTable(list []spareparts.Part) Table {
	t := Table{Headers: PartHeaders}
	for _, p := range list {
		t.Rows = append(t.Rows, PartRow(p))
	}
	return t
}

func PartCard(p spareparts.Part) Card {
	return Card{
		Title: fmt.Sprintf("%s %s", p.Code, p.Name),
		Fields: [][2]string{
			{"Категория", p.Category},
			{"Характеристики", p.Spec},
			{"Производитель", p.Manufacturer},
			{"Поставщик", strings.TrimSpace(p.Supplier + " " + p.SupplierPartCode)},
			{"Остаток", strings.TrimSpace(orZero(p.CurrentStock.String()) + " " + p.Unit)},
			{"Минимум / страховой / максимум", fmt.Sprintf("%s / %s / %s",
				orZero(p.MinStock.String()), orZero(p.SafetyStock.String()), orZero(p.MaxStock.String()))},
			{"Низкий остаток", yesNo(p.LowStock())},
			{"Склад", strings.TrimSpace(p.Location + " " + p.Shelf)},
			{"Цена", p.UnitCost.String()},
			{"Статус", p.Lifecycle.Label()},
			{"Примечание", p.Notes},
		},
	}
}

var InspectionHeaders = []string{"ID", "Оборудование", "Маршрут", "Пунктов", "Итог", "Инспектор", "Наряд", "Дата"}

func InspectionTable(list []inspections.Record) Table {
	t := Table{Headers: InspectionHeaders}
	for _, r := range list {
		wo := ""
		if r.TriggeredWorkOrder != nil {
			wo = fmt.Sprint(*r.TriggeredWorkOrder)
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprint(r.ID), r.EquipmentCode, r.Route, fmt.Sprint(len(r.Items)),
			r.Result.Label(), r.InspectorName, wo, day(r.CreatedAt),
		})
	}
	return t
}

func InspectionCard(r inspections.Record) Card {
	c := Card{
		Title: fmt.Sprintf("Осмотр #%d %s", r.ID, r.EquipmentCode),
		Fields: [][2]string{
			{"Маршрут", r.Route},
			{"Итог", r.Result.Label()},
			{"Инспектор", r.InspectorName},
			{"Примечание", r.Notes},
		},
	}
	for _, it := range r.Items {
		mark := "ok"
		if !it.OK {
			mark = "ОТКЛ"
		}
		val := strings.TrimSpace(it.Value + " " + it.Unit)
		if it.Threshold != "" {
			val += " (порог " + it.Threshold + ")"
		}
		c.Fields = append(c.Fields, [2]string{it.Item, val + " " + mark})
	}
	return c
}

var UserHeaders = []string{"ID", "Логин", "ФИО", "Роль", "Подразделение", "Активен"}

func UserTable(list []users.User) Table {
	t := Table{Headers: UserHeaders}
	for _, u := range list {
		t.Rows = append(t.Rows, []string{
			fmt.Sprint(u.ID), u.Username, u.FullName, u.Role.Label(), u.Department, yesNo(u.IsActive),
		})
	}
	return t
}

func DashboardCard(s dashboard.Summary) Card {
	return Card{
		Title: "Сводка",
		Fields: [][2]string{
			{"Оборудование в работе", fmt.Sprint(s.ActiveAssets)},
			{"Наряды в работе", fmt.Sprint(s.ActiveWorkOrders)},
			{"Наряды ожидают", fmt.Sprint(s.PendingWorkOrders)},
			{"Запчасти с низким остатком", fmt.Sprint(len(s.LowStock))},
		},
	}
}

// ReportCard плоский вывод произвольного отчёта: вложенные ключи через точку.
func ReportCard(title string, rep map[string]any) Card {
	c := Card{Title: title}
	flatten("", rep, &c.Fields)
	return c
}

func flatten(prefix string, v any, out *[][2]string) {
	switch x := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			name := k
			if prefix != "" {
				name = prefix + "." + k
			}
			flatten(name, x[k], out)
		}
	case []any:
		for i, item := range x {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), item, out)
		}
	case nil:
		*out = append(*out, [2]string{prefix, ""})
	default:
		*out = append(*out, [2]string{prefix, fmt.Sprint(x)})
	}
}

// ImportReport итог импорта: счётчики и построчные ошибки как их вернул сервер.
func ImportReport(w io.Writer, res *api.ImportResult) error {
	if res.Message != "" {
		if _, err := fmt.Fprintln(w, res.Message); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Успешно: %d, ошибок: %d\n", res.SuccessCount, res.ErrorCount); err != nil {
		return err
	}
	for _, e := range res.Errors {
		if _, err := fmt.Fprintf(w, "  %s\n", e); err != nil {
			return err
		}
	}
	if hidden := res.ErrorCount - len(res.Errors); hidden > 0 && len(res.Errors) > 0 {
		if _, err := fmt.Fprintf(w, "  ... и ещё %d\n", hidden); err != nil {
			return err
		}
	}
	return nil
}

// BatchReport итог массовой операции с перечнем записей, которые не прошли.
func BatchReport(w io.Writer, rep batch.Report) error {
	if _, err := fmt.Fprintf(w, "Выполнено: %d из %d\n", len(rep.Succeeded), rep.Total()); err != nil {
		return err
	}
	for _, f := range rep.Failed {
		if _, err := fmt.Fprintf(w, "  id %d: %v\n", f.ID, f.Err); err != nil {
			return err
		}
	}
	return nil
}

func nonEmpty(ss ...string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "да"
	}
	return "нет"
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// day дата без времени.
func day(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
