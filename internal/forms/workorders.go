package forms

import (
	"github.com/Spok95/cmms-console/internal/domain/workorders"
)

var workOrderForm = Form{
	Title: "Наряд",
	Fields: []Field{
		{Name: "wo_code", Label: "Номер", ReadOnly: true},
		{Name: "equipment", Label: "Оборудование (id)", Kind: KindRef, Required: true},
		{Name: "wo_type", Label: "Тип", Kind: KindChoice, Required: true,
			Options: workorders.Types.Strings(), Default: string(workorders.TypeCM)},
		{Name: "status", Label: "Статус", Kind: KindChoice, Required: true,
			Options: workorders.Statuses.Strings(), Default: string(workorders.StatusOpen)},
		{Name: "summary", Label: "Краткое описание", Required: true},
		{Name: "description", Label: "Описание"},
		{Name: "priority", Label: "Приоритет", Kind: KindChoice, Required: true,
			Options: workorders.Priorities.Strings(), Default: string(workorders.PriorityMedium)},
		{Name: "assignee", Label: "Исполнитель (id)", Kind: KindRef},
		{Name: "planned_start", Label: "Плановое начало", Kind: KindDateTime},
		{Name: "planned_end", Label: "Плановое окончание", Kind: KindDateTime},
		{Name: "failure_code", Label: "Код отказа"},
		{Name: "root_cause", Label: "Причина"},
		{Name: "actions_taken", Label: "Выполненные работы"},
		{Name: "downtime_minutes", Label: "Простой, мин", Kind: KindNumber, Default: "0"},
		{Name: "labor_hours", Label: "Трудозатраты, ч", Kind: KindNumber, Default: "0"},
		{Name: "parts_cost", Label: "Запчасти, руб", Kind: KindNumber, Default: "0"},
		{Name: "notes", Label: "Примечание"},
	},
}

type WorkOrderBinding struct{}

func (WorkOrderBinding) Form() Form { return workOrderForm }

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func (WorkOrderBinding) Values(wo workorders.WorkOrder) Values {
	return Values{
		"wo_code":          wo.Code,
		"equipment":        refString(wo.Equipment),
		"wo_type":          string(wo.Type),
		"status":           string(wo.Status),
		"summary":          wo.Summary,
		"description":      wo.Description,
		"priority":         string(wo.Priority),
		"assignee":         refString(wo.Assignee),
		"planned_start":    dateTimeInput(wo.PlannedStart),
		"planned_end":      dateTimeInput(wo.PlannedEnd),
		"failure_code":     wo.FailureCode,
		"root_cause":       wo.RootCause,
		"actions_taken":    wo.ActionsTaken,
		"downtime_minutes": orZero(wo.DowntimeMinutes.String()),
		"labor_hours":      orZero(wo.LaborHours.String()),
		"parts_cost":       orZero(wo.PartsCost.String()),
		"notes":            wo.Notes,
	}
}

// Input номер наряда выдаёт сервер, поэтому он уходит только при редактировании.
func (WorkOrderBinding) Input(v Values, edit bool) (workorders.Input, error) {
	in := workorders.Input{
		Equipment:       ref(v, "equipment"),
		Type:            workorders.Type(v.Get("wo_type")),
		Status:          workorders.Status(v.Get("status")),
		Summary:         v.Get("summary"),
		Description:     text(v, "description"),
		Priority:        workorders.Priority(v.Get("priority")),
		Assignee:        ref(v, "assignee"),
		PlannedStart:    optional(v, "planned_start"),
		PlannedEnd:      optional(v, "planned_end"),
		FailureCode:     text(v, "failure_code"),
		RootCause:       text(v, "root_cause"),
		ActionsTaken:    text(v, "actions_taken"),
		DowntimeMinutes: numberOr(v, "downtime_minutes", "0"),
		LaborHours:      numberOr(v, "labor_hours", "0"),
		PartsCost:       numberOr(v, "parts_cost", "0"),
		Notes:           text(v, "notes"),
	}
	if edit {
		in.Code = text(v, "wo_code")
	}
	return in, nil
}

func NewWorkOrderForm(repo *workorders.Repo) *Controller[workorders.WorkOrder, workorders.Input] {
	return NewController[workorders.WorkOrder, workorders.Input](repo, WorkOrderBinding{})
}
