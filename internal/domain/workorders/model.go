package workorders

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Spok95/cmms-console/internal/domain/enum"
)

type Type string

const (
	TypePM         Type = "PM"
	TypeCM         Type = "CM"
	TypeInspection Type = "inspection"
)

var Types = enum.New("work order type",
	enum.Entry[Type]{Value: TypePM, Label: "Плановое ТО"},
	enum.Entry[Type]{Value: TypeCM, Label: "Ремонт"},
	enum.Entry[Type]{Value: TypeInspection, Label: "Осмотр"},
)

func (t Type) Label() string                 { return Types.Label(t) }
func (t *Type) UnmarshalText(b []byte) error { return Types.Unmarshal(t, b) }

type Status string

const (
	StatusOpen       Status = "open"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusClosed     Status = "closed"
	StatusCanceled   Status = "canceled"
)

var Statuses = enum.New("work order status",
	enum.Entry[Status]{Value: StatusOpen, Label: "Открыт"},
	enum.Entry[Status]{Value: StatusAssigned, Label: "Назначен"},
	enum.Entry[Status]{Value: StatusInProgress, Label: "В работе"},
	enum.Entry[Status]{Value: StatusCompleted, Label: "Выполнен"},
	enum.Entry[Status]{Value: StatusClosed, Label: "Закрыт"},
	enum.Entry[Status]{Value: StatusCanceled, Label: "Отменён"},
)

func (s Status) Label() string                 { return Statuses.Label(s) }
func (s *Status) UnmarshalText(b []byte) error { return Statuses.Unmarshal(s, b) }

// Terminal закрытый или отменённый наряд больше не меняется.
func (s Status) Terminal() bool { return s == StatusClosed || s == StatusCanceled }

// Active назначенные и начатые наряды (счётчик «в работе» на сводке).
func (s Status) Active() bool { return s == StatusAssigned || s == StatusInProgress }

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var Priorities = enum.New("priority",
	enum.Entry[Priority]{Value: PriorityLow, Label: "Низкий"},
	enum.Entry[Priority]{Value: PriorityMedium, Label: "Средний"},
	enum.Entry[Priority]{Value: PriorityHigh, Label: "Высокий"},
	enum.Entry[Priority]{Value: PriorityCritical, Label: "Критический"},
)

func (p Priority) Label() string                 { return Priorities.Label(p) }
func (p *Priority) UnmarshalText(b []byte) error { return Priorities.Unmarshal(p, b) }

type WorkOrder struct {
	ID              int64       `json:"id"`
	Code            string      `json:"wo_code"`
	Equipment       *int64      `json:"equipment"`
	EquipmentCode   string      `json:"equipment_code,omitempty"`
	EquipmentName   string      `json:"equipment_name,omitempty"`
	Type            Type        `json:"wo_type"`
	Status          Status      `json:"status"`
	Summary         string      `json:"summary"`
	Description     string      `json:"description"`
	Priority        Priority    `json:"priority"`
	Assignee        *int64      `json:"assignee"`
	AssigneeName    string      `json:"assignee_name,omitempty"`
	PlannedStart    string      `json:"planned_start"`
	PlannedEnd      string      `json:"planned_end"`
	FailureCode     string      `json:"failure_code"`
	RootCause       string      `json:"root_cause"`
	ActionsTaken    string      `json:"actions_taken"`
	DowntimeMinutes json.Number `json:"downtime_minutes"`
	LaborHours      json.Number `json:"labor_hours"`
	PartsCost       json.Number `json:"parts_cost"`
	TotalCost       json.Number `json:"total_cost,omitempty"`
	Notes           string      `json:"notes"`
	MaintenancePlan *int64      `json:"maintenance_plan"`
	CreatedAt       string      `json:"created_at,omitempty"`
	UpdatedAt       string      `json:"updated_at,omitempty"`
	StartedAt       string      `json:"actual_start,omitempty"`
	CompletedAt     string      `json:"actual_end,omitempty"`

	StatusDisplay   string `json:"status_display,omitempty"`
	PriorityDisplay string `json:"priority_display,omitempty"`
	TypeDisplay     string `json:"wo_type_display,omitempty"`
}

// Input тело create/update. Code передаётся только при редактировании: номер выдаёт сервер.
type Input struct {
	Code            *string      `json:"wo_code,omitempty"`
	Equipment       *int64       `json:"equipment"`
	Type            Type         `json:"wo_type"`
	Status          Status       `json:"status"`
	Summary         string       `json:"summary"`
	Description     *string      `json:"description"`
	Priority        Priority     `json:"priority"`
	Assignee        *int64       `json:"assignee"`
	PlannedStart    *string      `json:"planned_start"`
	PlannedEnd      *string      `json:"planned_end"`
	FailureCode     *string      `json:"failure_code"`
	RootCause       *string      `json:"root_cause"`
	ActionsTaken    *string      `json:"actions_taken"`
	DowntimeMinutes *json.Number `json:"downtime_minutes"`
	LaborHours      *json.Number `json:"labor_hours"`
	PartsCost       *json.Number `json:"parts_cost"`
	Notes           *string      `json:"notes"`
}

// CompleteInput данные закрытия работ. ActionsTaken обязательно.
type CompleteInput struct {
	ActionsTaken    string      `json:"actions_taken"`
	RootCause       string      `json:"root_cause"`
	DowntimeMinutes json.Number `json:"downtime_minutes"`
	LaborHours      json.Number `json:"labor_hours"`
	PartsCost       json.Number `json:"parts_cost"`
	Notes           string      `json:"notes"`
}

// Normalize пустые числа уходят нулём, текст обрезается.
func (c *CompleteInput) Normalize() {
	c.ActionsTaken = strings.TrimSpace(c.ActionsTaken)
	c.RootCause = strings.TrimSpace(c.RootCause)
	c.Notes = strings.TrimSpace(c.Notes)
	for _, n := range []*json.Number{&c.DowntimeMinutes, &c.LaborHours, &c.PartsCost} {
		if strings.TrimSpace(n.String()) == "" {
			*n = "0"
		}
	}
}

func (c CompleteInput) Validate() error {
	if strings.TrimSpace(c.ActionsTaken) == "" {
		return fmt.Errorf("actions_taken is required")
	}
	for name, n := range map[string]json.Number{
		"downtime_minutes": c.DowntimeMinutes, "labor_hours": c.LaborHours, "parts_cost": c.PartsCost,
	} {
		if n == "" {
			continue
		}
		if _, err := n.Float64(); err != nil {
			return fmt.Errorf("%s must be a number", name)
		}
	}
	return nil
}

// Action действие над нарядом из строки списка.
type Action string

const (
	ActionAssign   Action = "assign"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionClose    Action = "close"
)

var Actions = enum.New("work order action",
	enum.Entry[Action]{Value: ActionAssign, Label: "Назначить"},
	enum.Entry[Action]{Value: ActionStart, Label: "Начать"},
	enum.Entry[Action]{Value: ActionComplete, Label: "Завершить"},
	enum.Entry[Action]{Value: ActionClose, Label: "Закрыть"},
)

func (a Action) Label() string { return Actions.Label(a) }

// AllowedActions доступные действия по статусу:
// open: назначить (если исполнителя нет, в списке есть только assignee_name) и начать; assigned: начать;
// in_progress: завершить; completed: закрыть; closed/canceled: ничего.
func AllowedActions(wo WorkOrder) []Action {
	switch wo.Status {
	case StatusOpen:
		if wo.Assignee == nil && wo.AssigneeName == "" {
			return []Action{ActionAssign, ActionStart}
		}
		return []Action{ActionStart}
	case StatusAssigned:
		return []Action{ActionStart}
	case StatusInProgress:
		return []Action{ActionComplete}
	case StatusCompleted:
		return []Action{ActionClose}
	default:
		return nil
	}
}

// Allowed проверка перед вызовом действия, чтобы не гонять заведомо отклонённый запрос.
func Allowed(wo WorkOrder, a Action) bool {
	for _, x := range AllowedActions(wo) {
		if x == a {
			return true
		}
	}
	return false
}

// Counts счётчики сводки: в работе (assigned+in_progress) и ожидающие (open).
func Counts(list []WorkOrder) (active, pending int) {
	for _, wo := range list {
		switch {
		case wo.Status.Active():
			active++
		case wo.Status == StatusOpen:
			pending++
		}
	}
	return active, pending
}
