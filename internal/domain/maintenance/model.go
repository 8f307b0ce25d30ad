package maintenance

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Spok95/cmms-console/internal/domain/enum"
)

type Trigger string

const (
	TriggerTime    Trigger = "time"
	TriggerCounter Trigger = "counter"
)

var Triggers = enum.New("trigger type",
	enum.Entry[Trigger]{Value: TriggerTime, Label: "По времени"},
	enum.Entry[Trigger]{Value: TriggerCounter, Label: "По счётчику"},
)

func (t Trigger) Label() string                 { return Triggers.Label(t) }
func (t *Trigger) UnmarshalText(b []byte) error { return Triggers.Unmarshal(t, b) }

type FrequencyUnit string

const (
	UnitDay     FrequencyUnit = "day"
	UnitWeek    FrequencyUnit = "week"
	UnitMonth   FrequencyUnit = "month"
	UnitQuarter FrequencyUnit = "quarter"
	UnitYear    FrequencyUnit = "year"
)

var FrequencyUnits = enum.New("frequency unit",
	enum.Entry[FrequencyUnit]{Value: UnitDay, Label: "дн."},
	enum.Entry[FrequencyUnit]{Value: UnitWeek, Label: "нед."},
	enum.Entry[FrequencyUnit]{Value: UnitMonth, Label: "мес."},
	enum.Entry[FrequencyUnit]{Value: UnitQuarter, Label: "кв."},
	enum.Entry[FrequencyUnit]{Value: UnitYear, Label: "г."},
)

func (u FrequencyUnit) Label() string                 { return FrequencyUnits.Label(u) }
func (u *FrequencyUnit) UnmarshalText(b []byte) error { return FrequencyUnits.Unmarshal(u, b) }

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = enum.New("plan priority",
	enum.Entry[Priority]{Value: PriorityLow, Label: "Низкий"},
	enum.Entry[Priority]{Value: PriorityMedium, Label: "Средний"},
	enum.Entry[Priority]{Value: PriorityHigh, Label: "Высокий"},
)

func (p Priority) Label() string                 { return Priorities.Label(p) }
func (p *Priority) UnmarshalText(b []byte) error { return Priorities.Unmarshal(p, b) }

type Plan struct {
	ID                int64           `json:"id"`
	Code              string          `json:"code"`
	Equipment         *int64          `json:"equipment"`
	EquipmentCode     string          `json:"equipment_code,omitempty"`
	EquipmentName     string          `json:"equipment_name,omitempty"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Trigger           Trigger         `json:"trigger_type"`
	FrequencyValue    *int            `json:"frequency_value"`
	FrequencyUnit     *FrequencyUnit  `json:"frequency_unit"`
	CounterName       string          `json:"counter_name"`
	CounterThreshold  json.Number     `json:"counter_threshold"`
	ChecklistTemplate json.RawMessage `json:"checklist_template"`
	EstimatedHours    json.Number     `json:"estimated_hours"`
	EstimatedCost     json.Number     `json:"estimated_cost"`
	RequiredSkills    string          `json:"required_skills"`
	Priority          Priority        `json:"priority"`
	IsActive          bool            `json:"is_active"`
	LastGeneratedDate string          `json:"last_generated_date,omitempty"`
	LastCounterValue  json.Number     `json:"last_counter_value,omitempty"`
	CreatedAt         string          `json:"created_at,omitempty"`
	UpdatedAt         string          `json:"updated_at,omitempty"`

	TriggerDisplay       string `json:"trigger_type_display,omitempty"`
	FrequencyUnitDisplay string `json:"frequency_unit_display,omitempty"`
}

// Schedule человекочитаемая периодичность: «каждые 3 мес.» или «счётчик motor_hours ≥ 500».
func (p Plan) Schedule() string {
	switch p.Trigger {
	case TriggerTime:
		if p.FrequencyValue == nil || p.FrequencyUnit == nil {
			return "-"
		}
		return fmt.Sprintf("каждые %d %s", *p.FrequencyValue, p.FrequencyUnit.Label())
	case TriggerCounter:
		return fmt.Sprintf("%s ≥ %s", p.CounterName, p.CounterThreshold)
	default:
		return "-"
	}
}

// Input тело create/update. Группы полей триггеров взаимоисключающие, см. Normalize.
type Input struct {
	Code              string          `json:"code"`
	Equipment         *int64          `json:"equipment"`
	Title             string          `json:"title"`
	Description       *string         `json:"description"`
	Trigger           Trigger         `json:"trigger_type"`
	FrequencyValue    *json.Number    `json:"frequency_value"`
	FrequencyUnit     *FrequencyUnit  `json:"frequency_unit"`
	CounterName       *string         `json:"counter_name"`
	CounterThreshold  *json.Number    `json:"counter_threshold"`
	ChecklistTemplate json.RawMessage `json:"checklist_template"`
	EstimatedHours    *json.Number    `json:"estimated_hours"`
	EstimatedCost     *json.Number    `json:"estimated_cost"`
	RequiredSkills    *string         `json:"required_skills"`
	Priority          Priority        `json:"priority"`
	IsActive          bool            `json:"is_active"`
}

// Normalize обнуляет поля неактивного триггера и подставляет пустой чек-лист.
func (in *Input) Normalize() {
	switch in.Trigger {
	case TriggerTime:
		in.CounterName = nil
		in.CounterThreshold = nil
	case TriggerCounter:
		in.FrequencyValue = nil
		in.FrequencyUnit = nil
	}
	if len(strings.TrimSpace(string(in.ChecklistTemplate))) == 0 || string(in.ChecklistTemplate) == "null" {
		in.ChecklistTemplate = json.RawMessage("[]")
	}
}

// Validate требует поля активного триггера и чек-лист в виде JSON-массива.
func (in Input) Validate() error {
	if !Triggers.Valid(in.Trigger) {
		return fmt.Errorf("unknown trigger type %q", in.Trigger)
	}
	switch in.Trigger {
	case TriggerTime:
		if in.FrequencyValue == nil || in.FrequencyUnit == nil {
			return fmt.Errorf("frequency_value and frequency_unit are required for time trigger")
		}
		n, err := in.FrequencyValue.Int64()
		if err != nil || n <= 0 {
			return fmt.Errorf("frequency_value must be a positive integer")
		}
		if !FrequencyUnits.Valid(*in.FrequencyUnit) {
			return fmt.Errorf("unknown frequency unit %q", *in.FrequencyUnit)
		}
	case TriggerCounter:
		if in.CounterName == nil || strings.TrimSpace(*in.CounterName) == "" || in.CounterThreshold == nil {
			return fmt.Errorf("counter_name and counter_threshold are required for counter trigger")
		}
	}
	if len(in.ChecklistTemplate) > 0 {
		var items []any
		if err := json.Unmarshal(in.ChecklistTemplate, &items); err != nil {
			return fmt.Errorf("checklist_template must be a JSON array")
		}
	}
	return nil
}
