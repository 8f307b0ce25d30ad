package forms

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/Spok95/cmms-console/internal/domain/maintenance"
)

var planForm = Form{
	Title: "План ТО",
	Fields: []Field{
		{Name: "code", Label: "Код", Required: true},
		{Name: "equipment", Label: "Оборудование (id)", Kind: KindRef, Required: true},
		{Name: "title", Label: "Название", Required: true},
		{Name: "description", Label: "Описание"},
		{Name: "trigger_type", Label: "Тип запуска", Kind: KindChoice, Required: true,
			Options: maintenance.Triggers.Strings(), Default: string(maintenance.TriggerTime)},
		{Name: "frequency_value", Label: "Периодичность", Kind: KindNumber},
		{Name: "frequency_unit", Label: "Единица периода", Kind: KindChoice,
			Options: maintenance.FrequencyUnits.Strings(), Default: string(maintenance.UnitMonth)},
		{Name: "counter_name", Label: "Счётчик"},
		{Name: "counter_threshold", Label: "Порог счётчика", Kind: KindNumber},
		{Name: "checklist_template", Label: "Чек-лист (JSON)", Kind: KindJSON, Default: "[]"},
		{Name: "estimated_hours", Label: "Оценка, ч", Kind: KindNumber},
		{Name: "estimated_cost", Label: "Оценка, руб", Kind: KindNumber},
		{Name: "required_skills", Label: "Квалификация"},
		{Name: "priority", Label: "Приоритет", Kind: KindChoice, Required: true,
			Options: maintenance.Priorities.Strings(), Default: string(maintenance.PriorityMedium)},
		{Name: "is_active", Label: "Активен", Kind: KindBool, Default: "true"},
	},
}

type PlanBinding struct{}

func (PlanBinding) Form() Form { return planForm }

func (PlanBinding) Values(p maintenance.Plan) Values {
	unit := ""
	if p.FrequencyUnit != nil {
		unit = string(*p.FrequencyUnit)
	}
	checklist := "[]"
	if len(p.ChecklistTemplate) > 0 && string(p.ChecklistTemplate) != "null" {
		var buf bytes.Buffer
		if json.Compact(&buf, p.ChecklistTemplate) == nil {
			checklist = buf.String()
		}
	}
	return Values{
		"code":               p.Code,
		"equipment":          refString(p.Equipment),
		"title":              p.Title,
		"description":        p.Description,
		"trigger_type":       string(p.Trigger),
		"frequency_value":    intString(p.FrequencyValue),
		"frequency_unit":     unit,
		"counter_name":       p.CounterName,
		"counter_threshold":  p.CounterThreshold.String(),
		"checklist_template": checklist,
		"estimated_hours":    p.EstimatedHours.String(),
		"estimated_cost":     p.EstimatedCost.String(),
		"required_skills":    p.RequiredSkills,
		"priority":           string(p.Priority),
		"is_active":          strconv.FormatBool(p.IsActive),
	}
}

// Input поля неактивного типа запуска обнуляются, пустой чек-лист уходит пустым массивом.
// Поля активного типа обязательны.
func (PlanBinding) Input(v Values, _ bool) (maintenance.Input, error) {
	in := maintenance.Input{
		Code:             v.Get("code"),
		Equipment:        ref(v, "equipment"),
		Title:            v.Get("title"),
		Description:      text(v, "description"),
		Trigger:          maintenance.Trigger(v.Get("trigger_type")),
		FrequencyValue:   number(v, "frequency_value"),
		CounterName:      text(v, "counter_name"),
		CounterThreshold: number(v, "counter_threshold"),
		EstimatedHours:   number(v, "estimated_hours"),
		EstimatedCost:    number(v, "estimated_cost"),
		RequiredSkills:   text(v, "required_skills"),
		Priority:         maintenance.Priority(v.Get("priority")),
		IsActive:         boolean(v, "is_active"),
	}
	if u := v.Get("frequency_unit"); u != "" {
		unit := maintenance.FrequencyUnit(u)
		in.FrequencyUnit = &unit
	}
	if c := v.Get("checklist_template"); c != "" {
		in.ChecklistTemplate = json.RawMessage(c)
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		verr := &ValidationError{}
		verr.invalid("trigger_type", err.Error())
		return in, verr
	}
	return in, nil
}

func NewPlanForm(repo *maintenance.Repo) *Controller[maintenance.Plan, maintenance.Input] {
	return NewController[maintenance.Plan, maintenance.Input](repo, PlanBinding{})
}
