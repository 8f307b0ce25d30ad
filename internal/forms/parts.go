package forms

import (
	"github.com/Spok95/cmms-console/internal/domain/spareparts"
)

var partForm = Form{
	Title: "Запчасть",
	Fields: []Field{
		{Name: "part_code", Label: "Код", Required: true},
		{Name: "name", Label: "Наименование", Required: true},
		{Name: "description", Label: "Описание"},
		{Name: "spec", Label: "Характеристики"},
		{Name: "category", Label: "Категория"},
		{Name: "unit", Label: "Ед. изм.", Required: true, Default: "pcs"},
		{Name: "manufacturer", Label: "Производитель"},
		{Name: "supplier", Label: "Поставщик"},
		{Name: "supplier_part_code", Label: "Код поставщика"},
		{Name: "current_stock", Label: "Остаток", Kind: KindNumber, Default: "0"},
		{Name: "safety_stock", Label: "Страховой запас", Kind: KindNumber, Default: "0"},
		{Name: "min_stock", Label: "Минимум", Kind: KindNumber, Default: "0"},
		{Name: "max_stock", Label: "Максимум", Kind: KindNumber},
		{Name: "reorder_quantity", Label: "Партия заказа", Kind: KindNumber},
		{Name: "location", Label: "Склад"},
		{Name: "shelf", Label: "Полка"},
		{Name: "unit_cost", Label: "Цена", Kind: KindNumber},
		{Name: "lead_time_days", Label: "Срок поставки, дн", Kind: KindNumber},
		{Name: "lifecycle_status", Label: "Статус", Kind: KindChoice, Required: true,
			Options: spareparts.Lifecycles.Strings(), Default: string(spareparts.LifecycleActive)},
		{Name: "notes", Label: "Примечание"},
	},
}

type PartBinding struct{}

func (PartBinding) Form() Form { return partForm }

func (PartBinding) Values(p spareparts.Part) Values {
	return Values{
		"part_code":          p.Code,
		"name":               p.Name,
		"description":        p.Description,
		"spec":               p.Spec,
		"category":           p.Category,
		"unit":               p.Unit,
		"manufacturer":       p.Manufacturer,
		"supplier":           p.Supplier,
		"supplier_part_code": p.SupplierPartCode,
		"current_stock":      p.CurrentStock.String(),
		"safety_stock":       p.SafetyStock.String(),
		"min_stock":          p.MinStock.String(),
		"max_stock":          p.MaxStock.String(),
		"reorder_quantity":   p.ReorderQuantity.String(),
		"location":           p.Location,
		"shelf":              p.Shelf,
		"unit_cost":          p.UnitCost.String(),
		"lead_time_days":     intString(p.LeadTimeDays),
		"lifecycle_status":   string(p.Lifecycle),
		"notes":              p.Notes,
	}
}

// Input остатки без значения уходят нулём, прочие числа null.
func (PartBinding) Input(v Values, _ bool) (spareparts.Input, error) {
	return spareparts.Input{
		Code:             v.Get("part_code"),
		Name:             v.Get("name"),
		Description:      text(v, "description"),
		Spec:             text(v, "spec"),
		Category:         text(v, "category"),
		Unit:             v.Get("unit"),
		Manufacturer:     text(v, "manufacturer"),
		Supplier:         text(v, "supplier"),
		SupplierPartCode: text(v, "supplier_part_code"),
		CurrentStock:     numberOr(v, "current_stock", "0"),
		SafetyStock:      numberOr(v, "safety_stock", "0"),
		MinStock:         numberOr(v, "min_stock", "0"),
		MaxStock:         number(v, "max_stock"),
		ReorderQuantity:  number(v, "reorder_quantity"),
		Location:         text(v, "location"),
		Shelf:            text(v, "shelf"),
		UnitCost:         number(v, "unit_cost"),
		LeadTimeDays:     number(v, "lead_time_days"),
		Lifecycle:        spareparts.Lifecycle(v.Get("lifecycle_status")),
		Notes:            text(v, "notes"),
	}, nil
}

func NewPartForm(repo *spareparts.Repo) *Controller[spareparts.Part, spareparts.Input] {
	return NewController[spareparts.Part, spareparts.Input](repo, PartBinding{})
}
