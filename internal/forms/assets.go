package forms

import (
	"github.com/Spok95/cmms-console/internal/domain/assets"
)

var assetForm = Form{
	Title: "Оборудование",
	Fields: []Field{
		{Name: "code", Label: "Код", Required: true},
		{Name: "name", Label: "Наименование", Required: true},
		{Name: "process", Label: "Процесс"},
		{Name: "equipment_id", Label: "Инв. номер"},
		{Name: "machine_name", Label: "Машина"},
		{Name: "factory", Label: "Завод"},
		{Name: "workshop", Label: "Цех"},
		{Name: "line", Label: "Линия"},
		{Name: "station", Label: "Станция"},
		{Name: "vendor", Label: "Поставщик"},
		{Name: "model", Label: "Модель"},
		{Name: "serial_number", Label: "Серийный номер"},
		{Name: "specification", Label: "Характеристики"},
		{Name: "start_date", Label: "Ввод в эксплуатацию", Kind: KindDate},
		{Name: "warranty_expiry", Label: "Гарантия до", Kind: KindDate},
		{Name: "status", Label: "Статус", Kind: KindChoice, Required: true,
			Options: assets.Statuses.Strings(), Default: string(assets.StatusActive)},
		{Name: "criticality", Label: "Критичность", Kind: KindChoice, Required: true,
			Options: assets.Criticalities.Strings(), Default: string(assets.CriticalityNormal)},
		{Name: "cost_center", Label: "МВЗ"},
		{Name: "asset_value", Label: "Стоимость", Kind: KindNumber},
		{Name: "expected_life_years", Label: "Срок службы, лет", Kind: KindNumber},
		{Name: "current_meter_reading", Label: "Показание счётчика", Kind: KindNumber},
		{Name: "meter_unit", Label: "Ед. счётчика"},
		{Name: "notes", Label: "Примечание"},
	},
}

type AssetBinding struct{}

func (AssetBinding) Form() Form { return assetForm }

func (AssetBinding) Values(a assets.Asset) Values {
	status, crit := string(a.Status), string(a.Criticality)
	if status == "" {
		status = string(assets.StatusActive)
	}
	if crit == "" {
		crit = string(assets.CriticalityNormal)
	}
	return Values{
		"code":                  a.Code,
		"name":                  a.Name,
		"process":               a.Process,
		"equipment_id":          a.EquipmentID,
		"machine_name":          a.MachineName,
		"factory":               a.Factory,
		"workshop":              a.Workshop,
		"line":                  a.Line,
		"station":               a.Station,
		"vendor":                a.Vendor,
		"model":                 a.Model,
		"serial_number":         a.SerialNumber,
		"specification":         a.Specification,
		"start_date":            a.StartDate,
		"warranty_expiry":       a.WarrantyExpiry,
		"status":                status,
		"criticality":           crit,
		"cost_center":           a.CostCenter,
		"asset_value":           a.AssetValue.String(),
		"expected_life_years":   intString(a.ExpectedLifeYears),
		"current_meter_reading": a.CurrentMeterReading.String(),
		"meter_unit":            a.MeterUnit,
		"notes":                 a.Notes,
	}
}

// Input пустые даты и суммы уходят null, пустое показание счётчика нулём.
func (AssetBinding) Input(v Values, _ bool) (assets.Input, error) {
	return assets.Input{
		Code:                v.Get("code"),
		Name:                v.Get("name"),
		Process:             text(v, "process"),
		EquipmentID:         text(v, "equipment_id"),
		MachineName:         text(v, "machine_name"),
		Factory:             text(v, "factory"),
		Workshop:            text(v, "workshop"),
		Line:                text(v, "line"),
		Station:             text(v, "station"),
		Vendor:              text(v, "vendor"),
		Model:               text(v, "model"),
		SerialNumber:        text(v, "serial_number"),
		Specification:       text(v, "specification"),
		StartDate:           optional(v, "start_date"),
		WarrantyExpiry:      optional(v, "warranty_expiry"),
		Status:              assets.Status(v.Get("status")),
		Criticality:         assets.Criticality(v.Get("criticality")),
		CostCenter:          text(v, "cost_center"),
		AssetValue:          number(v, "asset_value"),
		ExpectedLifeYears:   number(v, "expected_life_years"),
		CurrentMeterReading: numberOr(v, "current_meter_reading", "0"),
		MeterUnit:           text(v, "meter_unit"),
		Notes:               text(v, "notes"),
	}, nil
}

// NewAssetForm форма оборудования поверх репозитория.
func NewAssetForm(repo *assets.Repo) *Controller[assets.Asset, assets.Input] {
	return NewController[assets.Asset, assets.Input](repo, AssetBinding{})
}
