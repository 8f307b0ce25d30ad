package assets

import (
	"encoding/json"

	"github.com/Spok95/cmms-console/internal/domain/enum"
)

type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusRetired     Status = "retired"
	StatusMaintenance Status = "maintenance"
)

var Statuses = enum.New("asset status",
	enum.Entry[Status]{Value: StatusActive, Label: "В работе"},
	enum.Entry[Status]{Value: StatusInactive, Label: "Не используется"},
	enum.Entry[Status]{Value: StatusRetired, Label: "Списано"},
	enum.Entry[Status]{Value: StatusMaintenance, Label: "На обслуживании"},
)

func (s Status) Label() string                 { return Statuses.Label(s) }
func (s *Status) UnmarshalText(b []byte) error { return Statuses.Unmarshal(s, b) }

type Criticality string

const (
	CriticalityNormal    Criticality = "normal"
	CriticalityImportant Criticality = "important"
	CriticalityCritical  Criticality = "critical"
)

var Criticalities = enum.New("criticality",
	enum.Entry[Criticality]{Value: CriticalityNormal, Label: "Обычная"},
	enum.Entry[Criticality]{Value: CriticalityImportant, Label: "Важная"},
	enum.Entry[Criticality]{Value: CriticalityCritical, Label: "Критичная"},
)

func (c Criticality) Label() string                 { return Criticalities.Label(c) }
func (c *Criticality) UnmarshalText(b []byte) error { return Criticalities.Unmarshal(c, b) }

// Asset карточка оборудования. Необязательные текстовые поля приходят null и читаются как "".
type Asset struct {
	ID                  int64       `json:"id"`
	Code                string      `json:"code"`
	Name                string      `json:"name"`
	Process             string      `json:"process"`
	EquipmentID         string      `json:"equipment_id"`
	MachineName         string      `json:"machine_name"`
	Factory             string      `json:"factory"`
	Workshop            string      `json:"workshop"`
	Line                string      `json:"line"`
	Station             string      `json:"station"`
	Vendor              string      `json:"vendor"`
	Model               string      `json:"model"`
	SerialNumber        string      `json:"serial_number"`
	Specification       string      `json:"specification"`
	StartDate           string      `json:"start_date"`
	WarrantyExpiry      string      `json:"warranty_expiry"`
	Status              Status      `json:"status"`
	Criticality         Criticality `json:"criticality"`
	CostCenter          string      `json:"cost_center"`
	AssetValue          json.Number `json:"asset_value"`
	ExpectedLifeYears   *int        `json:"expected_life_years"`
	CurrentMeterReading json.Number `json:"current_meter_reading"`
	MeterUnit           string      `json:"meter_unit"`
	Notes               string      `json:"notes"`

	// только чтение
	LocationDisplay     string `json:"location_display,omitempty"`
	StatusDisplay       string `json:"status_display,omitempty"`
	LastMaintenanceDate string `json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate string `json:"next_maintenance_date,omitempty"`
	CreatedAt           string `json:"created_at,omitempty"`
	UpdatedAt           string `json:"updated_at,omitempty"`
}

// Input тело create/update. nil уходит как null.
type Input struct {
	Code                string       `json:"code"`
	Name                string       `json:"name"`
	Process             *string      `json:"process"`
	EquipmentID         *string      `json:"equipment_id"`
	MachineName         *string      `json:"machine_name"`
	Factory             *string      `json:"factory"`
	Workshop            *string      `json:"workshop"`
	Line                *string      `json:"line"`
	Station             *string      `json:"station"`
	Vendor              *string      `json:"vendor"`
	Model               *string      `json:"model"`
	SerialNumber        *string      `json:"serial_number"`
	Specification       *string      `json:"specification"`
	StartDate           *string      `json:"start_date"`
	WarrantyExpiry      *string      `json:"warranty_expiry"`
	Status              Status       `json:"status"`
	Criticality         Criticality  `json:"criticality"`
	CostCenter          *string      `json:"cost_center"`
	AssetValue          *json.Number `json:"asset_value"`
	ExpectedLifeYears   *json.Number `json:"expected_life_years"`
	CurrentMeterReading *json.Number `json:"current_meter_reading"`
	MeterUnit           *string      `json:"meter_unit"`
	Notes               *string      `json:"notes"`
}

// CountByStatus сводка по статусам для списка.
func CountByStatus(list []Asset) map[Status]int {
	out := make(map[Status]int, len(Statuses.Values()))
	for _, s := range Statuses.Values() {
		out[s] = 0
	}
	for _, a := range list {
		out[a.Status]++
	}
	return out
}

// Stats счётчики реестра по статусам и критичности.
type Stats struct {
	Total         int
	ByStatus      map[Status]int
	ByCriticality map[Criticality]int
}

func Summarize(list []Asset) Stats {
	st := Stats{
		Total:         len(list),
		ByStatus:      CountByStatus(list),
		ByCriticality: make(map[Criticality]int, len(Criticalities.Values())),
	}
	for _, c := range Criticalities.Values() {
		st.ByCriticality[c] = 0
	}
	for _, a := range list {
		st.ByCriticality[a.Criticality]++
	}
	return st
}
