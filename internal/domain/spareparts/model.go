package spareparts

import (
	"encoding/json"
	"math/big"

	"github.com/Spok95/cmms-console/internal/domain/enum"
)

type Lifecycle string

const (
	LifecycleActive       Lifecycle = "active"
	LifecycleObsolete     Lifecycle = "obsolete"
	LifecycleDiscontinued Lifecycle = "discontinued"
)

var Lifecycles = enum.New("lifecycle status",
	enum.Entry[Lifecycle]{Value: LifecycleActive, Label: "Актуальна"},
	enum.Entry[Lifecycle]{Value: LifecycleObsolete, Label: "Устарела"},
	enum.Entry[Lifecycle]{Value: LifecycleDiscontinued, Label: "Снята с производства"},
)

func (l Lifecycle) Label() string                 { return Lifecycles.Label(l) }
func (l *Lifecycle) UnmarshalText(b []byte) error { return Lifecycles.Unmarshal(l, b) }

type MoveType string

const (
	MoveIn     MoveType = "in"
	MoveOut    MoveType = "out"
	MoveAdjust MoveType = "adjust"
)

var MoveTypes = enum.New("transaction type",
	enum.Entry[MoveType]{Value: MoveIn, Label: "Приход"},
	enum.Entry[MoveType]{Value: MoveOut, Label: "Расход"},
	enum.Entry[MoveType]{Value: MoveAdjust, Label: "Корректировка"},
)

func (m MoveType) Label() string                 { return MoveTypes.Label(m) }
func (m *MoveType) UnmarshalText(b []byte) error { return MoveTypes.Unmarshal(m, b) }

type Part struct {
	ID               int64       `json:"id"`
	Code             string      `json:"part_code"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	Spec             string      `json:"spec"`
	Category         string      `json:"category"`
	Unit             string      `json:"unit"`
	Manufacturer     string      `json:"manufacturer"`
	Supplier         string      `json:"supplier"`
	SupplierPartCode string      `json:"supplier_part_code"`
	CurrentStock     json.Number `json:"current_stock"`
	SafetyStock      json.Number `json:"safety_stock"`
	MinStock         json.Number `json:"min_stock"`
	MaxStock         json.Number `json:"max_stock"`
	ReorderQuantity  json.Number `json:"reorder_quantity"`
	Location         string      `json:"location"`
	Shelf            string      `json:"shelf"`
	UnitCost         json.Number `json:"unit_cost"`
	AverageCost      json.Number `json:"average_cost"`
	LeadTimeDays     *int        `json:"lead_time_days"`
	Lifecycle        Lifecycle   `json:"lifecycle_status"`
	Notes            string      `json:"notes"`

	// только чтение
	BelowMinStock bool        `json:"is_below_min_stock,omitempty"`
	StockStatus   string      `json:"stock_status,omitempty"`
	TotalValue    json.Number `json:"total_value,omitempty"`
	CreatedAt     string      `json:"created_at,omitempty"`
	UpdatedAt     string      `json:"updated_at,omitempty"`
}

// LowStock остаток на минимуме или ниже. Считается на клиенте, не хранится.
func (p Part) LowStock() bool {
	cur, ok1 := rat(p.CurrentStock)
	minimum, ok2 := rat(p.MinStock)
	if !ok1 || !ok2 {
		return false
	}
	return cur.Cmp(minimum) <= 0
}

// BelowSafety остаток на страховом запасе или ниже.
func (p Part) BelowSafety() bool {
	cur, ok1 := rat(p.CurrentStock)
	safety, ok2 := rat(p.SafetyStock)
	if !ok1 || !ok2 {
		return false
	}
	return cur.Cmp(safety) <= 0
}

// rat точное сравнение десятичных строк API ("12.50").
func rat(n json.Number) (*big.Rat, bool) {
	if n == "" {
		return nil, false
	}
	return new(big.Rat).SetString(string(n))
}

// FilterLow детали с низким остатком.
func FilterLow(parts []Part) []Part {
	out := make([]Part, 0)
	for _, p := range parts {
		if p.LowStock() {
			out = append(out, p)
		}
	}
	return out
}

type Input struct {
	Code             string       `json:"part_code"`
	Name             string       `json:"name"`
	Description      *string      `json:"description"`
	Spec             *string      `json:"spec"`
	Category         *string      `json:"category"`
	Unit             string       `json:"unit"`
	Manufacturer     *string      `json:"manufacturer"`
	Supplier         *string      `json:"supplier"`
	SupplierPartCode *string      `json:"supplier_part_code"`
	CurrentStock     *json.Number `json:"current_stock"`
	SafetyStock      *json.Number `json:"safety_stock"`
	MinStock         *json.Number `json:"min_stock"`
	MaxStock         *json.Number `json:"max_stock"`
	ReorderQuantity  *json.Number `json:"reorder_quantity"`
	Location         *string      `json:"location"`
	Shelf            *string      `json:"shelf"`
	UnitCost         *json.Number `json:"unit_cost"`
	LeadTimeDays     *json.Number `json:"lead_time_days"`
	Lifecycle        Lifecycle    `json:"lifecycle_status"`
	Notes            *string      `json:"notes"`
}

// Movement тело stock-in/stock-out.
type Movement struct {
	Quantity  float64 `json:"quantity"`
	Reference string  `json:"reference"`
	Notes     string  `json:"notes"`
}

type Transaction struct {
	ID          int64       `json:"id"`
	Part        int64       `json:"part"`
	Type        MoveType    `json:"transaction_type"`
	Quantity    json.Number `json:"quantity"`
	StockBefore json.Number `json:"stock_before"`
	StockAfter  json.Number `json:"stock_after"`
	Reference   string      `json:"reference"`
	Notes       string      `json:"notes"`
	CreatedAt   string      `json:"created_at"`
}
