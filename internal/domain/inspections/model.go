package inspections

import (
	"github.com/Spok95/cmms-console/internal/domain/enum"
)

type Result string

const (
	ResultPass    Result = "pass"
	ResultFail    Result = "fail"
	ResultWarning Result = "warning"
)

var Results = enum.New("inspection result",
	enum.Entry[Result]{Value: ResultPass, Label: "Норма"},
	enum.Entry[Result]{Value: ResultFail, Label: "Отклонение"},
	enum.Entry[Result]{Value: ResultWarning, Label: "Предупреждение"},
)

func (r Result) Label() string                 { return Results.Label(r) }
func (r *Result) UnmarshalText(b []byte) error { return Results.Unmarshal(r, b) }

// Item одна точка осмотра: {"item":"Temperature","value":"75","unit":"C","threshold":"80","ok":true}.
type Item struct {
	Item      string `json:"item"`
	Value     string `json:"value"`
	Unit      string `json:"unit,omitempty"`
	Threshold string `json:"threshold,omitempty"`
	OK        bool   `json:"ok"`
}

type Record struct {
	ID                 int64  `json:"id"`
	Equipment          int64  `json:"equipment"`
	EquipmentCode      string `json:"equipment_code,omitempty"`
	Route              string `json:"route"`
	Items              []Item `json:"items"`
	Inspector          *int64 `json:"inspector"`
	InspectorName      string `json:"inspector_name,omitempty"`
	Result             Result `json:"result"`
	TriggeredWorkOrder *int64 `json:"triggered_work_order"`
	Notes              string `json:"notes"`
	CreatedAt          string `json:"created_at,omitempty"`
}

type Input struct {
	Equipment int64   `json:"equipment"`
	Route     *string `json:"route"`
	Items     []Item  `json:"items"`
	Result    Result  `json:"result"`
	Notes     *string `json:"notes"`
}

// Evaluate итог по пунктам: любой пункт вне нормы даёт fail.
func Evaluate(items []Item) Result {
	for _, it := range items {
		if !it.OK {
			return ResultFail
		}
	}
	return ResultPass
}
