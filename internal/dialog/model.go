package dialog

import (
	"time"

	"github.com/Spok95/cmms-console/internal/listview"
)

// Screen список, состояние которого запоминается между запусками.
type Screen string

const (
	ScreenAssets      Screen = "assets"
	ScreenWorkOrders  Screen = "workorders"
	ScreenPlans       Screen = "plans"
	ScreenParts       Screen = "parts"
	ScreenInspections Screen = "inspections"
)

type Item struct {
	Screen    Screen         `json:"screen"`
	List      listview.State `json:"list"`
	UpdatedAt time.Time      `json:"updated_at"`
}
