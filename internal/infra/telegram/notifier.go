// Package telegram оповещения администратору в Telegram.
package telegram

import (
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/Spok95/cmms-console/internal/domain/spareparts"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxLines сколько позиций попадает в одно сообщение.
const maxLines = 30

type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

// New подключается к Bot API. endpoint пустой для api.telegram.org,
// иначе формат tgbotapi.APIEndpoint ("https://host/bot%s/%s").
func New(token, endpoint string, chatID int64, log *slog.Logger) (*Notifier, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram admin chat id is empty")
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}
	log.Info("telegram authorized", "bot", api.Self.UserName)
	return &Notifier{api: api, chatID: chatID, log: log}, nil
}

// LowStock отправляет сводку по запчастям с низким остатком.
// Пустой список ничего не отправляет.
func (n *Notifier) LowStock(parts []spareparts.Part) error {
	if len(parts) == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(n.chatID, LowStockText(parts))
	if _, err := n.api.Send(msg); err != nil {
		n.log.Error("send failed", "err", err)
		return fmt.Errorf("send low stock alert: %w", err)
	}
	n.log.Info("low stock alert sent", "parts", len(parts))
	return nil
}

// LowStockText текст оповещения: сначала закончившиеся, затем по коду.
func LowStockText(parts []spareparts.Part) string {
	sorted := append([]spareparts.Part(nil), parts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ei, ej := isEmpty(sorted[i]), isEmpty(sorted[j])
		if ei != ej {
			return ei
		}
		return sorted[i].Code < sorted[j].Code
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "⚠️ Низкий остаток запчастей: %d\n", len(parts))
	for i, p := range sorted {
		if i == maxLines {
			fmt.Fprintf(&sb, "... и ещё %d", len(sorted)-maxLines)
			break
		}
		line := fmt.Sprintf("%s %s: %s %s (мин. %s)", p.Code, p.Name, p.CurrentStock, p.Unit, p.MinStock)
		if isEmpty(p) {
			line += " — закончились"
		}
		sb.WriteString("• " + line + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func isEmpty(p spareparts.Part) bool {
	r, ok := new(big.Rat).SetString(string(p.CurrentStock))
	return ok && r.Sign() <= 0
}

// Key отпечаток набора позиций: оповещение уходит только при его смене.
func Key(parts []spareparts.Part) string {
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, strconv.FormatInt(p.ID, 10))
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}
