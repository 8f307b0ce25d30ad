package telegram

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Spok95/cmms-console/internal/domain/spareparts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	mu    sync.Mutex
	sent  []string
	chats []string
}

func newFakeBot(t *testing.T) (*fakeBot, string) {
	t.Helper()
	fb := &fakeBot{}
	mux := http.NewServeMux()
	mux.HandleFunc("/bottest-token/getMe", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"CMMS","username":"cmms_bot"}}`)
	})
	mux.HandleFunc("/bottest-token/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		fb.mu.Lock()
		fb.sent = append(fb.sent, r.Form.Get("text"))
		fb.chats = append(fb.chats, r.Form.Get("chat_id"))
		fb.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fb, srv.URL + "/bot%s/%s"
}

func parts() []spareparts.Part {
	return []spareparts.Part{
		{ID: 2, Code: "P-002", Name: "Ремень", Unit: "pcs", CurrentStock: "3", MinStock: "5"},
		{ID: 1, Code: "P-001", Name: "Подшипник", Unit: "pcs", CurrentStock: "0", MinStock: "2"},
	}
}

func TestNotifier_LowStock(t *testing.T) {
	fb, endpoint := newFakeBot(t)
	n, err := New("test-token", endpoint, 42, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	require.NoError(t, n.LowStock(parts()))
	require.Len(t, fb.sent, 1)
	assert.Equal(t, "42", fb.chats[0])
	assert.Contains(t, fb.sent[0], "Низкий остаток запчастей: 2")
	assert.Contains(t, fb.sent[0], "P-002 Ремень: 3 pcs (мин. 5)")
}

func TestNotifier_EmptyListSendsNothing(t *testing.T) {
	fb, endpoint := newFakeBot(t)
	n, err := New("test-token", endpoint, 42, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	require.NoError(t, n.LowStock(nil))
	assert.Empty(t, fb.sent)
}

func TestNew_RequiresTokenAndChat(t *testing.T) {
	_, err := New("", "", 42, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	_, err = New("x", "", 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}

func TestLowStockText(t *testing.T) {
	text := LowStockText(parts())
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "• P-001 Подшипник: 0 pcs (мин. 2) — закончились", lines[1])
	assert.Equal(t, "• P-002 Ремень: 3 pcs (мин. 5)", lines[2])

	many := make([]spareparts.Part, 35)
	for i := range many {
		many[i] = spareparts.Part{ID: int64(i + 1), Code: "P", CurrentStock: "1", MinStock: "2"}
	}
	text = LowStockText(many)
	assert.True(t, strings.HasSuffix(text, "... и ещё 5"))
}

func TestKey(t *testing.T) {
	p := parts()
	reversed := []spareparts.Part{p[1], p[0]}
	assert.Equal(t, Key(p), Key(reversed))
	assert.Equal(t, "1,2", Key(p))
	assert.Empty(t, Key(nil))
}
