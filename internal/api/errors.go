package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// APIError ответ API со статусом не 2xx.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

var (
	// ErrSessionExpired сессию не удалось продлить, нужен повторный вход.
	ErrSessionExpired = &APIError{Status: 401, Message: "session expired"}

	// ErrPaginationLoop сервер вернул ссылку next, которая уже была получена.
	ErrPaginationLoop = errors.New("pagination loop: next link repeats")
)

// StatusOf статус ответа API из цепочки ошибок (0, если это не ошибка API).
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// errorMessage достаёт текст ошибки из тела ответа:
// detail, message, error, затем ошибки полей, затем общий шаблон.
func errorMessage(body []byte, status int) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			if s, ok := payload[key].(string); ok && s != "" {
				return s
			}
		}
		if msg := fieldErrors(payload); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("request failed (status %d)", status)
}

// fieldErrors ошибки валидации вида {"code": ["already exists"]}.
func fieldErrors(payload map[string]any) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		list, ok := payload[k].([]any)
		if !ok {
			continue
		}
		var msgs []string
		for _, m := range list {
			if s, ok := m.(string); ok {
				msgs = append(msgs, s)
			}
		}
		if len(msgs) > 0 {
			parts = append(parts, k+": "+strings.Join(msgs, ", "))
		}
	}
	return strings.Join(parts, "; ")
}
