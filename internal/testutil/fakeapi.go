// Package testutil поддельный CMMS API для тестов: chi-роутер поверх httptest
// со счётчиком обращений по каждому маршруту.
package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Spok95/cmms-console/internal/session"
	"github.com/go-chi/chi/v5"
)

type FakeAPI struct {
	Server *httptest.Server
	Router chi.Router

	mu   sync.Mutex
	hits map[string]int
}

func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{hits: map[string]int{}}
	r := chi.NewRouter()
	r.Use(f.count)
	f.Router = r
	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeAPI) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.Method+" "+r.URL.Path]++
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// BaseURL корень API (/api), как в конфиге клиента.
func (f *FakeAPI) BaseURL() string { return f.Server.URL + "/api" }

// Hits сколько раз вызывали METHOD path.
func (f *FakeAPI) Hits(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" "+path]
}

// TotalHits все обращения к серверу.
func (f *FakeAPI) TotalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.hits {
		n += v
	}
	return n
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode тело запроса в v; ошибка валит тест-хендлер ответом 400.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		JSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return false
	}
	return true
}

// Bearer токен из заголовка Authorization.
func Bearer(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

// RequireBearer пропускает только запросы с указанным токеном, иначе 401.
func RequireBearer(token string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if Bearer(r) != token {
			JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
			return
		}
		h(w, r)
	}
}

// LoggedIn сессия в памяти с готовыми токенами.
func LoggedIn(t *testing.T, access, refresh string) *session.Session {
	t.Helper()
	s := session.New(session.NewMemoryStore())
	err := s.Begin(context.Background(), session.Credentials{AccessToken: access, RefreshToken: refresh},
		session.Profile{ID: 1, Username: "admin", Role: session.RoleAdmin})
	if err != nil {
		t.Fatalf("begin session: %v", err)
	}
	return s
}
