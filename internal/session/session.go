package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Session явный контекст сессии: токены и профиль пользователя.
// Переходы: Begin (вход), Rotate (обновление токена), End (выход или истечение).
type Session struct {
	mu      sync.RWMutex
	store   Store
	creds   Credentials
	profile *Profile
}

func New(store Store) *Session { return &Session{store: store} }

// Open поднимает сохранённую сессию из хранилища.
func Open(ctx context.Context, store Store) (*Session, error) {
	s := New(store)
	access, err := get(ctx, store, KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("load access token: %w", err)
	}
	refresh, err := get(ctx, store, KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	s.creds = Credentials{AccessToken: access, RefreshToken: refresh}

	raw, err := get(ctx, store, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if raw != "" {
		var p Profile
		// битый профиль не мешает работать с токенами
		if json.Unmarshal([]byte(raw), &p) == nil {
			s.profile = &p
		}
	}
	return s, nil
}

func get(ctx context.Context, store Store, key string) (string, error) {
	v, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (s *Session) Store() Store { return s.store }

func (s *Session) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken != ""
}

func (s *Session) Profile() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return Profile{}, false
	}
	return *s.profile, true
}

// Begin фиксирует результат входа.
func (s *Session) Begin(ctx context.Context, creds Credentials, profile Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(ctx, KeyAccessToken, creds.AccessToken); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	if err := s.store.Set(ctx, KeyRefreshToken, creds.RefreshToken); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	if err := s.store.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	s.creds = creds
	s.profile = &profile
	return nil
}

// Rotate меняет access-токен после refresh. Пустой refresh оставляет прежний.
func (s *Session) Rotate(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(ctx, KeyAccessToken, access); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	s.creds.AccessToken = access
	if refresh != "" {
		if err := s.store.Set(ctx, KeyRefreshToken, refresh); err != nil {
			return fmt.Errorf("save refresh token: %w", err)
		}
		s.creds.RefreshToken = refresh
	}
	return nil
}

// End полностью очищает хранилище клиента. Память чистится даже при ошибке хранилища.
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	s.profile = nil
	return s.store.Clear(ctx)
}

// AccessExpiry срок действия access-токена из claim exp (подпись не проверяется).
func (s *Session) AccessExpiry() (time.Time, bool) {
	token := s.Credentials().AccessToken
	if token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
