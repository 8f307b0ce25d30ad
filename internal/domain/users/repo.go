package users

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Spok95/cmms-console/internal/api"
	"github.com/Spok95/cmms-console/internal/session"
)

type Repo struct {
	api *api.Client
}

func NewRepo(c *api.Client) *Repo { return &Repo{api: c} }

// Login получает пару токенов и открывает сессию.
func (r *Repo) Login(ctx context.Context, username, password string) (*session.Profile, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	var res LoginResult
	err := r.api.Public(ctx, http.MethodPost, "/auth/login/", map[string]string{
		"username": strings.TrimSpace(username),
		"password": password,
	}, &res)
	if err != nil {
		return nil, err
	}
	if res.Access == "" {
		return nil, fmt.Errorf("login response has no access token")
	}
	creds := session.Credentials{AccessToken: res.Access, RefreshToken: res.Refresh}
	if err := r.api.Session().Begin(ctx, creds, res.User); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Logout сообщает серверу о выходе и в любом случае очищает сессию.
// Ошибка сервера возвращается, но локальное состояние уже снесено.
func (r *Repo) Logout(ctx context.Context) error {
	sess := r.api.Session()
	refresh := sess.Credentials().RefreshToken
	var remote error
	if refresh != "" {
		remote = r.api.Post(ctx, "/auth/logout/", map[string]string{"refresh": refresh}, nil)
	}
	if err := sess.End(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if remote != nil {
		return fmt.Errorf("server logout: %w", remote)
	}
	return nil
}

// Me текущий пользователь по токену.
func (r *Repo) Me(ctx context.Context) (*session.Profile, error) {
	var p session.Profile
	if err := r.api.Get(ctx, "/auth/me/", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context, q url.Values) ([]User, error) {
	p, err := api.FetchAll[User](ctx, r.api, "/auth/users/", q)
	if err != nil {
		return nil, err
	}
	return p.Results, nil
}

func (r *Repo) AuditLog(ctx context.Context, q url.Values) (*api.Page[AuditEntry], error) {
	return api.List[AuditEntry](ctx, r.api, "/auth/audit-logs/", q)
}
