// Package api HTTP-клиент CMMS API: bearer-токен, прозрачное обновление
// токена по 401 с одним повтором запроса, разбор ошибок и файлов.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Spok95/cmms-console/internal/infra/metrics"
	"github.com/Spok95/cmms-console/internal/session"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultRefreshPath путь обновления токена относительно base_url.
const DefaultRefreshPath = "/auth/refresh/"

// Client запросы к CMMS API с bearer-токеном из сессии и обновлением по 401.
type Client struct {
	base        *url.URL
	http        *http.Client
	sess        *session.Session
	refreshPath string
	log         *slog.Logger
	onExpired   func()
	refreshes   singleflight.Group
}

// Option настройка клиента для New.
type Option func(*Client)

// WithHTTPClient свой http.Client (таймауты, транспорт).
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithRefreshPath путь refresh; пустая строка оставляет DefaultRefreshPath.
func WithRefreshPath(p string) Option {
	return func(c *Client) {
		if p != "" {
			c.refreshPath = p
		}
	}
}

// WithLogger логгер запросов и обновлений токена.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = l } }

// WithOnExpired хук на истечение сессии (переход к экрану входа).
func WithOnExpired(fn func()) Option { return func(c *Client) { c.onExpired = fn } }

// New клиент для абсолютного baseURL (обычно .../api).
func New(baseURL string, sess *session.Session, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", baseURL)
	}
	c := &Client{
		base:        u,
		http:        &http.Client{Timeout: 60 * time.Second},
		sess:        sess,
		refreshPath: DefaultRefreshPath,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) Session() *session.Session { return c.sess }

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, in, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, in, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Do выполняет JSON-запрос. in == nil означает запрос без тела, out == nil ответ игнорируется.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	body, contentType, err := encodeJSON(in)
	if err != nil {
		return err
	}
	target, err := c.resolve(path, query)
	if err != nil {
		return err
	}
	resp, err := c.roundTrip(ctx, method, target, body, contentType)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return decode(resp, out)
}

// Public запрос без токена и без обновления по 401 (вход в систему):
// неверный пароль не должен сносить сессию.
func (c *Client) Public(ctx context.Context, method, path string, in, out any) error {
	body, contentType, err := encodeJSON(in)
	if err != nil {
		return err
	}
	target, err := c.resolve(path, nil)
	if err != nil {
		return err
	}
	resp, _, err := c.send(ctx, method, target, body, contentType, false)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return decode(resp, out)
}

// resolve строит абсолютный URL. Абсолютные ссылки (next) допускаются только на хост API.
func (c *Client) resolve(path string, query url.Values) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	var u url.URL
	if ref.IsAbs() {
		if ref.Scheme != c.base.Scheme || ref.Host != c.base.Host {
			return "", fmt.Errorf("refusing to follow foreign url %q", path)
		}
		u = *ref
	} else {
		u = *c.base
		u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
		u.RawPath = ""
		u.RawQuery = ref.RawQuery
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			q[k] = append([]string(nil), vs...)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// roundTrip состояние NORMAL/REFRESH: на 401 одно обновление токена и один повтор.
// Ответ повтора возвращается как есть, повторный 401 станет обычной ошибкой.
func (c *Client) roundTrip(ctx context.Context, method, target string, body []byte, contentType string) (*http.Response, error) {
	resp, sent, err := c.send(ctx, method, target, body, contentType, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if err := c.refresh(ctx, sent); err != nil {
		return nil, err
	}
	resp, _, err = c.send(ctx, method, target, body, contentType, true)
	return resp, err
}

// send один HTTP-запрос, с auth подставляет текущий access-токен.
// Возвращает токен, с которым ушёл запрос.
func (c *Client) send(ctx context.Context, method, target string, body []byte, contentType string, auth bool) (*http.Response, string, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	token := ""
	if auth {
		token = c.sess.Credentials().AccessToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveRequest(method, req.URL.Path, 0, elapsed)
		c.log.Error("request failed", "method", method, "url", target, "request_id", reqID, "err", err)
		return nil, token, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	metrics.ObserveRequest(method, req.URL.Path, resp.StatusCode, elapsed)
	c.log.Debug("request", "method", method, "path", req.URL.Path, "status", resp.StatusCode,
		"duration", elapsed, "request_id", reqID)
	return resp, token, nil
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// refresh обновляет access-токен. Параллельные 401 разделяют один вызов refresh,
// а запрос со старым токеном после уже прошедшего обновления просто повторяется.
// Отмена ctx того, кто начал refresh, не должна ронять остальных: они пробуют снова.
func (c *Client) refresh(ctx context.Context, staleToken string) error {
	for {
		err := c.refreshOnce(ctx, staleToken)
		if err == nil || ctx.Err() != nil || !canceled(err) {
			return err
		}
	}
}

func (c *Client) refreshOnce(ctx context.Context, staleToken string) error {
	_, err, _ := c.refreshes.Do("refresh", func() (any, error) {
		creds := c.sess.Credentials()
		if creds.AccessToken != "" && creds.AccessToken != staleToken {
			return nil, nil
		}
		if creds.RefreshToken == "" {
			metrics.TokenRefreshTotal.WithLabelValues(metrics.RefreshMissing).Inc()
			c.expire(ctx)
			return nil, ErrSessionExpired
		}
		return nil, c.doRefresh(ctx, creds.RefreshToken)
	})
	return err
}

func (c *Client) doRefresh(ctx context.Context, refreshToken string) error {
	target, err := c.resolve(c.refreshPath, nil)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return fmt.Errorf("marshal refresh: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRequest(http.MethodPost, req.URL.Path, 0, time.Since(start))
		if ctx.Err() != nil {
			// прервал вызывающий, refresh-токен при этом мог остаться годным
			c.log.Warn("token refresh canceled", "err", ctx.Err())
			return fmt.Errorf("refresh token: %w", ctx.Err())
		}
		c.log.Warn("token refresh failed", "err", err)
		metrics.TokenRefreshTotal.WithLabelValues(metrics.RefreshFailed).Inc()
		c.expire(ctx)
		return ErrSessionExpired
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveRequest(http.MethodPost, req.URL.Path, resp.StatusCode, time.Since(start))

	var out refreshResponse
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("token refresh rejected", "status", resp.StatusCode)
		metrics.TokenRefreshTotal.WithLabelValues(metrics.RefreshFailed).Inc()
		c.expire(ctx)
		return ErrSessionExpired
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Access == "" {
		c.log.Warn("token refresh returned no access token", "err", err)
		metrics.TokenRefreshTotal.WithLabelValues(metrics.RefreshFailed).Inc()
		c.expire(ctx)
		return ErrSessionExpired
	}
	if err := c.sess.Rotate(ctx, out.Access, out.Refresh); err != nil {
		return fmt.Errorf("store refreshed token: %w", err)
	}
	metrics.TokenRefreshTotal.WithLabelValues(metrics.RefreshOK).Inc()
	c.log.Info("token refreshed")
	return nil
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// expire сносит сессию целиком и уведомляет UI.
func (c *Client) expire(ctx context.Context) {
	if err := c.sess.End(ctx); err != nil {
		c.log.Error("clear session failed", "err", err)
	}
	metrics.SessionExpiredTotal.Inc()
	if c.onExpired != nil {
		c.onExpired()
	}
}

// encodeJSON тело один раз, чтобы повтор после refresh ушёл с теми же байтами.
func encodeJSON(in any) ([]byte, string, error) {
	if in == nil {
		return nil, "", nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, "", fmt.Errorf("marshal body: %w", err)
	}
	return raw, "application/json", nil
}

func decode(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data, resp.StatusCode)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
