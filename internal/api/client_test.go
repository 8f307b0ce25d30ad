package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Spok95/cmms-console/internal/session"
	"github.com/Spok95/cmms-console/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type asset struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

func newTestClient(t *testing.T, f *testutil.FakeAPI, sess *session.Session, opts ...Option) *Client {
	t.Helper()
	c, err := New(f.BaseURL(), sess, opts...)
	require.NoError(t, err)
	return c
}

func refreshTo(f *testutil.FakeAPI, access string) {
	f.Router.Post("/api/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		var body refreshRequest
		if !testutil.Decode(w, r, &body) {
			return
		}
		if body.Refresh != "r1" {
			testutil.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
			return
		}
		testutil.JSON(w, http.StatusOK, map[string]string{"access": access})
	})
}

func TestDo_AttachesBearer(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	var got string
	f.Router.Get("/api/assets/1/", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		testutil.JSON(w, http.StatusOK, asset{ID: 1, Code: "EQ-001"})
	})

	c := newTestClient(t, f, testutil.LoggedIn(t, "a1", "r1"))
	var out asset
	require.NoError(t, c.Get(context.Background(), "/assets/1/", nil, &out))
	assert.Equal(t, "Bearer a1", got)
	assert.Equal(t, "EQ-001", out.Code)
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Router.Post("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		testutil.JSON(w, http.StatusOK, map[string]string{"access": "x"})
	})
	c := newTestClient(t, f, session.New(session.NewMemoryStore()))
	require.NoError(t, c.Post(context.Background(), "auth/login/", map[string]string{"username": "u"}, nil))
}

func TestRefreshOnceAndRetry(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	refreshTo(f, "a2")
	f.Router.Get("/api/assets/1/", testutil.RequireBearer("a2", func(w http.ResponseWriter, r *http.Request) {
		testutil.JSON(w, http.StatusOK, asset{ID: 1, Code: "EQ-001"})
	}))

	sess := testutil.LoggedIn(t, "a1", "r1")
	c := newTestClient(t, f, sess)

	var out asset
	require.NoError(t, c.Get(context.Background(), "/assets/1/", nil, &out))
	assert.Equal(t, "EQ-001", out.Code)
	assert.Equal(t, 1, f.Hits(http.MethodPost, "/api/auth/refresh/"))
	assert.Equal(t, 2, f.Hits(http.MethodGet, "/api/assets/1/"))
	assert.Equal(t, session.Credentials{AccessToken: "a2", RefreshToken: "r1"}, sess.Credentials())
}

func TestRefresh_ReplaysBody(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	refreshTo(f, "a2")
	var bodies []string
	var mu sync.Mutex
	f.Router.Post("/api/assets/", func(w http.ResponseWriter, r *http.Request) {
		var in asset
		if !testutil.Decode(w, r, &in) {
			return
		}
		mu.Lock()
		bodies = append(bodies, in.Code)
		mu.Unlock()
		if testutil.Bearer(r) != "a2" {
			testutil.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
			return
		}
		testutil.JSON(w, http.StatusCreated, asset{ID: 9, Code: in.Code})
	})

	c := newTestClient(t, f, testutil.LoggedIn(t, "a1", "r1"))
	var out asset
	require.NoError(t, c.Post(context.Background(), "/assets/", asset{Code: "EQ-009"}, &out))
	assert.Equal(t, []string{"EQ-009", "EQ-009"}, bodies)
	assert.Equal(t, int64(9), out.ID)
}

func TestNoRefreshToken_ExpiresWithoutNetworkCall(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	refreshTo(f, "a2")
	f.Router.Get("/api/assets/", testutil.RequireBearer("never", func(w http.ResponseWriter, r *http.Request) {}))

	sess := testutil.LoggedIn(t, "a1", "")
	var expired int32
	c := newTestClient(t, f, sess, WithOnExpired(func() { atomic.AddInt32(&expired, 1) }))

	err := c.Get(context.Background(), "/assets/", nil, nil)
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 0, f.Hits(http.MethodPost, "/api/auth/refresh/"))
	assert.Equal(t, session.Credentials{}, sess.Credentials())
	_, ok := sess.Profile()
	assert.False(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&expired))
}

func TestRefreshRejected_EndsSession(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	refreshTo(f, "a2")
	f.Router.Get("/api/assets/", testutil.RequireBearer("a2", func(w http.ResponseWriter, r *http.Request) {}))

	sess := testutil.LoggedIn(t, "a1", "stale")
	var expired bool
	c := newTestClient(t, f, sess, WithOnExpired(func() { expired = true }))

	err := c.Get(context.Background(), "/assets/", nil, nil)
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, f.Hits(http.MethodPost, "/api/auth/refresh/"))
	assert.Equal(t, 1, f.Hits(http.MethodGet, "/api/assets/"))
	assert.False(t, sess.Authenticated())
	assert.True(t, expired)
}

func TestRefreshNetworkFailure_EndsSession(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Router.Post("/api/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	})
	f.Router.Get("/api/assets/", testutil.RequireBearer("a2", func(w http.ResponseWriter, r *http.Request) {}))

	sess := testutil.LoggedIn(t, "a1", "r1")
	c := newTestClient(t, f, sess)

	err := c.Get(context.Background(), "/assets/", nil, nil)
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, f.Hits(http.MethodPost, "/api/auth/refresh/"))
	assert.False(t, sess.Authenticated())
}

func TestRefreshCanceledKeepsSession(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.Router.Post("/api/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		cancel()
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})
	f.Router.Get("/api/assets/", func(w http.ResponseWriter, r *http.Request) {
		testutil.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
	})

	sess := testutil.LoggedIn(t, "a1", "r1")
	var expired atomic.Bool
	c := newTestClient(t, f, sess, WithOnExpired(func() { expired.Store(true) }))

	err := c.Get(ctx, "/assets/", nil, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrSessionExpired))
	assert.False(t, expired.Load())
	assert.True(t, sess.Authenticated())
	assert.Equal(t, session.Credentials{AccessToken: "a1", RefreshToken: "r1"}, sess.Credentials())
}

func TestRefreshCanceledLeaderDoesNotFailOthers(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	defer cancelLeader()
	var calls atomic.Int32
	joined := make(chan struct{})
	f.Router.Post("/api/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			<-joined
			cancelLeader()
			_, _ = io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
			return
		}
		testutil.JSON(w, http.StatusOK, map[string]string{"access": "a2"})
	})
	f.Router.Get("/api/assets/", func(w http.ResponseWriter, r *http.Request) {
		if testutil.Bearer(r) != "a2" {
			testutil.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
			return
		}
		testutil.JSON(w, http.StatusOK, []asset{})
	})

	sess := testutil.LoggedIn(t, "a1", "r1")
	c := newTestClient(t, f, sess)

	leaderErr := make(chan error, 1)
	go func() { leaderErr <- c.Get(leaderCtx, "/assets/", nil, nil) }()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	otherErr := make(chan error, 1)
	go func() { otherErr <- c.Get(context.Background(), "/assets/", nil, nil) }()
	require.Eventually(t, func() bool { return f.Hits(http.MethodGet, "/api/assets/") == 2 }, 2*time.Second, 5*time.Millisecond)
	close(joined)

	require.ErrorIs(t, <-leaderErr, context.Canceled)
	require.NoError(t, <-otherErr)
	assert.Equal(t, "a2", sess.Credentials().AccessToken)
	assert.Equal(t, "r1", sess.Credentials().RefreshToken)
}

func TestSecondUnauthorizedIsTerminal(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	refreshTo(f, "a2")
	f.Router.Get("/api/reports/downtime/", func(w http.ResponseWriter, r *http.Request) {
		testutil.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not allowed"})
	})

	sess := testutil.LoggedIn(t, "a1", "r1")
	c := newTestClient(t, f, sess)

	err := c.Get(context.Background(), "/reports/downtime/", nil, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSessionExpired))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
	assert.Equal(t, "Not allowed", err.Error())
	assert.Equal(t, 1, f.Hits(http.MethodPost, "/api/auth/refresh/"))
	assert.Equal(t, 2, f.Hits(http.MethodGet, "/api/reports/downtime/"))
	assert.Equal(t, "a2", sess.Credentials().AccessToken)
}

func TestConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Router.Post("/api/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		testutil.JSON(w, http.StatusOK, map[string]string{"access": "a2"})
	})
	f.Router.Get("/api/assets/", testutil.RequireBearer("a2", func(w http.ResponseWriter, r *http.Request) {
		testutil.JSON(w, http.StatusOK, map[string]any{"results": []any{}, "count": 0})
	}))

	c := newTestClient(t, f, testutil.LoggedIn(t, "a1", "r1"))

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Get(context.Background(), "/assets/", nil, nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.Hits(http.MethodPost, "/api/auth/refresh/"))
}

func TestErrorMessage(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"detail", `{"detail":"Not found."}`, 404, "Not found."},
		{"message", `{"message":"Import failed"}`, 400, "Import failed"},
		{"error", `{"error":"Insufficient stock"}`, 400, "Insufficient stock"},
		{"detail wins", `{"message":"m","detail":"d"}`, 400, "d"},
		{"field errors", `{"name":["This field is required."],"code":["asset with this code already exists."]}`, 400,
			"code: asset with this code already exists.; name: This field is required."},
		{"html", `<html>oops</html>`, 502, "request failed (status 502)"},
		{"empty detail", `{"detail":""}`, 500, "request failed (status 500)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errorMessage([]byte(tc.body), tc.status))
		})
	}
}

func TestDo_ServerError(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Router.Delete("/api/assets/5/", func(w http.ResponseWriter, r *http.Request) {
		testutil.JSON(w, http.StatusConflict, map[string]string{"detail": "Asset has open work orders"})
	})
	c := newTestClient(t, f, testutil.LoggedIn(t, "a1", "r1"))

	err := c.Delete(context.Background(), "/assets/5/")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Asset has open work orders", apiErr.Message)
	assert.Equal(t, 0, f.Hits(http.MethodPost, "/api/auth/refresh/"))
}

func TestDo_NetworkErrorNotRetried(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	base := f.BaseURL()
	f.Server.Close()

	c, err := New(base, testutil.LoggedIn(t, "a1", "r1"))
	require.NoError(t, err)
	err = c.Get(context.Background(), "/assets/", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 0, StatusOf(err))
}

func TestResolve(t *testing.T) {
	c, err := New("http://cmms.local:8000/api/", session.New(session.NewMemoryStore()))
	require.NoError(t, err)

	u, err := c.resolve("assets/", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://cmms.local:8000/api/assets/", u)

	u, err = c.resolve("/workorders/3/start/", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://cmms.local:8000/api/workorders/3/start/", u)

	u, err = c.resolve("http://cmms.local:8000/api/assets/?page=2", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://cmms.local:8000/api/assets/?page=2", u)

	_, err = c.resolve("http://evil.example/api/assets/?page=2", nil)
	assert.Error(t, err)

	_, err = New("/api", session.New(session.NewMemoryStore()))
	assert.Error(t, err)
}
