package users

import (
	"context"
	"net/http"
	"testing"

	"github.com/Spok95/cmms-console/internal/api"
	"github.com/Spok95/cmms-console/internal/session"
	"github.com/Spok95/cmms-console/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginRoute(f *testutil.FakeAPI) {
	f.Router.Post("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if !testutil.Decode(w, r, &body) {
			return
		}
		if body["password"] != "secret" {
			testutil.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		testutil.JSON(w, http.StatusOK, map[string]any{
			"access": "a1", "refresh": "r1",
			"user": map[string]any{"id": 2, "username": body["username"], "full_name": "Иванов И.И.", "role": "engineer", "role_display": "Engineer"},
		})
	})
}

func TestLogin(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	loginRoute(f)
	sess := session.New(session.NewMemoryStore())
	c, err := api.New(f.BaseURL(), sess)
	require.NoError(t, err)

	p, err := NewRepo(c).Login(context.Background(), " ivanov ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ivanov", p.Username)
	assert.Equal(t, session.RoleEngineer, p.Role)
	assert.Equal(t, session.Credentials{AccessToken: "a1", RefreshToken: "r1"}, sess.Credentials())
}

func TestLogin_WrongPasswordDoesNotRefresh(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	loginRoute(f)
	sess := testutil.LoggedIn(t, "old", "r-old")
	expired := false
	c, err := api.New(f.BaseURL(), sess, api.WithOnExpired(func() { expired = true }))
	require.NoError(t, err)

	_, err = NewRepo(c).Login(context.Background(), "ivanov", "wrong")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, api.StatusOf(err))
	assert.Equal(t, 0, f.Hits(http.MethodPost, "/api/auth/refresh/"))
	assert.False(t, expired)
	assert.Equal(t, "old", sess.Credentials().AccessToken)
}

func TestLogin_EmptyCredentials(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	c, err := api.New(f.BaseURL(), session.New(session.NewMemoryStore()))
	require.NoError(t, err)
	_, err = NewRepo(c).Login(context.Background(), "", "")
	require.Error(t, err)
	assert.Equal(t, 0, f.TotalHits())
}

func TestLogout_ClearsEvenIfServerFails(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Router.Post("/api/auth/logout/", func(w http.ResponseWriter, r *http.Request) {
		testutil.JSON(w, http.StatusInternalServerError, map[string]string{})
	})
	sess := testutil.LoggedIn(t, "a1", "r1")
	c, err := api.New(f.BaseURL(), sess)
	require.NoError(t, err)

	err = NewRepo(c).Logout(context.Background())
	require.Error(t, err)
	assert.False(t, sess.Authenticated())
	_, ok := sess.Profile()
	assert.False(t, ok)
}
