package reports

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/cmms-console/internal/api"
	fake "github.com/Spok95/cmms-console/internal/testutil"
)

func TestRepo_Paths(t *testing.T) {
	f := fake.NewFakeAPI(t)
	f.Router.Get("/api/reports/workorders/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-01-01", r.URL.Query().Get("start_date"))
		fake.JSON(w, http.StatusOK, map[string]any{"total": 12, "by_status": map[string]int{"open": 4}})
	})
	f.Router.Get("/api/reports/downtime/", func(w http.ResponseWriter, r *http.Request) {
		fake.JSON(w, http.StatusOK, map[string]any{"total_hours": "3.50"})
	})
	f.Router.Get("/api/reports/spareparts-usage/", func(w http.ResponseWriter, r *http.Request) {
		fake.JSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	})

	c, err := api.New(f.BaseURL(), fake.LoggedIn(t, "a1", "r1"))
	require.NoError(t, err)
	repo := NewRepo(c)
	ctx := context.Background()

	rep, err := repo.WorkOrders(ctx, url.Values{"start_date": {"2026-01-01"}})
	require.NoError(t, err)
	assert.EqualValues(t, 12, rep["total"])

	rep, err = repo.Downtime(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "3.50", rep["total_hours"])

	_, err = repo.PartsUsage(ctx, nil)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
