package dashboard

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/cmms-console/internal/api"
	"github.com/Spok95/cmms-console/internal/domain/assets"
	"github.com/Spok95/cmms-console/internal/domain/spareparts"
	"github.com/Spok95/cmms-console/internal/domain/workorders"
	"github.com/Spok95/cmms-console/internal/infra/metrics"
	fake "github.com/Spok95/cmms-console/internal/testutil"
)

func newService(t *testing.T, f *fake.FakeAPI) *Service {
	t.Helper()
	c, err := api.New(f.BaseURL(), fake.LoggedIn(t, "a1", "r1"))
	require.NoError(t, err)
	return NewService(assets.NewRepo(c), workorders.NewRepo(c), spareparts.NewRepo(c), nil)
}

func wo(id int, status string) map[string]any {
	return map[string]any{"id": id, "wo_code": "WO-" + status, "status": status, "wo_type": "CM", "priority": "medium"}
}

func TestLoad(t *testing.T) {
	f := fake.NewFakeAPI(t)
	f.Router.Get("/api/assets/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		fake.JSON(w, http.StatusOK, map[string]any{"count": 17, "results": []any{}})
	})
	f.Router.Get("/api/workorders/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ordering") == "-created_at" {
			assert.Equal(t, "10", r.URL.Query().Get("page_size"))
			fake.JSON(w, http.StatusOK, map[string]any{"count": 1, "results": []any{wo(9, "open")}})
			return
		}
		fake.JSON(w, http.StatusOK, map[string]any{"count": 5, "results": []any{
			wo(1, "open"), wo(2, "assigned"), wo(3, "in_progress"), wo(4, "closed"), wo(5, "open"),
		}})
	})
	f.Router.Get("/api/spareparts/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("low_stock"))
		fake.JSON(w, http.StatusOK, map[string]any{"count": 2, "results": []any{
			map[string]any{"id": 1, "part_code": "P-1", "current_stock": "2.00", "min_stock": "5.00", "lifecycle_status": "active"},
			map[string]any{"id": 2, "part_code": "P-2", "current_stock": "9.00", "min_stock": "5.00", "lifecycle_status": "active"},
		}})
	})

	sum, err := newService(t, f).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 17, sum.ActiveAssets)
	assert.Equal(t, 2, sum.ActiveWorkOrders)
	assert.Equal(t, 2, sum.PendingWorkOrders)
	require.Len(t, sum.LowStock, 1)
	assert.Equal(t, "P-1", sum.LowStock[0].Code)
	require.Len(t, sum.Recent, 1)

	sum.Publish()
	assert.Equal(t, float64(17), testutil.ToFloat64(metrics.ActiveAssets))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.LowStockParts))
}

func TestLoad_FailsWhole(t *testing.T) {
	f := fake.NewFakeAPI(t)
	f.Router.Get("/api/assets/", func(w http.ResponseWriter, r *http.Request) {
		fake.JSON(w, http.StatusOK, map[string]any{"count": 1, "results": []any{}})
	})
	f.Router.Get("/api/workorders/", func(w http.ResponseWriter, r *http.Request) {
		fake.JSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
	})
	f.Router.Get("/api/spareparts/", func(w http.ResponseWriter, r *http.Request) {
		fake.JSON(w, http.StatusOK, map[string]any{"count": 0, "results": []any{}})
	})

	_, err := newService(t, f).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, http.StatusInternalServerError, api.StatusOf(err))
}
