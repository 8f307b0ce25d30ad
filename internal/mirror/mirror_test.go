package mirror

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/cmms-console/internal/api"
	"github.com/Spok95/cmms-console/internal/domain/assets"
	"github.com/Spok95/cmms-console/internal/domain/spareparts"
	"github.com/Spok95/cmms-console/internal/domain/workorders"
	"github.com/Spok95/cmms-console/internal/infra/db"
	"github.com/Spok95/cmms-console/internal/testutil"
)

func TestArgs_NullsForEmptyValues(t *testing.T) {
	a := assetArgs(assets.Asset{ID: 1, Code: "EQ-1", Status: assets.StatusActive, Criticality: assets.CriticalityNormal,
		AssetValue: json.Number("100.50")})
	require.Len(t, a, 12)
	assert.Nil(t, a[9].(*string))
	assert.Equal(t, "100.50", *a[10].(*string))
	assert.Nil(t, a[11].(*string))

	p := partArgs(spareparts.Part{ID: 2, CurrentStock: "1", MinStock: "3"})
	assert.Equal(t, true, p[8])

	w := workOrderArgs(workorders.WorkOrder{ID: 3, Status: workorders.StatusOpen, CreatedAt: "2026-01-10T08:00:00Z"})
	assert.Equal(t, "2026-01-10T08:00:00Z", *w[11].(*string))
	assert.Nil(t, w[2].(*int64))
}

// Нужен живой Postgres: CMMS_TEST_DSN=postgres://... go test ./internal/mirror
func TestSync_Postgres(t *testing.T) {
	dsn := os.Getenv("CMMS_TEST_DSN")
	if dsn == "" {
		t.Skip("CMMS_TEST_DSN is not set")
	}
	ctx := context.Background()
	require.NoError(t, Migrate(dsn))
	pool, err := db.Connect(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	f := testutil.NewFakeAPI(t)
	f.Router.Get("/api/assets/", func(w http.ResponseWriter, r *http.Request) {
		testutil.JSON(w, http.StatusOK, map[string]any{"count": 1, "results": []any{
			map[string]any{"id": 900001, "code": "EQ-T", "name": "Тест", "status": "active", "criticality": "normal", "start_date": "2024-01-02"},
		}})
	})
	f.Router.Get("/api/workorders/", func(w http.ResponseWriter, r *http.Request) {
		testutil.JSON(w, http.StatusOK, map[string]any{"count": 0, "results": []any{}})
	})
	f.Router.Get("/api/spareparts/", func(w http.ResponseWriter, r *http.Request) {
		testutil.JSON(w, http.StatusOK, map[string]any{"count": 1, "results": []any{
			map[string]any{"id": 900001, "part_code": "P-T", "name": "Тест", "current_stock": "1.000", "min_stock": "2.000", "lifecycle_status": "active"},
		}})
	})
	c, err := api.New(f.BaseURL(), testutil.LoggedIn(t, "a1", "r1"))
	require.NoError(t, err)

	m := New(pool, slog.New(slog.NewTextHandler(io.Discard, nil)))
	res, err := m.Sync(ctx, assets.NewRepo(c), workorders.NewRepo(c), spareparts.NewRepo(c))
	require.NoError(t, err)
	assert.Equal(t, Result{Assets: 1, WorkOrders: 0, Parts: 1}, res)

	var low bool
	require.NoError(t, pool.QueryRow(ctx, `SELECT low_stock FROM mirror_spare_parts WHERE id = 900001`).Scan(&low))
	assert.True(t, low)
	_, err = pool.Exec(ctx, `DELETE FROM mirror_assets WHERE id = $1`, 900001)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM mirror_spare_parts WHERE id = $1`, 900001)
	require.NoError(t, err)
}
