package batch

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/cmms-console/internal/api"
	"github.com/Spok95/cmms-console/internal/domain/assets"
	"github.com/Spok95/cmms-console/internal/testutil"
)

func TestRun_PartialFailureIsReported(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Router.Delete("/api/assets/{id}/", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "2" {
			testutil.JSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	c, err := api.New(f.BaseURL(), testutil.LoggedIn(t, "a1", "r1"))
	require.NoError(t, err)
	repo := assets.NewRepo(c)

	rep := NewRunner(nil, 2).Run(context.Background(), "asset-delete", []int64{3, 1, 2}, repo.Delete)

	assert.Equal(t, []int64{1, 3}, rep.Succeeded)
	require.Len(t, rep.Failed, 1)
	assert.Equal(t, int64(2), rep.Failed[0].ID)
	assert.Equal(t, http.StatusNotFound, api.StatusOf(rep.Failed[0].Err))
	assert.False(t, rep.OK())
	assert.Equal(t, 3, rep.Total())
	assert.ErrorContains(t, rep.Err(), "asset-delete: 1 of 3 failed")
	assert.Equal(t, 3, f.TotalHits())
}

func TestRun_AllSucceeded(t *testing.T) {
	rep := NewRunner(nil, 0).Run(context.Background(), "noop", []int64{5, 4}, func(context.Context, int64) error { return nil })
	assert.True(t, rep.OK())
	assert.NoError(t, rep.Err())
	assert.Equal(t, []int64{4, 5}, rep.Succeeded)
	assert.Empty(t, rep.Failed)
}

func TestRun_RespectsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	release := make(chan struct{})
	done := make(chan Report)
	ids := []int64{1, 2, 3, 4, 5, 6}

	go func() {
		done <- NewRunner(nil, 2).Run(context.Background(), "slow", ids, func(context.Context, int64) error {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			inFlight.Add(-1)
			return nil
		})
	}()
	for range ids {
		release <- struct{}{}
	}
	rep := <-done
	assert.Len(t, rep.Succeeded, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	rep := NewRunner(nil, 1).Run(ctx, "canceled", []int64{1, 2}, func(context.Context, int64) error {
		called = true
		return nil
	})
	assert.False(t, called)
	require.Len(t, rep.Failed, 2)
	assert.True(t, errors.Is(rep.Failed[0].Err, context.Canceled))
}
