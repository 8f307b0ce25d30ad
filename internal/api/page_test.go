package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/Spok95/cmms-console/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedAssets отдаёт страницы заданных размеров со ссылками next, как DRF.
func pagedAssets(f *testutil.FakeAPI, sizes []int) {
	total := 0
	for _, s := range sizes {
		total += s
	}
	f.Router.Get("/api/assets/", func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			page, _ = strconv.Atoi(p)
		}
		offset := 0
		for i := 0; i < page-1; i++ {
			offset += sizes[i]
		}
		results := make([]asset, 0, sizes[page-1])
		for i := 0; i < sizes[page-1]; i++ {
			id := int64(offset + i + 1)
			results = append(results, asset{ID: id, Code: fmt.Sprintf("EQ-%04d", id)})
		}
		var next any
		if page < len(sizes) {
			next = fmt.Sprintf("%s/assets/?page=%d&page_size=%s", f.BaseURL(), page+1, r.URL.Query().Get("page_size"))
		}
		testutil.JSON(w, http.StatusOK, map[string]any{
			"results": results, "count": total, "next": next, "previous": nil,
		})
	})
}

func TestFetchAll_FollowsNext(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	pagedAssets(f, []int{1000, 1000, 37})
	c := newTestClient(t, f, testutil.LoggedIn(t, "a1", "r1"))

	page, err := FetchAll[asset](context.Background(), c, "/assets/", url.Values{"status": {"active"}})
	require.NoError(t, err)
	assert.Len(t, page.Results, 2037)
	assert.Equal(t, 2037, page.Count)
	assert.Nil(t, page.Next)
	assert.Nil(t, page.Previous)
	assert.Equal(t, int64(2037), page.Results[2036].ID)
	assert.Equal(t, 3, f.Hits(http.MethodGet, "/api/assets/"))
}

func TestFetchAll_ExplicitPage(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	pagedAssets(f, []int{50, 50, 25})
	c := newTestClient(t, f, testutil.LoggedIn(t, "a1", "r1"))

	page, err := FetchAll[asset](context.Background(), c, "/assets/", url.Values{"page": {"2"}, "page_size": {"50"}})
	require.NoError(t, err)
	assert.Len(t, page.Results, 50)
	assert.Equal(t, 125, page.Count)
	require.NotNil(t, page.Next)
	assert.Equal(t, int64(51), page.Results[0].ID)
	assert.Equal(t, 1, f.Hits(http.MethodGet, "/api/assets/"))
}

func TestFetchAll_SelfReferentialNext(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Router.Get("/api/spareparts/", func(w http.ResponseWriter, r *http.Request) {
		next := f.BaseURL() + "/spareparts/?page=2"
		testutil.JSON(w, http.StatusOK, map[string]any{"results": []asset{{ID: 1}}, "count": 1, "next": next})
	})
	c := newTestClient(t, f, testutil.LoggedIn(t, "a1", "r1"))

	_, err := FetchAll[asset](context.Background(), c, "/spareparts/", nil)
	require.ErrorIs(t, err, ErrPaginationLoop)
	assert.Equal(t, 2, f.Hits(http.MethodGet, "/api/spareparts/"))
}

func TestFetchAll_Empty(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Router.Get("/api/workorders/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1000", r.URL.Query().Get("page_size"))
		testutil.JSON(w, http.StatusOK, map[string]any{"results": []asset{}, "count": 0, "next": nil})
	})
	c := newTestClient(t, f, testutil.LoggedIn(t, "a1", "r1"))

	page, err := FetchAll[asset](context.Background(), c, "/workorders/", nil)
	require.NoError(t, err)
	assert.NotNil(t, page.Results)
	assert.Equal(t, 0, page.Count)
}
