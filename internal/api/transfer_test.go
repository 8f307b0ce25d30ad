package api

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/Spok95/cmms-console/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilenameFromDisposition(t *testing.T) {
	const fallback = "assets_template.xlsx"
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", fallback},
		{"plain", `attachment; filename="assets_export.xlsx"`, "assets_export.xlsx"},
		{"encoded word quoted", `attachment; filename="=?utf-8?b?0KjQsNCx0LvQvtC9Lnhsc3g=?="`, "Шаблон.xlsx"},
		{"encoded word bare", `attachment; filename==?utf-8?b?0KjQsNCx0LvQvtC9Lnhsc3g=?=`, "Шаблон.xlsx"},
		{"rfc5987", `attachment; filename*=UTF-8''%D0%A8%D0%B0%D0%B1%D0%BB%D0%BE%D0%BD.xlsx`, "Шаблон.xlsx"},
		{"broken base64", `attachment; filename="=?utf-8?b?***?="`, fallback},
		{"unknown charset", `attachment; filename="=?x-nope?b?YWJj?="`, fallback},
		{"path stripped", `attachment; filename="../../etc/passwd"`, "passwd"},
		{"no filename", `attachment`, fallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FilenameFromDisposition(tc.header, fallback))
		})
	}
}

func TestDownload_RefreshesAndReadsFile(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	refreshTo(f, "a2")
	f.Router.Get("/api/assets/export_excel/", testutil.RequireBearer("a2", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="=?utf-8?b?0KjQsNCx0LvQvtC9Lnhsc3g=?="`)
		_, _ = w.Write([]byte("PK\x03\x04"))
	}))

	c := newTestClient(t, f, testutil.LoggedIn(t, "a1", "r1"))
	file, err := c.Download(context.Background(), "/assets/export_excel/", map[string][]string{"status": {"active"}}, "assets.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "Шаблон.xlsx", file.Name)
	assert.Equal(t, []byte("PK\x03\x04"), file.Data)
	assert.Equal(t, 1, f.Hits(http.MethodPost, "/api/auth/refresh/"))
}

func TestDownload_Error(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Router.Get("/api/assets/download_template/", func(w http.ResponseWriter, r *http.Request) {
		testutil.JSON(w, http.StatusForbidden, map[string]string{"detail": "You do not have permission to perform this action."})
	})
	c := newTestClient(t, f, testutil.LoggedIn(t, "a1", "r1"))
	_, err := c.Download(context.Background(), "/assets/download_template/", nil, "t.xlsx")
	assert.Equal(t, http.StatusForbidden, StatusOf(err))
}

func TestUpload_Multipart(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Router.Post("/api/assets/import_excel/", func(w http.ResponseWriter, r *http.Request) {
		file, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "assets.xlsx", hdr.Filename)
		assert.Equal(t, "xlsx-bytes", string(data))
		testutil.JSON(w, http.StatusOK, map[string]any{"success_count": 3, "error_count": 0, "errors": []string{}})
	})
	c := newTestClient(t, f, testutil.LoggedIn(t, "a1", "r1"))

	var out struct {
		SuccessCount int `json:"success_count"`
	}
	require.NoError(t, c.Upload(context.Background(), "/assets/import_excel/", "file", "assets.xlsx", []byte("xlsx-bytes"), &out))
	assert.Equal(t, 3, out.SuccessCount)
}
