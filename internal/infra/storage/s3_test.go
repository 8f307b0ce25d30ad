package storage

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	method      string
	path        string
	contentType string
	body        []byte
}

type fakeS3 struct {
	mu  sync.Mutex
	got []received
}

func (f *fakeS3) requests() []received {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]received(nil), f.got...)
}

func newFakeS3(t *testing.T, status int) (*httptest.Server, *fakeS3) {
	t.Helper()
	f := &fakeS3{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.got = append(f.got, received{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		})
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
			return
		}
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, f
}

func testConfig(endpoint string) Config {
	return Config{
		Endpoint:        endpoint,
		Region:          "ru-central1",
		Bucket:          "exports",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Prefix:          "/cmms/",
		UsePathStyle:    true,
	}
}

func TestUploader_Put(t *testing.T) {
	srv, got := newFakeS3(t, http.StatusOK)
	u, err := New(context.Background(), testConfig(srv.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	key, err := u.Put(context.Background(), "assets_20260101_120000.csv", "text/csv", []byte("a;b\n"))
	require.NoError(t, err)
	assert.Equal(t, "cmms/assets_20260101_120000.csv", key)

	reqs := got.requests()
	require.Len(t, reqs, 1)
	r := reqs[0]
	assert.Equal(t, http.MethodPut, r.method)
	assert.Equal(t, "/exports/cmms/assets_20260101_120000.csv", r.path)
	assert.Equal(t, "text/csv", r.contentType)
	assert.Equal(t, "a;b\n", string(r.body))
}

func TestUploader_PutError(t *testing.T) {
	srv, _ := newFakeS3(t, http.StatusForbidden)
	u, err := New(context.Background(), testConfig(srv.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	_, err = u.Put(context.Background(), "x.csv", "text/csv", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put object cmms/x.csv")
}

func TestUploader_Validation(t *testing.T) {
	_, err := New(context.Background(), Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)

	u, err := New(context.Background(), Config{Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	_, err = u.Put(context.Background(), "", "", nil)
	require.Error(t, err)
	assert.Equal(t, "a.csv", u.Key("a.csv"))
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "https://storage.yandexcloud.net", endpointURL("storage.yandexcloud.net"))
	assert.Equal(t, "http://localhost:9000", endpointURL("http://localhost:9000"))
}
