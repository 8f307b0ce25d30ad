package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/auth/refresh/", c.API.RefreshPath)
	assert.Equal(t, 60*time.Second, c.API.Timeout)
	assert.Equal(t, "sqlite", c.Session.Driver)
	assert.Equal(t, 50, c.List.PageSize)
	assert.Equal(t, time.Minute, c.Watch.Interval)
	assert.True(t, c.S3.UsePathStyle)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://cmms.example.com/api
  timeout: 15s
session:
  driver: redis
  redis:
    db: 2
list:
  page_size: 25
s3:
  bucket: exports
  access_key_id: key
telegram:
  admin_chat_id: 1001
`)
	t.Setenv("APP_LIST_PAGE_SIZE", "100")
	t.Setenv("APP_S3_SECRET_ACCESS_KEY", "from-env")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://cmms.example.com/api", c.API.BaseURL)
	assert.Equal(t, 15*time.Second, c.API.Timeout)
	assert.Equal(t, "redis", c.Session.Driver)
	assert.Equal(t, 2, c.Session.Redis.DB)
	assert.Equal(t, "cmms:", c.Session.Redis.Prefix)
	assert.Equal(t, 100, c.List.PageSize)
	assert.Equal(t, "exports", c.S3.Bucket)
	assert.Equal(t, "key", c.S3.AccessKeyID)
	assert.Equal(t, "from-env", c.S3.SecretAccessKey)
	assert.Equal(t, int64(1001), c.Telegram.AdminChatID)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "session:\n  driver: etcd\n"))
	require.ErrorContains(t, err, `unknown session driver "etcd"`)

	_, err = Load(writeConfig(t, "list:\n  page_size: 0\n"))
	require.ErrorContains(t, err, "list.page_size must be positive")
}

func TestLocation(t *testing.T) {
	var c Config
	c.App.Timezone = "Nowhere/Void"
	assert.Equal(t, time.UTC, c.Location())
	c.App.Timezone = "UTC"
	assert.Equal(t, "UTC", c.Location().String())
}
