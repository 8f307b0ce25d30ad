package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Spok95/cmms-console/internal/infra/storage"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	API struct {
		BaseURL     string        `mapstructure:"base_url"`
		RefreshPath string        `mapstructure:"refresh_path"`
		LoginURL    string        `mapstructure:"login_url"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"api"`

	Session struct {
		Driver     string
		SQLitePath string `mapstructure:"sqlite_path"`
		Redis      struct {
			Addr     string
			Password string
			DB       int
			Prefix   string
		} `mapstructure:"redis"`
	} `mapstructure:"session"`

	List struct {
		PageSize int `mapstructure:"page_size"`
	} `mapstructure:"list"`

	Telegram struct {
		Token       string
		Endpoint    string
		AdminChatID int64 `mapstructure:"admin_chat_id"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	S3 storage.Config `mapstructure:"s3"`

	Watch struct {
		Interval time.Duration
	} `mapstructure:"watch"`
}

var defaults = map[string]any{
	"app.env":                "prod",
	"app.timezone":           "Europe/Moscow",
	"api.base_url":           "http://localhost:8000/api",
	"api.refresh_path":       "/auth/refresh/",
	"api.login_url":          "/static/login.html",
	"api.timeout":            60 * time.Second,
	"session.driver":         "sqlite",
	"session.sqlite_path":    "cmms-session.db",
	"session.redis.addr":     "localhost:6379",
	"session.redis.password": "",
	"session.redis.db":       0,
	"session.redis.prefix":   "cmms:",
	"list.page_size":         50,
	"telegram.token":         "",
	"telegram.endpoint":      "",
	"telegram.admin_chat_id": 0,
	"http.addr":              ":9090",
	"postgres.dsn":           "",
	"metrics.enabled":        true,
	"s3.endpoint":            "",
	"s3.region":              "us-east-1",
	"s3.bucket":              "",
	"s3.access_key_id":       "",
	"s3.secret_access_key":   "",
	"s3.prefix":              "cmms",
	"s3.use_path_style":      true,
	"watch.interval":         time.Minute,
}

// Load читает .env, затем yaml по path (пустой path: только значения по
// умолчанию), поверх всего переменные APP_* (APP_API_BASE_URL и т.п.).
func Load(path string) (Config, error) {
	var c Config
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	switch c.Session.Driver {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("unknown session driver %q", c.Session.Driver)
	}
	if c.List.PageSize <= 0 {
		return fmt.Errorf("list.page_size must be positive, got %d", c.List.PageSize)
	}
	if c.Watch.Interval < time.Second {
		return fmt.Errorf("watch.interval too small: %s", c.Watch.Interval)
	}
	return nil
}

// Location часовой пояс для отображения дат; UTC при ошибке.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
