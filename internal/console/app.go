// Package console операторский CLI поверх CMMS API: cmms <ресурс> <действие> [флаги].
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/Spok95/cmms-console/internal/api"
	"github.com/Spok95/cmms-console/internal/batch"
	"github.com/Spok95/cmms-console/internal/config"
	"github.com/Spok95/cmms-console/internal/dialog"
	"github.com/Spok95/cmms-console/internal/domain/assets"
	"github.com/Spok95/cmms-console/internal/domain/inspections"
	"github.com/Spok95/cmms-console/internal/domain/maintenance"
	"github.com/Spok95/cmms-console/internal/domain/reports"
	"github.com/Spok95/cmms-console/internal/domain/spareparts"
	"github.com/Spok95/cmms-console/internal/domain/users"
	"github.com/Spok95/cmms-console/internal/domain/workorders"
	"github.com/Spok95/cmms-console/internal/session"
)

// ErrUsage неверный вызов команды; текст подсказки уже выведен.
var ErrUsage = errors.New("usage")

type App struct {
	cfg    config.Config
	log    *slog.Logger
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	sess   *session.Session
	client *api.Client
	states *dialog.Repo
	runner *batch.Runner

	users       *users.Repo
	assets      *assets.Repo
	orders      *workorders.Repo
	plans       *maintenance.Repo
	parts       *spareparts.Repo
	inspections *inspections.Repo
	reports     *reports.Repo

	expired bool
}

// IO потоки команды; в тестах буферы.
type IO struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger, store session.Store, stdio IO) (*App, error) {
	sess, err := session.Open(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	a := &App{
		cfg:    cfg,
		log:    log,
		in:     stdio.In,
		out:    stdio.Out,
		errOut: stdio.ErrOut,
		sess:   sess,
		states: dialog.NewRepo(store),
		runner: batch.NewRunner(log, batch.DefaultConcurrency),
	}
	client, err := api.New(cfg.API.BaseURL, sess,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithRefreshPath(cfg.API.RefreshPath),
		api.WithLogger(log),
		api.WithOnExpired(a.onExpired),
	)
	if err != nil {
		return nil, err
	}
	a.client = client
	a.users = users.NewRepo(client)
	a.assets = assets.NewRepo(client)
	a.orders = workorders.NewRepo(client)
	a.plans = maintenance.NewRepo(client)
	a.parts = spareparts.NewRepo(client)
	a.inspections = inspections.NewRepo(client)
	a.reports = reports.NewRepo(client)
	return a, nil
}

// onExpired вместо перехода на страницу входа: подсказка и ненулевой код выхода.
func (a *App) onExpired() {
	if a.expired {
		return
	}
	a.expired = true
	fmt.Fprintf(a.errOut, "Сессия истекла. Войдите заново: cmms login (страница входа: %s)\n", a.loginURL())
}

// Expired сессия истекла во время выполнения команды.
func (a *App) Expired() bool { return a.expired }

func (a *App) loginURL() string {
	u := a.cfg.API.LoginURL
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	base := strings.TrimSuffix(strings.TrimRight(a.cfg.API.BaseURL, "/"), "/api")
	return base + "/" + strings.TrimLeft(u, "/")
}

type command func(ctx context.Context, args []string) error

type group struct {
	help    string
	actions map[string]command
}

func (a *App) routes() map[string]group {
	return map[string]group{
		"login":       {help: "вход", actions: map[string]command{"": a.cmdLogin}},
		"logout":      {help: "выход", actions: map[string]command{"": a.cmdLogout}},
		"whoami":      {help: "текущий пользователь", actions: map[string]command{"": a.cmdWhoami}},
		"dashboard":   {help: "сводка", actions: map[string]command{"": a.cmdDashboard}},
		"assets":      {help: "оборудование", actions: a.assetCommands()},
		"workorders":  {help: "наряды", actions: a.workOrderCommands()},
		"plans":       {help: "планы ТО", actions: a.planCommands()},
		"parts":       {help: "запчасти", actions: a.partCommands()},
		"inspections": {help: "обходы", actions: a.inspectionCommands()},
		"reports":     {help: "отчёты", actions: a.reportCommands()},
		"users":       {help: "пользователи", actions: map[string]command{"": a.cmdUsers, "audit": a.cmdAudit}},
		"sync":        {help: "выгрузка в локальный Postgres", actions: map[string]command{"": a.cmdSync}},
		"watch":       {help: "наблюдение: метрики и оповещения", actions: map[string]command{"": a.cmdWatch}},
	}
}

// Run выполняет одну команду.
func (a *App) Run(ctx context.Context, args []string) error {
	routes := a.routes()
	if len(args) == 0 {
		a.usage(routes)
		return ErrUsage
	}
	g, ok := routes[args[0]]
	if !ok {
		fmt.Fprintf(a.errOut, "Неизвестная команда: %s\n", args[0])
		a.usage(routes)
		return ErrUsage
	}

	if cmd, ok := g.actions[""]; ok && (len(args) == 1 || strings.HasPrefix(args[1], "-")) {
		return cmd(ctx, args[1:])
	}
	if len(args) < 2 {
		a.groupUsage(args[0], g)
		return ErrUsage
	}
	cmd, ok := g.actions[args[1]]
	if !ok {
		fmt.Fprintf(a.errOut, "Неизвестное действие: %s %s\n", args[0], args[1])
		a.groupUsage(args[0], g)
		return ErrUsage
	}
	a.log.Debug("command", "group", args[0], "action", args[1])
	return cmd(ctx, args[2:])
}

func (a *App) usage(routes map[string]group) {
	names := make([]string, 0, len(routes))
	for n := range routes {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Fprintln(a.errOut, "Использование: cmms <команда> [действие] [флаги]")
	for _, n := range names {
		fmt.Fprintf(a.errOut, "  %-12s %s\n", n, routes[n].help)
	}
}

func (a *App) groupUsage(name string, g group) {
	acts := make([]string, 0, len(g.actions))
	for n := range g.actions {
		if n != "" {
			acts = append(acts, n)
		}
	}
	sort.Strings(acts)
	fmt.Fprintf(a.errOut, "Использование: cmms %s <%s> [флаги]\n", name, strings.Join(acts, "|"))
}
