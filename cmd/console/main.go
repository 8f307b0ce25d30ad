package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Spok95/cmms-console/internal/config"
	"github.com/Spok95/cmms-console/internal/console"
	"github.com/Spok95/cmms-console/internal/infra/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := pflag.NewFlagSet("cmms", pflag.ContinueOnError)
	global.SetInterspersed(false)
	cfgPath := global.StringP("config", "c", "config/example.yaml", "файл конфигурации (пусто: только APP_* и значения по умолчанию)")
	if err := global.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}
	log := logger.New(cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := console.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Error("session store failed", "err", err)
		fmt.Fprintln(os.Stderr, console.Describe(err))
		return 1
	}
	defer func() { _ = closeStore() }()

	app, err := console.New(ctx, cfg, log, store, console.IO{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr})
	if err != nil {
		log.Error("init failed", "err", err)
		return 1
	}

	err = app.Run(ctx, global.Args())
	switch {
	case err == nil:
		return 0
	case errors.Is(err, console.ErrUsage):
		return 2
	case app.Expired():
		// подсказка о входе уже напечатана
		return 3
	default:
		fmt.Fprintln(os.Stderr, console.Describe(err))
		return 1
	}
}
