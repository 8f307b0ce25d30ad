package console

import (
	"context"
	"fmt"

	"github.com/Spok95/cmms-console/internal/infra/db"
	"github.com/Spok95/cmms-console/internal/mirror"
)

// cmdSync зеркалирует оборудование, наряды и запчасти в локальный Postgres.
func (a *App) cmdSync(ctx context.Context, args []string) error {
	fs := a.flags("sync")
	dsn := fs.String("dsn", a.cfg.Postgres.DSN, "строка подключения Postgres")
	skipMigrate := fs.Bool("skip-migrate", false, "не применять миграции")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *dsn == "" {
		return fmt.Errorf("postgres dsn is empty: set postgres.dsn or --dsn")
	}

	if !*skipMigrate {
		if err := mirror.Migrate(*dsn); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		a.log.Info("migrations applied")
	}

	pool, err := db.Connect(ctx, *dsn)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	res, err := mirror.New(pool, a.log).Sync(ctx, a.assets, a.orders, a.parts)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Зеркало обновлено: оборудование %d, наряды %d, запчасти %d\n",
		res.Assets, res.WorkOrders, res.Parts)
	return nil
}
