package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"

	"liveqa/impl/repository"
	"liveqa/internal/config"
)

const databaseInitTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (repository.Store, error) {
		conf := do.MustInvoke[*config.Config](i)
		return OpenStore(conf)
	})
	do.Provide(injector, func(i do.Injector) (*MongoDB, error) {
		conf := do.MustInvoke[*config.Config](i)
		m := NewMongoClient(conf)
		if m == nil {
			return nil, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), databaseInitTimeout)
		defer cancel()
		if err := m.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return m, nil
	})
}

// OpenStore connects the relational store selected by store.driver and
// creates its tables.
func OpenStore(conf *config.Config) (repository.Store, error) {
	if conf.Store.Driver != config.DriverPostgres {
		return NewSQLClient(conf)
	}
	ctx, cancel := context.WithTimeout(context.Background(), databaseInitTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, conf.Store.Dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	pg := NewPostgres(pool)
	if err = pg.RunMigration(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	return pg, nil
}

var (
	_ repository.Store = (*Postgres)(nil)
	_ repository.Store = (*SqlClient)(nil)
)
