package main

import (
	"context"
	"fmt"

	"github.com/kisseru-go/kisseru/store"
	"github.com/kisseru-go/kisseru/store/postgres"
	"github.com/kisseru-go/kisseru/store/redis"
	"github.com/kisseru-go/kisseru/store/sqlite"
)

// openStore constructs the store.RunStore named by driver, or nil if driver
// is empty. dsn is interpreted per driver: a filesystem path for sqlite, a
// libpq connection string for postgres, a host:port for redis.
func openStore(driver, dsn string) (store.RunStore, error) {
	switch driver {
	case "":
		return nil, nil
	case "sqlite":
		path := dsn
		if path == "" {
			path = "kisseru-runs.db"
		}
		return sqlite.New(sqlite.Options{Path: path})
	case "postgres":
		return postgres.New(context.Background(), postgres.Options{ConnString: dsn})
	case "redis":
		return redis.New(redis.Options{Addr: dsn}), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q: want sqlite, postgres, or redis", driver)
	}
}
