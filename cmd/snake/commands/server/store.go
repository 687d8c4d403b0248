package server

import (
	"github.com/battlesnakeio/snake/config"
	"github.com/battlesnakeio/snake/controller"
	"github.com/battlesnakeio/snake/controller/filestore"
	"github.com/battlesnakeio/snake/controller/redis"
	"github.com/battlesnakeio/snake/controller/sqlstore"
	"github.com/pkg/errors"
)

var (
	storeBackend     = "inmem"
	storeBackendArgs = ""
)

func init() {
	RootCmd.Flags().StringVarP(&storeBackend, "backend", "b", storeBackend, "store backend, as one of: [inmem, file, redis, sql]")
	RootCmd.Flags().StringVarP(&storeBackendArgs, "backend-args", "a", storeBackendArgs, "options to pass to the backend being used")
}

// openStore creates the configured store backend.
func openStore(cfg *config.Config) (controller.Store, error) {
	switch storeBackend {
	case "inmem":
		return controller.InMemStore(), nil
	case "file":
		return filestore.NewFileStore(storeBackendArgs), nil
	case "redis":
		return redis.NewStore(storeBackendArgs)
	case "sql":
		return sqlstore.NewSQLStore(storeBackendArgs, sqlstore.Options{
			MaxOpenConns: cfg.MaxOpenConns,
			MaxIdleConns: cfg.MaxIdleConns,
		})
	}
	return nil, errors.Errorf("invalid backend %q", storeBackend)
}
