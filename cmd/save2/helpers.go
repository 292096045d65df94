package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/aj2nd/Save2/internal/common"
	"github.com/aj2nd/Save2/internal/config"
	"github.com/aj2nd/Save2/internal/service"
	"github.com/aj2nd/Save2/internal/storage"
)

// initStorage opens the configured database and brings its schema up
// to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	} else {
		dbPath = config.ExpandPath(dbPath)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// resolveOwner returns the owner all record operations are scoped to.
func resolveOwner() (string, error) {
	owner := viper.GetString("owner")
	if owner == "" {
		return "", common.NewUserError("no owner configured: pass --owner or set owner in the config file", common.ErrMissingConfig)
	}
	return owner, nil
}
