// Package app wires configuration to concrete components.
package app

import (
	"context"
	"fmt"

	"github.com/aanand-mishra/student-manager/internal/config"
	"github.com/aanand-mishra/student-manager/internal/storage"
	"github.com/aanand-mishra/student-manager/internal/storage/mysql"
	"github.com/aanand-mishra/student-manager/internal/storage/postgres"
	"github.com/aanand-mishra/student-manager/internal/storage/sqlite"
)

// NewStorage opens the backend named by cfg.Storage.Driver.
func NewStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMySQL:
		s, err := mysql.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("storage driver %q: %w", cfg.Storage.Driver, config.ErrUnknownDriver)
	}
}
