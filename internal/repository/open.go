package repository

import (
	"context"
	"fmt"

	"github.com/expenses-tracker/reports-backend/internal/config"
	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/expenses-tracker/reports-backend/internal/repository/postgres"
	"github.com/expenses-tracker/reports-backend/internal/repository/remote"
	"github.com/rs/zerolog/log"
)

// OpenDataSource builds the transaction and category source selected by
// cfg.DataSource. The returned close function releases any held resources.
func OpenDataSource(ctx context.Context, cfg *config.Config) (domain.DataSource, func(), error) {
	switch cfg.DataSource {
	case config.DataSourceAPI:
		client := remote.NewClient(cfg.APIBaseURL, cfg.APITimeout, remote.WithLocation(cfg.Location))
		log.Info().Str("base_url", cfg.APIBaseURL).Msg("Using expenses API as data source")
		return client, func() {}, nil
	case config.DataSourcePostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("Connected to database")
		return postgres.NewStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}
