package repository

import (
	"context"
	"testing"
	"time"

	"github.com/expenses-tracker/reports-backend/internal/config"
	"github.com/expenses-tracker/reports-backend/internal/repository/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDataSource_API(t *testing.T) {
	cfg := &config.Config{
		DataSource: config.DataSourceAPI,
		APIBaseURL: "http://localhost:8080",
		APITimeout: time.Second,
		Location:   time.UTC,
	}

	source, closeFn, err := OpenDataSource(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()

	_, ok := source.(*remote.Client)
	assert.True(t, ok)
}

func TestOpenDataSource_Unknown(t *testing.T) {
	_, _, err := OpenDataSource(context.Background(), &config.Config{DataSource: "csv"})
	assert.ErrorContains(t, err, `unknown data source "csv"`)
}

func TestOpenDataSource_PostgresUnreachable(t *testing.T) {
	cfg := &config.Config{
		DataSource:  config.DataSourcePostgres,
		DatabaseURL: "postgres://nobody@127.0.0.1:1/reports?connect_timeout=1",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, _, err := OpenDataSource(ctx, cfg)
	assert.Error(t, err)
}
