package database

import (
	"context"
	"testing"

	"github.com/ChadVezina/TP3-Prog-Web-Avance/config"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDialector(t *testing.T) {
	d, err := Dialector(config.DatabaseConfig{Driver: config.DriverMySQL, Host: "localhost", Name: "forfaits"})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	d, err = Dialector(config.DatabaseConfig{Driver: config.DriverPostgres, Host: "localhost", Name: "forfaits"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Dialector(config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestOpenWithMigratesAndPings(t *testing.T) {
	db, err := OpenWith(sqlite.Open("file::memory:"), true, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	assert.True(t, db.Migrator().HasTable(&models.Forfait{}))
	assert.NoError(t, Ping(context.Background(), db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestPingAfterClose(t *testing.T) {
	db, err := OpenWith(sqlite.Open("file::memory:"), false, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Close(db))

	assert.Error(t, Ping(context.Background(), db))
}

func TestQueriesLogThroughZap(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	db, err := OpenWith(sqlite.Open("file::memory:"), true, zap.New(core))
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	repo := models.NewForfaitsRepository(db)
	_, err = repo.GetByID(context.Background(), 999)
	require.ErrorIs(t, err, models.ErrForfaitNotFound)
	assert.Zero(t, logs.FilterMessageSnippet("record not found").Len())
	assert.Zero(t, logs.FilterMessageSnippet("SELECT").Len())

	require.Error(t, db.Exec("SELECT * FROM missing_table").Error)
	failed := logs.FilterMessageSnippet("missing_table").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "gorm", failed[0].LoggerName)
	assert.NotContains(t, failed[0].Message, "\x1b[")
}

func TestQueriesTracedAtDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	db, err := OpenWith(sqlite.Open("file::memory:"), true, zap.New(core))
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	_, err = models.NewForfaitsRepository(db).GetByID(context.Background(), 999)
	require.ErrorIs(t, err, models.ErrForfaitNotFound)
	assert.Equal(t, 1, logs.FilterMessageSnippet("WHERE id = 999").Len())
	assert.Zero(t, logs.FilterMessageSnippet("record not found").Len())
}
