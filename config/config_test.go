package config

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_NAME", "forfaits")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"*"}, cfg.Cors.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8081")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "catalog")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("WRITE_TIMEOUT", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://shop.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, []string{"http://localhost:5173", "https://shop.example.com"}, cfg.Cors.AllowedOrigins)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_NAME", "forfaits")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "Valid mysql",
			cfg:  Config{Server: ServerConfig{Port: "3000"}, Database: DatabaseConfig{Driver: DriverMySQL, Name: "forfaits"}},
		},
		{
			name:    "Missing database name",
			cfg:     Config{Server: ServerConfig{Port: "3000"}, Database: DatabaseConfig{Driver: DriverMySQL}},
			wantErr: "DB_NAME is required",
		},
		{
			name:    "Missing port",
			cfg:     Config{Database: DatabaseConfig{Driver: DriverPostgres, Name: "forfaits"}},
			wantErr: "PORT is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.wantErr)
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	d := DatabaseConfig{Driver: DriverMySQL, Host: "localhost", User: "root", Password: "p@ss", Name: "forfaits"}

	parsed, err := mysql.ParseDSN(d.DSN())
	require.NoError(t, err)
	assert.Equal(t, "root", parsed.User)
	assert.Equal(t, "p@ss", parsed.Passwd)
	assert.Equal(t, "localhost:3306", parsed.Addr)
	assert.Equal(t, "forfaits", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.True(t, parsed.ClientFoundRows)
}

func TestPostgresDSN(t *testing.T) {
	d := DatabaseConfig{Driver: DriverPostgres, Host: "db", Port: "6543", User: "app", Password: "it's secret", Name: "forfaits"}

	assert.Equal(t,
		`host=db port=6543 user=app password='it\'s secret' dbname=forfaits sslmode=disable`,
		d.DSN())
}
