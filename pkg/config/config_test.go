package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/pkg/config"
)

func TestLoad_ValoresDesdeEntorno(t *testing.T) {
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("MIGRATION_URL", "http://migrador.local/hooks")
	t.Setenv("MIGRATION_TIMEOUT_SECONDS", "3")
	t.Setenv("MIGRATION_MAX_ATTEMPTS", "0")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverMemory, cfg.DB.Driver, "el driver se normaliza a minúsculas")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "http://migrador.local/hooks", cfg.Migration.URL)
	assert.Equal(t, 3*time.Second, cfg.Migration.Timeout)
	assert.Equal(t, 1, cfg.Migration.MaxAttempts, "al menos un intento")
	assert.False(t, cfg.DB.AutoMigrate)
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_EnteroMalFormadoUsaDefault(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("MIGRATION_QUEUE_SIZE", "muchos")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Migration.QueueSize)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{
		Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "backoffice", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/backoffice?sslmode=disable", c.ConnectionString(),
		"la contraseña se codifica")

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString(), "DATABASE_URL tiene prioridad")
}

func TestHTTPConfig_Addr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", config.HTTPConfig{Host: "0.0.0.0", Port: 8080}.Addr())
}
