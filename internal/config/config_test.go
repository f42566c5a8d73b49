package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "test-secret", cfg.JWT_SECRET)
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		DB_HOST:     "db",
		DB_PORT:     "5432",
		DB_USER:     "backoffice",
		DB_PASSWORD: "pw",
		DB_NAME:     "backoffice",
	}
	assert.Equal(t, "postgres://backoffice:pw@db:5432/backoffice?sslmode=disable", cfg.DatabaseDSN())
}
