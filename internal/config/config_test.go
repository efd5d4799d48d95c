package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoad_MemoryDriver(t *testing.T) {
	setEnv(t, map[string]string{
		"STORAGE_DRIVER":       "memory",
		"JWT_SECRET_KEY":       "secret",
		"APP_TIMEZONE":         "Asia/Jakarta",
		"AUTO_SETTLE_INTERVAL": "5m",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example,",
		"REDIS_DB":             "2",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.App.StorageDriver)
	assert.Equal(t, 5*time.Minute, cfg.Payroll.AutoSettleInterval)
	assert.Equal(t, 30*time.Second, cfg.Payroll.LockTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "IDR", cfg.Xendit.Currency)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"APP_PORT": "eighty"}},
		{"bad interval", map[string]string{"AUTO_SETTLE_INTERVAL": "often"}},
		{"bad redis db", map[string]string{"REDIS_DB": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, map[string]string{"STORAGE_DRIVER": "memory", "JWT_SECRET_KEY": "secret"})
			setEnv(t, tt.env)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{StorageDriver: StorageDriverPostgres, Timezone: "UTC"},
			Database: DatabaseConfig{Password: "pw"},
			JWT:      JWTConfig{Secret: "secret"},
		}
	}

	assert.NoError(t, valid().Validate())

	c := valid()
	c.Database.Password = ""
	assert.ErrorContains(t, c.Validate(), "DB_PASSWORD")

	c.App.StorageDriver = StorageDriverMemory
	assert.NoError(t, c.Validate())

	c = valid()
	c.JWT.Secret = ""
	assert.ErrorContains(t, c.Validate(), "JWT_SECRET_KEY")

	c = valid()
	c.App.StorageDriver = "mongo"
	assert.ErrorContains(t, c.Validate(), "STORAGE_DRIVER")

	c = valid()
	c.App.Timezone = "Mars/Olympus"
	assert.ErrorContains(t, c.Validate(), "APP_TIMEZONE")

	c = valid()
	c.Payroll.AutoSettleInterval = -time.Second
	assert.ErrorContains(t, c.Validate(), "AUTO_SETTLE_INTERVAL")
}

func TestDatabaseURL(t *testing.T) {
	c := &Config{Database: DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "disable"}}
	assert.Equal(t, "postgres://u:p@db:5433/n?sslmode=disable", c.DatabaseURL())
}
