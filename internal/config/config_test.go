package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should apply defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
		assert.Equal(t, "10-M", cfg.LoginRate)
		assert.Contains(t, cfg.DSN(), "dbname=salon_db")
	})

	t.Run("Should read the environment", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("ACCESS_TOKEN_TTL", "30m")
		t.Setenv("DB_NAME", "salon_test")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
		assert.Contains(t, cfg.DSN(), "dbname=salon_test")
	})

	t.Run("Should reject malformed durations", func(t *testing.T) {
		t.Setenv("ACCESS_TOKEN_TTL", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadClient(t *testing.T) {
	t.Run("Should default the token path under the config dir", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		cfg, err := LoadClient()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/api/v1", cfg.APIURL)
		assert.Contains(t, cfg.TokenPath(), "salonctl/token")
	})

	t.Run("Should honor an explicit token file and fix bad page sizes", func(t *testing.T) {
		t.Setenv("SALON_TOKEN_FILE", "/tmp/tok")
		t.Setenv("SALON_PAGE_SIZE", "0")
		cfg, err := LoadClient()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/tok", cfg.TokenPath())
		assert.Equal(t, 10, cfg.PageSize)
	})
}
