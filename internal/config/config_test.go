package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override variable so ambient values cannot leak
// into the assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"BODEGA_ADDR", "DATABASE_URL", "GEMINI_API_KEY", "API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "bodega.db", cfg.Database.Path)
	assert.Equal(t, "gemini-2.5-flash", cfg.Assistant.Model)
	assert.Empty(t, cfg.Assistant.APIKey)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bodega.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":9090"
	cfg.Database.Path = "/var/lib/bodega/tanks.db"
	cfg.Assistant.Timeout = "30s"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", loaded.Server.Addr)
	assert.Equal(t, "/var/lib/bodega/tanks.db", loaded.Database.Path)
	assert.Equal(t, 30*time.Second, loaded.Assistant.TimeoutDuration())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BODEGA_ADDR", ":7000")
	t.Setenv("DATABASE_URL", "postgres://user:pw@localhost/bodega")
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://user:pw@localhost/bodega", cfg.Database.URL)
	assert.Equal(t, "postgres://user:pw@localhost/bodega", cfg.Database.DSN())
	assert.Equal(t, "from-env", cfg.Assistant.APIKey)
}

func TestLoad_APIKeyFallbackVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "legacy-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "legacy-env", cfg.Assistant.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid sqlite", func(c *Config) {}, ""},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"postgres without url", func(c *Config) { c.Database.Driver = "postgres" }, "database.url"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, "unknown database driver"},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTimeoutDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, AssistantConfig{Timeout: "30s"}.TimeoutDuration())
	assert.Equal(t, 2*time.Minute, AssistantConfig{Timeout: ""}.TimeoutDuration())
	assert.Equal(t, 2*time.Minute, AssistantConfig{Timeout: "garbage"}.TimeoutDuration())
	assert.Equal(t, 2*time.Minute, AssistantConfig{Timeout: "-5s"}.TimeoutDuration())
}
