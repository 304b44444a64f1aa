package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceConfig struct {
	Port       int           `env:"TEST_CFG_PORT" envDefault:"8080"`
	BackendURL string        `env:"TEST_CFG_BACKEND_URL" envDefault:"http://localhost:9000"`
	Timeout    time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"15s"`
	Origins    []string      `env:"TEST_CFG_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	Mock       bool          `env:"TEST_CFG_MOCK" envDefault:"false"`
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    serviceConfig
		wantErr bool
	}{
		{
			name: "defaults",
			want: serviceConfig{
				Port:       8080,
				BackendURL: "http://localhost:9000",
				Timeout:    15 * time.Second,
				Origins:    []string{"http://localhost:5173"},
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"TEST_CFG_PORT":        "9090",
				"TEST_CFG_BACKEND_URL": "https://api.iyuc.ca",
				"TEST_CFG_TIMEOUT":     "2s",
				"TEST_CFG_ORIGINS":     "https://iyuc.ca,https://www.iyuc.ca",
				"TEST_CFG_MOCK":        "true",
			},
			want: serviceConfig{
				Port:       9090,
				BackendURL: "https://api.iyuc.ca",
				Timeout:    2 * time.Second,
				Origins:    []string{"https://iyuc.ca", "https://www.iyuc.ca"},
				Mock:       true,
			},
		},
		{name: "bad int", env: map[string]string{"TEST_CFG_PORT": "not-a-number"}, wantErr: true},
		{name: "bad duration", env: map[string]string{"TEST_CFG_TIMEOUT": "soon"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			var cfg serviceConfig
			err := Load(&cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "parse config")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

type keyConfig struct {
	APIKey string `env:"TEST_CFG_API_KEY,required"`
}

func TestLoad_Required(t *testing.T) {
	var missing keyConfig
	require.Error(t, Load(&missing))

	t.Setenv("TEST_CFG_API_KEY", "pk_live_123")
	var present keyConfig
	require.NoError(t, Load(&present))
	assert.Equal(t, "pk_live_123", present.APIKey)
}

type dotenvConfig struct {
	BackendURL string `env:"TEST_DOTENV_BACKEND_URL" envDefault:"http://localhost:9000"`
	Key        string `env:"TEST_DOTENV_KEY"`
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_DOTENV_BACKEND_URL=http://medusa:9000\nTEST_DOTENV_KEY=from-file\n"), 0o600))
	t.Setenv("TEST_DOTENV_KEY", "from-env")
	t.Cleanup(func() { os.Unsetenv("TEST_DOTENV_BACKEND_URL") })

	var cfg dotenvConfig
	require.NoError(t, LoadDotenv(&cfg, path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "http://medusa:9000", cfg.BackendURL)
	assert.Equal(t, "from-env", cfg.Key)
}

func TestLoadDotenv_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BAD-KEY=1\n"), 0o600))

	var cfg dotenvConfig
	err := LoadDotenv(&cfg, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load "+path)
}
