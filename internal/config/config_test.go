package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/brainstack/internal/domain"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))
	return Load(flags)
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "brainstack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "brainstack.db", cfg.Database.DSN)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 2000, cfg.AI.MaxTokens)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 1e-9)
	assert.True(t, cfg.AI.Fallback)
	assert.InDelta(t, 0.85, cfg.Grading.Threshold, 1e-9)
	assert.Equal(t, "repos", cfg.Import.ReposDir)
	assert.Equal(t, "development", cfg.Log.Env)
	assert.Empty(t, cfg.AI.APIKey)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeYAML(t, `
server:
  addr: ":1000"
database:
  dsn: file.db
ai:
  model: from-file
  timeout: 10s
`)
	t.Setenv(APIKeyEnv, "openai-key")
	t.Setenv("BRAINSTACK_DATABASE__DSN", "env.db")
	t.Setenv("BRAINSTACK_GRADING__THRESHOLD", "0.9")
	t.Setenv("BRAINSTACK_SERVER__CORS_ORIGINS", "http://localhost:3000,https://brainstack.example")

	cfg, err := load(t, "--config", path, "--ai.model", "from-flag")
	require.NoError(t, err)
	assert.Equal(t, ":1000", cfg.Server.Addr)
	assert.Equal(t, "env.db", cfg.Database.DSN)
	assert.Equal(t, "from-flag", cfg.AI.Model)
	assert.Equal(t, 10*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "openai-key", cfg.AI.APIKey)
	assert.InDelta(t, 0.9, cfg.Grading.Threshold, 1e-9)
	assert.Equal(t, []string{"http://localhost:3000", "https://brainstack.example"}, cfg.Server.CORSOrigins)
}

func TestLoadPrefixedKeyWins(t *testing.T) {
	t.Setenv(APIKeyEnv, "openai-key")
	t.Setenv("BRAINSTACK_AI__API_KEY", "brainstack-key")

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, "brainstack-key", cfg.AI.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BRAINSTACK_LOG__ENV=production\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("BRAINSTACK_LOG__ENV") })

	t.Chdir(dir)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(flags)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Log.Env)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "unknown driver", args: []string{"--database.driver", "mysql"}, wantErr: domain.ErrInvalidInput},
		{name: "threshold out of range", args: []string{"--grading.threshold", "1.5"}, wantErr: domain.ErrInvalidInput},
		{name: "unknown log preset", args: []string{"--log.env", "verbose"}, wantErr: domain.ErrInvalidInput},
		{name: "missing config file", args: []string{"--config", filepath.Join(os.TempDir(), "does-not-exist.yaml")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, tc.args...)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}
