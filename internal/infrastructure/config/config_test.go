package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examcraft/backend/internal/infrastructure/config"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "examcraft.db", cfg.Database.Path)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.Generation.Workers)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "examcraft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: ":9000"
database:
  path: from-file.db
generation:
  workers: 5
`), 0o600))

	t.Setenv("EXAMCRAFT_DATABASE__PATH", "from-env.db")
	t.Setenv("EXAMCRAFT_LLM__MODEL", "llama3")
	t.Setenv("EXAMCRAFT_SERVER__SHUTDOWN_TIMEOUT", "3s")

	cfg, err := config.Load(newFlags(t, "--config", path, "--generation.workers", "7"))
	require.NoError(t, err)

	// file
	assert.Equal(t, ":9000", cfg.Server.Address)
	// env beats file and defaults
	assert.Equal(t, "from-env.db", cfg.Database.Path)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	// flag beats file
	assert.Equal(t, 7, cfg.Generation.Workers)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := config.Load(newFlags(t, "--llm.provider", "claude"))
	assert.Error(t, err)

	// Gemini needs an API key.
	_, err = config.Load(newFlags(t, "--llm.provider", "gemini"))
	assert.Error(t, err)

	_, err = config.Load(newFlags(t, "--generation.workers", "0"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
}
