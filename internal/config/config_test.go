package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"hours", "720h", 720 * time.Hour, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.Duration)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("a/b/config.yaml"))
	assert.Equal(t, FormatYAML, DetectFormat("CONFIG.YML"))
	assert.Equal(t, FormatTOML, DetectFormat("config.toml"))
	assert.Equal(t, FormatTOML, DetectFormat("config"))
	assert.Equal(t, "yaml", FormatYAML.String())
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 10000, cfg.Eval.MaxDepth)
	assert.Equal(t, 30*time.Second, cfg.Eval.Timeout.Duration)
	assert.Equal(t, 256, cfg.Eval.CacheSize)
	assert.False(t, cfg.Eval.Caching)
	assert.Equal(t, 10000, cfg.Parser.MaxDepth)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "> ", cfg.Repl.Prompt)
	assert.True(t, cfg.Repl.Color)
	assert.True(t, cfg.History.Enabled)
	assert.NotEmpty(t, cfg.History.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 1<<20, cfg.Server.MaxBodySize)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stringed.toml")
	content := `
[eval]
max_depth = 500
timeout = "5s"
caching = true

[log]
level = "debug"
format = "json"

[repl]
color = false

[history]
path = "${STRINGED_TEST_DIR}/history.db"
retention = "24h"

[server]
addr = "127.0.0.1:9000"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("STRINGED_TEST_DIR", dir)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Eval.MaxDepth)
	assert.Equal(t, 5*time.Second, cfg.Eval.Timeout.Duration)
	assert.True(t, cfg.Eval.Caching)
	assert.Equal(t, 256, cfg.Eval.CacheSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Repl.Color)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, filepath.Join(dir, "history.db"), cfg.History.Path)
	assert.Equal(t, 24*time.Hour, cfg.History.Retention.Duration)
	assert.Equal(t, time.Hour, cfg.History.PruneInterval.Duration)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stringed.yaml")
	content := `
eval:
  max_depth: 64
  timeout: 250ms
parser:
  max_depth: 32
history:
  enabled: false
server:
  read_timeout: 2s
  max_body_size: 4096
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Eval.MaxDepth)
	assert.Equal(t, 250*time.Millisecond, cfg.Eval.Timeout.Duration)
	assert.Equal(t, 32, cfg.Parser.MaxDepth)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, 4096, cfg.Server.MaxBodySize)
	assert.True(t, cfg.Repl.Color)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "config file not found")

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[eval\nmax_depth = "), 0o600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "failed to parse config")

	path = filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("eval:\n  timeout: forever\n"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[repl]\nprompt = \"$ \"\n"), 0o600))
	t.Setenv(EnvConfigPath, path)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "$ ", cfg.Repl.Prompt)
}
