package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"feedtrans/internal/config"
)

const sampleConfig = `
env:
  http_proxy: http://127.0.0.1:7890
  https_proxy: ""
source:
  rss_url: https://example.com/feed.xml
openai:
  api-key: sk-test
  prompt_prefix: "Translate:"
  max_retry: 3
  max_tokens: 2000
  wait_time: 0.5
  model: gpt-4o-mini
  temperatur: 0.2
local:
  cache_dir: cache
  cache_filename: translated.xml
  log_dir: logs
  tmp_dir: tmp
  output_dir: www
  output_filename: zh.xml
logging:
  level: logging.DEBUG
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := config.Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	require.Equal(t, "https://example.com/feed.xml", cfg.Source.URL)
	require.Equal(t, "sk-test", cfg.AI.APIKey)
	require.Equal(t, "openai", cfg.AI.Provider)
	require.Equal(t, "Translate:", cfg.AI.PromptPrefix)
	require.Equal(t, 3, cfg.AI.MaxRetry)
	require.Equal(t, 2000, cfg.AI.MaxTokens)
	require.Equal(t, 2000, cfg.AI.ChunkSize, "chunk size defaults to max tokens")
	require.Equal(t, 500*time.Millisecond, cfg.AI.WaitTime)
	require.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	require.InDelta(t, 0.2, cfg.AI.Temperature, 1e-9)
	require.Equal(t, config.DefaultSystemPrompt, cfg.AI.SystemPrompt)
	require.Equal(t, "http://127.0.0.1:7890", cfg.ProxyURL())
	require.Equal(t, "logging.DEBUG", cfg.Logging.Level)

	require.Equal(t, filepath.Join("cache", "translated.xml"), cfg.LedgerPath())
	require.Equal(t, filepath.Join("cache", config.ContentCacheFilename), cfg.ContentCachePath())
	require.Equal(t, filepath.Join("logs", config.TokenLedgerFilename), cfg.TokenLedgerPath())
	require.Equal(t, filepath.Join("www", "zh.xml"), cfg.OutputPath())
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FEEDTRANS_OPENAI_MODEL", "gpt-4o")
	t.Setenv("FEEDTRANS_OPENAI_WAIT_TIME", "250ms")
	cfg, err := config.Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	require.Equal(t, "gpt-4o", cfg.AI.Model)
	require.Equal(t, 250*time.Millisecond, cfg.AI.WaitTime)
}

func TestLoad_APIKeyFallsBackToEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	cfg, err := config.Load(writeConfig(t, "source:\n  rss_url: https://example.com/rss\n"))
	require.NoError(t, err)
	require.Equal(t, "sk-from-env", cfg.AI.APIKey)
	require.Equal(t, 5, cfg.AI.MaxRetry)
	require.Equal(t, time.Second, cfg.AI.WaitTime)
	require.Equal(t, 3000, cfg.AI.ChunkSize)
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := config.Load(writeConfig(t, "openai:\n  wait_time: soon\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "openai.wait_time")
}

func TestLoad_NodeID(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "source:\n  rss_url: https://example.com/rss\n"))
	require.NoError(t, err)
	require.EqualValues(t, 1, cfg.Local.NodeID)

	cfg, err = config.Load(writeConfig(t, "local:\n  node_id: 42\n"))
	require.NoError(t, err)
	require.EqualValues(t, 42, cfg.Local.NodeID)

	_, err = config.Load(writeConfig(t, "local:\n  node_id: 1024\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "local.node_id")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.ErrorIs(t, config.Config{}.Validate(), config.ErrMissingSourceURL)

	cfg := config.Config{Source: config.SourceConfig{URL: "https://example.com"}}
	require.ErrorIs(t, cfg.Validate(), config.ErrMissingAPIKey)
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := config.Config{Local: config.LocalConfig{
		CacheDir:  filepath.Join(root, "cache"),
		LogDir:    filepath.Join(root, "logs"),
		TmpDir:    filepath.Join(root, "tmp"),
		OutputDir: filepath.Join(root, "out", "www"),
	}}
	require.NoError(t, cfg.EnsureDirs())
	for _, dir := range []string{cfg.Local.CacheDir, cfg.Local.LogDir, cfg.Local.TmpDir, cfg.Local.OutputDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}
