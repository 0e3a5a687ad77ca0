package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AppName    = "feedtrans"
	AppVersion = "0.1.0"
)

// UserAgent identifies feedtrans when fetching feeds.
var UserAgent = "Mozilla/5.0 (compatible; " + AppName + "/" + AppVersion + ")"

// Chrome headers for TLS fingerprinting (must match azuretls Chrome profile version)
const (
	ChromeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"
	ChromeSecChUa   = `"Google Chrome";v="135", "Chromium";v="135", "Not-A.Brand";v="8"`
)

// File names inside the configured directories.
const (
	ContentCacheFilename = "ai_request_cache.json"
	TokenLedgerFilename  = "token_count.txt"
	HistoryFilename      = "history.db"
	LogFilename          = "feedtrans.log"
	SnapshotFilename     = "source_feed.xml"
)

// MaxNodeID is the largest run id node the id generator accepts.
const MaxNodeID = 1023

const (
	DefaultSystemPrompt = "你是一个翻译家"
	DefaultPromptPrefix = "Translate the following text into Simplified Chinese. Keep HTML tags and URLs unchanged and reply with the translation only:"
)

var (
	ErrMissingSourceURL = errors.New("source.rss_url is required")
	ErrMissingAPIKey    = errors.New("openai.api_key is required")
)

type Config struct {
	Env     EnvConfig
	Source  SourceConfig
	AI      AIConfig
	Local   LocalConfig
	Output  OutputConfig
	Logging LoggingConfig
	Serve   ServeConfig
}

type EnvConfig struct {
	HTTPProxy  string
	HTTPSProxy string
}

type SourceConfig struct {
	URL         string
	Timeout     time.Duration
	BrowserTLS  bool
	Readability bool
}

// AIConfig configures the translation backend. It is read from the
// "openai" section for compatibility with existing config files, but the
// provider may be any of openai, anthropic or compatible.
type AIConfig struct {
	Provider     string
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	PromptPrefix string
	MaxRetry     int
	MaxTokens    int
	ChunkSize    int
	WaitTime     time.Duration
	Temperature  float64
	RateLimit    int
}

type LocalConfig struct {
	CacheDir       string
	CacheFilename  string
	LogDir         string
	TmpDir         string
	OutputDir      string
	OutputFilename string
	// NodeID seeds run ids. Instances sharing a history database need
	// distinct values in 0..1023.
	NodeID int64
}

type OutputConfig struct {
	Language  string
	Generator string
}

type LoggingConfig struct {
	Level string
}

type ServeConfig struct {
	Addr     string
	Interval time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.timeout", "30s")
	v.SetDefault("source.browser_tls", false)
	v.SetDefault("source.readability", false)

	v.SetDefault("openai.provider", "openai")
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.system_prompt", DefaultSystemPrompt)
	v.SetDefault("openai.prompt_prefix", DefaultPromptPrefix)
	v.SetDefault("openai.max_retry", 5)
	v.SetDefault("openai.max_tokens", 3000)
	v.SetDefault("openai.chunk_size", 0)
	v.SetDefault("openai.wait_time", "1")
	v.SetDefault("openai.temperature", 0.5)
	v.SetDefault("openai.rate_limit", 0)

	v.SetDefault("local.cache_dir", "./cache")
	v.SetDefault("local.cache_filename", "feed.xml")
	v.SetDefault("local.log_dir", "./logs")
	v.SetDefault("local.tmp_dir", "./tmp")
	v.SetDefault("local.output_dir", "./output")
	v.SetDefault("local.output_filename", "feed.xml")
	v.SetDefault("local.node_id", 1)

	v.SetDefault("output.language", "zh-CN")
	v.SetDefault("output.generator", AppName+" "+AppVersion)

	v.SetDefault("logging.level", "info")

	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.interval", "1h")
}

// Load reads the configuration file at path. When path is empty, config.yaml
// is searched for in the working directory and its absence is not an error.
// Every key can be overridden with a FEEDTRANS_ environment variable, e.g.
// FEEDTRANS_OPENAI_MODEL.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FEEDTRANS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	var cfg Config

	cfg.Env = EnvConfig{
		HTTPProxy:  v.GetString("env.http_proxy"),
		HTTPSProxy: v.GetString("env.https_proxy"),
	}

	timeout, err := parseSeconds(v.GetString("source.timeout"))
	if err != nil {
		return cfg, fmt.Errorf("source.timeout: %w", err)
	}
	cfg.Source = SourceConfig{
		URL:         strings.TrimSpace(v.GetString("source.rss_url")),
		Timeout:     timeout,
		BrowserTLS:  v.GetBool("source.browser_tls"),
		Readability: v.GetBool("source.readability"),
	}

	waitTime, err := parseSeconds(v.GetString("openai.wait_time"))
	if err != nil {
		return cfg, fmt.Errorf("openai.wait_time: %w", err)
	}
	temperature := v.GetFloat64("openai.temperature")
	// "temperatur" is the key's spelling in configs written for the first release.
	if v.InConfig("openai.temperatur") && !v.InConfig("openai.temperature") {
		temperature = v.GetFloat64("openai.temperatur")
	}
	apiKey := v.GetString("openai.api_key")
	if apiKey == "" {
		apiKey = v.GetString("openai.api-key")
	}
	cfg.AI = AIConfig{
		Provider:     strings.ToLower(strings.TrimSpace(v.GetString("openai.provider"))),
		APIKey:       strings.TrimSpace(apiKey),
		BaseURL:      strings.TrimSpace(v.GetString("openai.base_url")),
		Model:        strings.TrimSpace(v.GetString("openai.model")),
		SystemPrompt: v.GetString("openai.system_prompt"),
		PromptPrefix: v.GetString("openai.prompt_prefix"),
		MaxRetry:     v.GetInt("openai.max_retry"),
		MaxTokens:    v.GetInt("openai.max_tokens"),
		ChunkSize:    v.GetInt("openai.chunk_size"),
		WaitTime:     waitTime,
		Temperature:  temperature,
		RateLimit:    v.GetInt("openai.rate_limit"),
	}
	if cfg.AI.ChunkSize <= 0 {
		cfg.AI.ChunkSize = cfg.AI.MaxTokens
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = apiKeyFromEnv(cfg.AI.Provider)
	}

	cfg.Local = LocalConfig{
		CacheDir:       filepath.Clean(v.GetString("local.cache_dir")),
		CacheFilename:  v.GetString("local.cache_filename"),
		LogDir:         filepath.Clean(v.GetString("local.log_dir")),
		TmpDir:         filepath.Clean(v.GetString("local.tmp_dir")),
		OutputDir:      filepath.Clean(v.GetString("local.output_dir")),
		OutputFilename: v.GetString("local.output_filename"),
		NodeID:         v.GetInt64("local.node_id"),
	}
	if cfg.Local.NodeID < 0 || cfg.Local.NodeID > MaxNodeID {
		return cfg, fmt.Errorf("local.node_id: %d out of range 0..%d", cfg.Local.NodeID, MaxNodeID)
	}

	cfg.Output = OutputConfig{
		Language:  v.GetString("output.language"),
		Generator: v.GetString("output.generator"),
	}

	cfg.Logging = LoggingConfig{Level: v.GetString("logging.level")}

	interval, err := parseSeconds(v.GetString("serve.interval"))
	if err != nil {
		return cfg, fmt.Errorf("serve.interval: %w", err)
	}
	cfg.Serve = ServeConfig{
		Addr:     v.GetString("serve.addr"),
		Interval: interval,
	}

	return cfg, nil
}

func apiKeyFromEnv(provider string) string {
	if provider == "anthropic" {
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return os.Getenv("OPENAI_API_KEY")
}

// parseSeconds accepts either a plain number of seconds ("1", "0.5") or a
// Go duration string ("1500ms").
func parseSeconds(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative duration %q", value)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", value)
	}
	return d, nil
}

// Validate reports missing settings a pipeline run cannot do without.
func (c Config) Validate() error {
	if c.Source.URL == "" {
		return ErrMissingSourceURL
	}
	if c.AI.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// EnsureDirs creates the local directories if they do not exist.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.Local.CacheDir, c.Local.LogDir, c.Local.TmpDir, c.Local.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return nil
}

// ProxyURL returns the proxy to use for outbound requests, preferring the
// https proxy since feeds and backends are normally served over TLS.
func (c Config) ProxyURL() string {
	if c.Env.HTTPSProxy != "" {
		return c.Env.HTTPSProxy
	}
	return c.Env.HTTPProxy
}

func (c Config) ContentCachePath() string {
	return filepath.Join(c.Local.CacheDir, ContentCacheFilename)
}

func (c Config) LedgerPath() string {
	return filepath.Join(c.Local.CacheDir, c.Local.CacheFilename)
}

func (c Config) TokenLedgerPath() string {
	return filepath.Join(c.Local.LogDir, TokenLedgerFilename)
}

func (c Config) HistoryPath() string {
	return filepath.Join(c.Local.LogDir, HistoryFilename)
}

func (c Config) LogFilePath() string {
	return filepath.Join(c.Local.LogDir, LogFilename)
}

func (c Config) SnapshotPath() string {
	return filepath.Join(c.Local.TmpDir, SnapshotFilename)
}

func (c Config) OutputPath() string {
	return filepath.Join(c.Local.OutputDir, c.Local.OutputFilename)
}
