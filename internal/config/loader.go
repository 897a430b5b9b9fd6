package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"ollamaprobe/internal/common/fsutil"
)

// Defaults match the constants the probe has always used.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "gpt-oss:120b-cloud"
	DefaultPrompt  = "Hello! Say hi in one sentence."
	DefaultToken   = "ollama"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the probe parameters.
// Zero values mean "unspecified" and are filled from lower-precedence sources by Merge.
type Config struct {
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"`
	Model   string `json:"model" yaml:"model" toml:"model"`
	Prompt  string `json:"prompt" yaml:"prompt" toml:"prompt"`
	Token   string `json:"token" yaml:"token" toml:"token"`
	// Timeout is a Go duration string ("30s"); empty or "0" leaves the HTTP client default.
	Timeout string `json:"timeout" yaml:"timeout" toml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Model:   DefaultModel,
		Prompt:  DefaultPrompt,
		Token:   DefaultToken,
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// FromEnv collects overrides from the environment through getenv.
// OLLAMA_PROBE_BASE_URL wins over OLLAMA_HOST.
func FromEnv(getenv func(string) string) Config {
	cfg := Config{
		BaseURL: getenv("OLLAMA_PROBE_BASE_URL"),
		Model:   getenv("OLLAMA_PROBE_MODEL"),
		Token:   getenv("OLLAMA_PROBE_TOKEN"),
		Timeout: getenv("OLLAMA_PROBE_TIMEOUT"),
	}
	if cfg.BaseURL == "" {
		if host := getenv("OLLAMA_HOST"); host != "" {
			cfg.BaseURL = normalizeHost(host)
		}
	}
	return cfg
}

// normalizeHost turns OLLAMA_HOST style values ("0.0.0.0:11434") into a URL.
func normalizeHost(h string) string {
	h = strings.TrimSpace(h)
	if strings.Contains(h, "://") {
		return h
	}
	return "http://" + h
}

// Merge returns base with every non-empty field of overlay applied on top.
func Merge(base, overlay Config) Config {
	if overlay.BaseURL != "" {
		base.BaseURL = overlay.BaseURL
	}
	if overlay.Model != "" {
		base.Model = overlay.Model
	}
	if overlay.Prompt != "" {
		base.Prompt = overlay.Prompt
	}
	if overlay.Token != "" {
		base.Token = overlay.Token
	}
	if overlay.Timeout != "" {
		base.Timeout = overlay.Timeout
	}
	return base
}

// Discover returns the first config file found under the user config dir
// (ollamaprobe/config.{yaml,yml,toml,json}), or "" when there is none.
func Discover() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	base := filepath.Join(dir, "ollamaprobe")
	return fsutil.FirstFile(
		filepath.Join(base, "config.yaml"),
		filepath.Join(base, "config.yml"),
		filepath.Join(base, "config.toml"),
		filepath.Join(base, "config.json"),
	)
}

// Resolve layers defaults, the optional config file, and env overrides, in that order.
// An empty path falls back to Discover. Flag overrides are merged by the caller.
func Resolve(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = Discover()
	}
	if path != "" {
		fileCfg, err := Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = Merge(cfg, fileCfg)
	}
	return Merge(cfg, FromEnv(getenv)), nil
}

// Validate checks the config and normalizes the base URL (no trailing slash).
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base url is empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: base url %q: %v", ErrInvalidConfig, c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: base url %q must use http or https", ErrInvalidConfig, c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: base url %q has no host", ErrInvalidConfig, c.BaseURL)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: model is empty", ErrInvalidConfig)
	}
	if _, err := c.ClientTimeout(); err != nil {
		return err
	}
	return nil
}

// ClientTimeout parses Timeout. Zero means no client timeout.
func (c Config) ClientTimeout() (time.Duration, error) {
	if c.Timeout == "" || c.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout %q: %v", ErrInvalidConfig, c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: timeout %q is negative", ErrInvalidConfig, c.Timeout)
	}
	return d, nil
}
