package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything prodwatch needs to host and talk to the backend.
type Config struct {
	APIBind string

	BackendCommand string
	BackendArgs    []string
	BackendDir     string
	ReadyAttempts  int
	ReadyDelay     time.Duration

	PollInterval   time.Duration
	MaxFailures    int
	StaleAfter     time.Duration
	SessionTimeout time.Duration
	RequestTimeout time.Duration
	Artifacts      []string

	LogFile        string
	LogLevel       string
	BackendLogFile string
}

const (
	defaultConfigPath     = "~/.config/prodwatch/config.toml"
	defaultLogDir         = "~/.local/share/prodwatch"
	defaultAPIBind        = "127.0.0.1:5000"
	defaultReadyAttempts  = 10
	defaultReadyDelay     = time.Second
	defaultPollInterval   = 1500 * time.Millisecond
	defaultMaxFailures    = 3
	defaultStaleAfter     = 30 * time.Second
	defaultSessionTimeout = 10 * time.Minute
	defaultRequestTimeout = 5 * time.Second
	defaultLogLevel       = "info"

	envAPIBind    = "PRODWATCH_API_BIND"
	envBackendCmd = "PRODWATCH_BACKEND_CMD"
)

var defaultArtifacts = []string{"amazon_product.csv", "amazon_reviews.csv"}

type fileConfig struct {
	APIBind string `toml:"api_bind"`

	Backend struct {
		Command       string   `toml:"command"`
		Args          []string `toml:"args"`
		Dir           string   `toml:"dir"`
		ReadyAttempts int      `toml:"ready_attempts"`
		ReadyDelay    string   `toml:"ready_delay"`
		LogFile       string   `toml:"log_file"`
	} `toml:"backend"`

	Monitor struct {
		PollInterval   string   `toml:"poll_interval"`
		MaxFailures    int      `toml:"max_failures"`
		StaleAfter     string   `toml:"stale_after"`
		SessionTimeout string   `toml:"session_timeout"`
		RequestTimeout string   `toml:"request_timeout"`
		Artifacts      []string `toml:"artifacts"`
	} `toml:"monitor"`

	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBind:        defaultAPIBind,
		ReadyAttempts:  defaultReadyAttempts,
		ReadyDelay:     defaultReadyDelay,
		PollInterval:   defaultPollInterval,
		MaxFailures:    defaultMaxFailures,
		StaleAfter:     defaultStaleAfter,
		SessionTimeout: defaultSessionTimeout,
		RequestTimeout: defaultRequestTimeout,
		Artifacts:      append([]string(nil), defaultArtifacts...),
		LogFile:        mustExpand(defaultLogDir + "/prodwatch.log"),
		LogLevel:       defaultLogLevel,
		BackendLogFile: mustExpand(defaultLogDir + "/backend.log"),
	}
}

// Load locates and parses the prodwatch config, falling back to defaults when
// missing. Environment overrides are applied last.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.merge(raw); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)

	return cfg, nil
}

func (c *Config) merge(raw fileConfig) error {
	if v := strings.TrimSpace(raw.APIBind); v != "" {
		c.APIBind = v
	}

	c.BackendCommand = strings.TrimSpace(raw.Backend.Command)
	c.BackendArgs = raw.Backend.Args
	if v := strings.TrimSpace(raw.Backend.Dir); v != "" {
		c.BackendDir = mustExpand(v)
	}
	if raw.Backend.ReadyAttempts > 0 {
		c.ReadyAttempts = raw.Backend.ReadyAttempts
	}
	if v := strings.TrimSpace(raw.Backend.LogFile); v != "" {
		c.BackendLogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}

	if raw.Monitor.MaxFailures > 0 {
		c.MaxFailures = raw.Monitor.MaxFailures
	}
	if len(raw.Monitor.Artifacts) > 0 {
		c.Artifacts = raw.Monitor.Artifacts
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"backend.ready_delay", raw.Backend.ReadyDelay, &c.ReadyDelay},
		{"monitor.poll_interval", raw.Monitor.PollInterval, &c.PollInterval},
		{"monitor.stale_after", raw.Monitor.StaleAfter, &c.StaleAfter},
		{"monitor.session_timeout", raw.Monitor.SessionTimeout, &c.SessionTimeout},
		{"monitor.request_timeout", raw.Monitor.RequestTimeout, &c.RequestTimeout},
	}
	for _, d := range durations {
		v := strings.TrimSpace(d.raw)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config: %s: %w", d.key, err)
		}
		if parsed <= 0 {
			return fmt.Errorf("parse config: %s must be positive, got %s", d.key, v)
		}
		*d.dst = parsed
	}
	return nil
}

func applyEnv(c *Config) {
	if v := strings.TrimSpace(os.Getenv(envAPIBind)); v != "" {
		c.APIBind = v
	}
	if v := strings.TrimSpace(os.Getenv(envBackendCmd)); v != "" {
		fields := strings.Fields(v)
		c.BackendCommand = fields[0]
		c.BackendArgs = fields[1:]
	}
}

// HasBackend reports whether a backend command is configured.
func (c Config) HasBackend() bool {
	return strings.TrimSpace(c.BackendCommand) != ""
}

// BackendLogPath returns the file the backend's output is captured to.
func (c Config) BackendLogPath() string {
	if strings.TrimSpace(c.BackendLogFile) == "" {
		return mustExpand(defaultLogDir + "/backend.log")
	}
	return c.BackendLogFile
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
