// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (RAGFLOW_API_KEY, RAGFLOW_BASE_URL)
//  2. .env file in the working directory (reloaded on every Load, matching
//     how the connection settings were historically stored)
//  3. Config file (~/.ragflow-assistant/config.yaml)
//  4. Default values
//
// Security: the API key is never logged; Config masks it in MarshalJSON and String.
// Validation: fail-fast range checks with sentinel errors for errors.Is().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates no RAGFlow API key is configured.
	ErrMissingAPIKey = errors.New("missing RAGFlow API key")

	// ErrInvalidBaseURL indicates the RAGFlow base URL is malformed.
	ErrInvalidBaseURL = errors.New("invalid RAGFlow base URL")

	// ErrInvalidTimeout indicates the request timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid request timeout")

	// ErrInvalidNamePrefix indicates a chat/session name prefix is empty.
	ErrInvalidNamePrefix = errors.New("invalid name prefix")
)

// Defaults matching the original deployment.
const (
	// DefaultBaseURL is the default RAGFlow server address.
	DefaultBaseURL = "http://localhost:9380"

	// DefaultChatPrefix prefixes generated chat names.
	DefaultChatPrefix = "Chat"

	// DefaultSessionPrefix prefixes generated session names.
	DefaultSessionPrefix = "Session"

	// DefaultRequestTimeout bounds a single non-streaming backend call.
	DefaultRequestTimeout = 30 * time.Second

	// configDirName is the per-user configuration directory under $HOME.
	configDirName = ".ragflow-assistant"
)

// Config stores application configuration.
// SECURITY: APIKey is explicitly masked in MarshalJSON().
type Config struct {
	// RAGFlow connection
	APIKey  string `mapstructure:"api_key" json:"api_key"` // SENSITIVE: masked in MarshalJSON
	BaseURL string `mapstructure:"base_url" json:"base_url"`

	// Naming prefixes for lazily created chats and sessions
	ChatPrefix    string `mapstructure:"chat_prefix" json:"chat_prefix"`
	SessionPrefix string `mapstructure:"session_prefix" json:"session_prefix"`

	// RequestTimeout bounds non-streaming backend calls, in seconds.
	RequestTimeout int `mapstructure:"request_timeout" json:"request_timeout"`

	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"`
}

// Dir returns the configuration directory (~/.ragflow-assistant),
// creating it if missing.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}

	dir := filepath.Join(home, configDirName)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// Load loads configuration.
// Priority: environment variables > .env file > config file > defaults.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	// Reload .env on every call so edits take effect without a restart.
	// Overload mirrors the original override-on-reload behavior.
	if err := godotenv.Overload(); err != nil && !os.IsNotExist(err) {
		slog.Debug("no .env file loaded", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(dir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	viper.SetDefault("base_url", DefaultBaseURL)
	viper.SetDefault("chat_prefix", DefaultChatPrefix)
	viper.SetDefault("session_prefix", DefaultSessionPrefix)
	viper.SetDefault("request_timeout", int(DefaultRequestTimeout/time.Second))
	viper.SetDefault("log_level", "info")
}

// bindEnvVariables binds the connection environment variables explicitly.
// RAGFLOW_API_KEY and RAGFLOW_BASE_URL are the historical variable names
// and take priority over the config file.
func bindEnvVariables() {
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("api_key", "RAGFLOW_API_KEY")
	mustBind("base_url", "RAGFLOW_BASE_URL")
	mustBind("log_level", "RAGFLOW_ASSISTANT_LOG_LEVEL")
}

// Validate checks configuration values. The API key may be empty here;
// commands that talk to the backend check it separately so that
// `config` and `help` keep working before first setup.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}
	if c.RequestTimeout <= 0 || c.RequestTimeout > 600 {
		return fmt.Errorf("%w: %d (want 1..600 seconds)", ErrInvalidTimeout, c.RequestTimeout)
	}
	if c.ChatPrefix == "" || c.SessionPrefix == "" {
		return ErrInvalidNamePrefix
	}
	return nil
}

// Timeout returns RequestTimeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Save persists the connection settings to the config file.
// A file lock guards against concurrent CLI invocations interleaving writes.
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, "config.yaml")
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking config file: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("unlocking config file", "error", err)
		}
	}()

	viper.Set("api_key", c.APIKey)
	viper.Set("base_url", c.BaseURL)
	viper.Set("chat_prefix", c.ChatPrefix)
	viper.Set("session_prefix", c.SessionPrefix)
	viper.Set("request_timeout", c.RequestTimeout)
	viper.Set("log_level", c.LogLevel)

	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Secrets of 8 chars or fewer are fully masked; longer secrets show the
// first and last 2 characters for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit API key masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.APIKey = maskSecret(a.APIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
