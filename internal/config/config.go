// Package config loads send-gmail settings from a YAML file, SEND_GMAIL_*
// environment variables and command-line flags, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/justinnhli/send-gmail/internal/google"
)

// Token store backends.
const (
	TokenStoreFile    = "file"
	TokenStoreKeyring = "keyring"
)

// Consent modes.
const (
	ConsentPrompt   = "prompt"
	ConsentLoopback = "loopback"
)

// EnvPrefix is prepended to environment variable names, e.g.
// SEND_GMAIL_TOKEN_PATH or SEND_GMAIL_LOG_LEVEL.
const EnvPrefix = "SEND_GMAIL"

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Config is the application configuration.
type Config struct {
	// ClientSecret is the path of the OAuth client-secret descriptor.
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`

	// TokenPath is the token file for the file store, and the directory
	// holder for the keyring's encrypted-file fallback.
	TokenPath string `mapstructure:"token_path" yaml:"token_path"`

	// TokenStore is "file" or "keyring".
	TokenStore string `mapstructure:"token_store" yaml:"token_store"`

	// Consent is "prompt" (paste the code) or "loopback" (local redirect).
	Consent string `mapstructure:"consent" yaml:"consent"`

	// Scopes requested during consent. Changing them forces re-consent.
	Scopes []string `mapstructure:"scopes" yaml:"scopes"`

	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"client-secret": "client_secret",
	"token-path":    "token_path",
	"token-store":   "token_store",
	"consent":       "consent",
	"log-level":     "log.level",
	"log-format":    "log.format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("client_secret", google.DefaultClientSecretPath())
	v.SetDefault("token_path", google.DefaultTokenPath())
	v.SetDefault("token_store", TokenStoreFile)
	v.SetDefault("consent", ConsentPrompt)
	v.SetDefault("scopes", []string(google.DefaultScopes))
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
}

// Load reads the YAML file at path, which may be absent. Any flags in flags
// that were set on the command line override the file and the environment.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.TokenStore {
	case TokenStoreFile, TokenStoreKeyring:
	default:
		return fmt.Errorf("token_store must be %q or %q, got %q", TokenStoreFile, TokenStoreKeyring, c.TokenStore)
	}
	switch c.Consent {
	case ConsentPrompt, ConsentLoopback:
	default:
		return fmt.Errorf("consent must be %q or %q, got %q", ConsentPrompt, ConsentLoopback, c.Consent)
	}
	if len(c.Scopes) == 0 {
		return errors.New("scopes must not be empty")
	}
	if c.ClientSecret == "" {
		return errors.New("client_secret must not be empty")
	}
	if c.TokenPath == "" {
		return errors.New("token_path must not be empty")
	}
	return nil
}

// ScopeSet returns Scopes as a google.ScopeSet.
func (c *Config) ScopeSet() google.ScopeSet {
	return google.ScopeSet(c.Scopes)
}
