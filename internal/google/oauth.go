package google

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const appDirName = "send-gmail"

// LoadClientConfig reads the client-secret descriptor downloaded from the
// Google Cloud console and returns the OAuth2 configuration for scopes.
// Any failure is a *ConfigurationError.
func LoadClientConfig(path string, scopes ScopeSet) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	return ParseClientConfig(path, data, scopes)
}

// ParseClientConfig parses a client-secret descriptor. path is only used in
// error messages.
func ParseClientConfig(path string, data []byte, scopes ScopeSet) (*oauth2.Config, error) {
	if len(scopes) == 0 {
		return nil, &ConfigurationError{Path: path, Err: errors.New("no OAuth scopes configured")}
	}

	conf, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	if conf.ClientID == "" {
		return nil, &ConfigurationError{Path: path, Err: errors.New("client_id is empty")}
	}
	if conf.ClientSecret == "" {
		return nil, &ConfigurationError{Path: path, Err: errors.New("client_secret is empty")}
	}

	return conf, nil
}

// DefaultClientSecretPath is where the client-secret descriptor is looked up
// when no path is configured.
func DefaultClientSecretPath() string {
	return filepath.Join(homeDir(), ".secrets", "gmail-client-secret.json")
}

// DefaultTokenPath is the user-scoped token file location.
func DefaultTokenPath() string {
	return filepath.Join(userCacheDir(), appDirName, "token.json")
}

// DefaultConfigPath is the user-scoped configuration file location.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName, "config.yaml")
	}
	return filepath.Join(homeDir(), ".config", appDirName, "config.yaml")
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"LOCALAPPDATA", "TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		return os.TempDir()
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
