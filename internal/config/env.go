package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes environment overrides, e.g. PRAYER_TRACKER_CITY.
const EnvPrefix = "PRAYER_TRACKER_"

const envFileName = ".env"

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

// EnvPath returns the .env file path in the config directory.
func EnvPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, envFileName), nil
}

// ApplyEnv overlays values from the .env file at envPath and then from the
// process environment. A missing .env file is not an error. Values go
// through Set, so invalid overrides are rejected with the variable named.
func (c *Config) ApplyEnv(envPath string) error {
	fileVars := map[string]string{}
	if envPath != "" {
		vars, err := godotenv.Read(envPath)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, os.ErrNotExist):
		default:
			return fmt.Errorf("reading %s: %w", envPath, err)
		}
	}

	for _, key := range ValidKeys {
		name := EnvVar(key)
		value, ok := os.LookupEnv(name)
		if !ok {
			value, ok = fileVars[name]
		}
		if !ok {
			continue
		}
		if err := c.Set(key, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// UnknownEnv lists PRAYER_TRACKER_* names in the .env file that match no
// config key, sorted.
func UnknownEnv(envPath string) []string {
	vars, err := godotenv.Read(envPath)
	if err != nil {
		return nil
	}
	known := map[string]bool{}
	for _, key := range ValidKeys {
		known[EnvVar(key)] = true
	}
	var out []string
	for name := range vars {
		if strings.HasPrefix(name, EnvPrefix) && !known[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
