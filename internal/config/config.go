package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// envRef matches ${VAR} and ${VAR:-default} references in config values.
var envRef = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnv replaces ${VAR:-default} references with the environment value,
// falling back to the default when the variable is unset or empty.
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		parts := envRef.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if v := os.Getenv(parts[1]); v != "" {
			return v
		}
		if len(parts) > 2 {
			return parts[2]
		}
		return ""
	})
}

// Load reads the config file, expands environment references in string
// values and unmarshals the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(strings.TrimLeft(filepath.Ext(path), "."))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	for _, key := range v.AllKeys() {
		raw := v.GetString(key)
		if raw == "" {
			continue
		}
		if expanded := expandEnv(raw); expanded != raw {
			v.Set(key, expanded)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
