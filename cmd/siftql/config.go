package main

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// config is the CLI configuration, loaded from an optional TOML file and
// overridden by SIFTQL_* environment variables.
type config struct {
	Query      queryConfig      `koanf:"query"`
	Clickhouse clickhouseConfig `koanf:"clickhouse"`
	Logging    loggingConfig    `koanf:"logging"`
}

type queryConfig struct {
	Table           string `koanf:"table"`
	TimestampColumn string `koanf:"timestamp_column"`
	Timezone        string `koanf:"timezone"`
	DefaultLimit    int    `koanf:"default_limit"`
	Dialect         string `koanf:"dialect"`
}

type clickhouseConfig struct {
	Host     string `koanf:"host"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

type loggingConfig struct {
	Level string `koanf:"level"`
}

func defaultConfig() *config {
	return &config{
		Query: queryConfig{
			TimestampColumn: "timestamp",
			Timezone:        "UTC",
			DefaultLimit:    100,
			Dialect:         "clickhouse",
		},
		Logging: loggingConfig{Level: "info"},
	}
}

// loadConfig reads path (when non-empty) and applies SIFTQL_ environment
// overrides, e.g. SIFTQL_CLICKHOUSE__HOST maps to clickhouse.host.
func loadConfig(path string) (*config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("SIFTQL_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "SIFTQL_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := defaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}
