package config

import (
	"os"
	"strings"
)

// EnvEphemeral selects in-memory storage for the run when truthy.
const EnvEphemeral = "CURRICULUM_EPHEMERAL"

// loadFromEnv overrides config from CURRICULUM_* environment variables and
// records them as SourceEnv.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	for _, f := range fields(cfg) {
		v, ok := os.LookupEnv(f.env)
		if !ok || v == "" {
			continue
		}
		if f.boolean != nil {
			*f.boolean = boolFromString(v)
		} else {
			*f.str = v
		}
		if sources != nil {
			sources[f.key] = SourceEnv
		}
	}
	if v := os.Getenv(EnvEphemeral); v != "" {
		cfg.Ephemeral = boolFromString(v)
	}
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
