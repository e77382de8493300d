package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every traitorops environment variable.
const EnvPrefix = "TRAITOROPS_"

// ParseEnv loads configuration from environment variables.
//
// Field tags name variables without the shared prefix; ParseEnv prepends
// EnvPrefix so `env:"DB_PATH"` reads TRAITOROPS_DB_PATH.
func ParseEnv(target any) error {
	return ParseEnvWithPrefix(target, EnvPrefix)
}

// ParseEnvWithPrefix loads configuration from environment variables sharing prefix.
func ParseEnvWithPrefix(target any, prefix string) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
