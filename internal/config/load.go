package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix recognized on environment variables,
// e.g. TUTORKIT_FETCH_ORIGIN maps to Config.Fetch.Origin.
const EnvPrefix = "TUTORKIT_"

// Load fills target from a .env file (if present) and environment variables.
// Viper's AutomaticEnv does not cooperate with Unmarshal when the keys are
// not already known, so environment variables are fed in explicitly.
func Load(target interface{}) error {
	v := viper.New()

	v.SetConfigFile(".env")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// .env is optional; parse failures surface during Unmarshal
			// if the bad key matters.
		}
	}

	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		key, value := pair[0], pair[1]

		if strings.HasPrefix(key, EnvPrefix) {
			// TUTORKIT_FETCH_ORIGIN -> fetch.origin
			propKey := strings.TrimPrefix(key, EnvPrefix)
			propKey = strings.ToLower(strings.ReplaceAll(propKey, "_", "."))
			propKey = strings.TrimPrefix(propKey, ".")

			v.Set(propKey, value)
		}
	}

	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// FromEnv returns the default configuration overridden by the environment.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
