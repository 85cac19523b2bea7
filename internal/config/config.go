// Package config wires environment configuration for the zonewatch CLI.
// Values resolve from command-line flags, then ZONEWATCH_* environment
// variables, then a local .env file.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix namespaces every zonewatch environment variable.
const envPrefix = "ZONEWATCH"

// Load primes viper with .env contents and the process environment.
func Load() {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	envKey := envPrefix + "_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
	return os.Getenv(envKey)
}
