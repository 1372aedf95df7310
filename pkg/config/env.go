package config

import (
	"log/slog"
	"os"
	"regexp"

	"github.com/joho/godotenv"
)

var (
	// ${VAR:-default} with a fallback value
	envVarWithDefaultPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*):-([^}]*)\}`)
	// ${VAR} without a fallback
	envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
)

// LoadDotEnv loads a .env file from the working directory if one
// exists. Missing files are not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env file")
	}
}

// ExpandEnvVars substitutes ${VAR} and ${VAR:-default} references in s
// with values from the environment. Unset variables without a default
// expand to the empty string.
func ExpandEnvVars(s string) string {
	s = envVarWithDefaultPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarWithDefaultPattern.FindStringSubmatch(match)
		if v, ok := os.LookupEnv(parts[1]); ok {
			return v
		}
		return parts[2]
	})
	s = envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		return os.Getenv(parts[1])
	})
	return s
}
