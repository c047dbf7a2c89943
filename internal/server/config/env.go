package config

import "os"

// parseEnv overlays settings from environment variables. Secrets usually
// arrive this way rather than through flags, which leak into process lists.
func parseEnv(config *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		config.Addr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("TOKEN_SECRET_KEY"); v != "" {
		config.TokenKey = v
	}
}
