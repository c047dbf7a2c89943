package config

import (
	"encoding/json"
	"os"

	"github.com/portkeeper/portkeeper/internal/flagx"
)

// JsonConfig is the intermediate DTO for reading JSON configuration files.
// After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	Addr        string `json:"addr"`
	DatabaseDSN string `json:"database_dsn"`
	TokenKey    string `json:"token_key"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. If no flag is set, nothing is
// loaded. An unreadable or invalid file panics; a half-applied config is
// worse than a refusal to start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.Addr != "" {
		config.Addr = c.Addr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.TokenKey != "" {
		config.TokenKey = c.TokenKey
	}
}
