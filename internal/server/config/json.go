package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/devconnector/internal/flagx"
	"github.com/dmitrijs2005/devconnector/internal/timex"
)

// JsonConfig is the on-disk JSON shape of Config. Durations accept both
// strings such as "1h" and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	BcryptCost                  int            `json:"bcrypt_cost"`
	AllowedOrigins              []string       `json:"allowed_origins"`
	LoginRateLimit              int            `json:"login_rate_limit"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson overlays values from the JSON file named by -c or -config.
// Keys absent from the file keep their current values. An unreadable file or
// invalid JSON panics: a half-applied configuration must not start the server.
func parseJson(config *Config, args []string) {
	path := flagx.StringFlag(args, "c", "config")
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.LoginRateLimit > 0 {
		config.LoginRateLimit = c.LoginRateLimit
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
