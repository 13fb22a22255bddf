package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/devconnector/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variable names. PORT is honoured for compatibility with
// platform launchers when ADDRESS is not set.
const (
	envAddress        = "ADDRESS"
	envPort           = "PORT"
	envDatabaseDSN    = "DATABASE_DSN"
	envSecretKey      = "SECRET_KEY"
	envAccessTokenTTL = "ACCESS_TOKEN_TTL"
	envBcryptCost     = "BCRYPT_COST"
	envAllowedOrigins = "ALLOWED_ORIGINS"
	envLoginRateLimit = "LOGIN_RATE_LIMIT"
	envLogLevel       = "LOG_LEVEL"
)

const defaultEnvFile = ".env"

// parseEnv overlays values from the process environment and from the .env
// file named by -env (default ".env"). The process environment wins over the
// file; a missing file is not an error. Empty values are ignored.
func parseEnv(config *Config, args []string, lookup func(string) (string, bool)) {
	path := flagx.StringFlag(args, "env")
	if path == "" {
		path = defaultEnvFile
	}

	fileVars, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	get := func(key string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fileVars[key]
	}

	if port := get(envPort); port != "" {
		config.EndpointAddrHTTP = ":" + port
	}
	setString(&config.EndpointAddrHTTP, get(envAddress))
	setString(&config.DatabaseDSN, get(envDatabaseDSN))
	setString(&config.SecretKey, get(envSecretKey))
	setString(&config.LogLevel, get(envLogLevel))

	if v := get(envAccessTokenTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.AccessTokenValidityDuration = d
	}
	if v := get(envBcryptCost); v != "" {
		config.BcryptCost = mustAtoi(v)
	}
	if v := get(envLoginRateLimit); v != "" {
		config.LoginRateLimit = mustAtoi(v)
	}
	if v := get(envAllowedOrigins); v != "" {
		config.AllowedOrigins = splitList(v)
	}
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		panic(err)
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
