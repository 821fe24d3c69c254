package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/todolist/internal/flagx"
	"github.com/dmitrijs2005/todolist/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// either "30m" style strings or integer nanoseconds. Pointer fields let an
// explicit false or 0 override a default.
type JsonConfig struct {
	HTTPAddr             string          `json:"http_addr"`
	DatabaseDriver       string          `json:"database_driver"`
	DatabaseDSN          string          `json:"database_dsn"`
	DatabaseMaxConns     int             `json:"database_max_conns"`
	SecretKey            string          `json:"secret_key"`
	SessionTTL           *timex.Duration `json:"session_ttl"`
	SessionStore         string          `json:"session_store"`
	SessionPurgeInterval *timex.Duration `json:"session_purge_interval"`
	CookieSecure         *bool           `json:"cookie_secure"`
	RedisAddr            string          `json:"redis_addr"`
	RedisPassword        string          `json:"redis_password"`
	RedisDB              *int            `json:"redis_db"`
	PasswordSalt         string          `json:"salt"`
	Argon2Memory         uint32          `json:"argon2_memory_kib"`
	Argon2Iterations     uint32          `json:"argon2_iterations"`
	Argon2Parallelism    uint8           `json:"argon2_parallelism"`
	LogLevel             string          `json:"log_level"`
	LogFormat            string          `json:"log_format"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field present in it into config. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	path := flagx.ConfigFile()
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

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	if c.DatabaseMaxConns > 0 {
		config.DatabaseMaxConns = c.DatabaseMaxConns
	}
	setString(&config.SecretKey, c.SecretKey)
	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	setString(&config.SessionStore, c.SessionStore)
	if c.SessionPurgeInterval != nil {
		config.SessionPurgeInterval = c.SessionPurgeInterval.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	setString(&config.PasswordSalt, c.PasswordSalt)
	if c.Argon2Memory > 0 {
		config.Argon2Memory = c.Argon2Memory
	}
	if c.Argon2Iterations > 0 {
		config.Argon2Iterations = c.Argon2Iterations
	}
	if c.Argon2Parallelism > 0 {
		config.Argon2Parallelism = c.Argon2Parallelism
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
