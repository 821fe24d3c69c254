package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/todolist/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-D string   database driver: pgx or sqlite
//	-d string   database DSN
//	-s string   cookie signing secret
//	-t int      session TTL in minutes, 0 = until the browser session ends
//	-S string   session store: db, memory or redis
//	-r string   redis address
//	-l string   log level
//
// os.Args is filtered with flagx.FilterArgs first so -c/-config and flags
// owned by other components are not rejected.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-D", "-d", "-s", "-t", "-S", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "D", config.DatabaseDriver, "database driver (pgx|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session ttl (in minutes, 0 = browser session)")

	fs.StringVar(&config.SessionStore, "S", config.SessionStore, "session store (db|memory|redis)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		}
	})
}
