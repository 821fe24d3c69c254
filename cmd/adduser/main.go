// Command adduser registers a user directly against the server database.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/cryptox"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/prompt"
	"github.com/dmitrijs2005/todolist/internal/server/config"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todolist/internal/server/services"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username (prompted if omitted)")
	driver := fs.String("driver", cfg.DatabaseDriver, "Database driver (pgx or sqlite)")
	dsn := fs.String("dsn", cfg.DatabaseDSN, "Database DSN")

	if err := fs.Parse(args); err != nil {
		return err
	}

	reader := bufio.NewReader(stdin)

	if *username == "" {
		*username, err = prompt.Line(reader, "Username", stdout)
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}

	password, err := prompt.Password(stdin, reader, stdout)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	defer common.WipeByteArray(password)

	rm, err := repomanager.New(*driver)
	if err != nil {
		return err
	}

	salt, err := cryptox.DecodeSalt(cfg.PasswordSalt)
	if err != nil {
		return err
	}

	db, err := repomanager.Open(ctx, *driver, *dsn, 1)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	params := cryptox.DefaultArgon2Params()
	params.Memory = cfg.Argon2Memory
	params.Iterations = cfg.Argon2Iterations
	params.Parallelism = cfg.Argon2Parallelism
	if err := params.Validate(); err != nil {
		return err
	}

	logger := logging.New(stderr, "warn", "text")
	sessions := services.NewSessionService(rm.Sessions(db), cfg.SessionTTL, logger)
	users := services.NewUserService(db, rm, cryptox.NewPasswordCodec(params, salt), sessions, logger)

	user, err := users.Register(ctx, *username, string(password))
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return fmt.Errorf("user %s already exists", *username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "\nUser %s created successfully with ID %s\n", user.UserName, user.ID)
	return nil
}
