package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"play_reviews/internal/adapters/output"
	redisad "play_reviews/internal/adapters/redis"
	"play_reviews/internal/domain"
	"play_reviews/internal/shared"
	"play_reviews/internal/storage/file"
	mysqlrepo "play_reviews/internal/storage/mysql"
)

var checkCmd = &cobra.Command{
	Use:   "check --config <path>",
	Short: "Validates the configuration and probes the app's store page.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := output.NewWriter(os.Stdout)
		cfg, err := loadConfig()
		if err != nil {
			return out.WriteConnectionStatus(false, []domain.FieldError{{Key: "config", Value: configPath, ErrorText: err.Error()}})
		}
		res := newSource(shared.Load()).Check(cmd.Context(), cfg)
		return out.WriteConnectionStatus(res.OK, res.Failures)
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Prints the catalog of streams.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.NewWriter(os.Stdout).WriteCatalog(newSource(shared.Load()).Discover())
	},
}

var readCmd = &cobra.Command{
	Use:   "read --config <path> [--state <path>]",
	Short: "Emits new reviews and the resulting state.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env := shared.Load()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, closeStore, err := openStateStore(env)
		if err != nil {
			return err
		}
		defer closeStore()

		var prev *domain.State
		if store != nil {
			st, ok, err := store.Load(ctx, cfg.AppID)
			if err != nil {
				return fmt.Errorf("load state: %w", err)
			}
			if ok {
				prev = &st
			}
		}

		next, err := newSource(env).Read(ctx, cfg, prev, output.NewWriter(os.Stdout))
		if err != nil {
			// the previous state stays in place; the next run starts from it
			return err
		}
		if store == nil {
			return nil
		}
		if err := store.Save(ctx, cfg.AppID, next); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		log.Info().Str("backend", env.StateBackend).Str("at", next.At).Msg("state saved")
		return nil
	},
}

// openStateStore returns nil when the file backend has no --state path.
func openStateStore(env shared.Config) (domain.StateStore, func(), error) {
	noop := func() {}
	switch env.StateBackend {
	case shared.BackendRedis:
		s := redisad.New(env.RedisAddr, env.RedisPass, env.RedisDB)
		return s, func() { _ = s.Close() }, nil

	case shared.BackendMySQL:
		db, err := sql.Open("mysql", env.MySQLDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("db.Ping: %w", err)
		}
		log.Info().Msg("db ping ok")
		return mysqlrepo.New(db), func() { _ = db.Close() }, nil

	case shared.BackendFile:
		if statePath == "" {
			return nil, noop, nil
		}
		return file.New(statePath), noop, nil
	}
	return nil, noop, errors.New("unknown state backend " + env.StateBackend)
}
