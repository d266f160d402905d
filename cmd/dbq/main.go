// Command dbq runs one statement against Postgres through dbconn.
//
// Connection parameters come from DBCONN_* environment variables (a .env
// file in the working directory is loaded first when present):
//
//	dbq 'SELECT id, name FROM users WHERE id = $1' 7
//	dbq --exec 'DELETE FROM sessions WHERE expires_at < now()'
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vango-go/dbconn"
)

func main() {
	os.Exit(mainExitCode())
}

func mainExitCode() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cmd := newRootCmd(dbconn.LoadConfig)
	if err := cmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// loadDotEnv loads path into the environment; a missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("dbq: load %s: %w", path, err)
	}
	return nil
}

type rootOptions struct {
	exec      bool
	logLevel  string
	logFormat string
}

func newRootCmd(loadConfig func() (dbconn.Config, error)) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "dbq [flags] SQL [ARGS...]",
		Short:         "Run one parameterized statement and print the rows as JSON",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), loadConfig, opts, args[0], args[1:])
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "dbq:", err)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.exec, "exec", false, "run as a statement that returns no rows")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	return cmd
}

func run(ctx context.Context, stdout, stderr io.Writer, loadConfig func() (dbconn.Config, error), opts rootOptions, sql string, rawArgs []string) error {
	logger, err := newLogger(stderr, opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Logger = logger

	conn := dbconn.New(cfg)
	if err := conn.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := conn.Stop(ctx); err != nil {
			logger.Warn("stop failed", "error", err)
		}
	}()

	args := make([]any, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = a
	}

	if opts.exec {
		return conn.Exec(ctx, sql, args...)
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	hopts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
