package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/shortly/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := loadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Error().Err(err).Msg("configuration failed")
		os.Exit(1)
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		// Exit code policy: 2 when a request produced no summary, 1 for
		// configuration and other errors.
		os.Exit(app.ExitCode(err))
	}
}

// loadConfig layers defaults, the config file, the environment (after
// dotenv files) and finally explicit flags.
func loadConfig(args []string, stderr io.Writer) (app.Config, error) {
	configPath := preScan(args, "config")
	envPaths := preScan(args, "env")
	if envPaths == "" {
		envPaths = ".env"
	}
	if err := app.LoadEnvFiles(strings.Split(envPaths, ",")...); err != nil {
		return app.Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := app.DefaultConfig()
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	fs := flag.NewFlagSet("shortly", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("config", configPath, "Path to a YAML or JSON config file")
	fs.String("env", envPaths, "Comma-separated dotenv files to load")
	showVersion := fs.Bool("version", false, "Print version and exit")
	app.BindFlags(fs, &cfg)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: shortly [flags] <url|file|->\n       shortly -i [flags]\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}
	if *showVersion {
		fmt.Fprintf(stderr, "shortly %s (%s, %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		return app.Config{}, flag.ErrHelp
	}
	if fs.NArg() > 0 {
		cfg.Target = fs.Arg(0)
	}
	if cfg.Target == "" && fs.NArg() == 0 {
		cfg.Interactive = cfg.Interactive || !stdinPiped()
	}
	return cfg, nil
}

// preScan finds the value of -name or --name before full flag parsing.
func preScan(args []string, name string) string {
	for i := 0; i < len(args); i++ {
		a := strings.TrimLeft(args[i], "-")
		if a == args[i] {
			continue
		}
		if a == name && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(a, name+"="); ok {
			return v
		}
	}
	return ""
}

// stdinPiped reports whether stdin is a pipe or file rather than a terminal.
func stdinPiped() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice == 0
}

func run(ctx context.Context, cfg app.Config) error {
	if !cfg.Interactive && cfg.Target == "" {
		cfg.Target = "-"
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
