// Command rforecast fits and forecasts univariate series from csv files by delegating the
// estimation to R.
//
//	rforecast [-env .env] [-profile cpu|mem] <command> [flags]
//
// Commands are arima, stl, components, rolling, evaluate and check.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/aouyang1/go-rforecaster/engine"
	"github.com/aouyang1/go-rforecaster/internal/config"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrUnknownCommand = errors.New("unknown command")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil); err != nil {
		log.Error().Err(err).Msg("rforecast failed")
		stop()
		os.Exit(1)
	}
}

type command func(ctx context.Context, app *app, args []string) error

var commands = map[string]command{
	"arima":      runARIMA,
	"stl":        runSTL,
	"components": runComponents,
	"rolling":    runRolling,
	"evaluate":   runEvaluate,
	"check":      runCheck,
}

// app carries what every command needs. A nil runner launches Rscript.
type app struct {
	cfg    *config.Config
	runner engine.Runner
	stdout io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, runner engine.Runner) error {
	fs := flag.NewFlagSet("rforecast", flag.ContinueOnError)
	envFile := fs.String("env", "", "path to a .env file, defaults to ./.env")
	profileMode := fs.String("profile", "", "write a cpu or mem profile")
	profilePath := fs.String("profile-path", ".", "directory to write profiles to")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// the level may only be known after the .env file is read
	setupLogging(stderr, os.Getenv("LOG_LEVEL"))

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}
	setupLogging(stderr, cfg.LogLevel)

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profilePath), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(*profilePath), profile.Quiet).Stop()
	default:
		return fmt.Errorf("unsupported profile mode %q", *profileMode)
	}

	if fs.NArg() == 0 {
		return fmt.Errorf("no command provided, %w", ErrUnknownCommand)
	}
	name := fs.Arg(0)
	cmd, exists := commands[name]
	if !exists {
		return fmt.Errorf("%s, %w", name, ErrUnknownCommand)
	}

	log.Debug().Str("command", name).Str("rscript", cfg.RscriptPath).Msg("running command")
	return cmd(ctx, &app{cfg: cfg, runner: runner, stdout: stdout}, fs.Args()[1:])
}

func setupLogging(w io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
}
