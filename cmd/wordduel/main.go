package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/wordduel/config"
	"github.com/domino14/wordduel/lexicon"
	"github.com/domino14/wordduel/lobby"
	"github.com/domino14/wordduel/natsbus"
	"github.com/domino14/wordduel/rating"
)

var (
	GitVersion string
)

const (
	GracefulShutdownTimeout = 20 * time.Second
)

func setupLogging(cfg *config.Config) {
	level := zerolog.InfoLevel
	if cfg.Debug() {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	var logger zerolog.Logger
	if cfg.GetBool(config.ConfigLogPretty) {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		output.FormatLevel = func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		}
		logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
}

func main() {
	// Determine the directory of the executable. We will use this
	// directory to find the data files if an absolute path is not
	// provided for these!
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.AdjustRelativePaths(exPath)
	setupLogging(cfg)
	log.Info().Str("version", GitVersion).Str("exPath", exPath).Msg("starting")

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("exiting")
	}
	log.Info().Msg("server gracefully shut down")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lex, err := lexicon.FromConfig(cfg)
	if err != nil {
		return err
	}

	backend, err := rating.OpenBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening rating backend: %w", err)
	}
	ratings := rating.NewStore(ctx, backend)
	defer func() {
		if err := ratings.Close(); err != nil {
			log.Err(err).Msg("closing-ratings")
		}
	}()

	nc, err := natsbus.Connect(cfg.GetString(config.ConfigNatsURL))
	if err != nil {
		return fmt.Errorf("connecting to nats: %w", err)
	}
	defer nc.Close()
	router := natsbus.NewRouter(nc, cfg.GetString(config.ConfigNatsSubjectPrefix))

	mgr := lobby.NewManager(lobby.Options{
		Lexicon:           lex,
		Events:            router,
		Ratings:           ratings,
		TimeBudget:        cfg.GetDuration(config.ConfigTimeBudget),
		TickInterval:      cfg.GetDuration(config.ConfigTickInterval),
		MatchScanInterval: cfg.GetDuration(config.ConfigMatchScanInterval),
		DisconnectGrace:   cfg.GetDuration(config.ConfigDisconnectGrace),
	})
	defer mgr.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mgr.Queue().Run(gctx)
	})
	g.Go(func() error {
		return router.Serve(gctx, nc, mgr)
	})

	<-gctx.Done()
	log.Info().Msg("got quit signal...")
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	case <-time.After(GracefulShutdownTimeout):
		return errors.New("timed out waiting for shutdown")
	}
	return nil
}
