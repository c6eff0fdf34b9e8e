package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/wordduel/config"
	"github.com/domino14/wordduel/lexicon"
	"github.com/domino14/wordduel/rating"
	"github.com/domino14/wordduel/shell"
)

var (
	GitVersion string
)

func main() {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)
	fmt.Println("wordduel", GitVersion)

	cfg := &config.Config{}
	// Flags come before any command to run; see `help`.
	args := os.Args[1:]
	var cmdArgs []string
	for i, a := range args {
		if !strings.HasPrefix(a, "-") {
			args, cmdArgs = args[:i], args[i:]
			break
		}
	}
	if err := cfg.Load(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.AdjustRelativePaths(exPath)

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if cfg.Debug() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
		logger = zerolog.New(output).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")

	lex, err := lexicon.FromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("loading-lexicon")
	}
	backend, err := rating.OpenBackend(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("opening-rating-backend")
	}
	ratings := rating.NewStore(context.Background(), backend)

	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		close(idleConnsClosed)
	}()

	sc, err := shell.NewShellController(cfg, lex, ratings)
	if err != nil {
		log.Fatal().Err(err).Msg("starting-shell")
	}
	if len(cmdArgs) == 0 {
		go sc.Loop(sig)
	} else {
		sc.Execute(sig, strings.Join(cmdArgs, " "))
		sig <- syscall.SIGINT
	}

	<-idleConnsClosed
	sc.Cleanup()
}
