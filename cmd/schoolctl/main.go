package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-school-portal/auth"
	"github.com/jrsteele09/go-school-portal/internal/config"
	"github.com/jrsteele09/go-school-portal/school"
	"github.com/jrsteele09/go-school-portal/sessions/filerepo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const httpTimeout = 30 * time.Second

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	c := config.New()
	setupLogging(c)

	cli, err := newCommandLine(c)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	defer cli.manager.Close()

	if err := cli.run(os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		cli.manager.Close()
		os.Exit(1)
	}
}

func setupLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.GetLogLevel()))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func newCommandLine(c config.Config) (*commandLine, error) {
	repo, err := filerepo.New(c.GetSessionFile())
	if err != nil {
		return nil, err
	}

	opts := []auth.ManagerOption{
		auth.WithHTTPClient(&http.Client{Timeout: httpTimeout}),
		auth.WithCheckInterval(c.GetCheckInterval()),
	}
	if !c.GetDedupeRefresh() {
		opts = append(opts, auth.WithConcurrentRefresh())
	}
	manager, err := auth.NewManager(c.GetBaseURL(), repo, opts...)
	if err != nil {
		return nil, err
	}

	return &commandLine{
		cfg:     c,
		manager: manager,
		school:  school.NewClient(manager),
		out:     os.Stdout,
	}, nil
}

func listenAndServe(server *http.Server, errc chan<- error) {
	log.Info().Str("addr", server.Addr).Msg("portal listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errc <- fmt.Errorf("server.ListenAndServe %w", err)
	}
}

func waitForStopSignal(errc <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		return nil
	case err := <-errc:
		return err
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
