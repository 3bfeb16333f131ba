package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dright-spec/RightNFT123-sub006/credentials"
	"github.com/dright-spec/RightNFT123-sub006/internal/config"
	"github.com/dright-spec/RightNFT123-sub006/mailer"
	"github.com/dright-spec/RightNFT123-sub006/server"
	"github.com/dright-spec/RightNFT123-sub006/sessions"
	fakeuserrepo "github.com/dright-spec/RightNFT123-sub006/users/repofake"
	"github.com/dright-spec/RightNFT123-sub006/wallet"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	// Users live behind the Store interface; the in-memory fake backs dev
	// and test runs until a persistent store is wired in.
	userStore := fakeuserrepo.NewFakeUserRepo()

	creds, err := credentials.NewService(userStore, pickMailer(c),
		credentials.WithLogger(log.With().Str("component", "credentials").Logger()),
		credentials.WithVerificationBaseURL(c.GetBaseURL()),
	)
	if err != nil {
		return fmt.Errorf("credentials.NewService: %w", err)
	}

	store, err := sessions.NewStore(userStore,
		sessions.WithIdleLimit(c.GetSessionIdleLimit()),
		sessions.WithMaxDuration(c.GetSessionMaxDuration()),
		sessions.WithSweepInterval(c.GetSessionSweepInterval()),
		sessions.WithLogger(log.With().Str("component", "sessions").Logger()),
	)
	if err != nil {
		return fmt.Errorf("sessions.NewStore: %w", err)
	}
	store.StartSweeping()
	defer store.Close()

	resolver, err := wallet.NewResolver(userStore)
	if err != nil {
		return fmt.Errorf("wallet.NewResolver: %w", err)
	}

	gateway, err := server.New(c, creds, store, resolver)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: gateway}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

// pickMailer uses SMTP when an account is configured and falls back to the
// log-only dispatcher otherwise.
func pickMailer(c config.Config) mailer.Mailer {
	if c.GetSmtpAccount() == "" {
		return &mailer.LogMailer{Log: log.With().Str("component", "mailer").Logger()}
	}
	return mailer.NewSMTPMailer(c.GetSmtpHost(), c.GetSmtpPort(), c.GetSmtpAccount(), c.GetSmtpPassword())
}

func listenAndServe(server *http.Server) {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
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
