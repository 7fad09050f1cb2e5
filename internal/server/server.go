// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server assembles the HTTP API and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mainda/accounts/internal/clock"
	"codeberg.org/mainda/accounts/internal/config"
	"codeberg.org/mainda/accounts/internal/database"
	"codeberg.org/mainda/accounts/internal/handlers"
	"codeberg.org/mainda/accounts/internal/i18n"
	"codeberg.org/mainda/accounts/internal/repository"
	authsvc "codeberg.org/mainda/accounts/internal/services/auth"
	"codeberg.org/mainda/accounts/internal/services/email"
	"codeberg.org/mainda/accounts/internal/services/password"
	"codeberg.org/mainda/accounts/internal/services/token"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	DB     handlers.Pinger
	Auth   *authsvc.Service
	Tokens *token.Service
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	setupLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"database", cfg.Database.Driver,
		"mail", cfg.Mail.Driver,
	)

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	sender, err := newSender(ctx, cfg.Mail)
	if err != nil {
		return fmt.Errorf("failed to set up mail: %w", err)
	}

	deps, err := NewDeps(cfg, repository.New(db), sender, clock.Real{})
	if err != nil {
		return err
	}

	return startWithGracefulShutdown(ctx, NewEcho(cfg, deps), cfg)
}

// NewDeps wires the services over repo and sender.
func NewDeps(cfg *config.Config, repo *repository.Repository, sender email.Sender, clk clock.Clock) (Deps, error) {
	tokens, err := token.NewService(token.Config{
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
	}, clk)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to create token service: %w", err)
	}

	mailer, err := email.NewService(sender, email.Links{
		VerifyEmailURL:   cfg.Client.VerifyEmailURL,
		ResetPasswordURL: cfg.Client.ResetPasswordURL,
	})
	if err != nil {
		return Deps{}, fmt.Errorf("failed to create mail service: %w", err)
	}

	return Deps{
		DB:     repo,
		Auth:   authsvc.NewService(repo, password.New(), tokens, mailer, clk),
		Tokens: tokens,
	}, nil
}

// NewEcho builds the configured echo instance with all routes.
func NewEcho(cfg *config.Config, deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler
	e.Server.ReadHeaderTimeout = 10 * time.Second

	setupMiddleware(e, cfg)

	h := handlers.New(deps.DB, deps.Auth, handlers.CookieConfig{
		Secure:     cfg.Cookie.Secure,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	setupRoutes(e, h, deps.Tokens)

	return e
}

func newSender(ctx context.Context, cfg config.MailConfig) (email.Sender, error) {
	switch cfg.Driver {
	case "smtp":
		return email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
			FromName: cfg.FromName,
			TLS:      cfg.SMTPTLS,
		})
	case "ses":
		return email.NewSESSender(ctx, cfg.SESRegion, cfg.From, cfg.FromName)
	case "log":
		slog.Warn("mail driver is log; emails are not delivered")
		return email.LogSender{}, nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errChan := make(chan error, 1)
	go func() {
		slog.Info("server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
