// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Mail     MailConfig
	Client   ClientConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	Driver string // sqlite, postgres
	DSN    string
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type CookieConfig struct {
	Secure bool
}

type MailConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Driver       string // smtp, ses, log
	From         string
	FromName     string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      bool
	SESRegion    string
}

// ClientConfig holds the frontend pages that flow-token links point at.
type ClientConfig struct {
	VerifyEmailURL   string
	ResetPasswordURL string
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			Driver: cmd.String("database-driver"),
			DSN:    cmd.String("database-dsn"),
		},
		JWT: JWTConfig{
			AccessSecret:  cmd.String("jwt-access-secret"),
			RefreshSecret: cmd.String("jwt-refresh-secret"),
			AccessTTL:     cmd.Duration("jwt-access-ttl"),
			RefreshTTL:    cmd.Duration("jwt-refresh-ttl"),
			Issuer:        cmd.String("jwt-issuer"),
		},
		Cookie: CookieConfig{
			Secure: cmd.Bool("cookie-secure"),
		},
		Mail: MailConfig{
			Driver:       cmd.String("mail-driver"),
			From:         cmd.String("mail-from"),
			FromName:     cmd.String("mail-from-name"),
			SMTPHost:     cmd.String("smtp-host"),
			SMTPPort:     int(cmd.Int("smtp-port")),
			SMTPUsername: cmd.String("smtp-username"),
			SMTPPassword: cmd.String("smtp-password"),
			SMTPTLS:      cmd.Bool("smtp-tls"),
			SESRegion:    cmd.String("ses-region"),
		},
		Client: ClientConfig{
			VerifyEmailURL:   cmd.String("client-verify-email-url"),
			ResetPasswordURL: cmd.String("client-reset-password-url"),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}

	applyClientDefaults(cfg)

	return cfg
}

// applyClientDefaults points flow links at the API host when no frontend is configured.
func applyClientDefaults(cfg *Config) {
	base := strings.TrimSuffix(cfg.Server.BaseURL, "/")
	if cfg.Client.VerifyEmailURL == "" {
		cfg.Client.VerifyEmailURL = base + "/verify-email"
	}
	if cfg.Client.ResetPasswordURL == "" {
		cfg.Client.ResetPasswordURL = base + "/reset-password"
	}
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port

	if port == 80 {
		return fmt.Sprintf("http://%s", host)
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

// Validate checks settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.AccessSecret == "" {
		errs = append(errs, errors.New("jwt access secret is required"))
	}
	if c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("jwt refresh secret is required"))
	}
	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("jwt access and refresh secrets must differ"))
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("jwt token lifetimes must be positive"))
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}

	switch c.Mail.Driver {
	case "log":
	case "smtp":
		if c.Mail.SMTPHost == "" {
			errs = append(errs, errors.New("smtp host is required for the smtp mail driver"))
		}
	case "ses":
		if c.Mail.SESRegion == "" {
			errs = append(errs, errors.New("ses region is required for the ses mail driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mail driver %q", c.Mail.Driver))
	}
	if c.Mail.Driver != "log" && c.Mail.From == "" {
		errs = append(errs, errors.New("mail from address is required"))
	}

	return errors.Join(errs...)
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL for the application",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-driver",
			Value:   "sqlite",
			Usage:   "Database driver (sqlite, postgres)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DRIVER"), toml.TOML("database.driver", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/accounts.db",
			Usage:   "Database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		// JWT flags
		&cli.StringFlag{
			Name:    "jwt-access-secret",
			Usage:   "HMAC secret for access tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_ACCESS_SECRET"), toml.TOML("jwt.access_secret", configFile)),
		},
		&cli.StringFlag{
			Name:    "jwt-refresh-secret",
			Usage:   "HMAC secret for refresh tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_REFRESH_SECRET"), toml.TOML("jwt.refresh_secret", configFile)),
		},
		&cli.DurationFlag{
			Name:    "jwt-access-ttl",
			Value:   15 * time.Minute,
			Usage:   "Access token lifetime",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_ACCESS_TTL"), toml.TOML("jwt.access_ttl", configFile)),
		},
		&cli.DurationFlag{
			Name:    "jwt-refresh-ttl",
			Value:   7 * 24 * time.Hour,
			Usage:   "Refresh token lifetime",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_REFRESH_TTL"), toml.TOML("jwt.refresh_ttl", configFile)),
		},
		&cli.StringFlag{
			Name:    "jwt-issuer",
			Value:   "mainda-accounts",
			Usage:   "Issuer claim for bearer tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("JWT_ISSUER"), toml.TOML("jwt.issuer", configFile)),
		},
		&cli.BoolFlag{
			Name:    "cookie-secure",
			Usage:   "Mark token cookies Secure (HTTPS only)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("COOKIE_SECURE"), toml.TOML("cookie.secure", configFile)),
		},
		// Mail flags
		&cli.StringFlag{
			Name:    "mail-driver",
			Value:   "log",
			Usage:   "Mail driver (smtp, ses, log)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_DRIVER"), toml.TOML("mail.driver", configFile)),
		},
		&cli.StringFlag{
			Name:    "mail-from",
			Usage:   "Sender address",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_FROM"), toml.TOML("mail.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "mail-from-name",
			Value:   "Mainda",
			Usage:   "Sender display name",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAIL_FROM_NAME"), toml.TOML("mail.from_name", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP server host",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("mail.smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP server port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("mail.smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), toml.TOML("mail.smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), toml.TOML("mail.smtp.password", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("mail.smtp.tls", configFile)),
		},
		&cli.StringFlag{
			Name:    "ses-region",
			Usage:   "AWS region for the SES mail driver",
			Sources: cli.NewValueSourceChain(cli.EnvVar("AWS_REGION"), toml.TOML("mail.ses.region", configFile)),
		},
		// Client flags
		&cli.StringFlag{
			Name:    "client-verify-email-url",
			Usage:   "Frontend page receiving ?token= for email verification",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CLIENT_VERIFY_EMAIL_URL"), toml.TOML("client.verify_email_url", configFile)),
		},
		&cli.StringFlag{
			Name:    "client-reset-password-url",
			Usage:   "Frontend page receiving ?token= for password reset",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CLIENT_RESET_PASSWORD_URL"), toml.TOML("client.reset_password_url", configFile)),
		},
	}
}
