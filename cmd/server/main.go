package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/booklyhq/bookly/auth"
	"github.com/booklyhq/bookly/config"
	"github.com/booklyhq/bookly/mailer"
	"github.com/booklyhq/bookly/repository"
	"github.com/booklyhq/bookly/repository/migrations"
	"github.com/booklyhq/bookly/server"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("bookly"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := config.Load()

	fmt.Println("============")
	fmt.Println(print.MaybeHighlightJSON(cfg))
	fmt.Println("============")

	ctx := context.Background()

	if err := run(ctx, cfg, lgr); err != nil {
		lgr.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, lgr *glog.BaseLogger) error {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DatabaseDSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	if err := migrations.Run(ctx, sqldb, "postgres"); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "migrations failed")
	}

	repos := repository.NewManager(db)
	repos.MustValidate()

	blocklist, closeBlocklist, err := makeBlocklist(cfg, lgr)
	if err != nil {
		return err
	}
	defer closeBlocklist()

	mail, err := makeMailer(cfg, lgr)
	if err != nil {
		return err
	}

	auther := auth.NewAuthenticator(repos.Users(), cfg).
		WithLogger(lgr.GetLogger("auth")).
		WithBlocklist(blocklist).
		WithDeterministicIDs(cfg.DeterministicIDs)

	if mail != nil {
		auther.WithMailSender(mail)
	}

	guard := auth.NewGuard(auther.TokenService(), blocklist).
		WithLogger(lgr.GetLogger("guard"))

	srv := server.New(server.Options{
		Auther: auther,
		Guard:  guard,
		Repos:  repos,
		Logger: lgr.GetLogger("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		lgr.Info("Server listening", "addr", cfg.HTTPAddr)
		errCh <- srv.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-exitSignal():
		lgr.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// makeBlocklist picks the Redis-backed revocation store when a Redis URL is
// configured and falls back to the in-process one otherwise.
func makeBlocklist(cfg *config.Config, lgr *glog.BaseLogger) (auth.Blocklist, func(), error) {
	if cfg.RedisURL == "" {
		mem := auth.NewMemoryBlocklist()
		return mem, func() { mem.Close() }, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CategoryBadInput, "invalid redis URL")
	}

	client := redis.NewClient(opts)
	lgr.Info("Using redis revocation store", "addr", opts.Addr)

	return auth.NewRedisBlocklist(client), func() { client.Close() }, nil
}

// makeMailer wires the Brevo transport with the SMTP fallback. With no mail
// credentials configured the auth flows run with their default no-op sender.
func makeMailer(cfg *config.Config, lgr *glog.BaseLogger) (*mailer.Service, error) {
	if cfg.BrevoAPIKey == "" && cfg.SMTPHost == "" {
		lgr.Warn("No mail transport configured, account email disabled")
		return nil, nil
	}

	smtpTransport := mailer.NewSMTPTransport(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Pass:     cfg.SMTPPass,
		From:     cfg.MailSenderAddr,
		Security: cfg.SMTPSecurity,
	})

	opts := []mailer.Option{
		mailer.WithLogger(lgr.GetLogger("mail")),
	}

	if cfg.BrevoAPIKey == "" {
		return mailer.NewService(smtpTransport, opts...)
	}

	primary := mailer.NewBrevoTransport(mailer.BrevoConfig{
		APIKey:     cfg.BrevoAPIKey,
		SenderName: cfg.MailSenderName,
		SenderMail: cfg.MailSenderAddr,
		Timeout:    cfg.MailTimeout,
	})

	if cfg.SMTPHost != "" {
		opts = append(opts, mailer.WithFallback(smtpTransport))
	}

	return mailer.NewService(primary, opts...)
}

func exitSignal() chan os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return ch
}
