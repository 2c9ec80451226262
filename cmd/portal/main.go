package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goliatone/go-print"
	auth "github.com/gunung/portal-auth"
	"github.com/gunung/portal-auth/config"
	"github.com/gunung/portal-auth/repository"
)

var _ auth.Config = (*config.Config)(nil)

type closer func() error

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root := auth.NewSlogLogger(newSlog(cfg))
	lgr := root.Named("app")

	fmt.Println("============")
	fmt.Println(print.MaybePrettyJSON(cfg.Redacted()))
	fmt.Println("============")

	if cfg.UsesDefaultSecrets() {
		lgr.Warn("running with demo secrets, set JWT_SECRET and ADMIN_PASSWORD before deploying")
	}

	ctx := context.Background()

	users, closeStore, err := newUsers(ctx, cfg)
	if err != nil {
		lgr.Error("credential store failed", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	hasher := auth.NewBcryptHasher(cfg.GetPasswordCost())

	tokens, err := auth.NewTokenServiceFromConfig(cfg, auth.WithTokenLogger(root.Named("tokens")))
	if err != nil {
		lgr.Error("token service failed", "error", err)
		os.Exit(1)
	}

	admin, err := auth.NewAdminCredential(
		cfg.GetAdminEmail(),
		cfg.GetAdminPassword(),
		cfg.GetAdminPasswordHash(),
		hasher,
	)
	if err != nil {
		lgr.Error("admin credential failed", "error", err)
		os.Exit(1)
	}

	gate := auth.NewGate(tokens, users).WithLogger(root.Named("gate"))
	auther := auth.NewAuthenticator(users, hasher, tokens, gate, admin).
		WithLogger(root.Named("auth"))

	app := auth.NewApp(auther, auth.AppConfig{
		Prefix:       cfg.APIPrefix,
		AllowOrigins: cfg.GetCORSAllowOrigins(),
		Debug:        cfg.Debug,
		Logger:       root.Named("http"),
	})

	go func() {
		lgr.Info("server listening", "addr", cfg.Addr(), "env", cfg.Env, "store", cfg.StoreDriver)
		if err := app.Listen(cfg.Addr()); err != nil {
			lgr.Error("server stopped", "error", err)
		}
	}()

	sig := WaitExitSignal()
	lgr.Info("shutting down", "signal", sig.String())

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		lgr.Error("shutdown failed", "error", err)
	}
}

func newUsers(ctx context.Context, cfg *config.Config) (auth.Users, closer, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		repo, db, err := repository.NewSQLiteUsers(ctx, cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		return repo, db.Close, nil
	default:
		return auth.NewMemoryUsers(), func() error { return nil }, nil
	}
}

func newSlog(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
