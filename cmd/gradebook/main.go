package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/openmarks/gradebook/core/auth"
	"github.com/openmarks/gradebook/core/config"
	"github.com/openmarks/gradebook/core/credentials"
	"github.com/openmarks/gradebook/core/server"
	"github.com/openmarks/gradebook/core/session"
	"github.com/openmarks/gradebook/core/sessiontransport"
	"github.com/openmarks/gradebook/handler"
	"github.com/openmarks/gradebook/integration/database/mongo"
	"github.com/openmarks/gradebook/pkg/logger"
)

type appConfig struct {
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	EnsureIndexes bool   `env:"MONGODB_ENSURE_INDEXES" envDefault:"true"`
}

func main() {
	var (
		appCfg       appConfig
		serverCfg    server.Config
		mongoCfg     mongo.Config
		sessionCfg   session.Config
		transportCfg sessiontransport.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&serverCfg)
	config.MustLoad(&mongoCfg)
	config.MustLoad(&sessionCfg)
	config.MustLoad(&transportCfg)

	log := newLogger(appCfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, appCfg, serverCfg, mongoCfg, sessionCfg, transportCfg); err != nil {
		log.Error("exiting", logger.Error(err))
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	log *slog.Logger,
	appCfg appConfig,
	serverCfg server.Config,
	mongoCfg mongo.Config,
	sessionCfg session.Config,
	transportCfg sessiontransport.Config,
) error {
	client, err := mongo.New(ctx, mongoCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error("mongodb disconnect", logger.Error(err))
		}
	}()

	db := client.Database(mongoCfg.Database)
	if appCfg.EnsureIndexes {
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			return err
		}
	}

	users := mongo.NewUserStore(db)
	sessions := mongo.NewSessionStore(db)
	tx := mongo.NewTxRunner(client)

	creds := credentials.NewService(users)
	resolver := session.NewResolver(sessions, users, sessionCfg, log)
	authSvc := auth.NewService(users, creds, sessions, sessionCfg, log)
	codec := sessiontransport.NewCodecFromConfig(transportCfg)

	api := handler.New(authSvc, resolver, tx, codec, log)
	h := handler.RequestID(handler.Logging(log)(api.Routes(mongo.Healthcheck(client))))

	srv, err := server.New(serverCfg, log)
	if err != nil {
		return err
	}
	return srv.Run(ctx, h)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
