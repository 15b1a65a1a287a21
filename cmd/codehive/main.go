package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codehive/codehive/api"
	"github.com/codehive/codehive/auth"
	"github.com/codehive/codehive/config"
	"github.com/codehive/codehive/globals"
	"github.com/codehive/codehive/notify"
	"github.com/codehive/codehive/persistence"
	"github.com/codehive/codehive/project"
	"github.com/codehive/codehive/retention"
	"github.com/codehive/codehive/room"
	"github.com/codehive/codehive/ws"
	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

var (
	configPath     = pflag.StringP("config", "c", "", "path to config file or directory")
	addr           = pflag.String("addr", "localhost:8000", "service address (including port)")
	sslCert        = pflag.String("ssl-cert", "", "SSL cert (optional)")
	sslKey         = pflag.String("ssl-key", "", "SSL key (optional)")
	disableAPI     = pflag.Bool("disable-api", false, "do not serve the REST api")
	disableGateway = pflag.Bool("disable-gateway", false, "do not serve the websocket gateway")
)

func main() {
	pflag.CommandLine.AddFlagSet(config.GetFlagSet())
	pflag.Parse()

	cfg, err := config.ReadConfiguration(*configPath, pflag.CommandLine)
	if err != nil {
		panic(err)
	}
	if cfg.LogLevel != "" {
		globals.AppLogger.SetLevel(hclog.LevelFromString(cfg.LogLevel))
	}

	persister, err := persistence.NewPersister(cfg)
	if err != nil {
		panic(err)
	}
	defer persister.Close()

	authenticator, err := auth.NewAuthenticator(cfg)
	if err != nil {
		panic(err)
	}

	registry := ws.NewRegistry()
	gateway := ws.NewGateway(persister, authenticator, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notifier notify.Notifier
	switch cfg.NotifierConfig.Type {
	case "", "local":
		notifier = notify.NewLocalNotifier(registry)
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.NotifierConfig.RedisAddr,
			Password: cfg.NotifierConfig.RedisPassword,
		})
		notifier = notify.NewRedisNotifier(rdb, cfg.NotifierConfig.RedisChannel)
		if !*disableGateway {
			go notify.RunSubscriber(ctx, rdb, cfg.NotifierConfig.RedisChannel, registry)
		}
	default:
		panic("unknown notifier type: " + cfg.NotifierConfig.Type)
	}
	defer notifier.Close()

	rooms := room.NewService(persister, cfg)
	projects := project.NewService(persister, notifier)

	sweeper := retention.NewSweeper(persister, cfg.RetentionConfig)
	if err := sweeper.Start(); err != nil {
		panic(err)
	}
	defer sweeper.Stop()

	router := api.NewRouter(api.RouterConfig{
		Persister:      persister,
		Authenticator:  authenticator,
		Rooms:          rooms,
		Projects:       projects,
		Gateway:        gateway,
		Sink:           registry,
		InternalSecret: cfg.NotifierConfig.InternalSecret,
		AdminUser:      cfg.AdminUser,
		DisableAPI:     *disableAPI,
		DisableGateway: *disableGateway,
	})

	server := &http.Server{Addr: *addr, Handler: router}
	errChan := make(chan error, 1)
	go func() {
		if *sslCert != "" && *sslKey != "" {
			errChan <- server.ListenAndServeTLS(*sslCert, *sslKey)
		} else {
			errChan <- server.ListenAndServe()
		}
	}()
	globals.AppLogger.Info("listening", "addr", *addr, "api", !*disableAPI, "gateway", !*disableGateway)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globals.AppLogger.Error("stopped listening", "error", err)
		}
	case sig := <-sigChan:
		globals.AppLogger.Info("shutting down", "signal", sig.String())
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			globals.AppLogger.Error("shutdown error", "error", err)
		}
	}
}
