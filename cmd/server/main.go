// cmd/server is the main entrypoint for a kvnest node.
//
// Configuration loads from the environment (see internal/config), with an
// optional YAML file for hot-reloading the two interval settings while
// the process is running.
//
// Example:
//
//	STORE_CAPACITY=500 LOG_FILE=/var/kvnest/wal.log ./server --addr :8080
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agilira/kvnest/internal/api"
	"github.com/agilira/kvnest/internal/config"
	"github.com/agilira/kvnest/internal/store"
)

func main() {
	addr := flag.String("addr", "", "listen address (overrides KVSTORE_ADDR)")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	s, err := store.New(store.Options{
		Capacity:           cfg.Capacity,
		LogFile:            cfg.LogFile,
		CleanupInterval:    cfg.CleanupInterval,
		CompactionInterval: cfg.CompactionInterval,
		MaxLogSize:         cfg.MaxLogSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}

	if err := s.Initialize(); err != nil {
		log.Fatal().Err(err).Msg("recover store")
	}

	hotReload, err := config.WatchFile(cfg.ConfigFile, s)
	if err != nil {
		log.Fatal().Err(err).Msg("watch config file")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(api.Logger(), api.Recovery())
	api.NewHandler(s).Register(router)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	if err := hotReload.Stop(); err != nil {
		log.Error().Err(err).Msg("stop config watcher")
	}
	if err := s.Shutdown(); err != nil {
		log.Error().Err(err).Msg("store shutdown error")
	}
}
