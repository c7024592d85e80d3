package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appcfg "github.com/park285/Cheese-board-client/internal/config"
	"github.com/park285/Cheese-board-client/internal/devserver"
	"github.com/park285/Cheese-board-client/internal/obslog"
)

func main() {
	cfg, err := appcfg.LoadDevServer()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(obslog.ServerDefaults); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := devserver.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis init error", zap.Error(err))
	}
	defer rdb.Close()

	var opts []devserver.Option
	if cfg.DatabaseURL != "" {
		repo, err := devserver.NewRepository(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("archive init error", zap.Error(err))
		}
		defer repo.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatal("archive schema error", zap.Error(err))
		}
		opts = append(opts, devserver.WithArchive(repo))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           devserver.NewServer(devserver.NewStore(rdb, cfg.GameTTL), opts...),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("devserver_listen", zap.String("addr", cfg.Addr), zap.Bool("archive", cfg.DatabaseURL != ""))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("listen error", zap.Error(err))
	}
}
