package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/park285/Cheese-board-client/internal/board"
	appcfg "github.com/park285/Cheese-board-client/internal/config"
	"github.com/park285/Cheese-board-client/internal/gameapi"
	"github.com/park285/Cheese-board-client/internal/msgcat"
	"github.com/park285/Cheese-board-client/internal/obslog"
	"github.com/park285/Cheese-board-client/internal/session"
	"github.com/park285/Cheese-board-client/internal/tui"
)

func main() {
	gameID := flag.Int64("game", 0, "attach to an existing game id")
	ascii := flag.Bool("ascii", false, "draw pieces as letters")
	flag.Parse()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(obslog.ClientDefaults); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()

	msgs, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("messages error: %v", err)
	}

	client := gameapi.NewClient(cfg.ServiceURL,
		gameapi.WithTimeout(cfg.HTTPTimeout),
		gameapi.WithRetry(cfg.HTTPRetry),
		gameapi.WithMaxConnsPerHost(cfg.MaxConnsPerHost),
		gameapi.WithHeaderProvider(cfg.Headers),
	)
	ctrl := session.NewController(client, msgs)

	app := tui.New(ctrl, msgs, board.NewPNGRenderer(), tui.Options{
		SnapshotDir: cfg.SnapshotDir,
		ASCII:       *ascii,
		GameID:      *gameID,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obslog.L().Info("client_start", zap.String("service", cfg.ServiceURL), zap.Int64("game_id", *gameID))
	if err := app.Run(ctx); err != nil {
		obslog.L().Error("client_exit", zap.Error(err))
		log.Fatalf("terminal error: %v", err)
	}
}
