package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/park285/Cheese-board-client/internal/board"
	appcfg "github.com/park285/Cheese-board-client/internal/config"
	"github.com/park285/Cheese-board-client/internal/gameapi"
	"github.com/park285/Cheese-board-client/internal/msgcat"
	"github.com/park285/Cheese-board-client/internal/session"
)

func main() {
	gameID := flag.Int64("game", 0, "load this game instead of creating one")
	pngPath := flag.String("png", "", "also write the board as PNG to this path")
	flag.Parse()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatal(err)
	}
	msgs, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("messages error: %v", err)
	}

	client := gameapi.NewClient(cfg.ServiceURL,
		gameapi.WithTimeout(cfg.HTTPTimeout),
		gameapi.WithHeaderProvider(cfg.Headers),
	)
	ctrl := session.NewController(client, msgs)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if *gameID > 0 {
		err = ctrl.LoadGame(ctx, *gameID)
	} else {
		err = ctrl.CreateGame(ctx)
	}
	if err != nil {
		log.Fatalf("game service error: %v", err)
	}

	s := ctrl.Snapshot()
	for _, line := range session.StatusLines(s, msgs) {
		fmt.Println(line)
	}
	fmt.Print(board.RenderText(board.Render(s.Props())))
	log.Printf("figures=%d", len(s.Figures))

	if *pngPath == "" {
		return
	}
	lines := session.StatusLines(s, msgs)
	opts := board.Options{Title: lines[0]}
	if len(lines) > 1 {
		opts.Turn = lines[1]
	}
	data, err := board.NewPNGRenderer().RenderPNG(ctx, board.Render(s.Props()), opts)
	if err != nil {
		log.Fatalf("render error: %v", err)
	}
	if err := os.WriteFile(*pngPath, data, 0o644); err != nil {
		log.Fatalf("write png: %v", err)
	}
	log.Printf("png written: %s (%d bytes)", *pngPath, len(data))
}
