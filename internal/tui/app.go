package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/park285/Cheese-board-client/internal/board"
	"github.com/park285/Cheese-board-client/internal/msgcat"
	"github.com/park285/Cheese-board-client/internal/obslog"
	"github.com/park285/Cheese-board-client/internal/session"
)

type Options struct {
	SnapshotDir string
	ASCII       bool
	// GameID attaches to an existing game on start instead of waiting for n.
	GameID int64
}

// App wires the controller to the terminal. Controller calls run one at a
// time on a worker goroutine so the UI never blocks on the network.
type App struct {
	app    *tview.Application
	ctrl   *session.Controller
	msgs   *msgcat.Catalog
	png    board.PNGRenderer
	opts   Options
	board  *BoardView
	status *tview.TextView

	actions chan func(context.Context)
}

func New(ctrl *session.Controller, msgs *msgcat.Catalog, png board.PNGRenderer, opts Options) *App {
	a := &App{
		app:     tview.NewApplication(),
		ctrl:    ctrl,
		msgs:    msgs,
		png:     png,
		opts:    opts,
		board:   NewBoardView(),
		status:  tview.NewTextView().SetDynamicColors(true).SetWrap(true),
		actions: make(chan func(context.Context), 16),
	}
	a.board.SetASCII(opts.ASCII)
	a.status.SetBorder(true).SetTitle(" status ")

	frame := tview.NewFlex().AddItem(a.board, 0, 1, true)
	frame.SetBorder(true).SetTitle(" chess ")
	layout := tview.NewFlex().
		AddItem(frame, labelWidth+board.Size*cellWidth+2, 0, true).
		AddItem(a.status, 0, 1, false)

	a.board.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		if action != tview.MouseLeftClick {
			return action, event
		}
		if at, ok := a.board.CellAt(event.Position()); ok {
			a.enqueue(func(ctx context.Context) { _ = a.ctrl.Click(ctx, at) })
			return action, nil
		}
		return action, event
	})
	a.app.SetInputCapture(a.handleKey)
	a.app.EnableMouse(true)
	a.app.SetRoot(layout, true)

	a.apply(ctrl.Snapshot())
	return a
}

// Run blocks until the user quits or ctx ends.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := a.ctrl.Subscribe(func(s session.State) {
		a.app.QueueUpdateDraw(func() { a.apply(s) })
	})
	defer unsubscribe()

	go a.worker(ctx)
	go func() {
		<-ctx.Done()
		a.app.Stop()
	}()

	if a.opts.GameID > 0 {
		id := a.opts.GameID
		a.enqueue(func(ctx context.Context) { _ = a.ctrl.LoadGame(ctx, id) })
	}
	return a.app.Run()
}

func (a *App) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-a.actions:
			fn(ctx)
		}
	}
}

func (a *App) enqueue(fn func(context.Context)) {
	select {
	case a.actions <- fn:
	default:
		obslog.L().Warn("tui_action_dropped", zap.Int("queued", len(a.actions)))
	}
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		a.enqueue(func(ctx context.Context) { _ = a.ctrl.SelectCell(ctx, nil) })
		return nil
	case tcell.KeyUp:
		a.moveCursor(0, 1)
		return nil
	case tcell.KeyDown:
		a.moveCursor(0, -1)
		return nil
	case tcell.KeyLeft:
		a.moveCursor(-1, 0)
		return nil
	case tcell.KeyRight:
		a.moveCursor(1, 0)
		return nil
	case tcell.KeyEnter:
		at := a.board.Cursor()
		a.enqueue(func(ctx context.Context) { _ = a.ctrl.Click(ctx, at) })
		return nil
	case tcell.KeyRune:
	default:
		return event
	}

	switch event.Rune() {
	case 'n':
		a.enqueue(func(ctx context.Context) { _ = a.ctrl.CreateGame(ctx) })
	case 'r':
		a.enqueue(func(ctx context.Context) { _ = a.ctrl.RefreshGame(ctx) })
	case 'p':
		a.enqueue(a.saveSnapshot)
	case 'q':
		a.app.Stop()
	default:
		return event
	}
	return nil
}

func (a *App) moveCursor(dx, dy int) {
	a.board.MoveCursor(dx, dy)
	a.apply(a.ctrl.Snapshot())
}

// apply must run on the UI goroutine.
func (a *App) apply(s session.State) {
	a.board.SetGrid(board.Render(s.Props()))
	a.status.SetText(statusText(s, a.msgs))
}

func statusText(s session.State, msgs *msgcat.Catalog) string {
	var b strings.Builder
	for _, line := range session.StatusLines(s, msgs) {
		b.WriteString(tview.Escape(line))
		b.WriteByte('\n')
	}
	if s.Notice.Text != "" {
		color := "green"
		if s.Notice.Kind == session.NoticeError {
			color = "red"
		}
		fmt.Fprintf(&b, "\n[%s]%s[-]\n", color, tview.Escape(s.Notice.Text))
	}
	b.WriteString("\n[gray]")
	b.WriteString(tview.Escape(msgs.Text("help", nil)))
	b.WriteString("[-]")
	return b.String()
}

func (a *App) saveSnapshot(ctx context.Context) {
	path, err := WriteSnapshot(ctx, a.png, a.ctrl.Snapshot(), a.msgs, a.opts.SnapshotDir)
	if err != nil {
		obslog.L().Warn("snapshot_failed", zap.Error(err))
		a.ctrl.SetNotice(session.Notice{Kind: session.NoticeError, Text: a.msgs.Text("notice.snapshot_failed", map[string]any{"Err": err.Error()})})
		return
	}
	a.ctrl.SetNotice(session.Notice{Kind: session.NoticeInfo, Text: a.msgs.Text("notice.snapshot_saved", map[string]any{"Path": path})})
}

// WriteSnapshot renders s to a PNG file in dir and returns its path.
func WriteSnapshot(ctx context.Context, png board.PNGRenderer, s session.State, msgs *msgcat.Catalog, dir string) (string, error) {
	if s.Game == nil {
		return "", session.ErrNoGame
	}
	lines := session.StatusLines(s, msgs)
	opts := board.Options{Title: lines[0]}
	if len(lines) > 1 {
		opts.Turn = lines[1]
	}
	data, err := png.RenderPNG(ctx, board.Render(s.Props()), opts)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("game-%d-%d.png", s.Game.ID, s.RefreshSeq))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}
