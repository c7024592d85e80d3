package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/park285/Cheese-board-client/internal/msgcat"
	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

// fakeAPI records every call as a short string and answers from its fields.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	game    chessdto.Game
	figures []chessdto.Figure
	moves   map[int64][]chessdto.Coord

	createErr error
	getErr    error
	moveErr   error
	listErr   error
	validErr  error

	lastMove *chessdto.MoveRequest

	// validHook and getHook run before the answer is returned, outside the lock.
	validHook func(figureID int64)
	getHook   func(call int)
	gets      int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		game: chessdto.Game{ID: 1, InTurn: "white"},
		figures: []chessdto.Figure{
			{ID: 5, PositionX: 4, PositionY: 0, Colour: chessdto.White, Name: chessdto.King},
			{ID: 12, PositionX: 4, PositionY: 1, Colour: chessdto.White, Name: chessdto.Pawn},
			{ID: 13, PositionX: 3, PositionY: 1, Colour: chessdto.White, Name: chessdto.Pawn},
			{ID: 29, PositionX: 4, PositionY: 7, Colour: chessdto.Black, Name: chessdto.King},
		},
		moves: map[int64][]chessdto.Coord{
			12: {{X: 4, Y: 2}, {X: 4, Y: 3}},
			13: {{X: 3, Y: 2}, {X: 3, Y: 3}},
		},
	}
}

func (f *fakeAPI) record(format string, args ...any) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func (f *fakeAPI) CreateGame(ctx context.Context) (*chessdto.Game, error) {
	f.record("create")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	g := f.game
	return &g, nil
}

func (f *fakeAPI) GetGame(ctx context.Context, id int64) (*chessdto.Game, error) {
	f.record("get %d", id)
	f.mu.Lock()
	f.gets++
	n := f.gets
	hook := f.getHook
	f.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	g := f.game
	g.ID = id
	return &g, nil
}

func (f *fakeAPI) SubmitMove(ctx context.Context, id int64, from, to chessdto.Coord) error {
	f.record("move %d %s->%s", id, from, to)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moveErr != nil {
		return f.moveErr
	}
	f.lastMove = &chessdto.MoveRequest{From: from, To: to}
	for i := range f.figures {
		if f.figures[i].Coord() == from {
			f.figures[i].PositionX, f.figures[i].PositionY = to.X, to.Y
		}
	}
	if f.game.InTurn == "white" {
		f.game.InTurn = "black"
	} else {
		f.game.InTurn = "white"
	}
	return nil
}

func (f *fakeAPI) ListFigures(ctx context.Context, id int64) ([]chessdto.Figure, error) {
	f.record("figures %d", id)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]chessdto.Figure(nil), f.figures...), nil
}

func (f *fakeAPI) ValidMoves(ctx context.Context, id, figureID int64) ([]chessdto.Coord, error) {
	f.record("valid %d/%d", id, figureID)
	f.mu.Lock()
	hook := f.validHook
	f.mu.Unlock()
	if hook != nil {
		hook(figureID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.validErr != nil {
		return nil, f.validErr
	}
	return append([]chessdto.Coord(nil), f.moves[figureID]...), nil
}

func newTestController(api API) *Controller {
	return NewController(api, msgcat.MustDefault())
}
