// Package session owns the client state of one game and drives every call to
// the game service.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/park285/Cheese-board-client/internal/board"
	"github.com/park285/Cheese-board-client/internal/msgcat"
	"github.com/park285/Cheese-board-client/internal/obslog"
	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

// ErrNoGame is returned by actions that need a game before one exists.
var ErrNoGame = errors.New("no active game")

// API is the subset of the game service the controller needs.
type API interface {
	CreateGame(ctx context.Context) (*chessdto.Game, error)
	GetGame(ctx context.Context, id int64) (*chessdto.Game, error)
	SubmitMove(ctx context.Context, id int64, from, to chessdto.Coord) error
	ListFigures(ctx context.Context, id int64) ([]chessdto.Figure, error)
	ValidMoves(ctx context.Context, id, figureID int64) ([]chessdto.Coord, error)
}

// Controller holds the state of the current game and serializes its updates.
type Controller struct {
	api  API
	msgs *msgcat.Catalog
	log  *zap.Logger

	mu    sync.Mutex
	state State
	// Each token is bumped when a request of its kind is issued; an answer
	// carrying an older token is dropped.
	candidateToken uint64
	refreshToken   uint64
	figuresToken   uint64

	subMu     sync.Mutex
	subSeq    int
	listeners map[int]func(State)
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func NewController(api API, msgs *msgcat.Catalog, opts ...Option) *Controller {
	c := &Controller{
		api:       api,
		msgs:      msgs,
		log:       obslog.L(),
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe registers fn to run after every state change. The returned func
// removes it.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subSeq++
	id := c.subSeq
	c.listeners[id] = fn
	return func() {
		c.subMu.Lock()
		delete(c.listeners, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) notify() {
	snap := c.Snapshot()
	c.subMu.Lock()
	fns := make([]func(State), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// SetNotice replaces the notice line, for messages that do not come from a
// service call.
func (c *Controller) SetNotice(n Notice) {
	c.mu.Lock()
	c.state.Notice = n
	c.mu.Unlock()
	c.notify()
}

// CreateGame starts a new game and loads its figures. On failure the state is
// left as it was apart from the notice.
func (c *Controller) CreateGame(ctx context.Context) error {
	g, err := c.api.CreateGame(ctx)
	if err != nil {
		c.fail("create a game", err)
		return err
	}
	c.log.Info("game_created", zap.Int64("game_id", g.ID), zap.String("in_turn", g.InTurn))

	c.mu.Lock()
	c.refreshToken++
	c.state.Game = g
	c.state.Figures = nil
	c.resetSelectionLocked()
	c.state.Notice = Notice{}
	c.mu.Unlock()
	c.notify()

	return c.RefreshFigures(ctx, g.ID)
}

// LoadGame attaches to an existing game by id. The current game stays in
// place until the service has returned the new one.
func (c *Controller) LoadGame(ctx context.Context, id int64) error {
	return c.refreshGame(ctx, id, true)
}

// RefreshGame re-reads the current game and then its figures.
func (c *Controller) RefreshGame(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Game == nil {
		c.mu.Unlock()
		c.SetNotice(Notice{Kind: NoticeError, Text: c.msgs.Text("notice.no_game", nil)})
		return ErrNoGame
	}
	id := c.state.Game.ID
	c.state.RefreshSeq++
	c.mu.Unlock()
	return c.refreshGame(ctx, id, false)
}

// refreshGame fetches game id. Unless load is set, the answer only applies
// while id is still the current game.
func (c *Controller) refreshGame(ctx context.Context, id int64, load bool) error {
	c.mu.Lock()
	c.refreshToken++
	token := c.refreshToken
	c.mu.Unlock()

	g, err := c.api.GetGame(ctx, id)

	c.mu.Lock()
	if token != c.refreshToken || (!load && (c.state.Game == nil || c.state.Game.ID != id)) {
		c.mu.Unlock()
		c.log.Debug("stale_game_refresh_dropped", zap.Int64("game_id", id), zap.Uint64("token", token))
		return nil
	}
	if err != nil {
		c.mu.Unlock()
		c.fail("refresh the game", err)
		return err
	}
	if load {
		if c.state.Game == nil || c.state.Game.ID != g.ID {
			c.state.Figures = nil
			c.resetSelectionLocked()
		}
		c.state.RefreshSeq++
	}
	c.state.Game = g
	c.state.Notice = Notice{}
	c.mu.Unlock()
	c.notify()

	// The figure refresh follows the game the service just returned.
	return c.RefreshFigures(ctx, g.ID)
}

// RefreshFigures replaces the figure list of game id and re-derives the
// candidates for the current selection.
func (c *Controller) RefreshFigures(ctx context.Context, id int64) error {
	c.mu.Lock()
	c.figuresToken++
	token := c.figuresToken
	c.mu.Unlock()

	figs, err := c.api.ListFigures(ctx, id)

	c.mu.Lock()
	if token != c.figuresToken || c.state.Game == nil || c.state.Game.ID != id {
		c.mu.Unlock()
		c.log.Debug("stale_figures_dropped", zap.Int64("game_id", id), zap.Uint64("token", token))
		return nil
	}
	if err != nil {
		c.mu.Unlock()
		c.fail("load the pieces", err)
		return err
	}
	kept, dropped := normalizeFigures(figs)
	if dropped > 0 {
		c.log.Warn("figures_dropped", zap.Int64("game_id", id), zap.Int("dropped", dropped))
	}
	c.state.Figures = kept

	c.candidateToken++
	candToken := c.candidateToken
	c.state.Candidates = nil
	c.state.CandidatesLoaded = false
	var fig *chessdto.Figure
	if c.state.Selected != nil {
		fig = board.FigureAt(kept, *c.state.Selected)
	}
	c.mu.Unlock()
	c.notify()

	if fig == nil {
		return nil
	}
	return c.fetchCandidates(ctx, candToken, id, fig.ID)
}

// SelectCell sets the selection, or clears it when sel is nil. A selection on
// an occupied square fetches that figure's destinations; any other selection
// leaves the candidates empty without a request.
func (c *Controller) SelectCell(ctx context.Context, sel *chessdto.Coord) error {
	c.mu.Lock()
	if c.state.Game == nil {
		c.mu.Unlock()
		return ErrNoGame
	}
	c.resetSelectionLocked()
	token := c.candidateToken
	if sel == nil {
		c.mu.Unlock()
		c.notify()
		return nil
	}
	s := *sel
	c.state.Selected = &s
	gameID := c.state.Game.ID
	fig := board.FigureAt(c.state.Figures, s)
	c.mu.Unlock()
	c.notify()

	if fig == nil {
		return nil
	}
	return c.fetchCandidates(ctx, token, gameID, fig.ID)
}

// resetSelectionLocked clears selection and candidates and invalidates any
// candidate request in flight.
func (c *Controller) resetSelectionLocked() {
	c.candidateToken++
	c.state.Selected = nil
	c.state.Candidates = nil
	c.state.CandidatesLoaded = false
}

func (c *Controller) fetchCandidates(ctx context.Context, token uint64, gameID, figureID int64) error {
	moves, err := c.api.ValidMoves(ctx, gameID, figureID)

	c.mu.Lock()
	if token != c.candidateToken {
		c.mu.Unlock()
		c.log.Debug("stale_candidates_dropped", zap.Int64("figure_id", figureID), zap.Uint64("token", token))
		return nil
	}
	if err != nil {
		c.state.Candidates = nil
		c.state.CandidatesLoaded = true
		c.mu.Unlock()
		c.fail("list moves", err)
		return err
	}
	c.state.Candidates = normalizeCoords(moves)
	c.state.CandidatesLoaded = true
	c.mu.Unlock()
	c.notify()
	return nil
}

// SubmitMove sends from→to. On success the selection is cleared and the game
// and figures are refreshed once each, in that order. On failure the selection
// stays so the user can try another square.
func (c *Controller) SubmitMove(ctx context.Context, from, to chessdto.Coord) error {
	c.mu.Lock()
	if c.state.Game == nil {
		c.mu.Unlock()
		return ErrNoGame
	}
	id := c.state.Game.ID
	c.mu.Unlock()

	if err := c.api.SubmitMove(ctx, id, from, to); err != nil {
		c.failMove(from, to, err)
		return err
	}
	c.log.Info("move_submitted", zap.Int64("game_id", id), zap.Stringer("from", from), zap.Stringer("to", to))

	c.mu.Lock()
	c.resetSelectionLocked()
	c.state.RefreshSeq++
	c.state.Notice = Notice{}
	c.mu.Unlock()
	c.notify()

	return c.refreshGame(ctx, id, false)
}

// Click feeds a board click through board.Click and runs the resulting intent.
func (c *Controller) Click(ctx context.Context, at chessdto.Coord) error {
	c.mu.Lock()
	if c.state.Game == nil {
		c.mu.Unlock()
		c.SetNotice(Notice{Kind: NoticeError, Text: c.msgs.Text("notice.no_game", nil)})
		return ErrNoGame
	}
	intent := board.Click(c.state.Props(), at)
	c.mu.Unlock()

	switch intent.Kind {
	case board.IntentMove:
		return c.SubmitMove(ctx, intent.From, intent.To)
	case board.IntentClear:
		return c.SelectCell(ctx, nil)
	default:
		to := intent.To
		return c.SelectCell(ctx, &to)
	}
}
