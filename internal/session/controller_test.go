package session

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/park285/Cheese-board-client/internal/gameapi"
	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

func coord(x, y int) chessdto.Coord { return chessdto.Coord{X: x, Y: y} }

func startedController(t *testing.T) (*Controller, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	c := newTestController(api)
	if err := c.CreateGame(context.Background()); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	api.reset()
	return c, api
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := newTestController(api)

	if got := c.Snapshot().Phase(); got != PhaseNoGame {
		t.Fatalf("initial phase = %v", got)
	}
	if err := c.CreateGame(ctx); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	s := c.Snapshot()
	if s.Game == nil || *s.Game != (chessdto.Game{ID: 1, InTurn: "white"}) {
		t.Fatalf("unexpected game %+v", s.Game)
	}
	if s.Phase() != PhaseIdle {
		t.Fatalf("phase after create = %v", s.Phase())
	}
	if len(s.Figures) != 4 {
		t.Fatalf("expected 4 figures, got %d", len(s.Figures))
	}

	if err := c.Click(ctx, coord(4, 1)); err != nil {
		t.Fatalf("select: %v", err)
	}
	s = c.Snapshot()
	if s.Phase() != PhaseCandidatesLoaded {
		t.Fatalf("phase after select = %v", s.Phase())
	}
	if !reflect.DeepEqual(s.Candidates, []chessdto.Coord{coord(4, 2), coord(4, 3)}) {
		t.Fatalf("candidates = %v", s.Candidates)
	}

	api.reset()
	if err := c.Click(ctx, coord(4, 3)); err != nil {
		t.Fatalf("move: %v", err)
	}
	want := []string{"move 1 (4,1)->(4,3)", "get 1", "figures 1"}
	if got := api.Calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	if *api.lastMove != (chessdto.MoveRequest{From: coord(4, 1), To: coord(4, 3)}) {
		t.Fatalf("move body = %+v", api.lastMove)
	}
	s = c.Snapshot()
	if s.Selected != nil || len(s.Candidates) != 0 {
		t.Fatalf("selection not cleared: %+v %v", s.Selected, s.Candidates)
	}
	if s.Game.InTurn != "black" || s.RefreshSeq != 1 {
		t.Fatalf("game not refreshed: %+v seq=%d", s.Game, s.RefreshSeq)
	}
	if f := findFigure(s.Figures, 12); f == nil || f.Coord() != coord(4, 3) {
		t.Fatalf("figures not refreshed: %+v", f)
	}
}

func findFigure(figs []chessdto.Figure, id int64) *chessdto.Figure {
	for i := range figs {
		if figs[i].ID == id {
			return &figs[i]
		}
	}
	return nil
}

func TestCreateGameFailureKeepsState(t *testing.T) {
	api := newFakeAPI()
	api.createErr = gameapi.ErrTransport
	c := newTestController(api)

	if err := c.CreateGame(context.Background()); !errors.Is(err, gameapi.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	s := c.Snapshot()
	if s.Game != nil || s.Phase() != PhaseNoGame {
		t.Fatalf("state changed on failure: %+v", s)
	}
	if s.Notice.Kind != NoticeError || !strings.Contains(s.Notice.Text, "unreachable") {
		t.Fatalf("notice = %+v", s.Notice)
	}
	if got := api.Calls(); !reflect.DeepEqual(got, []string{"create"}) {
		t.Fatalf("calls = %v", got)
	}
}

func TestSelectSameCellClears(t *testing.T) {
	ctx := context.Background()
	c, _ := startedController(t)

	for _, at := range []chessdto.Coord{coord(4, 1), coord(0, 4)} {
		if err := c.Click(ctx, at); err != nil {
			t.Fatalf("select %v: %v", at, err)
		}
		if s := c.Snapshot(); s.Selected == nil || *s.Selected != at {
			t.Fatalf("selection = %v, want %v", s.Selected, at)
		}
		if err := c.Click(ctx, at); err != nil {
			t.Fatalf("toggle %v: %v", at, err)
		}
		s := c.Snapshot()
		if s.Selected != nil || len(s.Candidates) != 0 || s.Phase() != PhaseIdle {
			t.Fatalf("toggle on %v did not clear: %+v", at, s)
		}
	}
}

func TestSelectEmptyCellSkipsNetwork(t *testing.T) {
	c, api := startedController(t)
	if err := c.Click(context.Background(), coord(0, 4)); err != nil {
		t.Fatalf("select: %v", err)
	}
	if calls := api.Calls(); len(calls) != 0 {
		t.Fatalf("expected no calls, got %v", calls)
	}
	s := c.Snapshot()
	if len(s.Candidates) != 0 || s.Phase() != PhaseSelected {
		t.Fatalf("unexpected state %+v phase=%v", s.Candidates, s.Phase())
	}
}

func TestSelectNoneClearsCandidates(t *testing.T) {
	ctx := context.Background()
	c, _ := startedController(t)
	sel := coord(4, 1)
	if err := c.SelectCell(ctx, &sel); err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(c.Snapshot().Candidates) == 0 {
		t.Fatalf("expected candidates")
	}
	if err := c.SelectCell(ctx, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s := c.Snapshot(); len(s.Candidates) != 0 || s.Selected != nil {
		t.Fatalf("not cleared: %+v", s)
	}
}

func TestCandidateClickSubmitsExactlyOneMove(t *testing.T) {
	ctx := context.Background()
	c, api := startedController(t)
	if err := c.Click(ctx, coord(3, 1)); err != nil {
		t.Fatalf("select: %v", err)
	}
	api.reset()
	if err := c.Click(ctx, coord(3, 3)); err != nil {
		t.Fatalf("move: %v", err)
	}
	moves := 0
	for _, call := range api.Calls() {
		if strings.HasPrefix(call, "move ") {
			moves++
			if call != "move 1 (3,1)->(3,3)" {
				t.Fatalf("unexpected move call %q", call)
			}
		}
	}
	if moves != 1 {
		t.Fatalf("expected one move request, got %d", moves)
	}
}

func TestRejectedMoveKeepsSelection(t *testing.T) {
	ctx := context.Background()
	c, api := startedController(t)
	if err := c.Click(ctx, coord(4, 1)); err != nil {
		t.Fatalf("select: %v", err)
	}
	api.moveErr = &gameapi.StatusError{Method: "PATCH", Path: "/game/1", Code: 422, Body: `{"error":"illegal move"}`}
	api.reset()

	if err := c.Click(ctx, coord(4, 3)); !gameapi.IsStatus(err, 422) {
		t.Fatalf("expected 422, got %v", err)
	}
	if got := api.Calls(); len(got) != 1 {
		t.Fatalf("expected only the move call, got %v", got)
	}
	s := c.Snapshot()
	if s.Selected == nil || *s.Selected != coord(4, 1) || len(s.Candidates) != 2 {
		t.Fatalf("selection lost: %+v", s)
	}
	if s.RefreshSeq != 0 {
		t.Fatalf("refresh counter bumped on failure")
	}
	if !strings.Contains(s.Notice.Text, "e2 to e4") || !strings.Contains(s.Notice.Text, "422") {
		t.Fatalf("notice = %q", s.Notice.Text)
	}
}

func TestMalformedCandidatesAreEmpty(t *testing.T) {
	c, api := startedController(t)
	api.validErr = gameapi.ErrMalformed
	sel := coord(4, 1)
	if err := c.SelectCell(context.Background(), &sel); !errors.Is(err, gameapi.ErrMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	s := c.Snapshot()
	if len(s.Candidates) != 0 || s.Selected == nil {
		t.Fatalf("unexpected state %+v", s)
	}
	if s.Notice.Kind != NoticeError {
		t.Fatalf("notice not set")
	}
}

func TestStaleCandidatesAreDropped(t *testing.T) {
	ctx := context.Background()
	c, api := startedController(t)

	started := make(chan struct{})
	release := make(chan struct{})
	api.validHook = func(figureID int64) {
		if figureID == 12 {
			close(started)
			<-release
		}
	}

	done := make(chan error, 1)
	go func() {
		sel := coord(4, 1)
		done <- c.SelectCell(ctx, &sel)
	}()
	<-started

	empty := coord(0, 4)
	if err := c.SelectCell(ctx, &empty); err != nil {
		t.Fatalf("select empty: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("slow select: %v", err)
	}

	s := c.Snapshot()
	if s.Selected == nil || *s.Selected != empty {
		t.Fatalf("selection = %v", s.Selected)
	}
	if len(s.Candidates) != 0 {
		t.Fatalf("stale candidates applied: %v", s.Candidates)
	}
}

func TestStaleCandidatesForOtherFigure(t *testing.T) {
	ctx := context.Background()
	c, api := startedController(t)

	started := make(chan struct{})
	release := make(chan struct{})
	api.validHook = func(figureID int64) {
		if figureID == 12 {
			close(started)
			<-release
		}
	}
	done := make(chan error, 1)
	go func() {
		sel := coord(4, 1)
		done <- c.SelectCell(ctx, &sel)
	}()
	<-started

	other := coord(3, 1)
	if err := c.SelectCell(ctx, &other); err != nil {
		t.Fatalf("select other: %v", err)
	}
	close(release)
	<-done

	if got := c.Snapshot().Candidates; !reflect.DeepEqual(got, []chessdto.Coord{coord(3, 2), coord(3, 3)}) {
		t.Fatalf("candidates = %v", got)
	}
}

func TestStaleGameRefreshDropped(t *testing.T) {
	ctx := context.Background()
	c, api := startedController(t)

	started := make(chan struct{})
	release := make(chan struct{})
	api.getHook = func(call int) {
		if call == 1 {
			close(started)
			<-release
		}
	}
	done := make(chan error, 1)
	go func() { done <- c.RefreshGame(ctx) }()
	<-started

	api.mu.Lock()
	api.game.Check = true
	api.mu.Unlock()
	if err := c.RefreshGame(ctx); err != nil {
		t.Fatalf("second refresh: %v", err)
	}

	api.mu.Lock()
	api.game.Check = false
	api.mu.Unlock()
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	s := c.Snapshot()
	if !s.Game.Check {
		t.Fatalf("older refresh overwrote newer game")
	}
	if s.RefreshSeq != 2 {
		t.Fatalf("RefreshSeq = %d", s.RefreshSeq)
	}
}

func TestOldGameRefreshDroppedAfterCreate(t *testing.T) {
	ctx := context.Background()
	c, api := startedController(t)

	started := make(chan struct{})
	release := make(chan struct{})
	api.getHook = func(call int) {
		if call == 1 {
			close(started)
			<-release
		}
	}
	done := make(chan error, 1)
	go func() { done <- c.RefreshGame(ctx) }()
	<-started

	api.mu.Lock()
	api.game.ID = 2
	api.mu.Unlock()
	if err := c.CreateGame(ctx); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("old refresh: %v", err)
	}

	s := c.Snapshot()
	if s.Game == nil || s.Game.ID != 2 {
		t.Fatalf("game = %+v, want id 2", s.Game)
	}
	for _, call := range api.Calls() {
		if call == "figures 1" {
			t.Fatalf("figures of the old game reloaded: %v", api.Calls())
		}
	}
}

func TestDuplicateFiguresKeepFirst(t *testing.T) {
	api := newFakeAPI()
	api.figures = append(api.figures,
		chessdto.Figure{ID: 99, PositionX: 4, PositionY: 1, Colour: chessdto.Black, Name: chessdto.Queen},
		chessdto.Figure{ID: 100, PositionX: 9, PositionY: 1, Colour: chessdto.Black, Name: chessdto.Queen},
	)
	c := newTestController(api)
	if err := c.CreateGame(context.Background()); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	s := c.Snapshot()
	if len(s.Figures) != 4 || findFigure(s.Figures, 99) != nil || findFigure(s.Figures, 100) != nil {
		t.Fatalf("figures = %+v", s.Figures)
	}
}

func TestFigureRefreshRederivesCandidates(t *testing.T) {
	ctx := context.Background()
	c, api := startedController(t)
	sel := coord(4, 1)
	if err := c.SelectCell(ctx, &sel); err != nil {
		t.Fatalf("select: %v", err)
	}
	api.mu.Lock()
	api.moves[12] = []chessdto.Coord{coord(4, 2)}
	api.mu.Unlock()
	api.reset()

	if err := c.RefreshFigures(ctx, 1); err != nil {
		t.Fatalf("RefreshFigures: %v", err)
	}
	if got := api.Calls(); !reflect.DeepEqual(got, []string{"figures 1", "valid 1/12"}) {
		t.Fatalf("calls = %v", got)
	}
	if got := c.Snapshot().Candidates; !reflect.DeepEqual(got, []chessdto.Coord{coord(4, 2)}) {
		t.Fatalf("candidates = %v", got)
	}
}

func TestLoadGame(t *testing.T) {
	api := newFakeAPI()
	c := newTestController(api)
	if err := c.LoadGame(context.Background(), 42); err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if got := api.Calls(); !reflect.DeepEqual(got, []string{"get 42", "figures 42"}) {
		t.Fatalf("calls = %v", got)
	}
	s := c.Snapshot()
	if s.Game == nil || s.Game.ID != 42 || s.RefreshSeq != 1 {
		t.Fatalf("state = %+v", s)
	}
}

func TestLoadGameFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	c, api := startedController(t)
	if err := c.Click(ctx, coord(4, 1)); err != nil {
		t.Fatalf("select: %v", err)
	}
	before := c.Snapshot()

	api.getErr = gameapi.ErrTransport
	if err := c.LoadGame(ctx, 2); err == nil {
		t.Fatalf("expected an error")
	}

	s := c.Snapshot()
	if s.Game == nil || s.Game.ID != 1 {
		t.Fatalf("game = %+v", s.Game)
	}
	if len(s.Figures) != len(before.Figures) {
		t.Fatalf("figures = %d, want %d", len(s.Figures), len(before.Figures))
	}
	if s.Selected == nil || *s.Selected != coord(4, 1) {
		t.Fatalf("selection lost: %v", s.Selected)
	}
	if len(s.Candidates) != 2 {
		t.Fatalf("candidates = %v", s.Candidates)
	}
	if s.RefreshSeq != before.RefreshSeq {
		t.Fatalf("RefreshSeq = %d, want %d", s.RefreshSeq, before.RefreshSeq)
	}
	if s.Notice.Kind != NoticeError {
		t.Fatalf("notice = %+v", s.Notice)
	}
}

func TestActionsWithoutGame(t *testing.T) {
	c := newTestController(newFakeAPI())
	ctx := context.Background()
	if err := c.Click(ctx, coord(0, 0)); !errors.Is(err, ErrNoGame) {
		t.Fatalf("Click: %v", err)
	}
	if err := c.RefreshGame(ctx); !errors.Is(err, ErrNoGame) {
		t.Fatalf("RefreshGame: %v", err)
	}
	if err := c.SubmitMove(ctx, coord(0, 0), coord(0, 1)); !errors.Is(err, ErrNoGame) {
		t.Fatalf("SubmitMove: %v", err)
	}
	if c.Snapshot().Notice.Kind != NoticeError {
		t.Fatalf("expected a notice")
	}
}

func TestSubscribeAndSnapshotIsolation(t *testing.T) {
	c, _ := startedController(t)
	var seen []Phase
	unsub := c.Subscribe(func(s State) { seen = append(seen, s.Phase()) })
	if err := c.Click(context.Background(), coord(4, 1)); err != nil {
		t.Fatalf("select: %v", err)
	}
	unsub()
	if len(seen) < 2 || seen[len(seen)-1] != PhaseCandidatesLoaded {
		t.Fatalf("phases seen = %v", seen)
	}

	snap := c.Snapshot()
	snap.Figures[0].PositionX = 7
	snap.Candidates[0] = coord(0, 0)
	fresh := c.Snapshot()
	if fresh.Figures[0].PositionX == 7 || fresh.Candidates[0] == coord(0, 0) {
		t.Fatalf("snapshot shares memory with controller state")
	}
}

func TestStatusLines(t *testing.T) {
	c, _ := startedController(t)
	lines := StatusLines(c.Snapshot(), c.msgs)
	if len(lines) != 1 || lines[0] != "Game #1  white to move" {
		t.Fatalf("lines = %q", lines)
	}

	s := c.Snapshot()
	s.Game.Checkmate = true
	lines = StatusLines(s, c.msgs)
	if len(lines) != 2 || lines[1] != "Checkmate. black wins." {
		t.Fatalf("lines = %q", lines)
	}

	if got := StatusLines(State{}, c.msgs); !strings.Contains(got[0], "No game") {
		t.Fatalf("no-game line = %q", got)
	}
}
