// Package devserver is a local game service speaking the same REST contract
// as the production one. Rules come from corentings/chess; games live in Redis.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/park285/Cheese-board-client/internal/obslog"
	"github.com/park285/Cheese-board-client/pkg/chessdto"
)

type handlers struct {
	store   *Store
	archive Archive
}

type Option func(*handlers)

// WithArchive saves every game that finishes.
func WithArchive(a Archive) Option {
	return func(h *handlers) { h.archive = a }
}

// NewServer wires routes and returns an http.Handler.
func NewServer(store *Store, opts ...Option) http.Handler {
	h := &handlers{store: store}
	for _, opt := range opts {
		opt(h)
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog)

	r.Get("/healthz", h.health)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Patch("/", h.move)
		r.Get("/figures", h.figures)
		r.Get("/figures/{figureId}", h.figureMoves)
	})
	return r
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		obslog.L().Debug("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "redis unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Create(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeGame(w, r, rec)
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	h.writeGame(w, r, rec)
}

func (h *handlers) move(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req chessdto.MoveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed move body")
		return
	}
	if !req.From.Valid() || !req.To.Valid() {
		writeError(w, http.StatusBadRequest, "coordinates out of range")
		return
	}
	rec, err := h.store.Move(r.Context(), id, req.From, req.To)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if rec.Finished() && h.archive != nil {
		if err := h.archive.SaveResult(r.Context(), rec); err != nil {
			obslog.L().Warn("dev_game_archive_failed", zap.Int64("game_id", rec.ID), zap.Error(err))
		}
	}
	h.writeGame(w, r, rec)
}

func (h *handlers) figures(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	figs := rec.Figures
	if figs == nil {
		figs = []chessdto.Figure{}
	}
	writeJSON(w, http.StatusOK, figs)
}

func (h *handlers) figureMoves(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	figureID, ok := parseID(w, chi.URLParam(r, "figureId"))
	if !ok {
		return
	}
	fig, found := figureByID(rec.Figures, figureID)
	if !found {
		h.fail(w, r, ErrFigureNotFound)
		return
	}
	game, err := replay(rec)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chessdto.FigureMoves{ID: fig.ID, ValidMoves: destinations(game, fig.Coord())})
}

func (h *handlers) load(w http.ResponseWriter, r *http.Request) (*Record, bool) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return nil, false
	}
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return rec, true
}

func (h *handlers) writeGame(w http.ResponseWriter, r *http.Request, rec *Record) {
	game, err := replay(rec)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view(rec, game))
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrGameNotFound), errors.Is(err, ErrFigureNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrIllegalMove):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		obslog.L().Error("dev_server_error", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseID(w http.ResponseWriter, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, chessdto.ErrorBody{Error: msg})
}
