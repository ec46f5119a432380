package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"zoushogi/internal/kif"
	"zoushogi/internal/server/game"
	"zoushogi/internal/shogi"
)

const (
	defaultThinkTime = 3 * time.Second
	maxThinkTime     = 60 * time.Second
)

// Handler 处理 /api/* 请求
type Handler struct {
	games     *game.Manager
	log       zerolog.Logger
	thinkTime time.Duration
}

func NewHandler(games *game.Manager, log zerolog.Logger, thinkTime time.Duration) *Handler {
	if thinkTime <= 0 {
		thinkTime = defaultThinkTime
	}
	return &Handler{games: games, log: log, thinkTime: thinkTime}
}

func (h *Handler) timeLimit(ms int64) time.Duration {
	if ms <= 0 {
		return h.thinkTime
	}
	return min(time.Duration(ms)*time.Millisecond, maxThinkTime)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError 按错误类型选状态码
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, game.ErrGameOver):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, shogi.ErrIllegalMove), errors.Is(err, shogi.ErrInvalidUSI), errors.Is(err, shogi.ErrInvalidSFEN):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) lookup(w http.ResponseWriter, id string) (*game.GameState, bool) {
	g, err := h.games.Get(id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return g, true
}

func (h *Handler) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameRequest
	// 空 body 也算平手开局
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}
	g, err := h.games.NewGame(req.SFEN)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, stateFromSnapshot(g.Snapshot()))
}

func (h *Handler) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, ok := h.lookup(w, req.GameID)
	if !ok {
		return
	}
	if _, err := g.Play(req.Move); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, stateFromSnapshot(g.Snapshot()))
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	var req StateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, ok := h.lookup(w, req.GameID)
	if !ok {
		return
	}
	writeJSON(w, stateFromSnapshot(g.Snapshot()))
}

func (h *Handler) handleAiMove(w http.ResponseWriter, r *http.Request) {
	var req AiMoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, ok := h.lookup(w, req.GameID)
	if !ok {
		return
	}
	res, err := g.AIMove(r.Context(), h.timeLimit(req.TimeMs))
	if err != nil {
		writeError(w, err)
		return
	}
	h.log.Info().
		Str("game", g.ID).
		Str("move", res.Move.USI()).
		Int("score", res.Score).
		Int("depth", res.Depth).
		Int64("nodes", res.Nodes).
		Bool("book", res.FromBook).
		Bool("resigned", res.Resigned).
		Msg("ai move")
	writeJSON(w, AiMoveResponse{
		BestMove:      optionalMove(res.Move),
		Score:         res.Score,
		Depth:         res.Depth,
		Nodes:         res.Nodes,
		TimeMs:        res.Elapsed.Milliseconds(),
		FromBook:      res.FromBook,
		Resigned:      res.Resigned,
		StateResponse: stateFromSnapshot(g.Snapshot()),
	})
}

func (h *Handler) handleUndo(w http.ResponseWriter, r *http.Request) {
	var req UndoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, ok := h.lookup(w, req.GameID)
	if !ok {
		return
	}
	n := max(req.Count, 1)
	writeJSON(w, UndoResponse{Undone: g.Undo(n), StateResponse: stateFromSnapshot(g.Snapshot())})
}

func (h *Handler) handleTsume(w http.ResponseWriter, r *http.Request) {
	var req TsumeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, ok := h.lookup(w, req.GameID)
	if !ok {
		return
	}
	res := g.Tsume(req.MaxDepth)
	resp := TsumeResponse{Mate: res.Mate, Depth: res.Depth, Nodes: res.Nodes}
	if res.Mate {
		resp.Move = optionalMove(res.Move)
	}
	writeJSON(w, resp)
}

func (h *Handler) handleResign(w http.ResponseWriter, r *http.Request) {
	var req ResignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, ok := h.lookup(w, req.GameID)
	if !ok {
		return
	}
	var side shogi.Side
	switch req.Side {
	case 0:
		side = shogi.Sente
	case 1:
		side = shogi.Gote
	default:
		http.Error(w, "side must be 0 or 1", http.StatusBadRequest)
		return
	}
	if err := g.Resign(side); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, stateFromSnapshot(g.Snapshot()))
}

func (h *Handler) handleRestart(w http.ResponseWriter, r *http.Request) {
	var req RestartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, ok := h.lookup(w, req.GameID)
	if !ok {
		return
	}
	if err := g.Restart(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, stateFromSnapshot(g.Snapshot()))
}

// handleDeleteGame DELETE /api/games/{id}
func (h *Handler) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.games.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleKIF GET /api/games/{id}/kif[?encoding=sjis]
func (h *Handler) handleKIF(w http.ResponseWriter, r *http.Request) {
	g, ok := h.lookup(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	enc, charset := kif.UTF8, "utf-8"
	if e := r.URL.Query().Get("encoding"); e == "sjis" || e == "shift_jis" {
		enc, charset = kif.ShiftJIS, "Shift_JIS"
	}
	w.Header().Set("Content-Type", "text/plain; charset="+charset)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", g.ID+".kif"))
	if err := kif.Write(w, g.Record("先手", "後手"), enc); err != nil {
		h.log.Error().Err(err).Str("game", g.ID).Msg("write kif")
	}
}
