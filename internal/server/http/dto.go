package httpserver

import (
	"zoushogi/internal/server/game"
	"zoushogi/internal/shogi"
)

// 前端用的着法结构；打驹时 from = -1
type MoveDTO struct {
	USI     string `json:"usi"`
	From    int    `json:"from"`
	To      int    `json:"to"`
	Piece   int    `json:"piece"`
	Promote bool   `json:"promote"`
	Drop    bool   `json:"drop"`
}

func moveToDTO(m shogi.Move) MoveDTO {
	from := m.From()
	if m.IsDrop() {
		from = -1
	}
	return MoveDTO{
		USI:     m.USI(),
		From:    from,
		To:      m.To(),
		Piece:   int(m.Piece()),
		Promote: m.IsPromote(),
		Drop:    m.IsDrop(),
	}
}

func movesToDTO(ms []shogi.Move) []MoveDTO {
	out := make([]MoveDTO, len(ms))
	for i, m := range ms {
		out[i] = moveToDTO(m)
	}
	return out
}

func optionalMove(m shogi.Move) *MoveDTO {
	if m == shogi.NoMove {
		return nil
	}
	d := moveToDTO(m)
	return &d
}

func sideToInt(s shogi.Side) int {
	switch s {
	case shogi.Sente:
		return 0
	case shogi.Gote:
		return 1
	default:
		return -1
	}
}

// NewGame 请求；sfen 为空时平手开局
type NewGameRequest struct {
	SFEN string `json:"sfen"`
}

// Play 请求
type PlayRequest struct {
	GameID string `json:"game_id"`
	Move   string `json:"move"` // USI
}

// State 请求：前端刷新时用 game_id 来要当前盘面
type StateRequest struct {
	GameID string `json:"game_id"`
}

// AiMoveRequest 让 AI 为当前局面走一步
type AiMoveRequest struct {
	GameID string `json:"game_id"`
	TimeMs int64  `json:"time_ms"`
}

type UndoRequest struct {
	GameID string `json:"game_id"`
	Count  int    `json:"count"` // 默认 1
}

type TsumeRequest struct {
	GameID   string `json:"game_id"`
	MaxDepth int    `json:"max_depth"`
}

// RestartRequest 回到开局局面
type RestartRequest struct {
	GameID string `json:"game_id"`
}

type ResignRequest struct {
	GameID string `json:"game_id"`
	Side   int    `json:"side"` // 0=先手, 1=后手
}

// StateResponse 当前盘面；new_game / play / state / undo 都返回它
type StateResponse struct {
	GameID     string    `json:"game_id"`
	Position   string    `json:"position"` // SFEN
	ToMove     int       `json:"to_move"`  // 0=先手, 1=后手
	MoveCount  int       `json:"move_count"`
	LastMove   *MoveDTO  `json:"last_move,omitempty"`
	LegalMoves []MoveDTO `json:"legal_moves"`
	InCheck    bool      `json:"in_check"`
	Status     string    `json:"status"` // "ongoing" / "finished"
	Result     string    `json:"result,omitempty"`
}

func stateFromSnapshot(s game.Snapshot) StateResponse {
	status := "ongoing"
	if s.Result != game.ResultNone {
		status = "finished"
	}
	return StateResponse{
		GameID:     s.ID,
		Position:   s.SFEN,
		ToMove:     sideToInt(s.SideToMove),
		MoveCount:  s.MoveCount,
		LastMove:   optionalMove(s.LastMove),
		LegalMoves: movesToDTO(s.LegalMoves),
		InCheck:    s.InCheck,
		Status:     status,
		Result:     string(s.Result),
	}
}

type AiMoveResponse struct {
	BestMove *MoveDTO `json:"best_move"` // 认输或无着时为 null
	Score    int      `json:"score"`
	Depth    int      `json:"depth"`
	Nodes    int64    `json:"nodes"`
	TimeMs   int64    `json:"time_ms"`
	FromBook bool     `json:"from_book"`
	Resigned bool     `json:"resigned"`
	StateResponse
}

type UndoResponse struct {
	Undone int `json:"undone"`
	StateResponse
}

type TsumeResponse struct {
	Mate  bool     `json:"mate"`
	Move  *MoveDTO `json:"move,omitempty"`
	Depth int      `json:"depth"`
	Nodes int      `json:"nodes"`
}

// websocket 消息
type wsMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type analyzeInfo struct {
	Depth  int      `json:"depth"`
	Score  int      `json:"score"`
	Nodes  int64    `json:"nodes"`
	TimeMs int64    `json:"time_ms"`
	PV     []string `json:"pv"`
}

func pvToUSI(pv []shogi.Move) []string {
	out := make([]string, len(pv))
	for i, m := range pv {
		out[i] = m.USI()
	}
	return out
}
