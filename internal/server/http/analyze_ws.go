package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"zoushogi/internal/engine"
)

const wsIdlePingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"type":"error"}`)
	}
	return data
}

// trySend 写满就丢，搜索线程不能被慢客户端卡住
func trySend(send chan<- []byte, msg wsMessage) {
	select {
	case send <- mustMarshal(msg):
	default:
	}
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

// serveAnalyze GET /api/analyze?game_id=..&time_ms=..
// 每完成一层推一条 info，结束推 result 后关闭连接；客户端断开即停止搜索。
func (h *Handler) serveAnalyze(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	g, ok := h.lookup(w, q.Get("game_id"))
	if !ok {
		return
	}
	ms, _ := strconv.ParseInt(q.Get("time_ms"), 10, 64)
	limit := h.timeLimit(ms)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	send := make(chan []byte, 64)
	go func() {
		defer close(send)
		res := g.Analyze(ctx, engine.SearchConfig{
			TimeLimit: limit,
			Info: func(info engine.SearchInfo) {
				trySend(send, wsMessage{Type: "info", Payload: analyzeInfo{
					Depth:  info.Depth,
					Score:  info.Score,
					Nodes:  info.Nodes,
					TimeMs: info.Elapsed.Milliseconds(),
					PV:     pvToUSI(info.PV),
				}})
			},
		})
		trySend(send, wsMessage{Type: "result", Payload: AiMoveResponse{
			BestMove:      optionalMove(res.BestMove),
			Score:         res.Score,
			Depth:         res.Depth,
			Nodes:         res.Nodes,
			TimeMs:        res.TimeUsed.Milliseconds(),
			FromBook:      res.FromBook,
			StateResponse: stateFromSnapshot(g.Snapshot()),
		}})
	}()

	if err := writeWSWithHeartbeat(conn, send); err != nil {
		cancel()
		h.log.Debug().Err(err).Str("game", g.ID).Msg("analyze stream closed")
		return
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}
