package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"zoushogi/internal/engine"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.TTBits = 14
	cfg.MaxDepth = 3
	opts.Engine = cfg
	opts.Logger = zerolog.Nop()
	if opts.ThinkTime == 0 {
		opts.ThinkTime = 200 * time.Millisecond
	}
	s, err := NewServer(opts)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

func post(t *testing.T, h http.Handler, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s: decode %q: %v", path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

func TestGameFlow(t *testing.T) {
	s := newTestServer(t, Options{})

	var st StateResponse
	if code := post(t, s, "/api/new_game", nil, &st); code != http.StatusOK {
		t.Fatalf("new_game: status %d", code)
	}
	if st.GameID == "" || st.ToMove != 0 || len(st.LegalMoves) != 26 || st.Status != "ongoing" {
		t.Fatalf("new_game response: %+v", st)
	}
	id := st.GameID

	if code := post(t, s, "/api/play", PlayRequest{GameID: id, Move: "7g7f"}, &st); code != http.StatusOK {
		t.Fatalf("play: status %d", code)
	}
	if st.ToMove != 1 || st.LastMove == nil || st.LastMove.USI != "7g7f" {
		t.Fatalf("play response: %+v", st)
	}

	var ai AiMoveResponse
	if code := post(t, s, "/api/ai_move", AiMoveRequest{GameID: id, TimeMs: 100}, &ai); code != http.StatusOK {
		t.Fatalf("ai_move: status %d", code)
	}
	if ai.BestMove == nil || ai.ToMove != 0 || ai.MoveCount != 2 {
		t.Fatalf("ai_move response: %+v", ai)
	}

	var undo UndoResponse
	if code := post(t, s, "/api/undo", UndoRequest{GameID: id, Count: 2}, &undo); code != http.StatusOK {
		t.Fatalf("undo: status %d", code)
	}
	if undo.Undone != 2 || undo.MoveCount != 0 {
		t.Fatalf("undo response: %+v", undo)
	}

	var ts TsumeResponse
	if code := post(t, s, "/api/tsume", TsumeRequest{GameID: id, MaxDepth: 3}, &ts); code != http.StatusOK || ts.Mate {
		t.Fatalf("tsume: status %d resp %+v", code, ts)
	}
}

func TestPlayErrors(t *testing.T) {
	s := newTestServer(t, Options{})
	var st StateResponse
	post(t, s, "/api/new_game", nil, &st)

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"unknown game", "/api/play", PlayRequest{GameID: "nope", Move: "7g7f"}, http.StatusNotFound},
		{"illegal move", "/api/play", PlayRequest{GameID: st.GameID, Move: "5g5e"}, http.StatusBadRequest},
		{"garbage move", "/api/play", PlayRequest{GameID: st.GameID, Move: "zz"}, http.StatusBadRequest},
		{"bad sfen", "/api/new_game", NewGameRequest{SFEN: "x"}, http.StatusBadRequest},
		{"unknown state", "/api/state", StateRequest{GameID: "nope"}, http.StatusNotFound},
		{"resign bad side", "/api/resign", ResignRequest{GameID: st.GameID, Side: 7}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := post(t, s, tt.path, tt.body, nil); code != tt.want {
				t.Fatalf("status: got=%d want=%d", code, tt.want)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/state", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: got=%d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/play", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET on POST route: got=%d", rec.Code)
	}
}

func TestResignAndKIF(t *testing.T) {
	s := newTestServer(t, Options{})
	var st StateResponse
	post(t, s, "/api/new_game", nil, &st)
	post(t, s, "/api/play", PlayRequest{GameID: st.GameID, Move: "7g7f"}, &st)

	if code := post(t, s, "/api/resign", ResignRequest{GameID: st.GameID, Side: 1}, &st); code != http.StatusOK {
		t.Fatalf("resign: status %d", code)
	}
	if st.Status != "finished" || st.Result != "gote_resign" || len(st.LegalMoves) != 0 {
		t.Fatalf("resign response: %+v", st)
	}
	if code := post(t, s, "/api/play", PlayRequest{GameID: st.GameID, Move: "3c3d"}, nil); code != http.StatusConflict {
		t.Fatalf("play after resign: got=%d", code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/games/"+st.GameID+"/kif", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("kif: status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "   1 ７六歩(77)") || !strings.Contains(body, "投了") {
		t.Fatalf("kif body:\n%s", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/games/missing/kif", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("kif for missing game: got=%d", rec.Code)
	}
}

func TestRestartAndDeleteGame(t *testing.T) {
	s := newTestServer(t, Options{})
	var st StateResponse
	post(t, s, "/api/new_game", nil, &st)
	post(t, s, "/api/play", PlayRequest{GameID: st.GameID, Move: "7g7f"}, &st)

	if code := post(t, s, "/api/restart", RestartRequest{GameID: st.GameID}, &st); code != http.StatusOK {
		t.Fatalf("restart: status %d", code)
	}
	if st.MoveCount != 0 || st.ToMove != 0 || len(st.LegalMoves) != 26 {
		t.Fatalf("restart response: %+v", st)
	}

	del := func(id string) int {
		req := httptest.NewRequest(http.MethodDelete, "/api/games/"+id, nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		return rec.Code
	}
	if code := del(st.GameID); code != http.StatusNoContent {
		t.Fatalf("delete: got=%d", code)
	}
	if s.Games().Len() != 0 {
		t.Fatalf("game still registered after delete")
	}
	if code := del(st.GameID); code != http.StatusNotFound {
		t.Fatalf("second delete: got=%d", code)
	}
	if code := post(t, s, "/api/state", StateRequest{GameID: st.GameID}, nil); code != http.StatusNotFound {
		t.Fatalf("state after delete: got=%d", code)
	}
}

func TestBookIsUsed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.json")
	data := `{"v":1,"p":{"lnsgkgsnl/1r2e2b1/ppppppppp/9/9/9/PPPPPPPPP/1B2E2R1/LNSGKGSNL b -":[{"m":"2g2f","s":10}]}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write book: %v", err)
	}
	s := newTestServer(t, Options{BookPath: path})

	var st StateResponse
	post(t, s, "/api/new_game", nil, &st)
	var ai AiMoveResponse
	post(t, s, "/api/ai_move", AiMoveRequest{GameID: st.GameID}, &ai)
	if !ai.FromBook || ai.BestMove == nil || ai.BestMove.USI != "2g2f" {
		t.Fatalf("book move not played: %+v", ai)
	}

	if _, err := NewServer(Options{BookPath: filepath.Join(dir, "missing.json"), Logger: zerolog.Nop()}); err == nil {
		t.Fatalf("missing book should fail")
	}
}

func TestAnalyzeStream(t *testing.T) {
	s := newTestServer(t, Options{})
	var st StateResponse
	post(t, s, "/api/new_game", nil, &st)

	srv := httptest.NewServer(s)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/analyze?time_ms=300&game_id=" + st.GameID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var infos int
	for {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode %q: %v", data, err)
		}
		if msg.Type == "info" {
			infos++
			continue
		}
		if msg.Type != "result" {
			continue
		}
		var res AiMoveResponse
		if err := json.Unmarshal(msg.Payload, &res); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		if res.BestMove == nil || res.MoveCount != 0 {
			t.Fatalf("analysis should not change the game: %+v", res)
		}
		break
	}
	if infos == 0 {
		t.Fatalf("no info messages before result")
	}

	resp, err := http.Get(srv.URL + "/api/analyze?game_id=missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("analyze missing game: got=%d", resp.StatusCode)
	}
}

func TestStaticRoutesRedirect(t *testing.T) {
	s := newTestServer(t, Options{WebDir: t.TempDir()})
	tests := []struct {
		ua, query, want string
	}{
		{"Mozilla/5.0 (X11; Linux x86_64)", "", "/web/"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)", "", "/web_mobile/"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)", "?view=pc", "/web/"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
		req.Header.Set("User-Agent", tt.ua)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != tt.want {
			t.Fatalf("ua=%q query=%q: status=%d location=%q", tt.ua, tt.query, rec.Code, rec.Header().Get("Location"))
		}
	}
}
