package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"zoushogi/internal/book"
	"zoushogi/internal/engine"
	"zoushogi/internal/server/game"
)

// Options 服务端配置
type Options struct {
	Engine    engine.Config
	BookPath  string        // 定跡 JSON，空串不用定跡
	ThinkTime time.Duration // 请求没给 time_ms 时 AI 的思考时间
	WebDir    string        // 桌面端静态文件，空串不挂静态路由
	MobileDir string        // 移动端静态文件，空串同 WebDir
	Logger    zerolog.Logger
}

// Server 路由 + 对局管理
type Server struct {
	h     http.Handler
	games *game.Manager
}

func NewServer(opts Options) (*Server, error) {
	var bk engine.Book
	if opts.BookPath != "" {
		b, err := book.LoadFile(opts.BookPath)
		if err != nil {
			return nil, err
		}
		opts.Logger.Info().Str("path", opts.BookPath).Int("positions", b.Len()).Msg("book loaded")
		bk = b
	}
	if opts.Engine.Logger.GetLevel() == zerolog.Disabled {
		opts.Engine.Logger = opts.Logger
	}
	games := game.NewManager(opts.Engine, bk)
	h := NewHandler(games, opts.Logger, opts.ThinkTime)
	return &Server{h: newRouter(h, opts), games: games}, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.h.ServeHTTP(w, r)
}

func (s *Server) Games() *game.Manager {
	return s.games
}

func newRouter(h *Handler, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/new_game", h.handleNewGame)
		r.Post("/play", h.handlePlay)
		r.Post("/state", h.handleState)
		r.Post("/ai_move", h.handleAiMove)
		r.Post("/undo", h.handleUndo)
		r.Post("/tsume", h.handleTsume)
		r.Post("/resign", h.handleResign)
		r.Post("/restart", h.handleRestart)
		r.Get("/games/{id}/kif", h.handleKIF)
		r.Delete("/games/{id}", h.handleDeleteGame)
		r.Get("/analyze", h.serveAnalyze)
	})

	if opts.WebDir != "" {
		RegisterStaticRoutes(r, opts.WebDir, opts.MobileDir)
	}
	return r
}

// requestLogger 用 zerolog 记录每个请求
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info().
				Str("req_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}
