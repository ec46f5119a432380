package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"zoushogi/internal/engine"
	"zoushogi/internal/shogi"
)

var ErrGameNotFound = errors.New("game not found")

// sharedEngine 所有对局共用一个引擎，同一时间只跑一个搜索。
type sharedEngine struct {
	mu sync.Mutex
	e  *engine.Engine
}

func (s *sharedEngine) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.e.Reset()
}

// Manager 管理所有对局。置换表只有一份，开新局时清空。
type Manager struct {
	mu    sync.RWMutex
	games map[string]*GameState

	eng *sharedEngine
	log zerolog.Logger
}

func NewManager(cfg engine.Config, book engine.Book) *Manager {
	eng := engine.NewEngine(cfg)
	if book != nil {
		eng.SetBook(book)
	}
	return &Manager{
		games: make(map[string]*GameState),
		eng:   &sharedEngine{e: eng},
		log:   cfg.Logger,
	}
}

// NewGame 从 sfen 开局；空串为平手初始局面。
func (m *Manager) NewGame(sfen string) (*GameState, error) {
	pos := shogi.NewInitialPosition()
	if sfen != "" {
		var err error
		if pos, err = shogi.DecodeSFEN(sfen); err != nil {
			return nil, err
		}
	}
	m.eng.reset()

	id := uuid.NewString()
	g := newGameState(id, sfen, pos, m.eng)

	m.mu.Lock()
	m.games[id] = g
	n := len(m.games)
	m.mu.Unlock()

	m.log.Info().Str("game", id).Int("games", n).Msg("game created")
	return g, nil
}

func (m *Manager) Get(id string) (*GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return ErrGameNotFound
	}
	delete(m.games, id)
	m.log.Info().Str("game", id).Int("games", len(m.games)).Msg("game deleted")
	return nil
}

// EvictIdle 删除超过 maxIdle 没有动过的对局，返回删除数。
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, g := range m.games {
		if g.UpdatedAt().Before(cutoff) {
			delete(m.games, id)
			n++
		}
	}
	if n > 0 {
		m.log.Info().Int("evicted", n).Int("games", len(m.games)).Msg("idle games evicted")
	}
	return n
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
