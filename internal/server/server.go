package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"liar-server/internal/game"
	"liar-server/internal/store"
)

// A connection may send at most this many messages per second before
// being dropped on the floor.
const (
	rateLimitMessages = 10
	rateLimitWindow   = time.Second
)

type Server struct {
	port        int
	store       store.RoomStore
	engine      *game.Engine
	sessions    *SessionManager
	connections *ConnectionManager
	hub         *Hub
	scheduler   *PhaseScheduler
	limiter     *RateLimiter
	locks       *roomLocks
	closeStore  func()
}

// NewServer wires the production server: Postgres store with
// migrations applied, engine config from the environment.
func NewServer() (*Server, *http.Server) {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	if err := store.Migrate(connString); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	pg, err := store.NewPostgresStore(context.Background(), connString)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	s := newServer(pg, game.ConfigFromEnv(), port)
	s.closeStore = pg.Close

	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     s.RegisterRoutes(),
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
	}

	return s, httpServer
}

// newServer builds a Server around any RoomStore. Tests use it with the
// in-memory store.
func newServer(st store.RoomStore, cfg game.Config, port int) *Server {
	s := &Server{
		port:        port,
		store:       st,
		engine:      game.NewEngine(st, cfg),
		sessions:    NewSessionManager(),
		connections: NewConnectionManager(),
		limiter:     NewRateLimiter(rateLimitMessages, rateLimitWindow),
		locks:       newRoomLocks(),
	}
	s.hub = NewHub(st, s.connections)
	s.scheduler = NewPhaseScheduler(s.onPhaseExpiry)
	return s
}

// onPhaseExpiry is the scheduler callback. It takes the same per-room
// lock as client messages, so a timer firing concurrently with a vote
// observes a consistent snapshot.
func (s *Server) onPhaseExpiry(code string, phase store.RoomStatus) {
	ctx := context.Background()

	lock := s.locks.get(code)
	lock.Lock()
	defer lock.Unlock()

	var res game.Result
	var err error

	switch phase {
	case store.StatusPlaying:
		res, err = s.engine.ExpirePlaying(ctx, code)
	case store.StatusVoting:
		res, err = s.engine.ExpireVoting(ctx, code)
	default:
		return
	}

	if err != nil {
		// Timers are not retried; the room heals on the next message or
		// timer that reaches it.
		log.Error().Err(err).Str("room", code).Str("phase", string(phase)).Msg("phase expiry failed")
		return
	}

	s.applyResult(code, res)
}

// applyResult arms/cancels timers and broadcasts as the engine asked.
// Callers hold the room lock.
func (s *Server) applyResult(code string, res game.Result) {
	if res.CancelTimer {
		s.scheduler.Cancel(code)
	}
	if res.ArmPhase != "" {
		s.scheduler.Arm(code, res.ArmPhase, res.ArmIn)
	}
	if res.Changed {
		s.hub.BroadcastRoom(context.Background(), code)
	}
}

// Shutdown stops pending phase timers and releases the store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.scheduler.Stop()
	if s.closeStore != nil {
		s.closeStore()
	}
	return nil
}

// roomLocks hands out one mutex per room code so per-room mutations and
// their broadcasts serialize while unrelated rooms proceed in parallel.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[string]*sync.Mutex)}
}

func (rl *roomLocks) get(code string) *sync.Mutex {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if lock, exists := rl.locks[code]; exists {
		return lock
	}
	lock := &sync.Mutex{}
	rl.locks[code] = lock
	return lock
}
