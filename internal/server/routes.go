package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"liar-server/internal/game"
	"liar-server/internal/store"
)

func (s *Server) RegisterRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("POST /api/rooms", s.createRoomHandler)
	mux.HandleFunc("POST /api/rooms/join", s.joinRoomHandler)
	mux.HandleFunc("/ws", s.websocketHandler)

	return s.corsMiddleware(mux)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*") // TODO: restrict to the deployed frontend origin
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createRoomHandler is the out-of-band handshake that seeds the Room
// and host Player rows the realtime engine operates on.
func (s *Server) createRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Message: "Invalid input"})
		return
	}

	if err := ValidateName(req.Name); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Message: err.Error()})
		return
	}

	rounds := req.Rounds
	if rounds < 1 {
		rounds = 1
	}

	ctx := r.Context()
	sessionID := uuid.New().String()

	// Generate until the code is free; the unique constraint is the
	// arbiter under concurrent creates.
	var room *store.Room
	for {
		code := GenerateRoomCode()
		created, err := s.store.CreateRoom(ctx, code, sessionID, rounds)
		if errors.Is(err, store.ErrCodeTaken) {
			continue
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to create room")
			writeJSON(w, http.StatusInternalServerError, APIError{Message: "Failed to create room"})
			return
		}
		room = created
		break
	}

	player, err := s.store.AddPlayer(ctx, room.ID, sessionID, req.Name)
	if err != nil {
		log.Error().Err(err).Str("room", room.Code).Msg("failed to add host player")
		writeJSON(w, http.StatusInternalServerError, APIError{Message: "Failed to create room"})
		return
	}

	s.sessions.StoreSession(SessionInfo{
		Token:    sessionID,
		RoomCode: room.Code,
		PlayerID: player.ID,
		Name:     player.Name,
	})

	log.Info().Str("room", room.Code).Int("rounds", rounds).Msg("room created")
	writeJSON(w, http.StatusCreated, HandshakeResponse{
		Code:      room.Code,
		SessionID: sessionID,
		PlayerID:  player.ID,
	})
}

func (s *Server) joinRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Message: "Invalid input"})
		return
	}

	code := NormalizeRoomCode(req.Code)
	if err := ValidateRoomCode(code); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Message: err.Error()})
		return
	}
	if err := ValidateName(req.Name); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Message: err.Error()})
		return
	}

	ctx := r.Context()

	room, err := s.store.GetRoom(ctx, code)
	if errors.Is(err, store.ErrRoomNotFound) {
		writeJSON(w, http.StatusNotFound, APIError{Message: "Room not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("failed to load room for join")
		writeJSON(w, http.StatusInternalServerError, APIError{Message: "Failed to join room"})
		return
	}

	if room.Status != store.StatusWaiting {
		writeJSON(w, http.StatusConflict, APIError{Message: "Game already started"})
		return
	}

	sessionID := uuid.New().String()
	player, err := s.store.AddPlayer(ctx, room.ID, sessionID, req.Name)
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("failed to add player")
		writeJSON(w, http.StatusInternalServerError, APIError{Message: "Failed to join room"})
		return
	}

	s.sessions.StoreSession(SessionInfo{
		Token:    sessionID,
		RoomCode: room.Code,
		PlayerID: player.ID,
		Name:     player.Name,
	})

	log.Info().Str("room", room.Code).Str("player", player.Name).Msg("player joined room")
	writeJSON(w, http.StatusOK, HandshakeResponse{
		Code:      room.Code,
		SessionID: sessionID,
		PlayerID:  player.ID,
	})
}

// websocketHandler runs the per-connection dispatch loop. Until a
// join/reconnect binds a session, every other message kind is dropped.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // TODO: make environment-specific
	})
	if err != nil {
		http.Error(w, "Failed to open websocket", http.StatusInternalServerError)
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "Server closing")

	ctx := r.Context()

	connectionID := uuid.New().String()
	log.Debug().Str("conn", connectionID).Msg("new connection")
	s.connections.AddConnection(connectionID, socket)

	defer func() {
		// Closing a connection only unbinds it. The player's room state
		// is untouched and the session token stays valid for reconnect.
		s.connections.RemoveConnection(connectionID)
		s.limiter.RemoveConnection(connectionID)
		log.Debug().Str("conn", connectionID).Msg("connection closed")
	}()

	// Session bound to this connection by join/reconnect.
	var boundToken, boundRoom string

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			log.Debug().Err(err).Str("conn", connectionID).Msg("read loop ended")
			return
		}

		if msgType != websocket.MessageText {
			log.Debug().Str("conn", connectionID).Msg("non-text input dropped")
			continue
		}

		if !s.limiter.Allow(connectionID) {
			log.Warn().Str("conn", connectionID).Msg("rate limited, message dropped")
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug().Err(err).Str("conn", connectionID).Msg("invalid JSON")
			s.sendError(ctx, socket, "Invalid JSON")
			continue
		}

		switch msg.Type {
		case "ping":
			s.sendMessage(ctx, socket, PongMessage{Type: "pong"})

		case "join", "reconnect":
			if token, room, ok := s.handleJoin(ctx, socket, connectionID, msg); ok {
				boundToken, boundRoom = token, room
			}

		case "start_game", "vote", "ready", "play_again":
			if boundToken == "" {
				log.Debug().Str("conn", connectionID).Str("type", msg.Type).Msg("message before join dropped")
				continue
			}
			s.dispatchGameMessage(ctx, boundToken, boundRoom, msg)

		default:
			log.Debug().Str("conn", connectionID).Str("type", msg.Type).Msg("unknown message type dropped")
		}
	}
}

// handleJoin validates the presented session token against its Player
// row, binds the connection and pushes current state so the (re)joining
// client does not wait for the next mutation.
func (s *Server) handleJoin(ctx context.Context, socket *websocket.Conn, connectionID string, msg ClientMessage) (string, string, bool) {
	code := NormalizeRoomCode(msg.Code)

	player, err := s.store.GetPlayer(ctx, msg.SessionID)
	if err != nil {
		// Unknown sessions are ignored, not answered.
		log.Debug().Err(err).Str("conn", connectionID).Msg("join with unknown session dropped")
		return "", "", false
	}

	room, err := s.store.GetRoom(ctx, code)
	if err != nil || room.ID != player.RoomID {
		log.Debug().Str("conn", connectionID).Str("room", code).Msg("join for mismatched room dropped")
		return "", "", false
	}

	// Rebind, closing any stale connection for this session.
	if old := s.connections.BindToken(msg.SessionID, connectionID); old != "" {
		if oldConn := s.connections.GetConnection(old); oldConn != nil {
			s.sendMessage(context.Background(), oldConn, DisconnectedElsewhereMessage{
				Type:    "disconnected_elsewhere",
				Message: "You connected on another device",
			})
			oldConn.Close(websocket.StatusNormalClosure, "Connected from another device")
		}
		s.connections.RemoveConnection(old)
	}

	s.sessions.StoreSession(SessionInfo{
		Token:    msg.SessionID,
		RoomCode: code,
		PlayerID: player.ID,
		Name:     player.Name,
	})

	log.Info().Str("room", code).Str("player", player.Name).Msg("session bound")
	s.hub.BroadcastRoom(context.Background(), code)

	return msg.SessionID, code, true
}

// dispatchGameMessage serializes the engine operation and the following
// broadcast under the room's lock.
func (s *Server) dispatchGameMessage(ctx context.Context, token, code string, msg ClientMessage) {
	lock := s.locks.get(code)
	lock.Lock()
	defer lock.Unlock()

	var res game.Result
	var err error

	switch msg.Type {
	case "start_game":
		res, err = s.engine.StartGame(ctx, code, token)
	case "vote":
		res, err = s.engine.Vote(ctx, code, token, msg.TargetID)
	case "ready":
		res, err = s.engine.Ready(ctx, code, token)
	case "play_again":
		res, err = s.engine.PlayAgain(ctx, code, token)
	}

	if err != nil {
		// Storage failure: abandon the mutation, send no partial
		// broadcast, keep the connection usable.
		log.Error().Err(err).Str("room", code).Str("type", msg.Type).Msg("engine operation failed")
		return
	}

	s.applyResult(code, res)
}

func (s *Server) sendMessage(ctx context.Context, socket *websocket.Conn, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal message")
		return
	}
	if err := socket.Write(ctx, websocket.MessageText, data); err != nil {
		log.Debug().Err(err).Msg("failed to write message")
	}
}

func (s *Server) sendError(ctx context.Context, socket *websocket.Conn, message string) {
	s.sendMessage(ctx, socket, ErrorMessage{Type: "error", Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
