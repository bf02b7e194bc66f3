package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/paxtonking/optcgsim-web-sub005/internal/catalog"
	"github.com/paxtonking/optcgsim-web-sub005/internal/game"
	"github.com/paxtonking/optcgsim-web-sub005/internal/session"
	"go.uber.org/zap"
)

// Message is the websocket envelope in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CreateMatchRequest starts a match against a bot.
type CreateMatchRequest struct {
	PlayerID   string   `json:"playerId"`
	LeaderID   string   `json:"leaderId"`
	Deck       []string `json:"deck"`
	BotLeader  string   `json:"botLeaderId"`
	BotDeck    []string `json:"botDeck"`
	Difficulty string   `json:"difficulty"`
}

// CreateMatchResponse returns the new match id and the bot seat id.
type CreateMatchResponse struct {
	MatchID  string `json:"matchId"`
	BotID    string `json:"botId"`
	PlayerID string `json:"playerId"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server is the websocket/http front for hosted matches.
type Server struct {
	logger   *zap.Logger
	sessions *session.Manager
	lookup   catalog.Lookup
	router   *mux.Router
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[string]*client // match id -> player id -> conn
}

type client struct {
	conn     *websocket.Conn
	matchID  string
	playerID string

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// enqueue queues a frame unless the client is shut down. Slow clients drop
// frames rather than block the caller.
func (c *client) enqueue(raw []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- raw:
		return true
	default:
		return false
	}
}

// shutdown closes the send channel exactly once and tears down the
// connection, which unblocks the client's read pump. Safe to call from both
// the registry and the pumps.
func (c *client) shutdown() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	c.conn.Close()
}

// New builds the server and registers it as the session update hook.
func New(sessions *session.Manager, lookup catalog.Lookup, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:   logger,
		sessions: sessions,
		lookup:   lookup,
		router:   mux.NewRouter(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]map[string]*client),
	}
	s.router.HandleFunc("/api/matches", s.handleCreateMatch).Methods(http.MethodPost)
	s.router.HandleFunc("/api/matches/{id}/state", s.handleState).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.handleWS)
	sessions.SetUpdateHook(s.pushViews)
	return s
}

// Handler exposes the router for the http server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" || req.LeaderID == "" || len(req.Deck) == 0 {
		http.Error(w, "playerId, leaderId and deck are required", http.StatusBadRequest)
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "easy"
	}
	botID := "bot-" + req.Difficulty
	botLeader := req.BotLeader
	botDeck := req.BotDeck
	if botLeader == "" {
		botLeader = req.LeaderID
	}
	if len(botDeck) == 0 {
		botDeck = req.Deck
	}

	matchID, err := s.sessions.CreateSession([]session.SeatConfig{
		{PlayerID: req.PlayerID, LeaderID: req.LeaderID, DeckCardIDs: req.Deck},
		{PlayerID: botID, LeaderID: botLeader, DeckCardIDs: botDeck, Bot: true, Difficulty: req.Difficulty},
	}, s.lookup, time.Now().UnixNano())
	if err != nil {
		s.logger.Warn("create match failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(CreateMatchResponse{
		MatchID:  matchID,
		BotID:    botID,
		PlayerID: req.PlayerID,
	})
}

// handleState serves the redacted view over plain http. Reconnection is
// idempotent: requesting state has no side effects.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	playerID := r.URL.Query().Get("player_id")

	view, err := s.sessions.View(matchID, playerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("match_id")
	playerID := r.URL.Query().Get("player_id")
	if matchID == "" || playerID == "" {
		http.Error(w, "match_id and player_id are required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn:     conn,
		send:     make(chan []byte, 64),
		matchID:  matchID,
		playerID: playerID,
	}
	s.register(c)
	s.sessions.MarkConnected(matchID, playerID)

	go c.writePump()
	go s.readPump(c)

	// Push the current view immediately so a reconnecting client catches up.
	s.pushViewTo(c)
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[c.matchID] == nil {
		s.clients[c.matchID] = make(map[string]*client)
	}
	if old, ok := s.clients[c.matchID][c.playerID]; ok {
		// The replaced seat is fully torn down here: closing its connection
		// forces the old read pump to exit instead of racing the new client.
		old.shutdown()
	}
	s.clients[c.matchID][c.playerID] = c
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	current := false
	if cur, ok := s.clients[c.matchID][c.playerID]; ok && cur == c {
		delete(s.clients[c.matchID], c.playerID)
		current = true
	}
	s.mu.Unlock()
	c.shutdown()
	// A client replaced by a reconnect must not mark the fresh seat as gone.
	if current {
		s.sessions.MarkDisconnected(c.matchID, c.playerID)
	}
}

func (s *Server) readPump(c *client) {
	defer s.unregister(c)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("MALFORMED", "invalid message envelope")
			continue
		}
		switch msg.Type {
		case "action":
			var action game.Action
			if err := json.Unmarshal(msg.Data, &action); err != nil {
				c.sendError("MALFORMED", "invalid action payload")
				continue
			}
			if err := s.sessions.SubmitAction(c.matchID, c.playerID, action); err != nil {
				c.sendError(errorCode(err), err.Error())
			}
		case "view":
			s.pushViewTo(c)
		default:
			c.sendError("UNKNOWN_ACTION", "unknown message type "+msg.Type)
		}
	}
}

func errorCode(err error) string {
	switch {
	case game.IsRuleViolation(err):
		return "RULE_VIOLATION"
	case game.IsMalformedPayload(err):
		return "MALFORMED"
	case game.IsStateCorruption(err):
		return "MATCH_VOIDED"
	default:
		return "INTERNAL"
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) sendError(code, message string) {
	data, _ := json.Marshal(errorPayload{Code: code, Message: message})
	raw, _ := json.Marshal(Message{Type: "error", Data: data})
	c.enqueue(raw)
}

// pushViews delivers fresh per-seat views to every connected client of the
// match. Each seat only ever sees its own redaction.
func (s *Server) pushViews(matchID string) {
	s.mu.RLock()
	conns := make([]*client, 0, 2)
	for _, c := range s.clients[matchID] {
		conns = append(conns, c)
	}
	s.mu.RUnlock()

	for _, c := range conns {
		s.pushViewTo(c)
	}
}

func (s *Server) pushViewTo(c *client) {
	view, err := s.sessions.View(c.matchID, c.playerID)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		s.logger.Warn("view marshal failed", zap.Error(err))
		return
	}
	raw, _ := json.Marshal(Message{Type: "view", Data: data})
	if !c.enqueue(raw) {
		s.logger.Debug("dropping view push, slow or closed client",
			zap.String("match_id", c.matchID),
			zap.String("player_id", c.playerID),
		)
	}
}
