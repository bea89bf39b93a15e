// Package server bridges one or more lineterm sessions to HTTP
// clients: a per-session WebSocket "line" event feed and a chunked
// pushed-stream endpoint, mirroring the gin+gorilla/websocket pairing
// used for buffer streaming elsewhere in the retrieved pack.
package server

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lineterm/lineterm"
)

// lineEvent is the envelope broadcast to WebSocket clients, tagging
// each line with the session that produced it.
type lineEvent struct {
	Session string `json:"session"`
	Line    string `json:"line"`
}

// streamClient is one open chunked-HTTP connection subscribed to a
// Session's pushed-stream surface.
type streamClient struct {
	w       io.Writer
	flusher http.Flusher
}

// Session wraps one running Adapter with the identity and subscriber
// bookkeeping the server needs to route events to it. Session itself
// implements io.Writer, so it can be passed directly as
// lineterm.WithStream(session), fanning each written line out to
// every connected chunked-HTTP client.
type Session struct {
	ID      string
	Adapter *lineterm.Adapter

	mu            sync.Mutex
	clients       map[*websocket.Conn]struct{}
	streamClients map[*streamClient]struct{}
	log           zerolog.Logger
}

// NewSession creates a Session with no Adapter attached yet. Build the
// Adapter with this session's Broadcast method as lineterm.WithLineEvent
// and the session itself as lineterm.WithStream, then assign it to
// Session.Adapter before the adapter starts receiving chunks.
func NewSession(id string, log zerolog.Logger) *Session {
	s := &Session{
		ID:            id,
		clients:       make(map[*websocket.Conn]struct{}),
		streamClients: make(map[*streamClient]struct{}),
		log:           log.With().Str("session_id", id).Logger(),
	}
	return s
}

// Write implements io.Writer, fanning p out to every connected
// chunked-HTTP stream client. A client that errors is dropped; Write
// itself never fails on their account.
func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	clients := make([]*streamClient, 0, len(s.streamClients))
	for c := range s.streamClients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if _, err := c.w.Write(p); err != nil {
			s.removeStreamClient(c)
			continue
		}
		c.flusher.Flush()
	}
	return len(p), nil
}

func (s *Session) addStreamClient(c *streamClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streamClients[c] = struct{}{}
}

func (s *Session) removeStreamClient(c *streamClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.streamClients, c)
}

// Broadcast sends line to every connected WebSocket client for this
// session. Intended to be passed as a lineterm.WithLineEvent callback.
func (s *Session) Broadcast(line string) {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	evt := lineEvent{Session: s.ID, Line: line}
	for _, c := range conns {
		if err := c.WriteJSON(evt); err != nil {
			s.log.Debug().Err(err).Msg("dropping unresponsive websocket client")
			s.removeClient(c)
			c.Close()
		}
	}
}

func (s *Session) addClient(c *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
}

func (s *Session) removeClient(c *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
}

// Server registers lineterm sessions and exposes them over HTTP.
type Server struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// New builds a Server with no registered sessions.
func New(log zerolog.Logger) *Server {
	return &Server{
		sessions: make(map[string]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Register adds a session so it is reachable at /stream/:session and
// /ws/:session.
func (srv *Server) Register(s *Session) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.sessions[s.ID] = s
}

// Unregister removes a session, e.g. once its child process exits.
func (srv *Server) Unregister(id string) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	delete(srv.sessions, id)
}

func (srv *Server) lookup(id string) (*Session, bool) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	s, ok := srv.sessions[id]
	return s, ok
}

// Routes builds the gin engine exposing /health, /ws/:session, and
// /stream/:session.
func (srv *Server) Routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ws/:session", srv.handleWebSocket)
	router.GET("/stream/:session", srv.handleStream)

	return router
}

func (srv *Server) handleWebSocket(c *gin.Context) {
	id := c.Param("session")
	sess, ok := srv.lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	conn, err := srv.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		srv.log.Warn().Err(err).Str("session_id", id).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sess.addClient(conn)
	defer sess.removeClient(conn)

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Drain and discard client frames; this feed is one-directional.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// handleStream implements the §6 "Pushed stream" surface over a
// chunked HTTP response: every finalized line, newline-terminated.
func (srv *Server) handleStream(c *gin.Context) {
	id := c.Param("session")
	sess, ok := srv.lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Transfer-Encoding", "chunked")
	c.Status(http.StatusOK)

	client := &streamClient{w: c.Writer, flusher: c.Writer}
	sess.addStreamClient(client)
	defer sess.removeStreamClient(client)

	c.Writer.Flush()
	<-c.Request.Context().Done()
}
