package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"sprintline/internal/game"
	"sprintline/internal/session"
)

// Recorder receives the append-only audit trail of session activity. The
// journal package provides the real implementation; a nil Recorder
// disables journaling entirely. RecordSession returns a journal id that is
// never reused, even when the allocator slot is; later records for the
// same live session carry that id.
type Recorder interface {
	RecordSession(ctx context.Context, slot int64) (int64, error)
	RecordJoin(ctx context.Context, journalID int64, u game.User, tokens int64) error
	RecordRequest(ctx context.Context, journalID int64, req game.Request) error
}

// Server routes session lifecycle over HTTP and game traffic over
// WebSocket.
type Server struct {
	log      *slog.Logger
	registry *session.Registry
	recorder Recorder
	upgrader websocket.Upgrader

	mu   sync.Mutex
	hubs map[session.ID]*sessionHub
}

type sessionHub struct {
	hub     *Hub
	cancel  context.CancelFunc
	journal int64
}

// NewServer wires a registry and an optional recorder into a Server.
func NewServer(log *slog.Logger, registry *session.Registry, recorder Recorder) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		log:      log,
		registry: registry,
		recorder: recorder,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Game clients are trusted to come from anywhere; commands are
			// authenticated per request by the engine, not by origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		hubs: make(map[session.ID]*sessionHub),
	}
}

// Router returns the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/games", s.handleCreate)
	r.Delete("/games/{id}", s.handleDestroy)
	r.Post("/games/{id}/join", s.handleJoin)
	r.Get("/games/{id}/state", s.handleState)
	r.Get("/games/{id}/ws", s.handleSocket)
	return r
}

// Close shuts down every session hub.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sh := range s.hubs {
		sh.cancel()
		delete(s.hubs, id)
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	id := s.registry.Create()

	var jid int64
	if s.recorder != nil {
		var err error
		jid, err = s.recorder.RecordSession(r.Context(), int64(id))
		if err != nil {
			s.log.Error("journal session", "session_id", int(id), "err", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(s.log.With("session_id", int(id)))
	go hub.Run(ctx)
	s.mu.Lock()
	s.hubs[id] = &sessionHub{hub: hub, cancel: cancel, journal: jid}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, CreateResponse{SessionID: id})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var body JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed join body")
		return
	}

	creds, err := s.registry.Join(id, body.Name)
	switch {
	case errors.Is(err, session.ErrNoSession):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, session.ErrEmptyName):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.recorder != nil {
		g, gerr := s.registry.Game(id)
		if gerr == nil {
			u := g.State().Users[creds.UserID]
			tokens := g.State().Budgets[creds.UserID]
			if jerr := s.recorder.RecordJoin(r.Context(), s.journalID(id), u, tokens); jerr != nil {
				s.log.Error("journal join", "session_id", int(id), "err", jerr)
			}
		}
	}
	writeJSON(w, http.StatusOK, creds)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	g, err := s.registry.Game(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, game.TakeSnapshot(g.State()))
}

func (s *Server) handleDestroy(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := s.registry.Destroy(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.mu.Lock()
	if sh, live := s.hubs[id]; live {
		sh.cancel()
		delete(s.hubs, id)
	}
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	g, err := s.registry.Game(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.mu.Lock()
	sh, live := s.hubs[id]
	s.mu.Unlock()
	if !live {
		writeError(w, http.StatusNotFound, "session has no hub")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("socket upgrade failed", "session_id", int(id), "err", err)
		return
	}

	client := newClient(s, sh.hub, g, sh.journal, conn)
	client.register()

	// New sockets start from the current world and follow updates from
	// there.
	snap := game.TakeSnapshot(g.State())
	client.reply(Envelope{Type: TypeSnapshot, Snapshot: &snap})

	go client.writePump()
	go client.readPump()
}

// journalID returns the journal id for a live session, or zero.
func (s *Server) journalID(id session.ID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh, ok := s.hubs[id]; ok {
		return sh.journal
	}
	return 0
}

// recordRequest journals a submission. Journal failures are logged, never
// surfaced; the audit trail must not gate live resolution.
func (s *Server) recordRequest(jid int64, req game.Request) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordRequest(context.Background(), jid, req); err != nil {
		s.log.Error("journal request",
			"journal_id", jid, "request_id", int64(req.RequestID), "err", err)
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) (session.ID, bool) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return 0, false
	}
	return session.ID(n), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
