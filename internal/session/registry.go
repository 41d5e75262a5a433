package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"sprintline/internal/engine"
	"sprintline/internal/game"
)

var (
	// ErrNoSession is returned when an id names no live session.
	ErrNoSession = errors.New("no such session")
	// ErrEmptyName is returned when a join carries a blank display name.
	ErrEmptyName = errors.New("display name must not be empty")
)

// Credentials are handed to a user on join and accompany every later
// request from that user.
type Credentials struct {
	SessionID ID          `json:"session_id"`
	UserID    game.UserID `json:"user_id"`
	Authcode  int64       `json:"authcode"`
	Role      game.Role   `json:"role"`
}

// Registry owns every live Game. It creates sessions through the
// allocator, registers joining users with fresh credentials, and destroys
// sessions so their ids return to the free pool. All methods are safe for
// concurrent use.
type Registry struct {
	mu         sync.Mutex
	log        *slog.Logger
	alloc      *Allocator
	auth       Authcoder
	joinTokens int64
}

// NewRegistry returns a Registry issuing authcodes from auth and seeding
// every joining user with joinTokens free tokens.
func NewRegistry(log *slog.Logger, auth Authcoder, joinTokens int64) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:        log,
		alloc:      NewAllocator(),
		auth:       auth,
		joinTokens: joinTokens,
	}
}

// Create allocates a new session around an empty game and returns its id.
func (r *Registry) Create() ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.alloc.Allocate(engine.NewGame(r.log))
	r.log.Info("session created", "session_id", int(id))
	return id
}

// Game returns the live game for id.
func (r *Registry) Game(id ID) (*engine.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.alloc.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %d: %w", id, ErrNoSession)
	}
	return g, nil
}

// Join registers a named user on the session and returns their
// credentials. Names are normalized to NFC so visually identical names
// compare equal regardless of the client's composition form. The first
// user to join a session becomes its LEADER.
func (r *Registry) Join(id ID, name string) (Credentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.alloc.Get(id)
	if !ok {
		return Credentials{}, fmt.Errorf("session %d: %w", id, ErrNoSession)
	}

	name = strings.TrimSpace(norm.NFC.String(name))
	if name == "" {
		return Credentials{}, ErrEmptyName
	}

	users := g.State().Users
	role := game.RoleUser
	if len(users) == 0 {
		role = game.RoleLeader
	}
	u := game.User{
		ID:       game.UserID(len(users) + 1),
		Name:     name,
		Authcode: r.auth.Authcode(),
		Role:     role,
	}
	if err := g.Join(u, r.joinTokens); err != nil {
		return Credentials{}, err
	}
	r.log.Info("user joined session",
		"session_id", int(id), "user_id", int64(u.ID), "role", role.String())
	return Credentials{
		SessionID: id,
		UserID:    u.ID,
		Authcode:  u.Authcode,
		Role:      role,
	}, nil
}

// Destroy frees the session and returns its id to the pool.
func (r *Registry) Destroy(id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.alloc.Release(id); err != nil {
		return fmt.Errorf("destroy: %w", err)
	}
	r.log.Info("session destroyed", "session_id", int(id))
	return nil
}

// Live returns the number of live sessions.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alloc.Live()
}
