// Package registry owns session state: bearer reconnect tokens and the
// binding of logged-in users to their live connections. Tokens outlive
// connections; a user who drops can reconnect with their token without
// re-supplying credentials.
package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gamehall/gamehall/internal/dependencies/random"
	"github.com/gamehall/gamehall/internal/docstore"
	"github.com/gamehall/gamehall/internal/model"
)

// Conn is a live client connection the broadcaster can push to
type Conn interface {
	// Send writes one JSON message onto the connection
	Send(v any) error
}

// Registry maps tokens to identities and user ids to live connections
type Registry struct {
	store  docstore.Collections
	random random.Random
	logger *slog.Logger

	mu     sync.RWMutex
	tokens map[string]model.Identity
	online map[string]Conn
}

// New creates a session registry backed by the users collection
func New(store docstore.Collections, rnd random.Random, logger *slog.Logger) *Registry {
	return &Registry{
		store:  store,
		random: rnd,
		logger: logger.With(slog.String("component", "registry")),
		tokens: make(map[string]model.Identity),
		online: make(map[string]Conn),
	}
}

// Register creates a new player account. Fails if the username is taken.
func (r *Registry) Register(ctx context.Context, username, password string) error {
	var users model.UserTable
	if err := r.store.Load(ctx, docstore.CollectionUsers, &users); err != nil {
		return err
	}
	if users.Players == nil {
		users.Players = make(map[string]model.User)
	}
	if _, ok := users.Players[username]; ok {
		return model.ErrUserExists
	}
	users.Players[username] = model.User{Password: password, Data: map[string]any{}}
	return r.store.UpdateAll(ctx, docstore.CollectionUsers, &users)
}

// Login validates credentials against the users collection and mints a
// fresh session token. Player accounts are checked first, then developer
// accounts.
func (r *Registry) Login(ctx context.Context, username, password string) (string, model.Identity, error) {
	var users model.UserTable
	if err := r.store.Load(ctx, docstore.CollectionUsers, &users); err != nil {
		return "", model.Identity{}, err
	}

	identity := model.Identity{ID: username}
	switch {
	case matches(users.Players, username, password):
		identity.Type = model.UserTypePlayer
	case matches(users.Devs, username, password):
		identity.Type = model.UserTypeDev
	default:
		return "", model.Identity{}, model.ErrInvalidCredentials
	}

	token := r.random.UUID()
	r.mu.Lock()
	r.tokens[token] = identity
	r.mu.Unlock()

	r.logger.Info("login", slog.String("user", username), slog.String("type", string(identity.Type)))
	return token, identity, nil
}

// matches compares the stored password as an opaque string
func matches(accounts map[string]model.User, username, password string) bool {
	account, ok := accounts[username]
	return ok && account.Password == password
}

// Reconnect resolves a previously issued token to its identity. The token
// stays valid; no new token is minted.
func (r *Registry) Reconnect(token string) (model.Identity, error) {
	r.mu.RLock()
	identity, ok := r.tokens[token]
	r.mu.RUnlock()
	if !ok {
		return model.Identity{}, model.ErrInvalidToken
	}
	return identity, nil
}

// Logout invalidates the token. The live connection binding, if any, is
// removed separately by the disconnect path.
func (r *Registry) Logout(token string) {
	r.mu.Lock()
	delete(r.tokens, token)
	r.mu.Unlock()
}

// Bind records userID's live connection. A second login for the same user
// overwrites the previous binding.
func (r *Registry) Bind(userID string, conn Conn) {
	r.mu.Lock()
	r.online[userID] = conn
	r.mu.Unlock()
	r.logger.Info("user online", slog.String("user", userID))
}

// Unbind drops the live connection binding. Reconnect tokens are untouched.
func (r *Registry) Unbind(userID string) {
	r.mu.Lock()
	_, wasOnline := r.online[userID]
	delete(r.online, userID)
	r.mu.Unlock()
	if wasOnline {
		r.logger.Info("user offline", slog.String("user", userID))
	}
}

// Connection returns userID's live connection if one exists
func (r *Registry) Connection(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.online[userID]
	return conn, ok
}
