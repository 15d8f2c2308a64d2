package wordchain

import (
	"sync"
	"time"
)

// StakePrompt is a pending custom-stake entry: the owner's next plain-text
// message in the chat is read as the stake.
type StakePrompt struct {
	UserID    int64
	CreatedAt time.Time
}

// Registry holds at most one game and at most one stake prompt per chat.
// The mutex only guards the maps; callers serialize per-chat work with the
// chat lock.
type Registry struct {
	games   map[int64]*Game
	prompts map[int64]StakePrompt
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		games:   make(map[int64]*Game),
		prompts: make(map[int64]StakePrompt),
	}
}

// Get returns the game of a chat.
func (r *Registry) Get(chatID int64) (*Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[chatID]
	return g, ok
}

// Add registers a game and drops the chat's stake prompt. It fails if the
// chat already has a game.
func (r *Registry) Add(g *Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.games[g.ChatID]; exists {
		return ErrGameExists
	}
	r.games[g.ChatID] = g
	delete(r.prompts, g.ChatID)
	return nil
}

// Remove unregisters g. Another game registered for the same chat is left alone.
func (r *Registry) Remove(g *Game) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.games[g.ChatID]; ok && cur == g {
		delete(r.games, g.ChatID)
		return true
	}
	return false
}

// IsLive reports whether g is still the registered game of its chat.
func (r *Registry) IsLive(g *Game) bool {
	cur, ok := r.Get(g.ChatID)
	return ok && cur == g
}

// Count returns the number of registered games.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// Prompt returns the pending stake prompt of a chat.
func (r *Registry) Prompt(chatID int64) (StakePrompt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prompts[chatID]
	return p, ok
}

// SetPrompt registers a stake prompt, replacing any previous one.
func (r *Registry) SetPrompt(chatID int64, p StakePrompt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[chatID] = p
}

// ClearPrompt removes the stake prompt of a chat.
func (r *Registry) ClearPrompt(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.prompts, chatID)
}
