package engine

import "sync"

// Registry tracks live conversations for the HTTP layer. Discarded
// conversations are simply removed; only the derived ledger record
// persists.
type Registry struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conversations: make(map[string]*Conversation)}
}

// Add registers a conversation under its id.
func (r *Registry) Add(conv *Conversation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[conv.ID()] = conv
}

// Get looks up a live conversation.
func (r *Registry) Get(id string) (*Conversation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.conversations[id]
	return conv, ok
}

// Remove drops a conversation from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conversations, id)
}
