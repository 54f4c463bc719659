package models

import (
	"sort"
	"sync"
)

// Registry maps guild ids to their workflows. One registry exists per
// process: populated from the persisted snapshot at startup, mutated for
// the life of the process, flushed back at shutdown. It is an explicit
// object passed to whoever needs it, never package-level state.
//
// Domain methods on Workflow and below take no locks of their own. The
// registry therefore hands out a per-guild mutex: handler goroutines that
// mutate a guild's workflow do so under WithWorkflow, which serializes all
// domain calls for that guild. Different guilds never contend because no
// cross-guild references exist.
type Registry struct {
	mu         sync.RWMutex
	workflows  map[string]*Workflow
	guildLocks map[string]*sync.Mutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		workflows:  make(map[string]*Workflow),
		guildLocks: make(map[string]*sync.Mutex),
	}
}

// Workflow returns the workflow for a guild, if one exists.
func (r *Registry) Workflow(guildID string) (*Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workflows[guildID]
	return w, ok
}

// Ensure returns the workflow for a guild, creating an empty one if the
// guild is new.
func (r *Registry) Ensure(guildID string) *Workflow {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.workflows[guildID]; ok {
		return w
	}
	w := NewWorkflow()
	r.workflows[guildID] = w
	r.guildLocks[guildID] = &sync.Mutex{}
	return w
}

// Put installs a workflow for a guild, replacing any existing one. Used by
// the snapshot codec during reconstruction.
func (r *Registry) Put(guildID string, w *Workflow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workflows[guildID] = w
	if _, ok := r.guildLocks[guildID]; !ok {
		r.guildLocks[guildID] = &sync.Mutex{}
	}
}

// Remove drops a guild's workflow entirely.
func (r *Registry) Remove(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workflows, guildID)
	delete(r.guildLocks, guildID)
}

// GuildIDs returns all guild ids in sorted order.
func (r *Registry) GuildIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.workflows))
	for id := range r.workflows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of guilds held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workflows)
}

// WithWorkflow runs fn against the guild's workflow while holding that
// guild's mutex, creating the workflow if needed. All handler mutations for
// one guild must go through here so domain calls never interleave.
func (r *Registry) WithWorkflow(guildID string, fn func(*Workflow) error) error {
	r.mu.Lock()
	w, ok := r.workflows[guildID]
	if !ok {
		w = NewWorkflow()
		r.workflows[guildID] = w
		r.guildLocks[guildID] = &sync.Mutex{}
	}
	lock := r.guildLocks[guildID]
	if lock == nil {
		lock = &sync.Mutex{}
		r.guildLocks[guildID] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(w)
}
