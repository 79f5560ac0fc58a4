package relay

import (
	"sync"

	"cipherchat/domain"
)

// Member pairs a connected group member with its live sink for fan-out.
type Member struct {
	Identity string
	Sink     Sink
}

// Registry is the server's shared mutable state: live connections, the
// public key directory, and group membership sets. One instance is owned
// by the server process, hydrated from persistence at startup and
// injected into the dispatcher.
//
// Connections are purely in-memory and rebuilt on restart. Keys and
// groups mirror persistence; the registry is the read path on the
// message hot path, persistence is only touched on mutation.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]Sink
	keys        map[string]string
	groups      map[string]domain.Set
}

// NewRegistry builds a registry hydrated with the persisted key directory
// and group memberships. Either map may be nil.
func NewRegistry(keys map[string]string, groups map[string]domain.Set) *Registry {
	if keys == nil {
		keys = make(map[string]string)
	}
	if groups == nil {
		groups = make(map[string]domain.Set)
	}
	return &Registry{
		connections: make(map[string]Sink),
		keys:        keys,
		groups:      groups,
	}
}

// Connect claims an identity for a live connection. The check and insert
// happen under one lock so two simultaneous logins with the same identity
// can never both win.
func (r *Registry) Connect(identity string, sink Sink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.connections[identity]; taken {
		return false
	}
	r.connections[identity] = sink
	return true
}

// Disconnect drops the identity's live connection. Group membership is
// deliberately left untouched so a reconnecting member regains group
// access without rejoining.
func (r *Registry) Disconnect(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connections, identity)
}

// DisconnectIf drops the identity's connection only if it is still the
// given sink. Lazy eviction after a failed write goes through here so a
// session that reconnected in the meantime is never evicted by the
// stale failure.
func (r *Registry) DisconnectIf(identity string, sink Sink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connections[identity] != sink {
		return false
	}
	delete(r.connections, identity)
	return true
}

// Connection returns the live sink for an identity, if any.
func (r *Registry) Connection(identity string) (Sink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.connections[identity]
	return sink, ok
}

// SetKey overwrites the identity's public key. Last login wins.
func (r *Registry) SetKey(identity, publicKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[identity] = publicKey
}

// Key returns the most recently registered public key for an identity.
func (r *Registry) Key(identity string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.keys[identity]
	return key, ok
}

// JoinGroup adds the identity to the group's member set, creating the
// group on first join. Idempotent.
func (r *Registry) JoinGroup(identity, group string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[group]; !ok {
		r.groups[group] = make(domain.Set)
	}
	r.groups[group].Add(identity)
}

// IsMember reports whether the identity belongs to the group.
func (r *Registry) IsMember(identity, group string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.groups[group].Has(identity)
}

// GroupRecipients resolves fan-out targets for a group message: every
// member that currently has a live connection, excluding the sender.
func (r *Registry) GroupRecipients(group, sender string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.groups[group]
	if !ok {
		return nil
	}
	var recipients []Member
	for identity := range members {
		if identity == sender {
			continue
		}
		if sink, connected := r.connections[identity]; connected {
			recipients = append(recipients, Member{Identity: identity, Sink: sink})
		}
	}
	return recipients
}
