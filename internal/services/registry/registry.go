// Package registry tracks which lobby or match slot each live connection occupies.
//
// Registry does no locking of its own: it lives inside the lobby controller and
// every call is made while holding the controller's table lock, so registry
// entries change atomically with the lobby and match tables.
package registry

import (
	"github.com/mcoot/netpong/internal/model"
)

// Sender is the outbound half of a connection
type Sender interface {
	ID() model.ConnID
	Send(msg any) error
}

type entry struct {
	conn  Sender
	assoc model.Association
}

// Registry maps connection ids to their current association
type Registry struct {
	entries map[model.ConnID]*entry
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{
		entries: make(map[model.ConnID]*entry),
	}
}

// Register records a connection with no association and returns its id
func (r *Registry) Register(conn Sender) model.ConnID {
	id := conn.ID()
	r.entries[id] = &entry{conn: conn, assoc: model.NoAssociation}
	return id
}

// Unregister forgets a connection entirely
func (r *Registry) Unregister(id model.ConnID) {
	delete(r.entries, id)
}

// Associate attaches a registered connection to a lobby or match slot
func (r *Registry) Associate(id model.ConnID, assoc model.Association) error {
	e, ok := r.entries[id]
	if !ok {
		return model.ErrConnNotFound
	}
	e.assoc = assoc
	return nil
}

// Dissociate clears a connection's association; unknown ids are ignored
func (r *Registry) Dissociate(id model.ConnID) {
	if e, ok := r.entries[id]; ok {
		e.assoc = model.NoAssociation
	}
}

// Lookup returns the connection's current association
func (r *Registry) Lookup(id model.ConnID) (model.Association, bool) {
	e, ok := r.entries[id]
	if !ok {
		return model.NoAssociation, false
	}
	return e.assoc, true
}

// Conn returns the registered connection for id
func (r *Registry) Conn(id model.ConnID) (Sender, bool) {
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.conn, true
}

// Len returns the number of registered connections
func (r *Registry) Len() int {
	return len(r.entries)
}
