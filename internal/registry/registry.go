package registry

import "sync"

// Connection is the handle the registry can tear down.
type Connection interface {
	Disconnect()
}

// Registry is the single process-wide slot for the active chat
// connection. It lets the logout flow force-disconnect chat without
// depending on the chat screen. Construct one per process (and per test)
// with New; there is no ambient package-level instance.
type Registry struct {
	mu   sync.Mutex
	conn Connection
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Set installs the active connection handle, replacing any previous one.
func (r *Registry) Set(conn Connection) {
	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
}

// Get returns the active handle, or nil.
func (r *Registry) Get() Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn
}

// Clear empties the slot and disconnects the handle it held. A no-op
// when nothing is registered.
func (r *Registry) Clear() {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn != nil {
		conn.Disconnect()
	}
}

// Drop removes the given handle if it is the one registered. Used by a
// connection tearing itself down, so a newer handle is never evicted by
// a stale one.
func (r *Registry) Drop(conn Connection) {
	r.mu.Lock()
	if r.conn == conn {
		r.conn = nil
	}
	r.mu.Unlock()
}
