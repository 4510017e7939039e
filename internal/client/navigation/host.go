package navigation

import (
	"sync"

	"github.com/vahire/vahire/internal/client/session"
)

// Host keeps the mounted tree in sync with the session store and the
// viewport. The mount callback fires once with the initial decision and then
// on every change of the resolved tree, never for a no-op re-evaluation.
type Host struct {
	mu       sync.Mutex
	platform Platform
	viewport Viewport
	state    session.State
	tree     Tree

	mount func(Tree)
	unsub func()
}

// NewHost resolves the initial tree from the store's current state, invokes
// mount with it, and subscribes to re-resolve on every session change.
func NewHost(store *session.Store, p Platform, v Viewport, mount func(Tree)) *Host {
	h := &Host{
		platform: p,
		viewport: v,
		state:    store.Snapshot(),
		mount:    mount,
	}
	h.tree = Resolve(p, v, h.state)
	mount(h.tree)

	h.unsub = store.Subscribe(func(st session.State) {
		h.mu.Lock()
		h.state = st
		h.reevaluateLocked()
	})
	return h
}

// SetViewport re-evaluates after a viewport class change, e.g. a browser
// window resized across the desktop breakpoint.
func (h *Host) SetViewport(v Viewport) {
	h.mu.Lock()
	h.viewport = v
	h.reevaluateLocked()
}

// Viewport returns the current viewport class.
func (h *Host) Viewport() Viewport {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.viewport
}

// Tree returns the currently mounted tree.
func (h *Host) Tree() Tree {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tree
}

// Close detaches the host from the store. The last mounted tree stays up.
func (h *Host) Close() {
	h.unsub()
}

// reevaluateLocked resolves with the current inputs and fires mount on a
// change. Unlocks before the callback so the callback may call back in.
func (h *Host) reevaluateLocked() {
	next := Resolve(h.platform, h.viewport, h.state)
	changed := next != h.tree
	h.tree = next
	h.mu.Unlock()

	if changed {
		h.mount(next)
	}
}
