package location

import (
	"sync"

	"github.com/vango-dev/filtersync/pkg/protocol"
)

// Navigator is the Location of a live session.
//
// Read reports the URL the client sent in its handshake, updated by every
// Replace. Replace queues a URL replace patch; the session sends it to the
// client together with the next state patch.
type Navigator struct {
	mu         sync.Mutex
	current    URL
	queuePatch func(protocol.Patch)
}

// NewNavigator creates a navigator positioned at initial that queues patches
// via the provided function. The session passes in a closure that appends to
// its pending patch buffer.
func NewNavigator(initial URL, queuePatch func(protocol.Patch)) *Navigator {
	return &Navigator{current: initial, queuePatch: queuePatch}
}

// Read implements Location.
func (n *Navigator) Read() URL {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Replace implements Location.
func (n *Navigator) Replace(rawQuery string) {
	n.mu.Lock()
	n.current.RawQuery = rawQuery
	queue := n.queuePatch
	n.mu.Unlock()

	if queue == nil {
		return
	}
	queue(protocol.NewURLReplacePatch(rawQuery))
}
