// Package notify tells feedback watchers when the facets they depend on change.
package notify

import "sync"

// Watcher re-evaluates some visual state derived from one or more facets.
// Reevaluate must be idempotent.
type Watcher interface {
	ID() string
	DependsOn() []string
	Reevaluate()
}

// Notifier fans facet changes out to registered watchers.
type Notifier struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
	order    []string
}

// New creates an empty Notifier.
func New() *Notifier {
	return &Notifier{watchers: make(map[string]Watcher)}
}

// Register adds or replaces a watcher by ID.
func (n *Notifier) Register(w Watcher) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.watchers[w.ID()]; !exists {
		n.order = append(n.order, w.ID())
	}
	n.watchers[w.ID()] = w
}

// Unregister removes a watcher.
func (n *Notifier) Unregister(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.watchers[id]; !ok {
		return
	}
	delete(n.watchers, id)
	for i, wid := range n.order {
		if wid == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered watchers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.watchers)
}

// Notify calls Reevaluate once on every watcher whose dependencies
// intersect changed.
func (n *Notifier) Notify(changed []string) {
	n.Affected(changed, true)
}

// Affected returns the watchers whose dependencies intersect changed,
// calling them when reevaluate is set.
func (n *Notifier) Affected(changed []string, reevaluate bool) []string {
	if len(changed) == 0 {
		return nil
	}
	keys := make(map[string]struct{}, len(changed))
	for _, k := range changed {
		keys[k] = struct{}{}
	}

	n.mu.RLock()
	var hit []Watcher
	for _, id := range n.order {
		w := n.watchers[id]
		for _, dep := range w.DependsOn() {
			if _, ok := keys[dep]; ok {
				hit = append(hit, w)
				break
			}
		}
	}
	n.mu.RUnlock()

	ids := make([]string, 0, len(hit))
	for _, w := range hit {
		if reevaluate {
			w.Reevaluate()
		}
		ids = append(ids, w.ID())
	}
	return ids
}
