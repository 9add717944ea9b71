package realtime

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/courtside-app/courtside/internal/channel"
	"github.com/courtside-app/courtside/internal/event"
)

// activeSubscription is an admitted request with its live channel.
type activeSubscription struct {
	req        *request
	handle     channel.Handle
	listener   *listener
	admittedAt time.Time
	changes    atomic.Int64
}

func (s *activeSubscription) subscription() event.Subscription {
	return s.req.subscription()
}

// ActiveInfo describes one active subscription.
type ActiveInfo struct {
	ID         string
	Scope      string
	Topic      string
	Priority   int
	AdmittedAt time.Time
	Changes    int64
}

// registry indexes active subscriptions by id and by (scope, topic).
// At most one entry exists per key.
type registry struct {
	byID  map[string]*activeSubscription
	byKey map[subKey]*activeSubscription
}

func newRegistry() registry {
	return registry{
		byID:  make(map[string]*activeSubscription),
		byKey: make(map[subKey]*activeSubscription),
	}
}

func (r *registry) add(s *activeSubscription) {
	r.byID[s.req.id] = s
	r.byKey[s.req.key()] = s
}

func (r *registry) get(id string) *activeSubscription { return r.byID[id] }

func (r *registry) lookup(k subKey) *activeSubscription { return r.byKey[k] }

func (r *registry) remove(id string) *activeSubscription {
	s, ok := r.byID[id]
	if !ok {
		return nil
	}
	delete(r.byID, id)
	if r.byKey[s.req.key()] == s {
		delete(r.byKey, s.req.key())
	}
	return s
}

// hasTopic reports whether any scope holds an active subscription to topic.
func (r *registry) hasTopic(topic string) bool {
	for k := range r.byKey {
		if k.topic == topic {
			return true
		}
	}
	return false
}

func (r *registry) len() int { return len(r.byID) }

// ids returns the active ids in lexical order.
func (r *registry) ids() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *registry) snapshot() []ActiveInfo {
	out := make([]ActiveInfo, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, ActiveInfo{
			ID:         s.req.id,
			Scope:      s.req.scope,
			Topic:      s.req.topic,
			Priority:   s.req.priority,
			AdmittedAt: s.admittedAt,
			Changes:    s.changes.Load(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// clear empties the registry and returns what it held.
func (r *registry) clear() []*activeSubscription {
	out := make([]*activeSubscription, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	*r = newRegistry()
	return out
}
