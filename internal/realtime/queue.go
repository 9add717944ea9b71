package realtime

import "sort"

// pendingQueue holds requests awaiting admission, highest priority first
// and oldest first within a priority. It is not safe for concurrent use;
// the coordinator guards it with its own lock.
type pendingQueue struct {
	items []*request
}

// push inserts r after every request that outranks it or ties with it and
// was enqueued no later, which keeps equal entries in arrival order.
func (q *pendingQueue) push(r *request) {
	i := sort.Search(len(q.items), func(i int) bool {
		other := q.items[i]
		if other.priority != r.priority {
			return other.priority < r.priority
		}
		return other.enqueuedAt.After(r.enqueuedAt)
	})
	q.items = append(q.items, nil)
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = r
}

// pop removes and returns the head, or nil when the queue is empty.
func (q *pendingQueue) pop() *request {
	if len(q.items) == 0 {
		return nil
	}
	r := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return r
}

// remove deletes the request with the given id and returns it.
func (q *pendingQueue) remove(id string) *request {
	for i, r := range q.items {
		if r.id == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return r
		}
	}
	return nil
}

func (q *pendingQueue) find(k subKey) *request {
	for _, r := range q.items {
		if r.key() == k {
			return r
		}
	}
	return nil
}

func (q *pendingQueue) len() int { return len(q.items) }

// drain empties the queue and returns what it held.
func (q *pendingQueue) drain() []*request {
	items := q.items
	q.items = nil
	return items
}

// ids returns the queued ids in admission order.
func (q *pendingQueue) ids() []string {
	out := make([]string, len(q.items))
	for i, r := range q.items {
		out[i] = r.id
	}
	return out
}
