// Package queue implements C8: the RRTx-style inconsistency priority queue
// that drives rewiring of freed/orphan points, keyed on the best currently
// achievable cost through the tree (spec.md §4.9).
package queue

import (
	"container/heap"

	"github.com/motionlab/farrt/geometry"
)

// Point is a queue element's identity.
type Point = geometry.Point

// KeyFunc computes the key for inserting or re-verifying p: in spec.md's
// terms, cost[nearest(V, p)] + ‖nearest(V, p) − p‖. Ties are broken by
// coordinate tuple, handled by entry comparison below, so KeyFunc need only
// return the scalar.
type KeyFunc func(p Point) float64

type entry struct {
	key   float64
	p     Point
	index int
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].key != h[j].key {
		return h[i].key < h[j].key
	}
	if h[i].p.X != h[j].p.X {
		return h[i].p.X < h[j].p.X
	}
	return h[i].p.Y < h[j].p.Y
}
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *entryHeap) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Inconsistency is a min-heap of (key, vertex) entries plus a side map
// key_map: vertex -> key. An entry is live iff key_map[vertex] equals the
// heap entry's key; stale entries are discarded on Pop (spec.md §4.9).
type Inconsistency struct {
	h      entryHeap
	keyMap map[Point]float64
	keyFn  KeyFunc
	onWarn func(format string, args ...interface{})
}

// New constructs an empty Inconsistency queue. keyFn computes a point's
// current key (normally cost[nearest(V,p)] + dist(nearest(V,p), p)). onWarn
// may be nil; if set, it is called for the no-op-insert-with-equal-key case.
func New(keyFn KeyFunc, onWarn func(format string, args ...interface{})) *Inconsistency {
	return &Inconsistency{
		h:      entryHeap{},
		keyMap: map[Point]float64{},
		keyFn:  keyFn,
		onWarn: onWarn,
	}
}

// Len reports the number of live+stale entries currently in the heap
// (not the number of distinct keys in key_map).
func (q *Inconsistency) Len() int { return q.h.Len() }

// Insert computes p's key; if p is already present with that same key, this
// is a no-op (with a warning callback). Otherwise key_map[p] is set and
// (key, p) is pushed.
func (q *Inconsistency) Insert(p Point) {
	key := q.keyFn(p)
	if existing, ok := q.keyMap[p]; ok && existing == key {
		if q.onWarn != nil {
			q.onWarn("queue.Insert: %v already present with key %v", p, key)
		}
		return
	}
	q.keyMap[p] = key
	heap.Push(&q.h, &entry{key: key, p: p})
}

// Update recomputes p's key and, if p is present in key_map, replaces its
// entry (the old heap entry becomes stale and is discarded on Pop).
func (q *Inconsistency) Update(p Point) {
	if _, ok := q.keyMap[p]; !ok {
		return
	}
	key := q.keyFn(p)
	q.keyMap[p] = key
	heap.Push(&q.h, &entry{key: key, p: p})
}

// Verify updates p if present, else inserts it.
func (q *Inconsistency) Verify(p Point) {
	if _, ok := q.keyMap[p]; ok {
		q.Update(p)
	} else {
		q.Insert(p)
	}
}

// Pop repeatedly pops (k, p) until key_map[p] == k, removes key_map[p], and
// returns p. Pop must not be called on an empty queue; use NotEmpty first.
func (q *Inconsistency) Pop() Point {
	p, _ := q.pop()
	return p
}

// pop is Pop's internal form, additionally reporting whether a live entry
// was found (false if the queue held only stale entries or was empty).
func (q *Inconsistency) pop() (Point, bool) {
	for q.h.Len() > 0 {
		e := heap.Pop(&q.h).(*entry)
		if cur, ok := q.keyMap[e.p]; ok && cur == e.key {
			delete(q.keyMap, e.p)
			return e.p, true
		}
		// stale entry (QueueRace in spec.md §7 terms): keep draining.
	}
	return Point{}, false
}

// NotEmpty pops the top live entry and reinserts it, returning true, or
// returns false if the queue is (after discarding stale entries) empty.
// This mirrors the reference semantics in spec.md §4.9 literally rather
// than optimizing to a peek.
func (q *Inconsistency) NotEmpty() bool {
	top, ok := q.pop()
	if !ok {
		return false
	}
	q.Insert(top)
	return true
}

// Peek returns the current top live entry and its freshly recomputed key,
// reinserting it so the queue's key_map membership is unchanged. Nothing
// in this module calls it. Callers must guard with NotEmpty.
func (q *Inconsistency) Peek() (Point, float64) {
	top, ok := q.pop()
	if !ok {
		return Point{}, 0
	}
	key := q.keyFn(top)
	q.Insert(top)
	return top, key
}

// KeyOf returns the last-computed key for p and whether p is present in
// key_map.
func (q *Inconsistency) KeyOf(p Point) (float64, bool) {
	k, ok := q.keyMap[p]
	return k, ok
}
