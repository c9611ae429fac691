// Package treestore implements C3: the vertex/edge sets, parent/child maps
// and cost labels of the incremental RRT*/FARRT* tree, and the mutation
// discipline (insertion, rewire, severance) that keeps spec.md §3's
// invariants true after every public mutation.
package treestore

import (
	"math"

	"github.com/pkg/errors"

	"github.com/motionlab/farrt/geometry"
)

// Point is a tree vertex coordinate.
type Point = geometry.Point

// ErrNoParent is returned by Parent when allowNone is false and a non-root
// v has no recorded parent (v is detached or not in the tree).
var ErrNoParent = errors.New("vertex has no parent")

// Store is the TreeStore (C3). The zero value is not usable; use New.
// tree_geom from spec.md §3 is modeled as the vertices map itself rather
// than a materialized copy, so "v ∈ V ⇔ v ∈ tree_geom" holds by
// construction and can never drift out of sync on mutation.
type Store struct {
	root      Point
	vertices  map[Point]struct{}
	parent    map[Point]Point
	children  map[Point]map[Point]struct{}
	cost      map[Point]float64
}

// New creates a Store rooted at root, with cost[root] = 0.
func New(root Point) *Store {
	s := &Store{
		root:      root,
		vertices:  map[Point]struct{}{},
		parent:    map[Point]Point{},
		children:  map[Point]map[Point]struct{}{},
		cost:      map[Point]float64{},
	}
	s.vertices[root] = struct{}{}
	s.children[root] = map[Point]struct{}{}
	s.cost[root] = 0
	return s
}

// Root returns the tree's root vertex.
func (s *Store) Root() Point { return s.root }

// Has reports whether v is a current vertex.
func (s *Store) Has(v Point) bool {
	_, ok := s.vertices[v]
	return ok
}

// Len returns |V|.
func (s *Store) Len() int { return len(s.vertices) }

// Vertices returns a snapshot slice of V, in unspecified order.
func (s *Store) Vertices() []Point {
	out := make([]Point, 0, len(s.vertices))
	for v := range s.vertices {
		out = append(out, v)
	}
	return out
}

// Cost returns cost[v], or +Inf if v is not in the tree or is detached.
func (s *Store) Cost(v Point) float64 {
	if c, ok := s.cost[v]; ok {
		return c
	}
	return math.Inf(1)
}

// Parent returns parent[v] and a nil error. If v has no parent it returns
// the zero Point: with a nil error for the root or when allowNone is set,
// and wrapping ErrNoParent otherwise. allowNone suppresses the ErrNoParent
// the caller would otherwise want to log for a non-root vertex with no parent —
// spec.md §7 treats an unexpected missing parent as an InvariantViolation
// unless the caller explicitly allows it (e.g. just-severed vertices).
func (s *Store) Parent(v Point, allowNone bool) (Point, error) {
	if p, ok := s.parent[v]; ok {
		return p, nil
	}
	if v == s.root || allowNone {
		return Point{}, nil
	}
	return Point{}, errors.Wrapf(ErrNoParent, "vertex %v", v)
}

// Children returns a snapshot of v's children.
func (s *Store) Children(v Point) []Point {
	kids := s.children[v]
	out := make([]Point, 0, len(kids))
	for c := range kids {
		out = append(out, c)
	}
	return out
}

// Insert adds x as a new vertex with the given parent and cost, and records
// the (parent, x) edge. x must not already be in the tree; parent must be.
func (s *Store) Insert(x, parent Point, cost float64) {
	s.vertices[x] = struct{}{}
	s.parent[x] = parent
	s.cost[x] = cost
	if s.children[parent] == nil {
		s.children[parent] = map[Point]struct{}{}
	}
	s.children[parent][x] = struct{}{}
	if s.children[x] == nil {
		s.children[x] = map[Point]struct{}{}
	}
}

// Rewire reassigns x's parent to newParent with the given new cost,
// updating the child maps of the old and new parent, then re-derives the
// cost of every descendant of x so each stays cost[parent] + edge length.
func (s *Store) Rewire(x, newParent Point, newCost float64) {
	if old, ok := s.parent[x]; ok {
		delete(s.children[old], x)
	}
	s.parent[x] = newParent
	if s.children[newParent] == nil {
		s.children[newParent] = map[Point]struct{}{}
	}
	s.children[newParent][x] = struct{}{}
	s.cost[x] = newCost

	pending := []Point{x}
	for len(pending) > 0 {
		v := pending[0]
		pending = pending[1:]
		for c := range s.children[v] {
			s.cost[c] = s.cost[v] + geometry.Distance(v, c)
			pending = append(pending, c)
		}
	}
}

// Edges returns the current edge set as ordered (parent, child) pairs.
func (s *Store) Edges() [][2]Point {
	out := make([][2]Point, 0, len(s.vertices))
	for v := range s.vertices {
		if p, ok := s.parent[v]; ok {
			out = append(out, [2]Point{p, v})
		}
	}
	return out
}

// DescendantsBFS returns every vertex transitively reachable from seeds via
// children, including the seeds themselves, using breadth-first traversal
// over the children map. Used by severance (C6) to compute `severed`.
func (s *Store) DescendantsBFS(seeds []Point) map[Point]struct{} {
	visited := map[Point]struct{}{}
	queue := append([]Point{}, seeds...)
	for _, sd := range seeds {
		visited[sd] = struct{}{}
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for c := range s.children[v] {
			if _, seen := visited[c]; !seen {
				visited[c] = struct{}{}
				queue = append(queue, c)
			}
		}
	}
	return visited
}

// Sever removes v from V, from every incident edge (both directions), clears
// its parent pointer, detaches all of v's children (their parent becomes
// undefined), and sets cost[v] = +Inf. It does not recurse: callers that
// want the full transitive closure first call DescendantsBFS and then
// Sever each member, matching spec.md §4.7 step 5 exactly.
func (s *Store) Sever(v Point) {
	if p, ok := s.parent[v]; ok {
		delete(s.children[p], v)
	}
	delete(s.parent, v)
	for c := range s.children[v] {
		delete(s.parent, c)
	}
	delete(s.children, v)
	delete(s.vertices, v)
	s.cost[v] = math.Inf(1)
}

// CheckInvariants validates the universal invariants from spec.md §8 and
// returns the first violation found, or nil. It is intended for tests and
// for an optional post-mutation assertion in the driver.
func (s *Store) CheckInvariants() error {
	for v := range s.vertices {
		p, ok := s.parent[v]
		if v == s.root {
			if ok {
				return errors.Errorf("root %v unexpectedly has a parent %v", v, p)
			}
			continue
		}
		if !ok {
			return errors.Errorf("non-root vertex %v has no parent", v)
		}
		if !s.Has(p) {
			return errors.Errorf("vertex %v has parent %v not in V", v, p)
		}
		if _, isChild := s.children[p][v]; !isChild {
			return errors.Errorf("vertex %v not registered as child of parent %v", v, p)
		}
		expected := s.cost[p] + geometry.Distance(p, v)
		if math.Abs(expected-s.cost[v]) > 1e-9 {
			return errors.Errorf("cost[%v] = %v, expected %v", v, s.cost[v], expected)
		}
	}
	for p, kids := range s.children {
		for c := range kids {
			if s.parent[c] != p {
				return errors.Errorf("children[%v] contains %v but parent[%v] != %v", p, c, c, p)
			}
		}
	}
	return nil
}
