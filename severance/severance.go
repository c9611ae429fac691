// Package severance implements C6: detecting tree vertices and edges newly
// invalidated by observed obstacles, cutting them loose from the tree, and
// classifying the resulting vertices into the conflict/freed/frontier sets
// that drive FARRT*'s rewiring loop (spec.md §4.7).
package severance

import (
	"github.com/motionlab/farrt/geometry"
	"github.com/motionlab/farrt/treestore"
)

// Point is a tree vertex coordinate.
type Point = geometry.Point

// Queue is the subset of the inconsistency queue's interface severance
// needs: pushing clear, newly-freed vertices back in for rewiring
// (spec.md §4.7 step 6).
type Queue interface {
	Insert(p Point)
}

// Edge is one step of a previously planned path: Coord's connection back
// toward the goal via Parent. Sever uses these to catch vertices whose
// parent-edge now crosses an obstacle even though the vertex itself sits
// outside the inner buffer ring (spec.md §4.7 step 2).
type Edge struct {
	Coord, Parent Point
}

// Result is the outcome of a single Sever call: the partition of every
// vertex removed from the tree into conflict (still inside the raw
// obstacle set, to be discarded for good) and freed (clear, but
// disconnected because an ancestor was severed), plus frontier, the
// still-attached vertices within the outer buffer ring that border the
// severed region — the natural re-rewire candidates.
type Result struct {
	Conflict []Point
	Freed    []Point
	Frontier []Point
}

// Sever implements spec.md §4.7 against accumulated obstacles O,
// obstacle-avoidance radius rAv, and previousPath (the outgoing planned
// path, whose parent-edges are checked for newly-crossed obstacles):
//  1. conflict0 = V ∩ buffer(O, rAv/2).
//  2. For each edge in previousPath whose parent-edge intersects O, add
//     the parent to conflict0.
//  3. frontier = V ∩ buffer(O, rAv) ∖ conflict0.
//  4. severed = BFS(conflict0) over children, conflict0 included.
//  5. Each v ∈ severed is cut loose from store via Sever.
//  6. Each v ∈ severed with point_clear(v, O) is pushed onto q (if non-nil).
//  7. severed is partitioned into conflict = severed ∩ O (raw, unbuffered)
//     and freed = severed ∖ conflict.
//  8. frontier ∩ freed is enforced empty by construction (frontier excludes
//     every severed vertex).
func Sever(store *treestore.Store, kit *geometry.Kit, q Queue, obstacles geometry.MultiPolygon, rAv float64, previousPath []Edge) Result {
	if obstacles.IsEmpty() {
		return Result{}
	}

	innerRing := kit.Buffer(obstacles, rAv/2)

	conflict0Set := map[Point]struct{}{}
	for _, v := range store.Vertices() {
		if v == store.Root() {
			continue
		}
		if !kit.PointClear(v, innerRing) {
			conflict0Set[v] = struct{}{}
		}
	}
	for _, e := range previousPath {
		if e.Parent == store.Root() || !store.Has(e.Parent) {
			continue
		}
		if !kit.EdgeClear(e.Coord, e.Parent, obstacles) {
			conflict0Set[e.Parent] = struct{}{}
		}
	}
	if len(conflict0Set) == 0 {
		return Result{}
	}

	outerRing := kit.Buffer(obstacles, rAv)
	frontierSet := map[Point]struct{}{}
	for _, v := range store.Vertices() {
		if v == store.Root() {
			continue
		}
		if _, inConflict0 := conflict0Set[v]; inConflict0 {
			continue
		}
		if !kit.PointClear(v, outerRing) {
			frontierSet[v] = struct{}{}
		}
	}

	conflict0 := make([]Point, 0, len(conflict0Set))
	for v := range conflict0Set {
		conflict0 = append(conflict0, v)
	}

	severed := store.DescendantsBFS(conflict0)

	var conflict, freed []Point
	for v := range severed {
		delete(frontierSet, v)
		if kit.PointClear(v, obstacles) {
			freed = append(freed, v)
		} else {
			conflict = append(conflict, v)
		}
	}

	for v := range severed {
		store.Sever(v)
	}

	if q != nil {
		for _, v := range freed {
			q.Insert(v)
		}
	}

	frontier := make([]Point, 0, len(frontierSet))
	for v := range frontierSet {
		frontier = append(frontier, v)
	}

	return Result{Conflict: conflict, Freed: freed, Frontier: frontier}
}
