// Package farrt implements C9: the FARRT* replan orchestrator that reacts
// to newly detected obstacles by severing invalidated subtrees, refreshing
// the potential field, and rewiring orphaned vertices back onto the tree
// through the inconsistency queue until a path back to the current
// position is re-established (spec.md §4.10).
package farrt

import (
	"math/rand"

	"github.com/motionlab/farrt/field"
	"github.com/motionlab/farrt/geometry"
	"github.com/motionlab/farrt/queue"
	"github.com/motionlab/farrt/rrtstar"
	"github.com/motionlab/farrt/severance"
	"github.com/motionlab/farrt/treestore"
)

// Point is a world-coordinate location.
type Point = geometry.Point

// Params bundles the tuning constants a replan needs, mirroring
// rrtstar.Params with the field-force weights FARRT* additionally reads
// (spec.md §6).
type Params struct {
	rrtstar.Params
	FieldWeights field.Weights
}

// Result is the outcome of a Replan call.
type Result struct {
	// Reached reports whether do_farrt_rewiring ever recorded a final_pt
	// connecting back toward curr_pos.
	Reached bool
	// PlannedPath is extract_path(endpoint=final_pt, root=goal, reverse=true)
	// when Reached is true, else nil — the caller should keep its previous
	// plan on failure (spec.md §5's ReplanStale policy).
	PlannedPath []rrtstar.Node
	Conflict    []Point
	Freed       []Point
	Frontier    []Point
}

// Replan implements spec.md §4.10 steps 1-5. store is rooted at the goal
// (per spec.md §3's lifecycle: the tree is built once, rooted at goal, and
// mutated in place). currPos is the robot's current position, obstacles is
// the full accumulated obstacle set, newObstacles is the delta this
// observation revealed (used only to refresh the field), and previousPath
// is the outgoing planned path being replaced (its parent-edges feed
// severance's conflict0 test, spec.md §4.7 step 2).
func Replan(
	rng *rand.Rand,
	store *treestore.Store,
	kit *geometry.Kit,
	fld *field.Field,
	q *queue.Inconsistency,
	currPos Point,
	obstacles, newObstacles geometry.MultiPolygon,
	previousPath []severance.Edge,
	p Params,
) Result {
	sev := severance.Sever(store, kit, q, obstacles, p.ObstacleAvoidanceRadius, previousPath)
	fld.Update(kit, newObstacles)

	finalPt, reached := doFarrtRewiring(rng, store, kit, fld, q, currPos, obstacles, p, sev.Frontier)

	res := Result{Reached: reached, Conflict: sev.Conflict, Freed: sev.Freed, Frontier: sev.Frontier}
	if reached {
		res.PlannedPath = rrtstar.ExtractPath(store, finalPt, store.Root(), currPos, true)
	}
	return res
}

// doFarrtRewiring implements the loop body of spec.md §4.10: pop from the
// inconsistency queue (or, once it is drained, take curr_pos itself),
// push it through the field, steer toward it from the tree, and run the
// remainder of an RRT* expansion with curr_pos as the reached-goal target
// at threshold 0. doFarrtRewiring only ever runs against an already-built
// tree (FARRT* replans are the §4.10 precondition built_tree = true), so
// per §4.5's subsequent-rewiring policy the loop returns the first
// goal-reaching vertex rather than continuing to search for a cheaper one;
// the safety cap (max(iters, 5000)) is the only other way out.
func doFarrtRewiring(
	rng *rand.Rand,
	store *treestore.Store,
	kit *geometry.Kit,
	fld *field.Field,
	q *queue.Inconsistency,
	currPos Point,
	obstacles geometry.MultiPolygon,
	p Params,
	initialFrontier []Point,
) (Point, bool) {
	for _, v := range initialFrontier {
		q.Verify(v)
	}

	iterCap := rrtstar.MaxIters(p.Iters)
	for i := 0; i < iterCap; i++ {
		var xFree Point
		if q.NotEmpty() {
			xFree = q.Pop()
		} else {
			// sample_free(curr_pos, buffer_radius=0): with the queue drained,
			// keep driving samples straight at curr_pos so the loop can still
			// make progress on closing the last gap.
			xFree = rrtstar.Sample(rng, kit, currPos, 1, p.DomainW, p.DomainH, 0, obstacles)
		}

		xField := xFree
		if xFree != currPos {
			xField = fld.ApplyToPoint(xFree, store.Vertices(), currPos, p.SteerDistance, p.FieldWeights)
		}

		vertices := store.Vertices()
		if len(vertices) == 0 {
			continue
		}
		xNear := geometry.Nearest(vertices, xField)
		xNew := geometry.Steer(xNear, xField, p.SteerDistance)

		res := rrtstar.ExtendAt(store, kit, xNear, xNew, currPos, 0, obstacles, p.DomainW, p.DomainH, p.SteerDistance)
		if !res.Inserted {
			continue
		}
		for _, orphan := range res.Orphans {
			q.Verify(orphan)
		}
		if res.ReachedGoal {
			return res.XNew, true
		}
	}
	return Point{}, false
}
