// Package rrtstar implements C5: sampling, nearest/near-ball neighbor
// queries, steering, choose-parent, local rewire, the RRT* build-tree
// termination policy, and path extraction (spec.md §4.3-§4.6).
package rrtstar

import (
	"math"
	"math/rand"

	"github.com/motionlab/farrt/geometry"
	"github.com/motionlab/farrt/treestore"
)

// Point is a tree vertex / sample coordinate.
type Point = geometry.Point

// Node is an output-path node: a coordinate plus its parent in the
// extracted path (spec.md §3, §4.6 — purely a display convenience: node
// 0's parent is curr_pos and node i's parent is the previous element in the
// returned sequence, not necessarily its actual tree parent).
type Node struct {
	Coord  Point
	Parent Point
}

// Params bundles the per-run tuning constants from spec.md §6 that the
// expansion and build loop need.
type Params struct {
	SteerDistance           float64
	Eps                     float64 // goal-bias probability
	GoalReachedThresh       float64
	ObstacleAvoidanceRadius float64
	DomainW, DomainH        float64
	Iters                   int
}

// NearBallRadius implements spec.md §4.4. Callers must guard n<=1.
func NearBallRadius(n int, domainW, domainH, steerDistance float64) float64 {
	const dims = 2.0
	gamma := math.Pow(2, dims) * (1 + 1/dims) * domainW * domainH
	rBall := math.Pow(gamma/math.Pi*math.Log(float64(n))/float64(n), 1/dims)
	return math.Min(rBall, steerDistance)
}

// Sample implements spec.md §4.5 step 1: with probability eps return
// goalPt, otherwise rejection-sample random_point_in_box until the disc of
// radius bufferRadius around the sample does not intersect obstacles.
func Sample(rng *rand.Rand, kit *geometry.Kit, goalPt Point, eps float64, domainW, domainH, bufferRadius float64, obstacles geometry.MultiPolygon) Point {
	if rng.Float64() < eps {
		return goalPt
	}
	for {
		candidate := kit.RandomPointInBox(domainW, domainH)
		if obstacles.IsEmpty() {
			return candidate
		}
		disc := kit.Disc(candidate, bufferRadius)
		if kit.Intersection(disc, obstacles).IsEmpty() {
			return candidate
		}
	}
}

// ExtendResult reports what a single RRT* expansion iteration (spec.md §4.5
// steps 2-9) accomplished.
type ExtendResult struct {
	Inserted    bool
	XNew        Point
	ReachedGoal bool
	// Orphans is N \ V as observed before insertion — used by FARRT*'s
	// rewiring loop (spec.md §4.10 step 5) to re-verify loose near-ball
	// members that are not yet tree members.
	Orphans []Point
}

// Extend runs spec.md §4.5 steps 2-9 against xRand: find nearest, steer,
// check clearance, choose-parent among the near-ball, insert, locally
// rewire, and test goal-reach against (goalPt, goalThresh).
func Extend(
	store *treestore.Store,
	kit *geometry.Kit,
	xRand Point,
	bufferRadius float64,
	goalPt Point,
	goalThresh float64,
	obstacles geometry.MultiPolygon,
	domainW, domainH float64,
	steerDistance float64,
) ExtendResult {
	vertices := store.Vertices()
	if len(vertices) == 0 {
		return ExtendResult{}
	}
	xNear := geometry.Nearest(vertices, xRand)
	xNew := geometry.Steer(xNear, xRand, steerDistance)
	return ExtendAt(store, kit, xNear, xNew, goalPt, goalThresh, obstacles, domainW, domainH, steerDistance)
}

// ExtendAt runs spec.md §4.5 steps 4-9 (choose-parent through goal test)
// against an already-steered (xNear, xNew) pair. FARRT*'s rewiring loop
// (spec.md §4.10) computes its own xNear/xNew from a field-pushed point
// rather than a freshly rejection-sampled xRand, so it calls this directly
// instead of Extend. Nothing is inserted when xNew is already a vertex. The
// goal test counts a vertex within goalThresh of goalPt, and always one
// exactly at goalPt, so a goalThresh of 0 means an exact hit.
func ExtendAt(
	store *treestore.Store,
	kit *geometry.Kit,
	xNear, xNew Point,
	goalPt Point,
	goalThresh float64,
	obstacles geometry.MultiPolygon,
	domainW, domainH float64,
	steerDistance float64,
) ExtendResult {
	if !kit.EdgeClear(xNear, xNew, obstacles) {
		return ExtendResult{}
	}
	// Store.Insert requires a vertex not yet in the tree; a sample that
	// steers onto an existing vertex adds nothing.
	if store.Has(xNew) {
		return ExtendResult{}
	}

	rBall := steerDistance
	if n := store.Len(); n > 1 {
		rBall = NearBallRadius(n, domainW, domainH, steerDistance)
	}
	near := geometry.WithinRadius(store.Vertices(), xNew, rBall)
	near = removePoint(near, xNew)

	xMin, cMin, ok := chooseParent(store, kit, xNear, near, xNew, obstacles)
	if !ok {
		return ExtendResult{}
	}
	store.Insert(xNew, xMin, cMin)

	orphans := make([]Point, 0)
	for _, x := range near {
		if x == xMin {
			continue
		}
		if !store.Has(x) {
			orphans = append(orphans, x)
			continue
		}
		if !kit.EdgeClear(xNew, x, obstacles) {
			continue
		}
		candidateCost := store.Cost(xNew) + geometry.Distance(xNew, x)
		if candidateCost < store.Cost(x) {
			store.Rewire(x, xNew, candidateCost)
		}
	}

	reached := xNew == goalPt || geometry.Distance(xNew, goalPt) < goalThresh
	return ExtendResult{Inserted: true, XNew: xNew, ReachedGoal: reached, Orphans: orphans}
}

// chooseParent implements spec.md §4.5 step 6: among {xNear} ∪ near with an
// obstacle-free edge to xNew, pick the one minimizing cost[·]+dist(·,xNew).
func chooseParent(store *treestore.Store, kit *geometry.Kit, xNear Point, near []Point, xNew Point, obstacles geometry.MultiPolygon) (Point, float64, bool) {
	candidates := append([]Point{xNear}, near...)
	best := Point{}
	bestCost := math.Inf(1)
	found := false
	for _, c := range candidates {
		if !store.Has(c) {
			continue
		}
		if !kit.EdgeClear(c, xNew, obstacles) {
			continue
		}
		cost := store.Cost(c) + geometry.Distance(c, xNew)
		if cost < bestCost {
			best, bestCost, found = c, cost, true
		}
	}
	return best, bestCost, found
}

func removePoint(pts []Point, target Point) []Point {
	out := pts[:0:0]
	for _, p := range pts {
		if p != target {
			out = append(out, p)
		}
	}
	return out
}

// BuildResult is the outcome of BuildTree.
type BuildResult struct {
	Reached bool
	Goal    Point // the vertex satisfying the goal condition
}

// BuildTree implements the build_rrt_tree termination policy of spec.md
// §4.5: on the first build (builtTree==false) it runs at least p.Iters
// iterations AND until at least one goal-reacher is found, returning the
// minimum-cost one (ties broken by first found, since cost strictly
// decreases are the only replacement criterion); on later calls
// (builtTree==true) it returns the first goal-reaching vertex. The
// obstacle-avoidance buffer is halved after the iteration midpoint if no
// goal has yet been reached during a first build, to permit tighter
// passages (spec.md §4.5).
func BuildTree(
	rng *rand.Rand,
	store *treestore.Store,
	kit *geometry.Kit,
	goalPt Point,
	obstacles geometry.MultiPolygon,
	p Params,
	builtTree bool,
) BuildResult {
	if !builtTree {
		return buildFirstTree(rng, store, kit, goalPt, obstacles, p)
	}
	return buildSubsequent(rng, store, kit, goalPt, obstacles, p)
}

func buildFirstTree(rng *rand.Rand, store *treestore.Store, kit *geometry.Kit, goalPt Point, obstacles geometry.MultiPolygon, p Params) BuildResult {
	var bestGoal Point
	bestCost := math.Inf(1)
	reached := false
	buffer := p.ObstacleAvoidanceRadius
	halved := false

	i := 0
	for i < p.Iters || !reached {
		if !halved && i >= p.Iters/2 && !reached {
			buffer /= 2
			halved = true
		}
		xRand := Sample(rng, kit, goalPt, p.Eps, p.DomainW, p.DomainH, buffer, obstacles)
		res := Extend(store, kit, xRand, buffer, goalPt, p.GoalReachedThresh, obstacles, p.DomainW, p.DomainH, p.SteerDistance)
		if res.Inserted && res.ReachedGoal {
			reached = true
			c := store.Cost(res.XNew)
			if c < bestCost {
				bestCost, bestGoal = c, res.XNew
			}
		}
		i++
		if i > MaxIters(p.Iters) {
			break
		}
	}
	return BuildResult{Reached: reached, Goal: bestGoal}
}

func buildSubsequent(rng *rand.Rand, store *treestore.Store, kit *geometry.Kit, goalPt Point, obstacles geometry.MultiPolygon, p Params) BuildResult {
	buffer := p.ObstacleAvoidanceRadius
	for i := 0; i < MaxIters(p.Iters); i++ {
		xRand := Sample(rng, kit, goalPt, p.Eps, p.DomainW, p.DomainH, buffer, obstacles)
		res := Extend(store, kit, xRand, buffer, goalPt, p.GoalReachedThresh, obstacles, p.DomainW, p.DomainH, p.SteerDistance)
		if res.Inserted && res.ReachedGoal {
			return BuildResult{Reached: true, Goal: res.XNew}
		}
	}
	return BuildResult{Reached: false}
}

// MaxIters is the safety cap from spec.md §5: max(iters, 5000), exported
// for use by the FARRT* rewiring loop's own cap.
func MaxIters(iters int) int {
	if iters > 5000 {
		return iters
	}
	return 5000
}

// ExtractPath implements spec.md §4.6. If reverse is true, the returned
// slice holds the parents of endpoint down to root (root included,
// endpoint excluded), in root-first iteration order — intended for use as
// the upcoming-step sequence. If reverse is false, the slice is
// endpoint-first and the caller is expected to reverse it to obtain
// curr->goal order. Node-parent assignment in the returned slice is a pure
// display convenience: position i's parent is curr_pos if i==0, else the
// previous element; it is not the actual tree parent.
func ExtractPath(store *treestore.Store, endpoint, root, currPos Point, reverse bool) []Node {
	var coords []Point
	v := endpoint
	for v != root {
		coords = append(coords, v)
		p, err := store.Parent(v, true)
		if err != nil || (p == Point{} && v != root) {
			break
		}
		v = p
	}
	coords = append(coords, root)

	if reverse {
		// coords is currently endpoint-first; root-first is its reverse,
		// with endpoint itself excluded per spec.md §4.6.
		reversed := make([]Point, 0, len(coords)-1)
		for i := len(coords) - 1; i >= 1; i-- {
			reversed = append(reversed, coords[i])
		}
		return toNodes(reversed, currPos)
	}
	return toNodes(coords, currPos)
}

func toNodes(coords []Point, currPos Point) []Node {
	nodes := make([]Node, len(coords))
	for i, c := range coords {
		if i == 0 {
			nodes[i] = Node{Coord: c, Parent: currPos}
		} else {
			nodes[i] = Node{Coord: c, Parent: coords[i-1]}
		}
	}
	return nodes
}
