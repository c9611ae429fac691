package severance

import (
	"math/rand"
	"testing"

	"go.viam.com/test"

	"github.com/motionlab/farrt/geometry"
	"github.com/motionlab/farrt/queue"
	"github.com/motionlab/farrt/treestore"
)

const testAvoidanceRadius = 15.0

func chain(t *testing.T) (*treestore.Store, []Point) {
	t.Helper()
	pts := []Point{{X: 10, Y: 50}, {X: 20, Y: 50}, {X: 30, Y: 50}, {X: 40, Y: 50}, {X: 50, Y: 50}}
	s := treestore.New(pts[0])
	for i := 1; i < len(pts); i++ {
		s.Insert(pts[i], pts[i-1], s.Cost(pts[i-1])+10)
	}
	return s, pts
}

func TestSeverHandcraftedChainScenario(t *testing.T) {
	store, pts := chain(t)
	kit := geometry.NewKit(rand.New(rand.NewSource(1)))
	obstacles, err := kit.ParseMultiPolygonWKT("MULTIPOLYGON (((29 49, 31 49, 31 51, 29 51, 29 49)))")
	test.That(t, err, test.ShouldBeNil)

	res := Sever(store, kit, nil, obstacles, testAvoidanceRadius, nil)

	test.That(t, res.Conflict, test.ShouldResemble, []Point{pts[2]})
	test.That(t, len(res.Freed), test.ShouldEqual, 2)
	test.That(t, res.Freed, test.ShouldContain, pts[3])
	test.That(t, res.Freed, test.ShouldContain, pts[4])
	test.That(t, res.Frontier, test.ShouldResemble, []Point{pts[1]})

	test.That(t, store.Has(pts[2]), test.ShouldBeFalse)
	test.That(t, store.Has(pts[3]), test.ShouldBeFalse)
	test.That(t, store.Has(pts[4]), test.ShouldBeFalse)
	test.That(t, store.Has(pts[1]), test.ShouldBeTrue)
	test.That(t, store.CheckInvariants(), test.ShouldBeNil)
}

func TestSeverPushesFreedClearVerticesOntoQueue(t *testing.T) {
	store, pts := chain(t)
	kit := geometry.NewKit(rand.New(rand.NewSource(1)))
	obstacles, err := kit.ParseMultiPolygonWKT("MULTIPOLYGON (((29 49, 31 49, 31 51, 29 51, 29 49)))")
	test.That(t, err, test.ShouldBeNil)

	keyFn := func(p Point) float64 { return p.X }
	q := queue.New(keyFn, nil)

	Sever(store, kit, q, obstacles, testAvoidanceRadius, nil)

	_, ok := q.KeyOf(pts[3])
	test.That(t, ok, test.ShouldBeTrue)
	_, ok = q.KeyOf(pts[4])
	test.That(t, ok, test.ShouldBeTrue)
	_, ok = q.KeyOf(pts[2])
	test.That(t, ok, test.ShouldBeFalse)
}

func TestSeverWithNoObstaclesIsNoOp(t *testing.T) {
	store, _ := chain(t)
	before := store.Len()
	res := Sever(store, geometry.NewKit(rand.New(rand.NewSource(1))), nil, geometry.EmptyMultiPolygon(), testAvoidanceRadius, nil)
	test.That(t, res.Conflict, test.ShouldBeEmpty)
	test.That(t, res.Freed, test.ShouldBeEmpty)
	test.That(t, res.Frontier, test.ShouldBeEmpty)
	test.That(t, store.Len(), test.ShouldEqual, before)
}

func TestSeverWithObstacleFarFromTreeIsNoOp(t *testing.T) {
	store, _ := chain(t)
	kit := geometry.NewKit(rand.New(rand.NewSource(1)))
	obstacles, err := kit.ParseMultiPolygonWKT("MULTIPOLYGON (((200 200, 210 200, 210 210, 200 210, 200 200)))")
	test.That(t, err, test.ShouldBeNil)

	before := store.Len()
	res := Sever(store, kit, nil, obstacles, testAvoidanceRadius, nil)
	test.That(t, res.Conflict, test.ShouldBeEmpty)
	test.That(t, store.Len(), test.ShouldEqual, before)
}

func TestSeverRootNeverSevered(t *testing.T) {
	store, pts := chain(t)
	kit := geometry.NewKit(rand.New(rand.NewSource(1)))
	obstacles, err := kit.ParseMultiPolygonWKT("MULTIPOLYGON (((9 49, 11 49, 11 51, 9 51, 9 49)))")
	test.That(t, err, test.ShouldBeNil)

	Sever(store, kit, nil, obstacles, testAvoidanceRadius, nil)
	test.That(t, store.Has(pts[0]), test.ShouldBeTrue)
}

// TestSeverCatchesPreviousPathParentCrossingObstacle covers spec.md §4.7
// step 2: a node outside the inner buffer ring whose parent-edge crosses a
// newly observed obstacle must still pull its parent into conflict0, even
// though the parent's own coordinate sits outside the ring entirely.
func TestSeverCatchesPreviousPathParentCrossingObstacle(t *testing.T) {
	pts := []Point{{X: 0, Y: 50}, {X: 50, Y: 50}, {X: 100, Y: 50}}
	store := treestore.New(pts[0])
	store.Insert(pts[1], pts[0], 50)
	store.Insert(pts[2], pts[1], 100)

	kit := geometry.NewKit(rand.New(rand.NewSource(1)))
	// A thin obstacle straddling the pts[1]-pts[2] edge, far from pts[1]
	// itself (more than testAvoidanceRadius/2 away) so the buffer-ring test
	// alone would miss it.
	obstacles, err := kit.ParseMultiPolygonWKT("MULTIPOLYGON (((74 49, 76 49, 76 51, 74 51, 74 49)))")
	test.That(t, err, test.ShouldBeNil)

	withoutPath := Sever(store, kit, nil, obstacles, testAvoidanceRadius, nil)
	test.That(t, withoutPath.Conflict, test.ShouldBeEmpty)
	test.That(t, withoutPath.Freed, test.ShouldBeEmpty)

	store2 := treestore.New(pts[0])
	store2.Insert(pts[1], pts[0], 50)
	store2.Insert(pts[2], pts[1], 100)
	previousPath := []Edge{{Coord: pts[2], Parent: pts[1]}, {Coord: pts[1], Parent: pts[0]}}

	withPath := Sever(store2, kit, nil, obstacles, testAvoidanceRadius, previousPath)
	test.That(t, withPath.Freed, test.ShouldContain, pts[1])
	test.That(t, withPath.Freed, test.ShouldContain, pts[2])
	test.That(t, store2.Has(pts[1]), test.ShouldBeFalse)
	test.That(t, store2.Has(pts[2]), test.ShouldBeFalse)
	test.That(t, store2.CheckInvariants(), test.ShouldBeNil)
}
