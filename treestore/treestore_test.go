package treestore

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func chain(t *testing.T) (*Store, []Point) {
	t.Helper()
	pts := []Point{{X: 10, Y: 50}, {X: 20, Y: 50}, {X: 30, Y: 50}, {X: 40, Y: 50}, {X: 50, Y: 50}}
	s := New(pts[0])
	for i := 1; i < len(pts); i++ {
		s.Insert(pts[i], pts[i-1], s.Cost(pts[i-1])+10)
	}
	return s, pts
}

func TestInsertAndInvariants(t *testing.T) {
	s, pts := chain(t)
	test.That(t, s.Len(), test.ShouldEqual, 5)
	test.That(t, s.Cost(pts[4]), test.ShouldAlmostEqual, 40)
	test.That(t, s.CheckInvariants(), test.ShouldBeNil)
}

func TestRootHasNoParent(t *testing.T) {
	s, pts := chain(t)
	p, err := s.Parent(pts[0], false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p, test.ShouldResemble, Point{})
}

func TestParentErrorsWhenMissingAndDisallowed(t *testing.T) {
	s, _ := chain(t)
	_, err := s.Parent(Point{X: 999, Y: 999}, false)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRewireUpdatesChildMaps(t *testing.T) {
	s, pts := chain(t)
	// rewire pts[3] to be a direct child of root
	s.Rewire(pts[3], pts[0], geometryDistance(pts[0], pts[3]))
	children := s.Children(pts[0])
	test.That(t, children, test.ShouldContain, pts[3])
	oldChildren := s.Children(pts[2])
	test.That(t, oldChildren, test.ShouldNotContain, pts[3])
}

func TestSeverRemovesFromAllStructuresAtomically(t *testing.T) {
	s, pts := chain(t)
	s.Sever(pts[2])

	test.That(t, s.Has(pts[2]), test.ShouldBeFalse)
	test.That(t, math.IsInf(s.Cost(pts[2]), 1), test.ShouldBeTrue)
	for _, e := range s.Edges() {
		test.That(t, e[0], test.ShouldNotResemble, pts[2])
		test.That(t, e[1], test.ShouldNotResemble, pts[2])
	}
	// former child pts[3] is now parentless
	_, err := s.Parent(pts[3], true)
	test.That(t, err, test.ShouldBeNil)
	p, hasParent := s.parent[pts[3]]
	test.That(t, hasParent, test.ShouldBeFalse)
	_ = p
}

func TestDescendantsBFSIncludesSeedsAndTransitiveChildren(t *testing.T) {
	s, pts := chain(t)
	severed := s.DescendantsBFS([]Point{pts[2]})
	test.That(t, len(severed), test.ShouldEqual, 3) // pts[2], pts[3], pts[4]
	for _, p := range pts[2:] {
		_, ok := severed[p]
		test.That(t, ok, test.ShouldBeTrue)
	}
	_, rootIncluded := severed[pts[0]]
	test.That(t, rootIncluded, test.ShouldBeFalse)
}

func TestSeverEmptySetIsNoOp(t *testing.T) {
	s, _ := chain(t)
	before := s.Len()
	for v := range s.DescendantsBFS(nil) {
		s.Sever(v)
	}
	test.That(t, s.Len(), test.ShouldEqual, before)
}

func geometryDistance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Hypot(dx, dy)
}
