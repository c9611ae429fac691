package geometry

import (
	"math/rand"
	"testing"

	"go.viam.com/test"
)

func testKit(t *testing.T) *Kit {
	t.Helper()
	return NewKit(rand.New(rand.NewSource(1)))
}

func TestParseAndPointClear(t *testing.T) {
	k := testKit(t)
	obstacles, err := k.ParseMultiPolygonWKT("MULTIPOLYGON (((0 0, 10 0, 10 10, 0 10, 0 0)))")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, obstacles.IsEmpty(), test.ShouldBeFalse)

	test.That(t, k.PointClear(Point{X: 5, Y: 5}, obstacles), test.ShouldBeFalse)
	test.That(t, k.PointClear(Point{X: 50, Y: 50}, obstacles), test.ShouldBeTrue)
}

func TestEdgeClear(t *testing.T) {
	k := testKit(t)
	obstacles, err := k.ParseMultiPolygonWKT("MULTIPOLYGON (((40 0, 60 0, 60 100, 40 100, 40 0)))")
	test.That(t, err, test.ShouldBeNil)

	test.That(t, k.EdgeClear(Point{X: 0, Y: 50}, Point{X: 30, Y: 50}, obstacles), test.ShouldBeTrue)
	test.That(t, k.EdgeClear(Point{X: 0, Y: 50}, Point{X: 100, Y: 50}, obstacles), test.ShouldBeFalse)
}

func TestUnionDifferenceIntersection(t *testing.T) {
	k := testKit(t)
	a, _ := k.ParseMultiPolygonWKT("MULTIPOLYGON (((0 0, 10 0, 10 10, 0 10, 0 0)))")
	b, _ := k.ParseMultiPolygonWKT("MULTIPOLYGON (((5 5, 15 5, 15 15, 5 15, 5 5)))")

	union := k.Union(a, b)
	test.That(t, union.Area(), test.ShouldAlmostEqual, 175, 1e-6)

	diff := k.Difference(a, b)
	test.That(t, diff.Area(), test.ShouldAlmostEqual, 75, 1e-6)

	inter := k.Intersection(a, b)
	test.That(t, inter.Area(), test.ShouldAlmostEqual, 25, 1e-6)
}

func TestBufferGrowsArea(t *testing.T) {
	k := testKit(t)
	a, _ := k.ParseMultiPolygonWKT("MULTIPOLYGON (((0 0, 10 0, 10 10, 0 10, 0 0)))")
	buffered := k.Buffer(a, 2)
	test.That(t, buffered.Area(), test.ShouldBeGreaterThan, a.Area())
}

func TestEmptyObstaclesAreAlwaysClear(t *testing.T) {
	k := testKit(t)
	empty := EmptyMultiPolygon()
	test.That(t, k.PointClear(Point{X: 1, Y: 1}, empty), test.ShouldBeTrue)
	test.That(t, k.EdgeClear(Point{X: 0, Y: 0}, Point{X: 5, Y: 5}, empty), test.ShouldBeTrue)
}

func TestCentroidOfSquare(t *testing.T) {
	k := testKit(t)
	a, _ := k.ParseMultiPolygonWKT("MULTIPOLYGON (((0 0, 4 0, 4 4, 0 4, 0 0)))")
	c := k.Centroid(a)
	test.That(t, c.X, test.ShouldAlmostEqual, 2)
	test.That(t, c.Y, test.ShouldAlmostEqual, 2)
}
