package geometry

import (
	"math/rand"

	"github.com/pkg/errors"
	"github.com/twpayne/go-geos"
)

// MultiPolygon wraps a GEOS geometry known to be a (possibly empty)
// collection of polygons. The zero value is not valid; use EmptyMultiPolygon.
type MultiPolygon struct {
	geom *geos.Geom // nil means empty
}

// IsEmpty reports whether the collection has no area.
func (m MultiPolygon) IsEmpty() bool {
	return m.geom == nil || m.geom.IsEmpty()
}

// Area returns the total area covered, 0 for an empty collection.
func (m MultiPolygon) Area() float64 {
	if m.IsEmpty() {
		return 0
	}
	return m.geom.Area()
}

// Bounds returns (minX, minY, maxX, maxY), all zero for an empty collection.
func (m MultiPolygon) Bounds() (minX, minY, maxX, maxY float64) {
	if m.IsEmpty() {
		return 0, 0, 0, 0
	}
	b := m.geom.Bounds()
	return b.MinX, b.MinY, b.MaxX, b.MaxY
}

// EmptyMultiPolygon returns the empty collection.
func EmptyMultiPolygon() MultiPolygon { return MultiPolygon{} }

// Kit is the GeometryKit facade (C2): a thin wrapper around one GEOS
// context performing every polygon/point query the planner needs. A Kit is
// not safe for concurrent use, matching the single-threaded cooperative
// model of spec.md §5 — callers own exactly one Kit per planner run.
type Kit struct {
	ctx *geos.Context
	rng *rand.Rand
}

// NewKit constructs a Kit seeded from rng, which governs random_point_in_box.
func NewKit(rng *rand.Rand) *Kit {
	return &Kit{ctx: geos.NewContext(), rng: rng}
}

// ParseMultiPolygonWKT parses a WKT MultiPolygon or Polygon string, the
// reproducible obstacle-input format from spec.md §6.
func (k *Kit) ParseMultiPolygonWKT(wkt string) (MultiPolygon, error) {
	g, err := k.ctx.NewGeomFromWKT(wkt)
	if err != nil {
		return MultiPolygon{}, errors.Wrap(err, "parsing obstacle WKT")
	}
	if g.IsEmpty() {
		return MultiPolygon{}, nil
	}
	return MultiPolygon{geom: g}, nil
}

// Union returns a ∪ b.
func (k *Kit) Union(a, b MultiPolygon) MultiPolygon {
	switch {
	case a.IsEmpty():
		return b
	case b.IsEmpty():
		return a
	default:
		return MultiPolygon{geom: a.geom.Union(b.geom)}
	}
}

// Difference returns a ∖ b.
func (k *Kit) Difference(a, b MultiPolygon) MultiPolygon {
	if a.IsEmpty() || b.IsEmpty() {
		return a
	}
	d := a.geom.Difference(b.geom)
	if d.IsEmpty() {
		return MultiPolygon{}
	}
	return MultiPolygon{geom: d}
}

// Intersection returns a ∩ b.
func (k *Kit) Intersection(a, b MultiPolygon) MultiPolygon {
	if a.IsEmpty() || b.IsEmpty() {
		return MultiPolygon{}
	}
	i := a.geom.Intersection(b.geom)
	if i.IsEmpty() {
		return MultiPolygon{}
	}
	return MultiPolygon{geom: i}
}

// Buffer returns the Minkowski inflation of g by radius r.
func (k *Kit) Buffer(g MultiPolygon, r float64) MultiPolygon {
	if g.IsEmpty() || r <= 0 {
		return g
	}
	return MultiPolygon{geom: g.geom.Buffer(r, geos.DefaultBufferParams)}
}

// Disc returns the filled circle of radius r centered at p, used to build
// vision discs and per-vertex obstacle-avoidance discs.
func (k *Kit) Disc(p Point, r float64) MultiPolygon {
	pt := k.ctx.NewPoint([]float64{p.X, p.Y})
	return MultiPolygon{geom: pt.Buffer(r, geos.DefaultBufferParams)}
}

// PointClear reports whether p lies outside every polygon in obstacles.
func (k *Kit) PointClear(p Point, obstacles MultiPolygon) bool {
	if obstacles.IsEmpty() {
		return true
	}
	pt := k.ctx.NewPoint([]float64{p.X, p.Y})
	return !obstacles.geom.Contains(pt)
}

// EdgeClear reports whether the open segment ab does not intersect obstacles.
func (k *Kit) EdgeClear(a, b Point, obstacles MultiPolygon) bool {
	if obstacles.IsEmpty() {
		return true
	}
	line := k.ctx.NewLineString([][]float64{{a.X, a.Y}, {b.X, b.Y}})
	return !line.Intersects(obstacles.geom)
}

// Centroid returns the geometric centroid of a non-empty MultiPolygon.
// Callers must guard emptiness, matching Nearest's non-empty-input contract.
func (k *Kit) Centroid(g MultiPolygon) Point {
	c := g.geom.Centroid()
	return Point{X: c.X(), Y: c.Y()}
}

// RandomPointInBox uniformly samples a point in [0,w]x[0,h].
func (k *Kit) RandomPointInBox(w, h float64) Point {
	return RandomPointInBox(k.rng, w, h)
}

// GridPointsInBounds returns every integer grid point (x, y) with
// minX<=x<=maxX, minY<=y<=maxY that obstacles contains; used by the
// potential-field rasterizer (C7) to build its obstacle mask.
func (k *Kit) GridPointsInBounds(obstacles MultiPolygon, minX, minY, maxX, maxY int) []Point {
	if obstacles.IsEmpty() {
		return nil
	}
	var pts []Point
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			pt := k.ctx.NewPoint([]float64{float64(x), float64(y)})
			if obstacles.geom.Contains(pt) {
				pts = append(pts, Point{X: float64(x), Y: float64(y)})
			}
		}
	}
	return pts
}
