// Package geometry is the thin facade over polygon operations (C2 in
// SPEC_FULL.md): union, difference, intersection, buffer, edge/polygon
// intersection, nearest-point, centroid, random point in box. It backs its
// 2D vectors with github.com/golang/geo/r2 and its polygon algebra with
// github.com/twpayne/go-geos (GEOS bindings), which is the concrete
// "external library" spec.md assumes for these primitives.
package geometry

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
)

// Point is an exact 2D coordinate. Equality is bitwise on (X, Y), matching
// spec.md's data model: all stored coordinates are either user-supplied or
// produced once by Steer/interpolation and then reused verbatim as map
// keys, so float equality as a set/map key is safe.
type Point = r2.Point

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return a.Sub(b).Norm()
}

// Steer returns a point at distance min(Distance(near, target), maxStep)
// from near, along the segment from near toward target. If near == target
// it returns target unchanged.
func Steer(near, target Point, maxStep float64) Point {
	d := Distance(near, target)
	if d == 0 {
		return target
	}
	t := math.Min(1, maxStep/d)
	return near.Add(target.Sub(near).Mul(t))
}

// Nearest returns the member of candidates minimizing Distance(·, q).
// candidates must not contain q and must be non-empty.
func Nearest(candidates []Point, q Point) Point {
	best := candidates[0]
	bestDist := Distance(best, q)
	for _, c := range candidates[1:] {
		if d := Distance(c, q); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// WithinRadius returns the subset of candidates within radius r of center
// (inclusive).
func WithinRadius(candidates []Point, center Point, r float64) []Point {
	out := make([]Point, 0, len(candidates))
	for _, c := range candidates {
		if Distance(c, center) <= r {
			out = append(out, c)
		}
	}
	return out
}

// Centroid returns the arithmetic mean of pts. For an empty pts the result
// has NaN coordinates; callers must guard, matching nearest's
// non-empty-input contract.
func Centroid(pts []Point) Point {
	var sum Point
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(pts)))
}

// Clip returns p clamped to the axis-aligned box [0,w]x[0,h].
func Clip(p Point, w, h float64) Point {
	return Point{X: clampF(p.X, 0, w), Y: clampF(p.Y, 0, h)}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RandomPointInBox uniformly samples a point in [0,w]x[0,h].
func RandomPointInBox(rng *rand.Rand, w, h float64) Point {
	return Point{X: rng.Float64() * w, Y: rng.Float64() * h}
}
