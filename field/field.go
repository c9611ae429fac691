// Package field implements C7: the cell-based potential field that FARRT*
// uses to push sampled points away from newly detected obstacles and toward
// the existing tree and the goal (spec.md §4.8).
package field

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"

	"github.com/motionlab/farrt/geometry"
)

// Point is a world-coordinate location.
type Point = geometry.Point

const (
	// obstacleValue is the mask scale factor from spec.md §4.8.
	obstacleValue = 5.0
	blurSigma     = 3.0
	// grayScale maps the [0, obstacleValue] mask range onto the [0,255]
	// domain imaging.Blur operates on; obstacleValue maps to 255.
	grayScale = 255.0 / obstacleValue
)

// Field is the PotentialField (C7): an H×W×2 array of force vectors,
// backed by a pair of gonum dense matrices (one per component), indexed
// [y][x] exactly as spec.md §3 specifies.
type Field struct {
	W, H int
	dx   *mat.Dense
	dy   *mat.Dense
}

// New allocates a zeroed Field over the domain [0,W]x[0,H].
func New(w, h int) *Field {
	return &Field{
		W:  w,
		H:  h,
		dx: mat.NewDense(h, w, nil),
		dy: mat.NewDense(h, w, nil),
	}
}

// At returns the accumulated force vector at integer coordinate (x, y),
// clamped to the grid.
func (f *Field) At(x, y int) (dx, dy float64) {
	x = clampI(x, 0, f.W-1)
	y = clampI(y, 0, f.H-1)
	return f.dx.At(y, x), f.dy.At(y, x)
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Update rasterizes newObstacles into a 0/1 mask (0 inside an obstacle),
// scales (1-mask) by obstacleValue, Gaussian-blurs it with sigma=3, takes
// its gradient, and accumulates the result into the field. A call with an
// empty newObstacles leaves the field unchanged, matching spec.md §8's
// "field unchanged after an update with no obstacles" property.
func (f *Field) Update(kit *geometry.Kit, newObstacles geometry.MultiPolygon) {
	if newObstacles.IsEmpty() {
		return
	}

	mask := mat.NewDense(f.H, f.W, nil)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			mask.Set(y, x, 1)
		}
	}

	minX, minY, maxX, maxY := newObstacles.Bounds()
	lo := func(v float64) int { return clampI(int(math.Floor(v)), 0, f.W-1) }
	hi := func(v float64) int { return clampI(int(math.Ceil(v)), 0, f.W-1) }
	for _, p := range kit.GridPointsInBounds(newObstacles, lo(minX), int(math.Floor(minY)), hi(maxX), int(math.Ceil(maxY))) {
		x, y := int(p.X), int(p.Y)
		if x >= 0 && x < f.W && y >= 0 && y < f.H {
			mask.Set(y, x, 0)
		}
	}

	m := mat.NewDense(f.H, f.W, nil)
	m.Apply(func(y, x int, maskVal float64) float64 {
		return (1 - maskVal) * obstacleValue
	}, mask)

	blurred := gaussianBlur(m, blurSigma)
	gdx, gdy := gradient(blurred)

	f.dx.Add(f.dx, gdx)
	f.dy.Add(f.dy, gdy)
}

// gaussianBlur renders m as a grayscale image, blurs it with
// disintegration/imaging, and reads the result back into a matrix of the
// same shape and scale.
func gaussianBlur(m *mat.Dense, sigma float64) *mat.Dense {
	h, w := m.Dims()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := clampF(m.At(y, x)*grayScale, 0, 255)
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	blurred := imaging.Blur(img, sigma)

	out := mat.NewDense(h, w, nil)
	bounds := blurred.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= bounds.Dx() || y >= bounds.Dy() {
				continue
			}
			c := blurred.GrayAt(x, y)
			out.Set(y, x, float64(c.Y)/grayScale)
		}
	}
	return out
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

// gradient returns the (dx, dy) central-difference gradient of m, one-sided
// at the borders. gonum has no 2D image-gradient primitive, so this small
// numeric helper is hand-written; it still operates on and returns
// *mat.Dense to keep the field's representation uniformly gonum-backed.
func gradient(m *mat.Dense) (dx, dy *mat.Dense) {
	h, w := m.Dims()
	dx = mat.NewDense(h, w, nil)
	dy = mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var gx, gy float64
			switch {
			case x == 0:
				gx = m.At(y, min(x+1, w-1)) - m.At(y, x)
			case x == w-1:
				gx = m.At(y, x) - m.At(y, x-1)
			default:
				gx = (m.At(y, x+1) - m.At(y, x-1)) / 2
			}
			switch {
			case y == 0:
				gy = m.At(min(y+1, h-1), x) - m.At(y, x)
			case y == h-1:
				gy = m.At(y, x) - m.At(y-1, x)
			default:
				gy = (m.At(y+1, x) - m.At(y-1, x)) / 2
			}
			dx.Set(y, x, gx)
			dy.Set(y, x, gy)
		}
	}
	return dx, dy
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Weights bundles the scaling factors spec.md §4.8 applies when pushing a
// sampled point: field_force, tree_force, goal_force.
type Weights struct {
	FieldForce float64
	TreeForce  float64
	GoalForce  float64
}

// DefaultWeights matches spec.md §4.8's defaults.
func DefaultWeights() Weights {
	return Weights{FieldForce: 3, TreeForce: 0.5, GoalForce: 0.2}
}

// ApplyToPoint pushes p by the field force at its cell (scaled by
// weights.FieldForce), an attraction toward the centroid of tree points
// within 1.5*steerDistance (scaled by weights.TreeForce, only if any are
// found), and an attraction toward goal (scaled by weights.GoalForce),
// then clips the result to the domain box.
func (f *Field) ApplyToPoint(p Point, treePoints []Point, goal Point, steerDistance float64, w Weights) Point {
	dx, dy := f.At(int(math.Floor(p.X)), int(math.Floor(p.Y)))
	push := Point{X: dx * w.FieldForce, Y: dy * w.FieldForce}

	near := geometry.WithinRadius(treePoints, p, 1.5*steerDistance)
	if len(near) > 0 {
		c := geometry.Centroid(near)
		dir := c.Sub(p)
		if n := dir.Norm(); n > 0 {
			push = push.Add(dir.Mul(w.TreeForce / n))
		}
	}

	if goalDir := goal.Sub(p); goalDir.Norm() > 0 {
		push = push.Add(goalDir.Mul(w.GoalForce / goalDir.Norm()))
	}

	return geometry.Clip(p.Add(push), float64(f.W), float64(f.H))
}
