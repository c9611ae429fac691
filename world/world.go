// Package world implements C1: the ObstacleModel holding the true obstacle
// geometry of the environment, queried only through a bounded vision disc
// to model partial observability (spec.md §4.2).
package world

import (
	"github.com/motionlab/farrt/geometry"
)

// Point is a world-coordinate location.
type Point = geometry.Point

// Model is the ObstacleModel (C1): the ground-truth obstacle layout the
// planner is never given directly. Its only interface to the planner is
// Observe, which returns the portion of the true obstacles visible from a
// given position within a given radius.
type Model struct {
	kit           *geometry.Kit
	trueObstacles geometry.MultiPolygon
}

// New constructs a Model with the given ground-truth obstacle geometry.
func New(kit *geometry.Kit, trueObstacles geometry.MultiPolygon) *Model {
	return &Model{kit: kit, trueObstacles: trueObstacles}
}

// True returns the full ground-truth obstacle geometry, for use by test
// harnesses and fixtures only — the planner itself must only call Observe.
func (m *Model) True() geometry.MultiPolygon { return m.trueObstacles }

// Observe implements spec.md §4.2: returns true_obstacles ∩ disc(pos,
// radius), the portion of the environment currently visible.
func (m *Model) Observe(pos Point, radius float64) geometry.MultiPolygon {
	vision := m.kit.Disc(pos, radius)
	return m.kit.Intersection(m.trueObstacles, vision)
}

// AddObstacle grows the ground truth by unioning in more geometry — used
// by scenarios that introduce an obstacle partway through a run.
func (m *Model) AddObstacle(g geometry.MultiPolygon) {
	m.trueObstacles = m.kit.Union(m.trueObstacles, g)
}

// RemoveObstacle shrinks the ground truth, modeling a previously detected
// obstacle that has since disappeared (spec.md §4.2's note that the model
// does not guarantee obstacles are static).
func (m *Model) RemoveObstacle(g geometry.MultiPolygon) {
	m.trueObstacles = m.kit.Difference(m.trueObstacles, g)
}
