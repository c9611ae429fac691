// Package planner implements C4 (the driver loop) plus the error taxonomy
// and configuration surface spec.md §6-§7 describe, wiring C1-C9 together
// into an observe/replan cycle (spec.md §4.10, §5).
package planner

import (
	"github.com/motionlab/farrt/field"
	"github.com/motionlab/farrt/geometry"
	"github.com/motionlab/farrt/rrtstar"
)

// Point is a world-coordinate location.
type Point = geometry.Point

// Config is the planner's external configuration surface (spec.md §6).
// Every field except Start and Goal is optional; call Resolve to fill in
// the documented defaults and derive the fields spec.md defines relative
// to other fields.
type Config struct {
	Start, Goal Point

	WorldWidth, WorldHeight float64

	VisionRadius            float64
	Iters                   int
	Eps                     float64
	MaxStepLength           float64
	ObstacleAvoidanceRadius float64
	GoalReachedThresh       float64

	// FARRT*-only (spec.md §6).
	MergeThreshold      float64
	PotentialFieldForce float64
	TreeAttrForce       float64
	GoalAttrForce       float64
}

// Resolve returns a copy of c with every zero-valued optional field filled
// in per spec.md §6's documented defaults, derived in the order spec.md
// specifies them (VisionRadius before MaxStepLength before
// ObstacleAvoidanceRadius before MergeThreshold).
func (c Config) Resolve() Config {
	r := c
	if r.WorldWidth == 0 {
		r.WorldWidth = 90
	}
	if r.WorldHeight == 0 {
		r.WorldHeight = 90
	}
	if r.VisionRadius == 0 {
		r.VisionRadius = 10
	}
	if r.Iters == 0 {
		r.Iters = 2000
	}
	if r.Eps == 0 {
		r.Eps = 0.01
	}
	if r.MaxStepLength == 0 {
		r.MaxStepLength = r.VisionRadius / 3
	}
	if r.ObstacleAvoidanceRadius == 0 {
		r.ObstacleAvoidanceRadius = r.MaxStepLength * 2 / 3
	}
	if r.GoalReachedThresh == 0 {
		r.GoalReachedThresh = 1
	}
	if r.MergeThreshold == 0 {
		r.MergeThreshold = r.MaxStepLength / 8
	}
	if r.PotentialFieldForce == 0 {
		r.PotentialFieldForce = 3
	}
	if r.TreeAttrForce == 0 {
		r.TreeAttrForce = 0.5
	}
	if r.GoalAttrForce == 0 {
		r.GoalAttrForce = 0.2
	}
	return r
}

// FarrtIters is the minimum iteration count FARRT* replans use
// (spec.md §6: "at least 5000 for FARRT*").
func (c Config) FarrtIters() int {
	if c.Iters > 5000 {
		return c.Iters
	}
	return 5000
}

// RRTStarParams projects the resolved config onto rrtstar.Params for an
// initial build.
func (c Config) RRTStarParams() rrtstar.Params {
	return rrtstar.Params{
		SteerDistance:           c.MaxStepLength,
		Eps:                     c.Eps,
		GoalReachedThresh:       c.GoalReachedThresh,
		ObstacleAvoidanceRadius: c.ObstacleAvoidanceRadius,
		DomainW:                 c.WorldWidth,
		DomainH:                 c.WorldHeight,
		Iters:                   c.Iters,
	}
}

// FieldWeights projects the resolved config onto field.Weights.
func (c Config) FieldWeights() field.Weights {
	return field.Weights{
		FieldForce: c.PotentialFieldForce,
		TreeForce:  c.TreeAttrForce,
		GoalForce:  c.GoalAttrForce,
	}
}
