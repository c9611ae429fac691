package planner

import (
	"context"
	"math/rand"
	"time"

	"go.viam.com/utils"

	"github.com/motionlab/farrt/farrt"
	"github.com/motionlab/farrt/geometry"
	"github.com/motionlab/farrt/logging"
	"github.com/motionlab/farrt/rrtstar"
	"github.com/motionlab/farrt/severance"
)

// Observer is the interface Driver expects for observation (C1). It is
// satisfied by *world.Model; Driver depends on the interface rather than
// the concrete type so tests can inject synthetic observers.
type Observer interface {
	Observe(pos Point, radius float64) geometry.MultiPolygon
}

// Driver is C4: the single-threaded cooperative loop owning one planner
// run's State, repeatedly observing, replanning on conflict, and stepping
// curr_pos along the current plan.
type Driver struct {
	State  *State
	Kit    *geometry.Kit
	RNG    *rand.Rand
	Logger logging.Logger

	explored geometry.MultiPolygon
}

// NewDriver constructs a Driver for a fresh run of cfg.
func NewDriver(cfg Config, rng *rand.Rand, kit *geometry.Kit, logger logging.Logger) *Driver {
	return &Driver{
		State:    NewState(cfg),
		Kit:      kit,
		RNG:      rng,
		Logger:   logger,
		explored: geometry.EmptyMultiPolygon(),
	}
}

// Step runs one observe/plan-or-replan cycle (spec.md §4.1, §4.10).
// Step returns PlanInfeasible when the initial build fails and ReplanStale
// when a replan cannot reconnect; neither indicates the driver should stop.
// Only an InvariantViolation is to be treated as fatal by the caller.
func (d *Driver) Step(observer Observer) *Error {
	s := d.State
	log := d.Logger.With("run_id", s.RunID.String())

	observation := observer.Observe(s.CurrPos, s.Config.VisionRadius)
	visionDisc := d.Kit.Disc(s.CurrPos, s.Config.VisionRadius)
	d.explored = d.Kit.Union(d.explored, visionDisc)

	newObstacles := d.Kit.Difference(observation, s.DetectedObstacles)
	previouslyKnownHere := d.Kit.Intersection(s.DetectedObstacles, visionDisc)
	deleted := d.Kit.Difference(previouslyKnownHere, observation)

	s.DetectedObstacles = d.Kit.Union(s.DetectedObstacles, observation)
	s.DeletedObstacles = d.Kit.Union(s.DeletedObstacles, deleted)
	log.Debugw("observed", "new_obstacle_area", newObstacles.Area(), "deleted_obstacle_area", deleted.Area())

	if !s.BuiltTree {
		return d.buildInitialTree(log)
	}

	if newObstacles.IsEmpty() {
		return nil
	}
	if !d.planCrossesObstacles(newObstacles) {
		return nil
	}
	return d.replan(log, newObstacles)
}

func (d *Driver) buildInitialTree(log logging.Logger) *Error {
	s := d.State
	res := rrtstar.BuildTree(d.RNG, s.Tree, d.Kit, s.Config.Start, s.DetectedObstacles, s.Config.RRTStarParams(), false)
	if !res.Reached {
		return newErrorf(PlanInfeasible, nil, "initial RRT* build exhausted its iteration cap without reaching start %v", s.Config.Start)
	}
	s.BuiltTree = true
	s.PlannedPath = rrtstar.ExtractPath(s.Tree, res.Goal, s.Tree.Root(), s.CurrPos, true)
	log.Infow("built initial tree", "vertices", s.Tree.Len(), "path_len", len(s.PlannedPath))
	return nil
}

// planCrossesObstacles reports whether any edge of the current plan now
// crosses the newly revealed obstacles — the FARRT* replan precondition
// from spec.md §4.10.
func (d *Driver) planCrossesObstacles(newObstacles geometry.MultiPolygon) bool {
	path := d.State.PlannedPath
	for _, n := range path {
		if !d.Kit.EdgeClear(n.Coord, n.Parent, newObstacles) {
			return true
		}
	}
	return false
}

func (d *Driver) replan(log logging.Logger, newObstacles geometry.MultiPolygon) *Error {
	s := d.State
	weights := s.Config.FieldWeights()
	if area := s.DetectedObstacles.Area(); area > 0 {
		weights.FieldForce = s.Config.PotentialFieldForce * d.explored.Area() / area
	}

	params := farrt.Params{
		Params:       s.Config.RRTStarParams(),
		FieldWeights: weights,
	}
	params.Iters = s.Config.FarrtIters()

	previousPath := make([]severance.Edge, len(s.PlannedPath))
	for i, n := range s.PlannedPath {
		previousPath[i] = severance.Edge{Coord: n.Coord, Parent: n.Parent}
	}

	res := farrt.Replan(d.RNG, s.Tree, d.Kit, s.Field, s.Queue, s.CurrPos, s.DetectedObstacles, newObstacles, previousPath, params)
	if !res.Reached {
		log.Warnw("replan could not reconnect to current position; keeping previous plan")
		return newError(ReplanStale, []geometry.Point{s.CurrPos}, "farrt rewiring could not reach curr_pos")
	}
	s.PlannedPath = res.PlannedPath
	log.Infow("replanned", "conflict", len(res.Conflict), "freed", len(res.Freed), "frontier", len(res.Frontier))
	return nil
}

// StepThroughPlan consumes the step of PlannedPath nearest curr_pos,
// advances CurrPos to it, and returns the new position. An empty plan is
// the EmptyPath case (spec.md §7): curr_pos is returned unchanged.
func (d *Driver) StepThroughPlan() (Point, *Error) {
	s := d.State
	if len(s.PlannedPath) == 0 {
		return s.CurrPos, newError(EmptyPath, nil, "step_through_plan called with an empty planned path")
	}
	last := len(s.PlannedPath) - 1
	next := s.PlannedPath[last]
	s.PlannedPath = s.PlannedPath[:last]
	s.CurrPos = next.Coord
	return s.CurrPos, nil
}

// Run drives Step/StepThroughPlan to completion: until curr_pos is within
// GoalReachedThresh of Config.Goal, or maxSteps is exhausted, or ctx is
// canceled. pacing is the inter-step delay passed to
// utils.SelectContextOrWait, keeping the loop cooperative rather than
// busy-spinning (spec.md §5).
func (d *Driver) Run(ctx context.Context, observer Observer, maxSteps int, pacing time.Duration) ([]Point, error) {
	s := d.State
	visited := []Point{s.CurrPos}

	for i := 0; i < maxSteps; i++ {
		if err := d.Step(observer); err != nil {
			d.Logger.Warnw("step error", "kind", err.Kind.String())
			if err.Fatal() {
				return visited, err
			}
		}

		pos, stepErr := d.StepThroughPlan()
		if stepErr == nil {
			visited = append(visited, pos)
		}

		if geometry.Distance(s.CurrPos, s.Config.Goal) < s.Config.GoalReachedThresh {
			return visited, nil
		}

		if !utils.SelectContextOrWait(ctx, pacing) {
			return visited, ctx.Err()
		}
	}
	return visited, nil
}
