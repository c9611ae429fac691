package planner

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/motionlab/farrt/geometry"
	"github.com/motionlab/farrt/logging"
	"github.com/motionlab/farrt/world"
)

func newTestDriver(t *testing.T, cfg testConfig, seed int64) (*Driver, *world.Model) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	kit := geometry.NewKit(rng)
	logger := logging.NewDevelopment()

	obstacles := geometry.EmptyMultiPolygon()
	if cfg.obstaclesWKT != "" {
		var err error
		obstacles, err = ParseFixture(kit, cfg.obstaclesWKT)
		test.That(t, err, test.ShouldBeNil)
	}
	m := world.New(kit, obstacles)

	d := NewDriver(cfg.Config, rng, kit, logger)
	return d, m
}

// testConfig bundles a Config with the fixture WKT that seeds the scenario's
// world — the fixture lives outside Config itself since Config is the
// planner's own external surface, not world generation (a non-goal).
type testConfig struct {
	Config
	obstaclesWKT string
}

func TestScenario1TrivialStraightLine(t *testing.T) {
	cfg := testConfig{Config: Config{
		Start: Point{X: 10, Y: 10},
		Goal:  Point{X: 80, Y: 80},
	}.Resolve()}
	d, m := newTestDriver(t, cfg, 1)

	err := d.Step(m)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.State.BuiltTree, test.ShouldBeTrue)
	test.That(t, len(d.State.PlannedPath), test.ShouldBeGreaterThan, 0)

	for _, n := range d.State.PlannedPath {
		test.That(t, geometry.Distance(n.Coord, n.Parent), test.ShouldBeLessThanOrEqualTo, d.State.Config.MaxStepLength+1e-6)
	}
}

func TestScenario2MapWithPassage(t *testing.T) {
	cfg := testConfig{
		Config: Config{
			Start: Point{X: 40, Y: 50},
			Goal:  Point{X: 90, Y: 50},
		}.Resolve(),
		obstaclesWKT: MapWithPassageWKT,
	}
	d, m := newTestDriver(t, cfg, 2)

	err := d.Step(m)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.State.BuiltTree, test.ShouldBeTrue)

	for _, n := range d.State.PlannedPath {
		test.That(t, d.Kit.EdgeClear(n.Coord, n.Parent, d.State.DetectedObstacles), test.ShouldBeTrue)
	}
}

func TestScenario4TinyBottomGapTriggersBufferHalving(t *testing.T) {
	cfg := testConfig{
		Config: Config{
			Start: Point{X: 45, Y: 5},
			Goal:  Point{X: 45, Y: 95},
		}.Resolve(),
		obstaclesWKT: MapWithTinyBottomGapWKT,
	}
	d, m := newTestDriver(t, cfg, 4)

	err := d.Step(m)
	// A tiny (width-2) gap against a default steer_distance of 10/3 is
	// sub-steer_distance; whether the cap-bound first build reaches it is
	// probabilistic, but the build must never corrupt the tree either way.
	test.That(t, d.State.Tree.CheckInvariants(), test.ShouldBeNil)
	_ = err
}

// TestScenario3MapClutterSurvivesRepeatedReplans drives the driver through
// the heavy-clutter fixture until it reaches the goal or exhausts its step
// budget, checking that tree invariants hold after every observe/replan
// cycle and that whatever plan survives never crosses a known obstacle.
func TestScenario3MapClutterSurvivesRepeatedReplans(t *testing.T) {
	cfg := testConfig{
		Config: Config{
			Start: Point{X: 13.436, Y: 84.743},
			Goal:  Point{X: 49.544, Y: 44.949},
		}.Resolve(),
		obstaclesWKT: MapClutterWKT,
	}
	d, m := newTestDriver(t, cfg, 3)

	replans := 0
	for i := 0; i < 40 && d.State.CurrPos != d.State.Config.Goal; i++ {
		before := d.State.BuiltTree
		err := d.Step(m)
		if before && err == nil {
			replans++
		}
		test.That(t, d.State.Tree.CheckInvariants(), test.ShouldBeNil)

		if _, stepErr := d.StepThroughPlan(); stepErr != nil {
			break
		}
	}

	if d.State.BuiltTree {
		for _, n := range d.State.PlannedPath {
			test.That(t, d.Kit.EdgeClear(n.Coord, n.Parent, d.State.DetectedObstacles), test.ShouldBeTrue)
		}
	}
	t.Logf("survived %d post-build step(s) without error before stopping", replans)
}

func TestScenario6QueueKeyOrdering(t *testing.T) {
	cfg := Config{Start: Point{X: 0, Y: 0}, Goal: Point{X: 0, Y: 0}}.Resolve()
	d, _ := newTestDriver(t, testConfig{Config: cfg}, 6)

	d.State.Queue.Insert(Point{X: 3, Y: 4})
	d.State.Queue.Insert(Point{X: 1, Y: 1})
	got := d.State.Queue.Pop()
	test.That(t, got, test.ShouldResemble, Point{X: 1, Y: 1})
}

func TestRunStopsAtMaxStepsWithoutPanicking(t *testing.T) {
	cfg := Config{Start: Point{X: 10, Y: 10}, Goal: Point{X: 20, Y: 20}}.Resolve()
	d, m := newTestDriver(t, testConfig{Config: cfg}, 9)

	visited, err := d.Run(context.Background(), m, 5, time.Microsecond)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(visited), test.ShouldBeGreaterThan, 0)
}
