package planner

import (
	"github.com/google/uuid"

	"github.com/motionlab/farrt/field"
	"github.com/motionlab/farrt/geometry"
	"github.com/motionlab/farrt/queue"
	"github.com/motionlab/farrt/rrtstar"
	"github.com/motionlab/farrt/treestore"
)

// State realizes PlannerState (spec.md §3): the full mutable state of one
// planner run, owned exclusively by a single Driver.
type State struct {
	// RunID is a per-run correlation id threaded through log lines so a
	// sequence of observe/replan steps for one run can be grepped together.
	// It has no effect on planning semantics.
	RunID uuid.UUID

	Config Config

	CurrPos Point

	Tree  *treestore.Store
	Queue *queue.Inconsistency
	Field *field.Field

	DetectedObstacles geometry.MultiPolygon
	// DeletedObstacles records obstacles present in a prior observation but
	// absent from the latest one (spec.md §4.1, §9 open question). No
	// planning decision reads this today; see SPEC_FULL.md.
	DeletedObstacles geometry.MultiPolygon

	BuiltTree   bool
	PlannedPath []rrtstar.Node
}

// NewState constructs a fresh State for one run: an empty tree rooted at
// goal (spec.md §3's lifecycle note: the tree is built once, rooted at
// goal, and mutated in place thereafter), a fresh inconsistency queue keyed
// on the tree's own cost function, and a zeroed potential field sized to
// the resolved world dimensions.
func NewState(cfg Config) *State {
	resolved := cfg.Resolve()
	tree := treestore.New(resolved.Goal)
	fld := field.New(int(resolved.WorldWidth), int(resolved.WorldHeight))

	keyFn := func(p Point) float64 {
		vertices := tree.Vertices()
		if len(vertices) == 0 {
			return 0
		}
		n := geometry.Nearest(vertices, p)
		return tree.Cost(n) + geometry.Distance(n, p)
	}

	return &State{
		RunID:             uuid.New(),
		Config:            resolved,
		CurrPos:           resolved.Start,
		Tree:              tree,
		Queue:             queue.New(keyFn, nil),
		Field:             fld,
		DetectedObstacles: geometry.EmptyMultiPolygon(),
		DeletedObstacles:  geometry.EmptyMultiPolygon(),
	}
}
