package planner

import "github.com/motionlab/farrt/geometry"

// The three canonical WKT fixtures from spec.md §8, domain [0,100]^2.

// MapWithPassageWKT is a vertical wall (x∈[55,65]) across the straight line
// from (40,50) to (90,50), with a narrow gap (height 4) at y∈[48,52].
const MapWithPassageWKT = `MULTIPOLYGON (
  ((55 0, 65 0, 65 48, 55 48, 55 0)),
  ((55 52, 65 52, 65 100, 55 100, 55 52))
)`

// MapClutterWKT scatters many small squares between the scenario-3 start
// (13.436,84.743) and goal (49.544,44.949), none of which cover either
// endpoint.
const MapClutterWKT = `MULTIPOLYGON (
  ((5 70, 9 70, 9 74, 5 74, 5 70)),
  ((18 75, 22 75, 22 79, 18 79, 18 75)),
  ((30 80, 34 80, 34 84, 30 84, 30 80)),
  ((40 70, 44 70, 44 74, 40 74, 40 70)),
  ((22 60, 26 60, 26 64, 22 64, 22 60)),
  ((32 62, 36 62, 36 66, 32 66, 32 62)),
  ((10 55, 14 55, 14 59, 10 59, 10 55)),
  ((44 58, 48 58, 48 62, 44 62, 44 58)),
  ((16 45, 20 45, 20 49, 16 49, 16 45)),
  ((27 50, 31 50, 31 54, 27 54, 27 50)),
  ((36 48, 40 48, 40 52, 36 52, 36 48)),
  ((8 38, 12 38, 12 42, 8 42, 8 38)),
  ((20 35, 24 35, 24 39, 20 39, 20 35)),
  ((5 20, 9 20, 9 24, 5 24, 5 20)),
  ((30 20, 34 20, 34 24, 30 24, 30 20))
)`

// MapWithTinyBottomGapWKT is a wall near the bottom of the domain with a
// gap (width 2) narrower than the default steer_distance (10/3), forcing
// the first-build's buffer-halving escape hatch (spec.md §4.5) to trigger
// for any path that must cross the bottom strip.
const MapWithTinyBottomGapWKT = `MULTIPOLYGON (
  ((0 10, 44 10, 44 20, 0 20, 0 10)),
  ((46 10, 100 10, 100 20, 46 20, 46 10))
)`

// ParseFixture parses one of the named WKT constants above through kit.
func ParseFixture(kit *geometry.Kit, wkt string) (geometry.MultiPolygon, error) {
	return kit.ParseMultiPolygonWKT(wkt)
}
