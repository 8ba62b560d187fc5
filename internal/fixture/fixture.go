// Package fixture loads terrain grids for tests from CSV override files: a
// grid is otherwise uniform (every cell carries a configurable default
// mask) and the CSV lists only the cells that differ, keeping scenario
// fixtures small and readable. Test-only; never imported by qdpf itself.
package fixture

import (
	"os"

	"github.com/gocarina/gocsv"
)

// terrainCell is one row of a terrain override CSV.
type terrainCell struct {
	X    int `csv:"x"`
	Y    int `csv:"y"`
	Mask int `csv:"mask"`
}

// Grid is an in-memory terrain grid backed by a sparse set of overrides
// over a uniform default mask.
type Grid struct {
	W, H        int
	DefaultMask int
	overrides   map[[2]int]int
}

// Terrain implements qdpf.TerrainFunc: it returns the override at (x,y) if
// one was loaded, otherwise the grid's default mask.
func (g *Grid) Terrain(x, y int) int {
	if v, ok := g.overrides[[2]int{x, y}]; ok {
		return v
	}
	return g.DefaultMask
}

// Set overrides a single cell's mask at runtime, for scenarios that mutate
// the grid mid-test (e.g. clearing a wall and re-querying).
func (g *Grid) Set(x, y, mask int) {
	g.overrides[[2]int{x, y}] = mask
}

// Load reads a terrain override CSV and builds a Grid of the given extents
// with defaultMask applied to every cell the CSV doesn't mention.
func Load(path string, w, h, defaultMask int) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []terrainCell
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, err
	}

	g := &Grid{W: w, H: h, DefaultMask: defaultMask, overrides: make(map[[2]int]int, len(rows))}
	for _, r := range rows {
		g.overrides[[2]int{r.X, r.Y}] = r.Mask
	}
	return g, nil
}
