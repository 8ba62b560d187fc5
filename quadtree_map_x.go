package qdpf

import (
	"log/slog"

	"github.com/pthm-cable/qdpf/internal/clearance"
	"github.com/pthm-cable/qdpf/internal/quadtree"
)

// QuadtreeMapXSettings enumerates the (agent size, terrain mask)
// combinations a QuadtreeMapX instantiates a dedicated QuadtreeMap for.
type QuadtreeMapXSettings struct {
	AgentSizes    []int
	TerrainMasks  []int
	MaxNodeWidth  int
	MaxNodeHeight int
	Step          int
	StepFn        quadtree.StepFunction
}

type mapKey struct {
	agentSize int
	mask      int
}

// QuadtreeMapX is the fan-out manager over every (agent size x terrain mask)
// QuadtreeMap, sharing one clearance field per terrain mask and routing
// terrain mutations to every map whose parameters could be affected (C5).
type QuadtreeMapX struct {
	w, h     int
	distance DistanceFunc
	terrain  TerrainFunc
	settings QuadtreeMapXSettings
	log      *slog.Logger

	clearanceFields map[int]*clearance.Field
	maps            map[mapKey]*QuadtreeMap
}

// NewQuadtreeMapX constructs the bank, deferring construction of the
// clearance fields and QuadtreeMaps to Build.
func NewQuadtreeMapX(w, h int, distance DistanceFunc, terrain TerrainFunc, settings QuadtreeMapXSettings, log *slog.Logger) *QuadtreeMapX {
	return &QuadtreeMapX{
		w:        w,
		h:        h,
		distance: distance,
		terrain:  terrain,
		settings: settings,
		log:      logger(log),
	}
}

func (mx *QuadtreeMapX) stepFunction() quadtree.StepFunction {
	if mx.settings.StepFn != nil {
		return mx.settings.StepFn
	}
	if mx.settings.Step > 0 {
		s := mx.settings.Step
		return func(depth int) int { return s }
	}
	return nil
}

// Build constructs one clearance field per configured terrain mask and one
// QuadtreeMap per (agent size, terrain mask) pair, then builds every map.
func (mx *QuadtreeMapX) Build() {
	mx.clearanceFields = make(map[int]*clearance.Field, len(mx.settings.TerrainMasks))
	mx.maps = make(map[mapKey]*QuadtreeMap, len(mx.settings.AgentSizes)*len(mx.settings.TerrainMasks))

	for _, mask := range mx.settings.TerrainMasks {
		mx.clearanceFields[mask] = clearance.New(mx.w, mx.h, clearance.TerrainFunc(mx.terrain), mask)
	}

	for _, mask := range mx.settings.TerrainMasks {
		field := mx.clearanceFields[mask]
		for _, size := range mx.settings.AgentSizes {
			qm := NewQuadtreeMap(mx.w, mx.h, mx.distance, field.Query, mx.terrain, size, mask,
				mx.settings.MaxNodeWidth, mx.settings.MaxNodeHeight, mx.stepFunction(), mx.log)
			mx.maps[mapKey{agentSize: size, mask: mask}] = qm
		}
		// A clearance change at any cell must propagate to every map sharing
		// this mask, regardless of which agent size caused Update to be called.
		field.OnChange(func(cx, cy int) {
			for _, size := range mx.settings.AgentSizes {
				if qm, ok := mx.maps[mapKey{agentSize: size, mask: mask}]; ok {
					qm.Update(cx, cy)
				}
			}
		})
	}

	for _, qm := range mx.maps {
		qm.Build()
	}
	mx.log.Debug("quadtree map bank built", slog.Int("maps", len(mx.maps)))
}

// Update dispatches a terrain mutation at (x,y) to every contained map: each
// mask's clearance field re-evaluates and notifies the maps built on it.
func (mx *QuadtreeMapX) Update(x, y int) {
	for _, field := range mx.clearanceFields {
		field.Update(x, y)
	}
}

// Compute is an optional post-build finalization hook. The reference
// implementation has no precomputed tables beyond what Build already
// materializes, so it is a no-op kept for API parity with the spec surface.
func (mx *QuadtreeMapX) Compute() {}

// Get returns the QuadtreeMap for an exact (agentSize, terrainMask) match,
// or nil if no such map was configured.
func (mx *QuadtreeMapX) Get(agentSize, terrainMask int) *QuadtreeMap {
	return mx.maps[mapKey{agentSize: agentSize, mask: terrainMask}]
}
