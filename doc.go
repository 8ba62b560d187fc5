// Package qdpf implements hierarchical pathfinding over a 2D equal-weighted
// grid using a quadtree spatial decomposition. It answers two kinds of
// query: the shortest path between two cells for an agent of a given size
// over a permitted terrain mask (AStarPathFinder), and a flow field
// covering a destination rectangle that directs every reachable cell within
// it toward a target (FlowFieldPathFinder).
//
// A QuadtreeMapX holds one QuadtreeMap per (agent size, terrain mask)
// combination; terrain mutations are routed through QuadtreeMapX.Update and
// each affected map rebuilds the affected part of its quadtree, then
// regenerates its gates and both graphs.
// Pathfinders are short-lived, reusable value objects that weakly reference
// a QuadtreeMapX: Reset selects a map and validates a query, and the
// Compute* methods run staged searches over that map's node graph, then its
// gate graph (augmented by a per-query temporary overlay), then individual
// cells.
package qdpf
