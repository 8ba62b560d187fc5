package qdpf

import "errors"

// Sentinel errors covering the taxonomy a Reset/Compute* call can hit
// internally. The public API never returns these directly: each failure path
// passes its sentinel to resultCode, which converts it to the 0/-1 contract
// at the boundary.
var (
	ErrInvalidGeometry = errors.New("qdpf: invalid rectangle geometry")
	ErrOutOfBounds     = errors.New("qdpf: cell out of bounds")
	ErrNoMatchingMap   = errors.New("qdpf: no QuadtreeMap for the given agent size and terrain mask")
	ErrTargetObstacle  = errors.New("qdpf: target cell is an obstacle")
	ErrUnreachable     = errors.New("qdpf: no path between start and target")
	ErrStageOutOfOrder = errors.New("qdpf: compute stage invoked before its prerequisite stage")
)

// resultCode converts an internal error into the public 0/-1 sentinel
// contract mandated for Reset and every Compute* method.
func resultCode(err error) int {
	if err != nil {
		return -1
	}
	return 0
}
