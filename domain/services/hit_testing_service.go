package services

import (
	"math"

	"investigation-canvas/domain/config"
	"investigation-canvas/domain/core/entities"
	"investigation-canvas/domain/core/valueobjects"
)

// SceneReader is the read-only view of a scene the hit tester needs
type SceneReader interface {
	Nodes() []*entities.Node
	Connections() []*entities.Connection
	Node(id valueobjects.NodeID) (*entities.Node, bool)
}

// HitTester answers which node or connection lies under a point.
// Queries have no side effects.
type HitTester struct {
	tolerance float64
}

// NewHitTester creates a hit tester using the configured connection tolerance
func NewHitTester(cfg *config.DomainConfig) *HitTester {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &HitTester{tolerance: cfg.ConnectionHitTolerance}
}

// Tolerance returns the connection hit radius
func (h *HitTester) Tolerance() float64 {
	return h.tolerance
}

// NodeAt returns the topmost node whose rectangle contains p.
// Later-added nodes are drawn above earlier ones, so the search runs newest first.
func (h *HitTester) NodeAt(scene SceneReader, p valueobjects.Position) (*entities.Node, bool) {
	nodes := scene.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Bounds().Contains(p) {
			return nodes[i], true
		}
	}
	return nil, false
}

// ConnectionAt returns the first connection whose center-to-center segment
// passes within the tolerance of p. Connections with a missing endpoint are skipped.
func (h *HitTester) ConnectionAt(scene SceneReader, p valueobjects.Position) (*entities.Connection, bool) {
	for _, conn := range scene.Connections() {
		from, ok := scene.Node(conn.From())
		if !ok {
			continue
		}
		to, ok := scene.Node(conn.To())
		if !ok {
			continue
		}
		if PointToSegmentDistance(p, from.Center(), to.Center()) < h.tolerance {
			return conn, true
		}
	}
	return nil, false
}

// PointToSegmentDistance returns the Euclidean distance from p to the segment ab.
// The projection parameter is clamped to [0,1]; a degenerate segment measures to a.
func PointToSegmentDistance(p, a, b valueobjects.Position) float64 {
	dx := b.X() - a.X()
	dy := b.Y() - a.Y()
	lenSq := dx*dx + dy*dy

	param := -1.0
	if lenSq != 0 {
		param = ((p.X()-a.X())*dx + (p.Y()-a.Y())*dy) / lenSq
	}

	var nearestX, nearestY float64
	switch {
	case param < 0:
		nearestX, nearestY = a.X(), a.Y()
	case param > 1:
		nearestX, nearestY = b.X(), b.Y()
	default:
		nearestX, nearestY = a.X()+param*dx, a.Y()+param*dy
	}

	return math.Hypot(p.X()-nearestX, p.Y()-nearestY)
}
