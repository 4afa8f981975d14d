// Package service implements the gateway use-cases: availability gating,
// dry-run reconciliation, sync execution, the orchestrator control plane,
// and status reporting.
package service

import "github.com/taskgate/taskgate/internal/config"

// Gate decides which gateway features are exposed, based on which
// integrations have credentials configured. The predicates are pure reads
// of configuration state captured at startup.
//
// Exposure rule: board tools require SourceAvailable, tracker tools
// require MirrorAvailable, the sync pair requires both, and the
// orchestrator control plane is always exposed.
type Gate struct {
	source bool
	mirror bool
}

// NewGate builds a Gate from the integration configuration.
func NewGate(cfg *config.Config) *Gate {
	return &Gate{
		source: cfg.Board.Configured(),
		mirror: cfg.Tracker.Configured(),
	}
}

// SourceAvailable reports whether the board integration is configured.
func (g *Gate) SourceAvailable() bool { return g.source }

// MirrorAvailable reports whether the tracker integration is configured.
func (g *Gate) MirrorAvailable() bool { return g.mirror }

// GatewayAvailable reports whether at least one integration is configured.
func (g *Gate) GatewayAvailable() bool { return g.source || g.mirror }

// SyncAvailable reports whether sync can run; it needs both sides.
func (g *Gate) SyncAvailable() bool { return g.source && g.mirror }
