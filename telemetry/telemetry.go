// Package telemetry gives the engine structured logging of settle
// lifecycle events, correlated by a per-top-level-settle id, in the style
// of the slog usage the rest of the retrieval pack's services carry
// (structured key/value fields, one logger threaded through a request's
// lifetime rather than package-level global calls).
package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Settle correlates every log line emitted while one top-level settle (and
// any settles nested within it through reentrancy) runs.
type Settle struct {
	ID     uuid.UUID
	logger *slog.Logger
}

// NewSettle starts a new correlation id against base, or slog.Default() if
// base is nil.
func NewSettle(base *slog.Logger) *Settle {
	if base == nil {
		base = slog.Default()
	}
	id := uuid.New()
	return &Settle{ID: id, logger: base.With("settle_id", id.String())}
}

// Begin logs the start of a settle's root discovery at Info, naming the
// entry point (update, added, removed) and the seed position.
func (s *Settle) Begin(kind string, pos fmt.Stringer, nested bool) {
	s.logger.Info("settle begin", "kind", kind, "pos", pos.String(), "nested", nested)
}

// Phase logs a phase transition at Debug with how many nodes it touched.
func (s *Settle) Phase(name string, touched int) {
	s.logger.Debug("settle phase", "phase", name, "touched", touched)
}

// End logs settle completion at Info.
func (s *Settle) End(rootCount, touched int) {
	s.logger.Info("settle end", "roots", rootCount, "touched", touched)
}

// Panic logs a recovered settle panic at Error before the engine re-throws it.
func (s *Settle) Panic(r any) {
	s.logger.Error("settle panicked", "panic", r)
}
