package driven

import (
	"time"

	"github.com/wevysya/voiceos/internal/core/domain"
)

// Telemetry records pipeline events. Implementations must be safe for
// concurrent use and must never block the caller.
type Telemetry interface {
	// TurnCompleted records a finished turn with its response kind and duration.
	TurnCompleted(kind domain.ResponseKind, d time.Duration)

	// IntentClassified records a classification outcome. errKind is "none" on success.
	IntentClassified(intentType domain.IntentType, errKind string)

	// ActionDispatched records a dispatch outcome. errKind is "none" on success.
	ActionDispatched(action string, success bool, errKind string)

	// SearchPerformed records which search mode answered a query.
	SearchPerformed(mode domain.SearchMode, results int)
}

// NopTelemetry discards all events.
type NopTelemetry struct{}

// TurnCompleted implements Telemetry.
func (NopTelemetry) TurnCompleted(domain.ResponseKind, time.Duration) {}

// IntentClassified implements Telemetry.
func (NopTelemetry) IntentClassified(domain.IntentType, string) {}

// ActionDispatched implements Telemetry.
func (NopTelemetry) ActionDispatched(string, bool, string) {}

// SearchPerformed implements Telemetry.
func (NopTelemetry) SearchPerformed(domain.SearchMode, int) {}

var _ Telemetry = NopTelemetry{}
