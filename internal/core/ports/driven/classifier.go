package driven

import "context"

// ClassificationRequest is the payload sent to the external classifier.
type ClassificationRequest struct {
	// Transcript is the trimmed user utterance.
	Transcript string `json:"transcript"`

	// Context is optional free-text conversation context
	// (previous turn, current screen, seed knowledge).
	Context string `json:"context,omitempty"`

	// Actions lists the registered action names with one-line descriptions.
	Actions []ActionSummary `json:"actions,omitempty"`

	// Categories lists the known knowledge categories.
	Categories []string `json:"categories,omitempty"`
}

// ActionSummary describes an action to the classifier.
type ActionSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters,omitempty"`
}

// ClassificationService calls an external intent classifier.
// It returns the raw reply body; parsing and validation happen in core so
// that every backend is held to the same contract.
//
// Implementations may include:
//   - Edge function (classify-intent)
//   - OpenAI chat completion in JSON mode
type ClassificationService interface {
	// Classify sends req and returns the raw reply text.
	// Transport timeouts must wrap context.DeadlineExceeded or domain.ErrClassificationTimeout.
	// Non-2xx replies must wrap domain.ErrMalformedClassification.
	Classify(ctx context.Context, req ClassificationRequest) (string, error)

	// Name identifies the backend in logs.
	Name() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
