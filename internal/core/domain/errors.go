package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors: adapters wrap transport
// and storage failures into one of these before they leave a component.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Pipeline Errors.

	// ErrEmptyTranscript indicates the transcript was empty after trimming.
	// It never reaches the classification service.
	ErrEmptyTranscript = errors.New("empty transcript")

	// ErrMalformedClassification indicates the classifier reply could not be
	// parsed into an Intent, or the service answered with a non-2xx status.
	ErrMalformedClassification = errors.New("malformed classification")

	// ErrClassificationTimeout indicates the classification call timed out.
	// Recoverable: retried once before surfacing.
	ErrClassificationTimeout = errors.New("classification timeout")

	// ErrClassifierUnavailable indicates no classification service is configured.
	ErrClassifierUnavailable = errors.New("classification service unavailable")

	// ErrStoreUnavailable indicates the knowledge store backend cannot be reached.
	// Recoverable: callers fall back to keyword search.
	ErrStoreUnavailable = errors.New("knowledge store unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or failed. Similarity search is skipped without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Action Errors.

	// ErrUnknownAction indicates the action name is not registered.
	ErrUnknownAction = errors.New("unknown action")

	// ErrInvalidParameters indicates action parameters failed schema validation.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrPermissionDenied indicates the caller lacks the action's capability.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDuplicateAction indicates an action name was registered twice.
	ErrDuplicateAction = errors.New("duplicate action")

	// ErrRegistrySealed indicates registration was attempted after start-up.
	ErrRegistrySealed = errors.New("action registry sealed")

	// Session Errors.

	// ErrSessionBusy indicates a turn was started while the session is not idle.
	ErrSessionBusy = errors.New("session busy")

	// ErrInvalidTransition indicates an event that the current state does not accept.
	ErrInvalidTransition = errors.New("invalid session transition")
)

// errorKinds maps taxonomy errors to their short names, in match order.
var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrEmptyTranscript, "empty_transcript"},
	{ErrMalformedClassification, "malformed_classification"},
	{ErrClassificationTimeout, "classification_timeout"},
	{ErrClassifierUnavailable, "classifier_unavailable"},
	{ErrStoreUnavailable, "store_unavailable"},
	{ErrEmbeddingUnavailable, "embedding_unavailable"},
	{ErrUnknownAction, "unknown_action"},
	{ErrInvalidParameters, "invalid_parameters"},
	{ErrPermissionDenied, "permission_denied"},
	{ErrDuplicateAction, "duplicate_action"},
	{ErrRegistrySealed, "registry_sealed"},
	{ErrSessionBusy, "session_busy"},
	{ErrInvalidTransition, "invalid_transition"},
	{ErrNotFound, "not_found"},
	{ErrInvalidInput, "invalid_input"},
}

// ErrorKind returns the taxonomy name of err for logs and telemetry.
// Returns "none" for nil and "internal" for errors outside the taxonomy.
func ErrorKind(err error) string {
	if err == nil {
		return "none"
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}

// IsContractViolation reports whether err signals a stale client, classifier
// drift or insufficient privilege. Such errors are never retried.
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrInvalidParameters) ||
		errors.Is(err, ErrPermissionDenied)
}
