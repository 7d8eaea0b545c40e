package driving

import (
	"context"

	"github.com/wevysya/voiceos/internal/core/domain"
)

// IntentClassifier turns a transcript into a typed Intent.
type IntentClassifier interface {
	// Classify interprets transcript given optional free-text context.
	// Fails with domain.ErrEmptyTranscript, domain.ErrMalformedClassification
	// or domain.ErrClassificationTimeout.
	Classify(ctx context.Context, transcript, context string) (*domain.Intent, error)
}
