package console

import "errors"

// Error definitions for the console view.
var (
	// ErrNoVoiceService indicates that no voice service was provided.
	ErrNoVoiceService = errors.New("voice service is required")
)
