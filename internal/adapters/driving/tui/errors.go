package tui

import "errors"

// ErrMissingVoiceService is returned when the voice service is not provided.
var ErrMissingVoiceService = errors.New("tui: voice service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
