// Package tui provides the interactive voice console for voiceos.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/wevysya/voiceos/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Voice runs voice turns. Required.
	Voice driving.VoiceService

	// Knowledge backs the source list under answers. Optional.
	Knowledge driving.KnowledgeService

	// Actions lists the action catalog. Optional.
	Actions driving.ActionDispatcher
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(voice driving.VoiceService, knowledge driving.KnowledgeService, actions driving.ActionDispatcher) *Ports {
	return &Ports{
		Voice:     voice,
		Knowledge: knowledge,
		Actions:   actions,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Voice == nil {
		return ErrMissingVoiceService
	}
	return nil
}
