package mcp

import (
	"fmt"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Voice runs voice turns.
	Voice driving.VoiceService

	// Knowledge searches and reads knowledge documents.
	Knowledge driving.KnowledgeService

	// Actions lists the registered actions.
	Actions driving.ActionDispatcher

	// Caller is the identity every tool call runs as. It is fixed when the
	// server starts; clients cannot change it. The zero value is a guest.
	Caller domain.CallerContext
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Voice == nil {
		return ErrMissingVoiceService
	}
	// Knowledge and Actions are optional; their tools report empty results
	if p.Caller.Tier != "" && !p.Caller.Tier.IsValid() {
		return fmt.Errorf("%w: unknown tier %q", domain.ErrInvalidInput, p.Caller.Tier)
	}
	return nil
}

// caller returns the server's fixed caller, defaulting to an anonymous guest.
func (p *Ports) caller() domain.CallerContext {
	if p.Caller.Tier == "" {
		c := domain.Anonymous()
		c.UserID = p.Caller.UserID
		return c
	}
	return p.Caller
}
