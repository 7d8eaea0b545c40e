package driving

import (
	"context"

	"github.com/wevysya/voiceos/internal/core/domain"
)

// ActionDispatcher executes registered voice actions on behalf of a caller.
// This is used by the voice session, CLI and MCP adapters.
type ActionDispatcher interface {
	// Dispatch validates and executes action for caller.
	// Fails with domain.ErrUnknownAction, domain.ErrInvalidParameters or
	// domain.ErrPermissionDenied; handler failures are reported in the result.
	Dispatch(ctx context.Context, action domain.VoiceAction, caller domain.CallerContext) (domain.ActionResult, error)

	// Actions lists the registered actions sorted by name.
	Actions() []domain.ActionInfo
}
