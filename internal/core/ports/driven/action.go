package driven

import (
	"context"

	"github.com/wevysya/voiceos/internal/core/domain"
)

// ActionHandler executes one voice action.
// Parameters have already been validated against the action's schema and
// the caller's tier checked before Handle is invoked.
type ActionHandler interface {
	Handle(ctx context.Context, params map[string]any, caller domain.CallerContext) (domain.ActionResult, error)
}

// ActionHandlerFunc adapts a function to ActionHandler.
type ActionHandlerFunc func(ctx context.Context, params map[string]any, caller domain.CallerContext) (domain.ActionResult, error)

// Handle calls f.
func (f ActionHandlerFunc) Handle(ctx context.Context, params map[string]any, caller domain.CallerContext) (domain.ActionResult, error) {
	return f(ctx, params, caller)
}

// ActionDefinition is everything the registry needs to know about an action.
type ActionDefinition struct {
	// Name is the unique action name the classifier emits.
	Name string

	// Description is a one-line summary for listings and the classifier.
	Description string

	// Schema declares the accepted parameters.
	Schema domain.ParameterSchema

	// RequiredTier is the minimum caller tier.
	RequiredTier domain.PermissionTier

	// RequiresAuth rejects unauthenticated callers regardless of tier.
	RequiresAuth bool

	// Navigates marks actions that move the host UI.
	Navigates bool

	// DefaultScreen is used when a navigating handler returns no screen.
	DefaultScreen string

	// Handler executes the action.
	Handler ActionHandler
}

// Summary returns the classifier-facing description of the action.
func (d ActionDefinition) Summary() ActionSummary {
	params := make([]string, 0, len(d.Schema))
	for _, p := range d.Schema {
		params = append(params, p.Name)
	}
	return ActionSummary{Name: d.Name, Description: d.Description, Parameters: params}
}

// Info returns the public description of the action.
func (d ActionDefinition) Info() domain.ActionInfo {
	return domain.ActionInfo{
		Name:         d.Name,
		Description:  d.Description,
		Parameters:   d.Schema,
		RequiredTier: d.RequiredTier,
		RequiresAuth: d.RequiresAuth,
		Navigates:    d.Navigates,
	}
}
