package domain

import (
	"fmt"
	"strings"
)

// ActionResult is the outcome of dispatching an action.
// A failed result always carries Error; a navigating result always carries Screen.
type ActionResult struct {
	// Success reports whether the handler completed.
	Success bool `json:"success"`

	// Error describes the failure. Set only when Success is false.
	Error string `json:"error,omitempty"`

	// Data carries handler-specific output.
	Data map[string]any `json:"data,omitempty"`

	// Navigation reports whether the host UI should navigate.
	Navigation bool `json:"navigation,omitempty"`

	// Screen is the navigation target understood by the host UI.
	Screen string `json:"screen,omitempty"`
}

// Succeeded returns a successful result without navigation.
func Succeeded(data map[string]any) ActionResult {
	return ActionResult{Success: true, Data: data}
}

// Navigated returns a successful result that navigates to screen.
func Navigated(screen string, data map[string]any) ActionResult {
	return ActionResult{Success: true, Data: data, Navigation: true, Screen: screen}
}

// Failed returns a failed result. An empty reason is replaced with a generic one.
func Failed(reason string) ActionResult {
	if strings.TrimSpace(reason) == "" {
		reason = "action failed"
	}
	return ActionResult{Success: false, Error: reason}
}

// Validate checks the success/error and navigation/screen invariants.
func (r *ActionResult) Validate() error {
	if !r.Success && r.Error == "" {
		return fmt.Errorf("%w: failed result without error", ErrInvalidInput)
	}
	if r.Navigation && r.Screen == "" {
		return fmt.Errorf("%w: navigation result without screen", ErrInvalidInput)
	}
	return nil
}

// ParamType is the expected type of an action parameter value.
type ParamType string

// Supported parameter types.
const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamInteger ParamType = "integer"
	ParamBoolean ParamType = "boolean"
)

// IsValid returns true if the parameter type is recognised.
func (t ParamType) IsValid() bool {
	switch t {
	case ParamString, ParamNumber, ParamInteger, ParamBoolean:
		return true
	default:
		return false
	}
}

// ParamSpec declares one action parameter.
type ParamSpec struct {
	// Name is the parameter key.
	Name string `json:"name"`

	// Type is the expected value type.
	Type ParamType `json:"type"`

	// Required marks parameters that must be present.
	Required bool `json:"required,omitempty"`

	// Rules is an optional validator tag applied to the value
	// (e.g. "min=1,max=500" or "oneof=/home /events").
	Rules string `json:"rules,omitempty"`

	// Description is shown in action listings and the classifier prompt.
	Description string `json:"description,omitempty"`
}

// ParameterSchema is the ordered list of parameters an action accepts.
// Validation walks it in order and stops at the first violation.
type ParameterSchema []ParamSpec

// Lookup returns the spec for name.
func (s ParameterSchema) Lookup(name string) (ParamSpec, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// Validate checks the schema itself is well formed.
func (s ParameterSchema) Validate() error {
	seen := make(map[string]bool, len(s))
	for _, p := range s {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: parameter without name", ErrInvalidInput)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: parameter %q declared twice", ErrInvalidInput, p.Name)
		}
		if !p.Type.IsValid() {
			return fmt.Errorf("%w: parameter %q has unknown type %q", ErrInvalidInput, p.Name, p.Type)
		}
		seen[p.Name] = true
	}
	return nil
}

// ActionInfo is the public description of a registered action.
type ActionInfo struct {
	// Name is the unique action name.
	Name string `json:"name"`

	// Description is a one-line summary.
	Description string `json:"description"`

	// Parameters declares the accepted parameters.
	Parameters ParameterSchema `json:"parameters"`

	// RequiredTier is the minimum caller tier.
	RequiredTier PermissionTier `json:"required_tier"`

	// RequiresAuth reports whether anonymous callers are rejected.
	RequiresAuth bool `json:"requires_auth"`

	// Navigates reports whether the action moves the host UI.
	Navigates bool `json:"navigates"`
}
