package domain

import (
	"fmt"
	"strings"
)

// IntentType tags an Intent as a knowledge question or an executable action.
type IntentType string

// Available intent types.
const (
	// IntentKnowledge asks a question answered from the knowledge store.
	IntentKnowledge IntentType = "knowledge"

	// IntentAction issues a command executed through the action registry.
	IntentAction IntentType = "action"
)

// DefaultConfidenceThreshold is the policy default below which an intent is
// treated as low-confidence.
const DefaultConfidenceThreshold = 0.5

// IsValid returns true if the intent type is recognised.
func (t IntentType) IsValid() bool {
	return t == IntentKnowledge || t == IntentAction
}

// String returns the string representation.
func (t IntentType) String() string {
	return string(t)
}

// Intent is the classifier's structured interpretation of one utterance.
// Exactly one of Category or Action is populated, governed by Type.
type Intent struct {
	// Type tags the intent.
	Type IntentType `json:"type"`

	// Category names the knowledge domain. Only set when Type is knowledge.
	Category string `json:"category,omitempty"`

	// Action is the requested operation. Only set when Type is action.
	Action *VoiceAction `json:"action,omitempty"`

	// Response is the natural-language text presented to the user.
	Response string `json:"response"`

	// Confidence is the classifier's score in [0, 1].
	Confidence float64 `json:"confidence"`
}

// VoiceAction is a named operation requested by an action intent.
type VoiceAction struct {
	// Name identifies a registered action.
	Name string `json:"name"`

	// Parameters maps parameter names to values, validated against the
	// registered schema at dispatch time.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Screen is an optional navigation target.
	Screen string `json:"screen,omitempty"`
}

// Validate checks the type/category/action invariant and the confidence range.
func (i *Intent) Validate() error {
	if i.Confidence < 0 || i.Confidence > 1 {
		return fmt.Errorf("%w: confidence %.3f outside [0,1]", ErrInvalidInput, i.Confidence)
	}

	switch i.Type {
	case IntentKnowledge:
		if strings.TrimSpace(i.Category) == "" {
			return fmt.Errorf("%w: knowledge intent without category", ErrInvalidInput)
		}
		if i.Action != nil {
			return fmt.Errorf("%w: knowledge intent carries an action", ErrInvalidInput)
		}
	case IntentAction:
		if i.Action == nil || strings.TrimSpace(i.Action.Name) == "" {
			return fmt.Errorf("%w: action intent without action name", ErrInvalidInput)
		}
		if i.Category != "" {
			return fmt.Errorf("%w: action intent carries a category", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown intent type %q", ErrInvalidInput, i.Type)
	}

	return nil
}

// Actionable returns true if the intent is an action whose confidence meets threshold.
func (i *Intent) Actionable(threshold float64) bool {
	return i.Type == IntentAction && i.Action != nil && i.Confidence >= threshold
}

// LowConfidence returns true if the confidence is below threshold.
func (i *Intent) LowConfidence(threshold float64) bool {
	return i.Confidence < threshold
}
