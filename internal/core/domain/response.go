package domain

// ResponseKind classifies a synthesized response.
type ResponseKind string

// Response kinds.
const (
	ResponseAnswer        ResponseKind = "answer"
	ResponseAction        ResponseKind = "action"
	ResponseClarification ResponseKind = "clarification"
	ResponseApology       ResponseKind = "apology"
	ResponseAccessDenied  ResponseKind = "access_denied"
)

// Response is the single user-facing output of a voice turn.
type Response struct {
	// Kind classifies the response.
	Kind ResponseKind `json:"kind"`

	// Text is shown on screen.
	Text string `json:"text"`

	// Speech is the text handed to the speech synthesiser.
	Speech string `json:"speech"`

	// Navigation reports whether the host UI should navigate.
	Navigation bool `json:"navigation,omitempty"`

	// Screen is the navigation target.
	Screen string `json:"screen,omitempty"`

	// Intent is the classified intent, when classification succeeded.
	Intent *Intent `json:"intent,omitempty"`

	// Results are the knowledge hits used for an answer.
	Results []SearchResult `json:"results,omitempty"`

	// ActionResult is the dispatch outcome for action responses.
	ActionResult *ActionResult `json:"action_result,omitempty"`
}

// IsFailure returns true for apology and access-denied responses.
func (r *Response) IsFailure() bool {
	return r.Kind == ResponseApology || r.Kind == ResponseAccessDenied
}
