package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return the built-in default
	// for well-known names and an error otherwise.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is called when prompts are edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptIntentClassifier is the system prompt sent to LLM-backed classifiers.
	// The template expects two %s placeholders: the action list and the category list.
	PromptIntentClassifier = "intent_classifier"

	// PromptClarification is spoken when an action intent falls below the
	// confidence threshold. The template expects a %s placeholder for the
	// guessed action phrase.
	PromptClarification = "clarification"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
