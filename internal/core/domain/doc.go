// Package domain defines the core business entities for the voice pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - KnowledgeDocument: A reference document answering informational questions
//   - Intent: The classifier's interpretation of an utterance
//   - VoiceAction / ActionResult: A typed app operation and its outcome
//   - CallerContext: The authenticated identity and permission tier of a caller
//   - VoiceOSState: The observable state of a voice session
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
