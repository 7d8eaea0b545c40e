// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - KnowledgeStore: Knowledge document persistence with keyword and similarity search
//   - ClassificationService: External intent classifier (edge function or LLM)
//   - ActionHandler: Executes one registered voice action
//   - RecordStore: Persistence for records written by action handlers
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, knowledge search is keyword-only.
//   - PromptStore: Customisable prompt templates. Without it, built-in defaults are used.
//   - Telemetry: Pipeline counters and latencies. Without it, nothing is recorded.
//   - SchedulerStore: Background task state. Without it, maintenance tasks do not run.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
