// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (~/.voiceos/config.toml)
//   - PromptStore: editable prompt templates (~/.voiceos/prompts/*.txt), hot reloaded with fsnotify
package file
