// Package mcp provides an MCP (Model Context Protocol) server adapter for voiceos.
// It lets AI assistants run voice turns, search the knowledge store and
// inspect the action catalogue.
package mcp

import "errors"

// ErrMissingVoiceService is returned when the voice service is not provided.
var ErrMissingVoiceService = errors.New("mcp: voice service is required")
