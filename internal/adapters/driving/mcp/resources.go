package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wevysya/voiceos/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for voiceos resources.
	uriScheme = "voiceos://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "actions",
		Name:        "actions",
		Description: "Registered voice actions with their parameters and required tier",
		MIMEType:    "application/json",
	}, s.handleActionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "knowledge-document",
		Description: "Content of a knowledge document",
		MIMEType:    "text/plain",
	}, s.handleDocumentResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{userId}",
		Name:        "voice-session",
		Description: "Current state of the server caller's voice session",
		MIMEType:    "application/json",
	}, s.handleSessionResource)
}

// handleActionsResource returns the action catalogue.
func (s *Server) handleActionsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	infos := []domain.ActionInfo{}
	if s.ports.Actions != nil {
		infos = append(infos, s.ports.Actions.Actions()...)
	}
	return jsonResource(req.Params.URI, infos)
}

// handleDocumentResource returns a document's content.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, err := extractParam(req.Params.URI, "documents/")
	if err != nil {
		return nil, err
	}
	if s.ports.Knowledge == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Knowledge.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Content,
		}},
	}, nil
}

// handleSessionResource returns a snapshot of the server caller's session.
// Other members' sessions are not visible.
func (s *Server) handleSessionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	key, err := extractParam(req.Params.URI, "sessions/")
	if err != nil {
		return nil, err
	}
	caller := s.ports.caller()
	if key != caller.SessionKey() {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, s.ports.Voice.State(caller))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractParam extracts the path segment after prefix from a voiceos:// URI.
func extractParam(uri, prefix string) (string, error) {
	rest, ok := strings.CutPrefix(uri, uriScheme+prefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", fmt.Errorf("%w: invalid resource URI %q", domain.ErrInvalidInput, uri)
	}
	return rest, nil
}
