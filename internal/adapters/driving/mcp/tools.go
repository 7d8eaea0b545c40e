package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wevysya/voiceos/internal/core/domain"
)

// defaultSearchLimit is used when a search_knowledge call sets no limit.
const defaultSearchLimit = 5

// VoiceTurnInput is the input schema for the voice_turn tool. The turn runs
// as the server's configured caller.
type VoiceTurnInput struct {
	Transcript string `json:"transcript" jsonschema:"the finalised speech transcript"`
	Context    string `json:"context,omitempty" jsonschema:"optional free-text conversation context"`
}

// VoiceTurnOutput is the output schema for the voice_turn tool.
type VoiceTurnOutput struct {
	Kind       string   `json:"kind"`
	Text       string   `json:"text"`
	Speech     string   `json:"speech"`
	Navigation bool     `json:"navigation"`
	Screen     string   `json:"screen,omitempty"`
	IntentType string   `json:"intent_type,omitempty"`
	Action     string   `json:"action,omitempty"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// SearchInput is the input schema for the search_knowledge tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the question or keywords to look up"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search_knowledge tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single knowledge hit.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	Mode       string  `json:"mode"`
	Similarity float64 `json:"similarity"`
	Content    string  `json:"content"`
}

// ListActionsInput is the (empty) input schema for the list_actions tool.
type ListActionsInput struct{}

// ListActionsOutput is the output schema for the list_actions tool.
type ListActionsOutput struct {
	Actions []domain.ActionInfo `json:"actions"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "voice_turn",
		Description: "Run one voice assistant turn for a transcript and return the spoken response",
	}, s.handleVoiceTurn)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_knowledge",
		Description: "Search the WeVysya knowledge base",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_actions",
		Description: "List the actions the voice assistant can perform",
	}, s.handleListActions)
}

// handleVoiceTurn runs a complete turn and settles the session so the next
// call starts from idle.
func (s *Server) handleVoiceTurn(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input VoiceTurnInput,
) (*mcp.CallToolResult, VoiceTurnOutput, error) {
	caller := s.ports.caller()
	resp, turnErr := s.ports.Voice.Turn(ctx, caller, input.Transcript, input.Context)
	if resp == nil {
		if turnErr == nil {
			turnErr = errors.New("voice turn produced no response")
		}
		return nil, VoiceTurnOutput{}, turnErr
	}

	if turnErr != nil {
		s.ports.Voice.Acknowledge(caller) //nolint:errcheck // next turn resets a stale error anyway
	} else {
		s.ports.Voice.PlaybackComplete(caller) //nolint:errcheck // no audio to wait for
	}

	return nil, turnOutput(resp, turnErr), nil
}

func turnOutput(resp *domain.Response, err error) VoiceTurnOutput {
	out := VoiceTurnOutput{
		Kind:       string(resp.Kind),
		Text:       resp.Text,
		Speech:     resp.Speech,
		Navigation: resp.Navigation,
		Screen:     resp.Screen,
	}
	if resp.Intent != nil {
		out.IntentType = string(resp.Intent.Type)
		out.Confidence = resp.Intent.Confidence
		if resp.Intent.Action != nil {
			out.Action = resp.Intent.Action.Name
		}
	}
	for i := range resp.Results {
		out.Sources = append(out.Sources, resp.Results[i].ID)
	}
	if err != nil {
		out.Error = domain.ErrorKind(err)
	}
	return out
}

// handleSearch handles the search_knowledge tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	output := SearchOutput{Results: []SearchResultOutput{}}
	if s.ports.Knowledge == nil {
		return nil, output, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	results, err := s.ports.Knowledge.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output.Results = make([]SearchResultOutput, len(results))
	output.Count = len(results)
	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentID: results[i].ID,
			Title:      results[i].Metadata.Title,
			Category:   results[i].Metadata.Category,
			Mode:       results[i].Mode.String(),
			Similarity: results[i].Similarity,
			Content:    results[i].Content,
		}
	}

	return nil, output, nil
}

// handleListActions handles the list_actions tool invocation.
func (s *Server) handleListActions(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListActionsInput,
) (*mcp.CallToolResult, ListActionsOutput, error) {
	output := ListActionsOutput{Actions: []domain.ActionInfo{}}
	if s.ports.Actions != nil {
		output.Actions = append(output.Actions, s.ports.Actions.Actions()...)
	}
	return nil, output, nil
}
