package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/logger"
)

// Ensure Classifier implements the interfaces.
var (
	_ driven.ClassificationService = (*Classifier)(nil)
	_ driven.PromptStoreAware      = (*Classifier)(nil)
)

// defaultSystemPrompt is used when no prompt store is set or its template is unusable.
// %[1]s is the action list, %[2]s the knowledge categories.
const defaultSystemPrompt = `Classify the user's utterance for a voice assistant. Reply with one JSON object:
{"type": "knowledge" | "action", "category": string, "action": {"name": string, "parameters": object} | null, "confidence": number, "response": string}
Knowledge categories: %[2]s.
Actions:
%[1]s`

// Classifier classifies transcripts with a chat completion in JSON mode.
type Classifier struct {
	client  *openai.Client
	model   string
	prompts driven.PromptStore
}

// NewClassifier creates an OpenAI-backed classifier.
func NewClassifier(cfg Config) (*Classifier, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Classifier{client: client, model: cfg.Model}, nil
}

// SetPromptStore sets the store for the intent_classifier template.
func (c *Classifier) SetPromptStore(store driven.PromptStore) {
	c.prompts = store
}

// Classify sends req as a chat completion and returns the model's JSON reply.
func (c *Classifier) Classify(ctx context.Context, req driven.ClassificationRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.SystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: userMessage(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai: no choices returned", domain.ErrMalformedClassification)
	}
	return resp.Choices[0].Message.Content, nil
}

// SystemPrompt renders the classifier template with the request's actions and categories.
func (c *Classifier) SystemPrompt(req driven.ClassificationRequest) string {
	tmpl := defaultSystemPrompt
	if c.prompts != nil {
		if custom, err := c.prompts.Load(driven.PromptIntentClassifier); err == nil {
			tmpl = custom
		} else {
			logger.Debug("Using default classifier prompt: %v", err)
		}
	}

	actions, categories := renderActions(req.Actions), renderCategories(req.Categories)
	out := fmt.Sprintf(tmpl, actions, categories)
	if strings.Contains(out, "%!") {
		logger.Warn("Classifier prompt has bad placeholders, using default")
		out = fmt.Sprintf(defaultSystemPrompt, actions, categories)
	}
	return out
}

// Name identifies the backend in logs.
func (c *Classifier) Name() string {
	return "openai:" + c.model
}

// Ping validates the API key.
func (c *Classifier) Ping(ctx context.Context) error {
	return ping(ctx, c.client)
}

// Close releases resources.
func (c *Classifier) Close() error {
	return nil
}

func userMessage(req driven.ClassificationRequest) string {
	if req.Context == "" {
		return req.Transcript
	}
	return "Context: " + req.Context + "\n\nUtterance: " + req.Transcript
}

func renderActions(actions []driven.ActionSummary) string {
	if len(actions) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, a := range actions {
		fmt.Fprintf(&b, "- %s(%s)", a.Name, strings.Join(a.Parameters, ", "))
		if a.Description != "" {
			b.WriteString(": " + a.Description)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCategories(categories []string) string {
	if len(categories) == 0 {
		return "general"
	}
	return strings.Join(categories, ", ")
}

// classifyError maps client failures onto the classifier taxonomy. A 408 or
// 504 from the API counts as a timeout.
func classifyError(err error) error {
	switch status := statusCode(err); {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded),
		status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: openai: %v", domain.ErrClassificationTimeout, err)
	case status != 0:
		return fmt.Errorf("%w: openai: %v", domain.ErrMalformedClassification, err)
	default:
		return fmt.Errorf("openai: %w", err)
	}
}
