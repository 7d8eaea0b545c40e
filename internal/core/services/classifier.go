package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
	"github.com/wevysya/voiceos/internal/logger"
)

// Ensure IntentService implements the interface.
var _ driving.IntentClassifier = (*IntentService)(nil)

// ActionCatalog lists registered actions for the classifier request.
type ActionCatalog interface {
	Actions() []domain.ActionInfo
}

// CategorySource lists known knowledge categories for the classifier request.
type CategorySource interface {
	Categories(ctx context.Context) ([]string, error)
}

// IntentService classifies transcripts through an external classification service.
type IntentService struct {
	client     driven.ClassificationService
	catalog    ActionCatalog
	categories CategorySource
	telemetry  driven.Telemetry

	timeout time.Duration
	retries int
}

// NewIntentService creates a new intent classifier.
// The catalog and categories parameters are optional (can be nil).
func NewIntentService(
	client driven.ClassificationService,
	catalog ActionCatalog,
	categories CategorySource,
) *IntentService {
	p := domain.DefaultPipelineSettings()
	return &IntentService{
		client:     client,
		catalog:    catalog,
		categories: categories,
		telemetry:  driven.NopTelemetry{},
		timeout:    p.ClassificationTimeout,
		retries:    p.Retries,
	}
}

// SetTelemetry sets the telemetry sink.
func (s *IntentService) SetTelemetry(t driven.Telemetry) {
	if t == nil {
		t = driven.NopTelemetry{}
	}
	s.telemetry = t
}

// SetPolicy applies the classification timeout and retry count.
func (s *IntentService) SetPolicy(p domain.PipelineSettings) {
	if p.ClassificationTimeout > 0 {
		s.timeout = p.ClassificationTimeout
	}
	if p.Retries >= 0 {
		s.retries = p.Retries
	}
}

// Classify interprets transcript. Timeouts are retried; malformed replies are not.
func (s *IntentService) Classify(ctx context.Context, transcript, convContext string) (*domain.Intent, error) {
	logger.Section("Intent Classification")

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		s.telemetry.IntentClassified("", domain.ErrorKind(domain.ErrEmptyTranscript))
		return nil, domain.ErrEmptyTranscript
	}
	if s.client == nil {
		return nil, domain.ErrClassifierUnavailable
	}

	req := s.buildRequest(ctx, transcript, convContext)
	logger.Debug("Transcript: %q (%d actions, %d categories)", transcript, len(req.Actions), len(req.Categories))

	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		intent, err := s.classifyOnce(ctx, req)
		if err == nil {
			logger.Info("Classified as %s (confidence %.2f)", intent.Type, intent.Confidence)
			s.telemetry.IntentClassified(intent.Type, domain.ErrorKind(nil))
			return intent, nil
		}
		lastErr = err
		if ctx.Err() != nil || !errors.Is(err, domain.ErrClassificationTimeout) {
			break
		}
		logger.Warn("Classification attempt %d timed out, retrying", attempt+1)
	}

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		lastErr = fmt.Errorf("%w: %v", domain.ErrClassificationTimeout, err)
	}
	s.telemetry.IntentClassified("", domain.ErrorKind(lastErr))
	return nil, fmt.Errorf("classify via %s: %w", s.client.Name(), lastErr)
}

// classifyOnce makes a single bounded call and parses the reply.
func (s *IntentService) classifyOnce(ctx context.Context, req driven.ClassificationRequest) (*domain.Intent, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.Classify(callCtx, req)
	if err != nil {
		return nil, classificationError(err)
	}
	return ParseIntent(raw)
}

// buildRequest attaches the action catalogue and knowledge categories.
func (s *IntentService) buildRequest(ctx context.Context, transcript, convContext string) driven.ClassificationRequest {
	req := driven.ClassificationRequest{
		Transcript: transcript,
		Context:    strings.TrimSpace(convContext),
	}
	if s.catalog != nil {
		for _, a := range s.catalog.Actions() {
			params := make([]string, 0, len(a.Parameters))
			for _, p := range a.Parameters {
				params = append(params, p.Name)
			}
			req.Actions = append(req.Actions, driven.ActionSummary{
				Name:        a.Name,
				Description: a.Description,
				Parameters:  params,
			})
		}
	}
	if s.categories != nil {
		categories, err := s.categories.Categories(ctx)
		if err != nil {
			logger.Warn("Could not list knowledge categories: %v", err)
		}
		req.Categories = categories
	}
	return req
}

// classificationError maps transport failures onto the classifier taxonomy.
// Deadlines and network failures count as timeouts; everything else,
// including non-2xx replies, is malformed.
func classificationError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, domain.ErrClassificationTimeout) || errors.Is(err, domain.ErrMalformedClassification) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrClassificationTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrClassificationTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrMalformedClassification, err)
}

// intentWire is the JSON shape of a classifier reply.
type intentWire struct {
	Type       string      `json:"type"`
	Category   string      `json:"category"`
	Action     *actionWire `json:"action"`
	Response   string      `json:"response"`
	Confidence *float64    `json:"confidence"`
}

type actionWire struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
	Screen     string         `json:"screen"`
}

// ParseIntent decodes the first JSON object in raw into an Intent.
// Code fences and surrounding prose are tolerated.
func ParseIntent(raw string) (*domain.Intent, error) {
	body := extractJSON(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON object in reply", domain.ErrMalformedClassification)
	}

	var w intentWire
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedClassification, err)
	}
	if w.Confidence == nil {
		return nil, fmt.Errorf("%w: missing confidence", domain.ErrMalformedClassification)
	}

	intent := &domain.Intent{
		Type:       domain.IntentType(strings.ToLower(strings.TrimSpace(w.Type))),
		Category:   strings.TrimSpace(w.Category),
		Response:   strings.TrimSpace(w.Response),
		Confidence: *w.Confidence,
	}
	if w.Action != nil {
		intent.Action = &domain.VoiceAction{
			Name:       strings.TrimSpace(w.Action.Name),
			Parameters: w.Action.Parameters,
			Screen:     strings.TrimSpace(w.Action.Screen),
		}
	}

	if err := intent.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedClassification, err)
	}
	return intent, nil
}

// extractJSON returns the first balanced JSON object in s, skipping braces
// inside string literals.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
