package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/logger"
)

// Ensure Synthesizer can take custom prompts.
var _ driven.PromptStoreAware = (*Synthesizer)(nil)

// User-facing fallback lines.
const (
	msgNoKnowledge   = "I don't have information about that yet."
	msgActionDone    = "Done."
	msgDidntCatch    = "I didn't catch that. Please try again."
	msgDidntGet      = "Sorry, I didn't understand that. Please try again."
	msgCantDo        = "Sorry, that isn't something I can do yet. Try rephrasing your request."
	msgAccessDenied  = "Sorry, you don't have access to that. Upgrade your membership to use this feature."
	msgActionFailed  = "Sorry, I couldn't complete that: %s. Please try again."
	maxSnippetLength = 240
)

// defaultClarification is used when no prompt store overrides it.
const defaultClarification = "Did you want me to %s? Please say it again to confirm."

var (
	mdLink     = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	bareURL    = regexp.MustCompile(`https?://\S+`)
	mdEmphasis = regexp.MustCompile("[*_`#>]+")
	spaces     = regexp.MustCompile(`\s+`)
)

// Synthesizer formats the single user-facing response of a turn.
type Synthesizer struct {
	prompts driven.PromptStore
}

// NewSynthesizer creates a response synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// SetPromptStore sets the prompt store for the clarification template.
func (s *Synthesizer) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Answer builds a knowledge answer from the classifier's reply and the top result.
func (s *Synthesizer) Answer(intent *domain.Intent, results []domain.SearchResult) domain.Response {
	text := strings.TrimSpace(intent.Response)

	if len(results) > 0 {
		top := results[0]
		if snippet := firstSentence(top.Content); snippet != "" {
			cited := fmt.Sprintf("From %s: %s", top.Metadata.Title, snippet)
			if text == "" {
				text = cited
			} else {
				text = text + " " + cited
			}
		}
	}
	if text == "" {
		text = msgNoKnowledge
	}

	return s.response(domain.ResponseAnswer, text, intent, func(r *domain.Response) {
		r.Results = results
	})
}

// ActionOutcome reports a dispatched action.
func (s *Synthesizer) ActionOutcome(intent *domain.Intent, result domain.ActionResult) domain.Response {
	if !result.Success {
		text := fmt.Sprintf(msgActionFailed, strings.TrimRight(result.Error, ". "))
		return s.response(domain.ResponseApology, text, intent, func(r *domain.Response) {
			r.ActionResult = &result
		})
	}

	text := strings.TrimSpace(intent.Response)
	if text == "" {
		text = msgActionDone
	}
	return s.response(domain.ResponseAction, text, intent, func(r *domain.Response) {
		r.ActionResult = &result
		r.Navigation = result.Navigation
		r.Screen = result.Screen
	})
}

// Clarification asks the user to confirm a low-confidence action. It never executes anything.
func (s *Synthesizer) Clarification(intent *domain.Intent) domain.Response {
	phrase := "do that"
	if intent.Action != nil {
		phrase = describeAction(intent.Action)
	}
	text := fmt.Sprintf(s.clarificationTemplate(), phrase)
	return s.response(domain.ResponseClarification, text, intent, nil)
}

// Failure turns a pipeline error into an apology. Permission failures get
// a distinct access-denied line; contract violations a "can't do that" line.
func (s *Synthesizer) Failure(err error, intent *domain.Intent) domain.Response {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return s.response(domain.ResponseAccessDenied, msgAccessDenied, intent, nil)
	case errors.Is(err, domain.ErrUnknownAction), errors.Is(err, domain.ErrInvalidParameters):
		return s.response(domain.ResponseApology, msgCantDo, intent, nil)
	case errors.Is(err, domain.ErrEmptyTranscript):
		return s.response(domain.ResponseApology, msgDidntCatch, intent, nil)
	default:
		return s.response(domain.ResponseApology, msgDidntGet, intent, nil)
	}
}

func (s *Synthesizer) response(
	kind domain.ResponseKind, text string, intent *domain.Intent, decorate func(*domain.Response),
) domain.Response {
	r := domain.Response{
		Kind:   kind,
		Text:   text,
		Speech: Speech(text),
		Intent: intent,
	}
	if decorate != nil {
		decorate(&r)
	}
	return r
}

func (s *Synthesizer) clarificationTemplate() string {
	if s.prompts == nil {
		return defaultClarification
	}
	tmpl, err := s.prompts.Load(driven.PromptClarification)
	if err != nil || strings.Count(tmpl, "%s") != 1 {
		logger.Debug("Using default clarification template: %v", err)
		return defaultClarification
	}
	return strings.TrimSpace(tmpl)
}

// Speech prepares text for a speech synthesiser: markdown links keep their
// label, bare URLs and emphasis markers are removed.
func Speech(text string) string {
	out := mdLink.ReplaceAllString(text, "$1")
	out = bareURL.ReplaceAllString(out, "")
	out = mdEmphasis.ReplaceAllString(out, "")
	out = spaces.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// describeAction renders an action as a short verb phrase, e.g. "call member Ramesh".
func describeAction(a *domain.VoiceAction) string {
	phrase := strings.ReplaceAll(a.Name, "_", " ")
	if name, ok := a.Parameters["name"].(string); ok && name != "" {
		phrase += " " + name
	} else if a.Screen != "" {
		phrase += " " + a.Screen
	}
	return phrase
}

// firstSentence returns the first sentence of content, truncated for speech.
func firstSentence(content string) string {
	content = strings.TrimSpace(spaces.ReplaceAllString(content, " "))
	if i := strings.IndexAny(content, ".!?"); i >= 0 {
		content = content[:i+1]
	}
	if len(content) > maxSnippetLength {
		cut := strings.LastIndex(content[:maxSnippetLength], " ")
		if cut <= 0 {
			cut = maxSnippetLength
		}
		content = content[:cut] + "..."
	}
	return content
}
