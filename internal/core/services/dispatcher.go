package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
	"github.com/wevysya/voiceos/internal/logger"
)

// Ensure ActionRegistry implements the interface.
var _ driving.ActionDispatcher = (*ActionRegistry)(nil)

// ActionRegistry maps action names to their definitions and dispatches them.
// Actions are registered once at start-up; Seal freezes the registry.
type ActionRegistry struct {
	mu      sync.RWMutex
	actions map[string]driven.ActionDefinition
	sealed  bool

	validate  *validator.Validate
	telemetry driven.Telemetry
	timeout   time.Duration
}

// NewActionRegistry creates an empty action registry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{
		actions:   make(map[string]driven.ActionDefinition),
		validate:  validator.New(),
		telemetry: driven.NopTelemetry{},
		timeout:   domain.DefaultPipelineSettings().DispatchTimeout,
	}
}

// SetTelemetry sets the telemetry sink.
func (r *ActionRegistry) SetTelemetry(t driven.Telemetry) {
	if t == nil {
		t = driven.NopTelemetry{}
	}
	r.telemetry = t
}

// SetTimeout bounds each handler invocation.
func (r *ActionRegistry) SetTimeout(d time.Duration) {
	if d > 0 {
		r.timeout = d
	}
}

// Register adds an action definition.
func (r *ActionRegistry) Register(def driven.ActionDefinition) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return fmt.Errorf("%w: action name is required", domain.ErrInvalidInput)
	}
	if def.Handler == nil {
		return fmt.Errorf("%w: action %q has no handler", domain.ErrInvalidInput, def.Name)
	}
	if def.RequiredTier == "" {
		def.RequiredTier = domain.TierGuest
	}
	if !def.RequiredTier.IsValid() {
		return fmt.Errorf("%w: action %q requires unknown tier %q", domain.ErrInvalidInput, def.Name, def.RequiredTier)
	}
	if err := def.Schema.Validate(); err != nil {
		return fmt.Errorf("action %q: %w", def.Name, err)
	}
	for _, p := range def.Schema {
		if err := r.checkRules(p); err != nil {
			return fmt.Errorf("action %q: %w", def.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot register %q", domain.ErrRegistrySealed, def.Name)
	}
	if _, exists := r.actions[def.Name]; exists {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateAction, def.Name)
	}
	r.actions[def.Name] = def
	logger.Debug("Registered action %s (tier %s)", def.Name, def.RequiredTier)
	return nil
}

// checkRules verifies a parameter's validator tag parses.
// The validator panics on unknown tags, so the check recovers.
func (r *ActionRegistry) checkRules(p domain.ParamSpec) (err error) {
	if p.Rules == "" {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: parameter %q has invalid rules %q: %v", domain.ErrInvalidInput, p.Name, p.Rules, rec)
		}
	}()
	_ = r.validate.Var(zeroValue(p.Type), p.Rules)
	return nil
}

// Seal prevents further registration.
func (r *ActionRegistry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether the registry is frozen.
func (r *ActionRegistry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Lookup returns the definition registered under name.
func (r *ActionRegistry) Lookup(name string) (driven.ActionDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.actions[name]
	return def, ok
}

// Actions lists the registered actions sorted by name.
func (r *ActionRegistry) Actions() []domain.ActionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]domain.ActionInfo, 0, len(r.actions))
	for _, def := range r.actions {
		infos = append(infos, def.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// Dispatch validates and executes an action.
// Order: name lookup, parameter validation, capability check, handler.
// Handler failures are reported in the result, never as an error.
func (r *ActionRegistry) Dispatch(
	ctx context.Context, action domain.VoiceAction, caller domain.CallerContext,
) (domain.ActionResult, error) {
	logger.Section("Action Dispatch")
	logger.Debug("Action: %s, caller: %s (%s)", action.Name, caller.SessionKey(), caller.Tier)

	def, ok := r.Lookup(action.Name)
	if !ok {
		err := fmt.Errorf("%w: %q", domain.ErrUnknownAction, action.Name)
		r.telemetry.ActionDispatched(action.Name, false, domain.ErrorKind(err))
		return domain.ActionResult{}, err
	}

	params, err := r.validateParams(def, action)
	if err != nil {
		r.telemetry.ActionDispatched(def.Name, false, domain.ErrorKind(err))
		return domain.ActionResult{}, fmt.Errorf("%s: %w", def.Name, err)
	}

	if err := authorise(def, caller); err != nil {
		r.telemetry.ActionDispatched(def.Name, false, domain.ErrorKind(err))
		return domain.ActionResult{}, fmt.Errorf("%s: %w", def.Name, err)
	}

	result := r.invoke(ctx, def, params, caller)
	outcome := domain.ErrorKind(nil)
	if !result.Success {
		outcome = "handler_failed"
	}
	r.telemetry.ActionDispatched(def.Name, result.Success, outcome)
	logger.Info("Action %s finished (success=%t)", def.Name, result.Success)
	return result, nil
}

// authorise checks the caller against the action's capability.
func authorise(def driven.ActionDefinition, caller domain.CallerContext) error {
	if def.RequiresAuth && !caller.Authenticated {
		return fmt.Errorf("%w: %s requires sign-in", domain.ErrPermissionDenied, def.Name)
	}
	if !caller.Tier.Satisfies(def.RequiredTier) {
		return fmt.Errorf("%w: %s requires tier %s, caller has %q",
			domain.ErrPermissionDenied, def.Name, def.RequiredTier, caller.Tier)
	}
	return nil
}

// validateParams checks parameters in schema order and stops at the first
// violation. Undeclared parameters are dropped. Numeric values are
// normalised to float64 (number) or int64 (integer).
func (r *ActionRegistry) validateParams(def driven.ActionDefinition, action domain.VoiceAction) (map[string]any, error) {
	in := action.Parameters
	if action.Screen != "" {
		if _, declared := def.Schema.Lookup("screen"); declared {
			if _, given := in["screen"]; !given {
				in = withParam(in, "screen", action.Screen)
			}
		}
	}

	out := make(map[string]any, len(def.Schema))
	for _, spec := range def.Schema {
		raw, present := in[spec.Name]
		if !present || raw == nil {
			if spec.Required {
				return nil, fmt.Errorf("%w: missing required parameter %q", domain.ErrInvalidParameters, spec.Name)
			}
			continue
		}

		value, ok := coerce(spec.Type, raw)
		if !ok {
			return nil, fmt.Errorf("%w: parameter %q must be %s, got %T",
				domain.ErrInvalidParameters, spec.Name, spec.Type, raw)
		}
		if s, isString := value.(string); isString && spec.Required && strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%w: parameter %q is empty", domain.ErrInvalidParameters, spec.Name)
		}

		if spec.Rules != "" {
			if err := r.validate.Var(value, spec.Rules); err != nil {
				return nil, fmt.Errorf("%w: parameter %q %s", domain.ErrInvalidParameters, spec.Name, ruleViolation(err))
			}
		}
		out[spec.Name] = value
	}

	for name := range in {
		if _, declared := def.Schema.Lookup(name); !declared {
			logger.Debug("Dropping undeclared parameter %q for %s", name, def.Name)
		}
	}
	return out, nil
}

// invoke runs the handler with a timeout, converting errors and panics into
// failed results.
func (r *ActionRegistry) invoke(
	ctx context.Context, def driven.ActionDefinition, params map[string]any, caller domain.CallerContext,
) (result domain.ActionResult) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("action %s panicked: %v", def.Name, rec)
			result = domain.Failed(fmt.Sprintf("%s failed unexpectedly", def.Name))
		}
	}()

	res, err := def.Handler.Handle(ctx, params, caller)
	if err != nil {
		logger.Warn("Action %s handler failed: %v", def.Name, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.Failed(fmt.Sprintf("%s timed out", def.Name))
		}
		return domain.Failed(err.Error())
	}

	if res.Navigation && res.Screen == "" {
		res.Screen = def.DefaultScreen
	}
	if err := res.Validate(); err != nil {
		logger.Warn("Action %s returned an invalid result: %v", def.Name, err)
		return domain.Failed(fmt.Sprintf("%s returned an invalid result", def.Name))
	}
	return res
}

// coerce checks raw against t and normalises numeric representations.
func coerce(t domain.ParamType, raw any) (any, bool) {
	switch t {
	case domain.ParamString:
		s, ok := raw.(string)
		return s, ok
	case domain.ParamBoolean:
		b, ok := raw.(bool)
		return b, ok
	case domain.ParamNumber:
		f, ok := toFloat(raw)
		return f, ok
	case domain.ParamInteger:
		f, ok := toFloat(raw)
		if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= 1<<63 {
			return nil, false
		}
		return int64(f), true
	default:
		return nil, false
	}
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func zeroValue(t domain.ParamType) any {
	switch t {
	case domain.ParamNumber:
		return float64(0)
	case domain.ParamInteger:
		return int64(0)
	case domain.ParamBoolean:
		return false
	default:
		return ""
	}
}

// ruleViolation renders the first validator failure.
func ruleViolation(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fmt.Sprintf("failed rule %s=%s", fe.Tag(), fe.Param())
		}
		return "failed rule " + fe.Tag()
	}
	return err.Error()
}

func withParam(in map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	out[key] = value
	return out
}
