package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
)

// errNoRecordStore is returned when referrals cannot be persisted.
var errNoRecordStore = errors.New("referral storage is not configured")

func navigate(_ context.Context, params map[string]any, _ domain.CallerContext) (domain.ActionResult, error) {
	screen, _ := params["screen"].(string)
	return domain.Navigated(screen, nil), nil
}

func callMember(_ context.Context, params map[string]any, _ domain.CallerContext) (domain.ActionResult, error) {
	name := memberName(params, "name")
	return domain.Navigated(ScreenCall, map[string]any{"member": name}), nil
}

func messageMember(_ context.Context, params map[string]any, _ domain.CallerContext) (domain.ActionResult, error) {
	message, _ := params["message"].(string)
	return domain.Navigated(ScreenMessages, map[string]any{
		"member": memberName(params, "name"),
		"draft":  strings.TrimSpace(message),
	}), nil
}

func openProfile(_ context.Context, params map[string]any, _ domain.CallerContext) (domain.ActionResult, error) {
	return domain.Navigated(ScreenProfile, map[string]any{"member": memberName(params, "name")}), nil
}

// referralLogger writes referrals to the record store.
type referralLogger struct {
	records driven.RecordStore
	now     func() time.Time
}

// Handle implements driven.ActionHandler.
func (l *referralLogger) Handle(ctx context.Context, params map[string]any, caller domain.CallerContext) (domain.ActionResult, error) {
	if l.records == nil {
		return domain.ActionResult{}, errNoRecordStore
	}
	now := time.Now
	if l.now != nil {
		now = l.now
	}

	id := uuid.New().String()
	record := map[string]any{
		"from":       caller.UserID,
		"to":         memberName(params, "to"),
		"business":   strings.TrimSpace(fmt.Sprint(params["business"])),
		"created_at": now().UTC().Format(time.RFC3339),
	}
	if amount, ok := params["amount"].(float64); ok {
		record["amount"] = amount
	}

	if err := l.records.Put(ctx, CollectionReferrals, id, record); err != nil {
		return domain.ActionResult{}, fmt.Errorf("save referral: %w", err)
	}
	return domain.Succeeded(map[string]any{"referral_id": id, "to": record["to"]}), nil
}

// memberName returns a trimmed name parameter with collapsed inner spaces.
func memberName(params map[string]any, key string) string {
	name, _ := params[key].(string)
	return strings.Join(strings.Fields(name), " ")
}
