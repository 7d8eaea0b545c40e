package actions

import (
	"fmt"
	"strings"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
)

// Registrar accepts action definitions.
type Registrar interface {
	Register(def driven.ActionDefinition) error
}

// Screens the host app can navigate to.
const (
	ScreenHome      = "/home"
	ScreenFeed      = "/feed"
	ScreenMembers   = "/members"
	ScreenEvents    = "/events"
	ScreenMessages  = "/messages"
	ScreenProfile   = "/profile"
	ScreenReferrals = "/referrals"
	ScreenSettings  = "/settings"
	ScreenCall      = "/call"
)

// NavigableScreens are the screens the navigate action accepts.
// The call screen is reached through call_member only.
var NavigableScreens = []string{
	ScreenHome, ScreenFeed, ScreenMembers, ScreenEvents,
	ScreenMessages, ScreenProfile, ScreenReferrals, ScreenSettings,
}

// CollectionReferrals is the RecordStore collection log_referral writes to.
const CollectionReferrals = "referrals"

// Definitions returns the built-in action definitions.
// records may be nil, in which case log_referral fails at dispatch.
func Definitions(records driven.RecordStore) []driven.ActionDefinition {
	return []driven.ActionDefinition{
		{
			Name:        "navigate",
			Description: "Open an app screen: " + strings.Join(NavigableScreens, ", "),
			Schema: domain.ParameterSchema{
				{
					Name:        "screen",
					Type:        domain.ParamString,
					Required:    true,
					Rules:       "oneof=" + strings.Join(NavigableScreens, " "),
					Description: "target screen path",
				},
			},
			RequiredTier: domain.TierMember,
			Navigates:    true,
			Handler:      driven.ActionHandlerFunc(navigate),
		},
		{
			Name:        "call_member",
			Description: "Start a call with another member by name",
			Schema: domain.ParameterSchema{
				{Name: "name", Type: domain.ParamString, Required: true, Rules: "max=80", Description: "member name"},
			},
			RequiredTier:  domain.TierInnerCircle,
			RequiresAuth:  true,
			Navigates:     true,
			DefaultScreen: ScreenCall,
			Handler:       driven.ActionHandlerFunc(callMember),
		},
		{
			Name:        "message_member",
			Description: "Draft a message to another member",
			Schema: domain.ParameterSchema{
				{Name: "name", Type: domain.ParamString, Required: true, Rules: "max=80", Description: "member name"},
				{Name: "message", Type: domain.ParamString, Required: true, Rules: "min=1,max=500", Description: "message text"},
			},
			RequiredTier:  domain.TierMember,
			RequiresAuth:  true,
			Navigates:     true,
			DefaultScreen: ScreenMessages,
			Handler:       driven.ActionHandlerFunc(messageMember),
		},
		{
			Name:        "open_profile",
			Description: "Show a member's profile",
			Schema: domain.ParameterSchema{
				{Name: "name", Type: domain.ParamString, Required: true, Rules: "max=80", Description: "member name"},
			},
			RequiredTier:  domain.TierGuest,
			Navigates:     true,
			DefaultScreen: ScreenProfile,
			Handler:       driven.ActionHandlerFunc(openProfile),
		},
		{
			Name:        "log_referral",
			Description: "Record a business referral given to another member",
			Schema: domain.ParameterSchema{
				{Name: "to", Type: domain.ParamString, Required: true, Rules: "max=80", Description: "member receiving the referral"},
				{Name: "business", Type: domain.ParamString, Required: true, Rules: "max=200", Description: "what the referral is for"},
				{Name: "amount", Type: domain.ParamNumber, Rules: "gte=0", Description: "estimated value"},
			},
			RequiredTier: domain.TierMember,
			RequiresAuth: true,
			Handler:      &referralLogger{records: records},
		},
	}
}

// RegisterDefaults registers every built-in action with r.
func RegisterDefaults(r Registrar, records driven.RecordStore) error {
	for _, def := range Definitions(records) {
		if err := r.Register(def); err != nil {
			return fmt.Errorf("register %s: %w", def.Name, err)
		}
	}
	return nil
}
