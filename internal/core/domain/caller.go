package domain

// PermissionTier is a member's access level. Tiers are totally ordered.
type PermissionTier string

// Available permission tiers, lowest first.
const (
	TierGuest       PermissionTier = "guest"
	TierMember      PermissionTier = "member"
	TierInnerCircle PermissionTier = "inner_circle"
	TierAdmin       PermissionTier = "admin"
)

var tierRank = map[PermissionTier]int{
	TierGuest:       0,
	TierMember:      1,
	TierInnerCircle: 2,
	TierAdmin:       3,
}

// IsValid returns true if the tier is recognised.
func (t PermissionTier) IsValid() bool {
	_, ok := tierRank[t]
	return ok
}

// Satisfies returns true if t is at least required.
// Unknown tiers satisfy nothing.
func (t PermissionTier) Satisfies(required PermissionTier) bool {
	have, ok := tierRank[t]
	if !ok {
		return false
	}
	need, ok := tierRank[required]
	if !ok {
		return false
	}
	return have >= need
}

// String returns the string representation.
func (t PermissionTier) String() string {
	return string(t)
}

// AllTiers returns every tier, lowest first.
func AllTiers() []PermissionTier {
	return []PermissionTier{TierGuest, TierMember, TierInnerCircle, TierAdmin}
}

// CallerContext identifies who is speaking. It is passed explicitly through
// classification and dispatch, never held globally.
type CallerContext struct {
	// UserID is the authenticated identity. Empty for anonymous callers.
	UserID string

	// Authenticated reports whether the host verified the identity.
	Authenticated bool

	// Tier is the caller's permission tier.
	Tier PermissionTier
}

// Anonymous returns an unauthenticated guest caller.
func Anonymous() CallerContext {
	return CallerContext{Tier: TierGuest}
}

// SessionKey returns the key used to find the caller's voice session.
func (c CallerContext) SessionKey() string {
	if c.UserID == "" {
		return "anonymous"
	}
	return c.UserID
}
