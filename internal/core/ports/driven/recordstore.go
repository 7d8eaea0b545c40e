package driven

import "context"

// RecordStore persists free-form records written by action handlers
// (referrals, message drafts). Records are grouped by collection.
type RecordStore interface {
	// Put stores or replaces the record under collection/id.
	Put(ctx context.Context, collection, id string, record map[string]any) error

	// Get retrieves a record. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, collection, id string) (map[string]any, error)

	// List returns every record in a collection, keyed by ID.
	List(ctx context.Context, collection string) (map[string]map[string]any, error)
}
