package banking

import "context"

// Repository defines the persistence boundary for bank transactions.
//
// ApplyStatusChange is the single write path for match_status and the
// matched-target columns; no other operation may touch them.
type Repository interface {
	Create(ctx context.Context, params CreateTransactionParams) (*Transaction, error)
	GetByID(ctx context.Context, orgID int64, id string) (*Transaction, error)
	ListByStatus(ctx context.Context, orgID int64, status MatchStatus, limit, offset int) ([]*Transaction, error)
	// ListUnmatched returns the full candidate set for rule application.
	ListUnmatched(ctx context.Context, orgID int64) ([]*Transaction, error)
	// ApplyStatusChange persists a state-machine transition. When expect is
	// non-nil the write only succeeds while the row still holds that status
	// and returns ErrStatusConflict otherwise; this is the optimistic check
	// that keeps concurrent apply calls from overriding each other.
	ApplyStatusChange(ctx context.Context, orgID int64, id string, change StatusChange, expect *MatchStatus) (*Transaction, error)
}
