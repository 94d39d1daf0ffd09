package matchrule

import "context"

// Repository defines the persistence boundary for transaction rules.
type Repository interface {
	Create(ctx context.Context, params CreateRuleParams) (*Rule, error)
	GetByID(ctx context.Context, id string) (*Rule, error)
	// ListByOrgID returns the organization's rules ordered by creation
	// time; the scheduler's auto-match pass applies them in that order.
	ListByOrgID(ctx context.Context, orgID int64) ([]*Rule, error)
	Delete(ctx context.Context, id string) error
	// ListOrgIDs returns every organization that has at least one rule.
	// Used by the scheduled auto-match pass to build its job list.
	ListOrgIDs(ctx context.Context) ([]int64, error)
}
