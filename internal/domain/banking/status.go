package banking

import "errors"

var (
	ErrEmptyAssignment   = errors.New("assignment must set at least one of tenant, lease, type or building")
	ErrInvalidTransition = errors.New("invalid match status transition")
	ErrInvalidType       = errors.New("unknown transaction type")
)

// MatchStatus is the classification lifecycle state of a transaction.
type MatchStatus string

const (
	StatusUnmatched MatchStatus = "unmatched"
	StatusAuto      MatchStatus = "auto"
	StatusManual    MatchStatus = "manual"
	StatusIgnored   MatchStatus = "ignored"
)

// Valid reports whether s is one of the four lifecycle states.
func (s MatchStatus) Valid() bool {
	switch s {
	case StatusUnmatched, StatusAuto, StatusManual, StatusIgnored:
		return true
	}
	return false
}

// Assignment is a (possibly partial) match target. Fields left nil are not
// touched when the assignment is written onto a transaction.
type Assignment struct {
	TenantID   *string          `json:"tenantId,omitempty"`
	LeaseID    *string          `json:"leaseId,omitempty"`
	Type       *TransactionType `json:"transactionType,omitempty"`
	BuildingID *string          `json:"buildingId,omitempty"`
}

// IsEmpty returns true if the assignment declares no target at all.
func (a Assignment) IsEmpty() bool {
	return a.TenantID == nil && a.LeaseID == nil && a.Type == nil && a.BuildingID == nil
}

// Validate checks the assignment is usable as a match target.
func (a Assignment) Validate() error {
	if a.IsEmpty() {
		return ErrEmptyAssignment
	}
	if a.Type != nil && !a.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// StatusChange is the side-effect descriptor a state-machine transition
// produces. It is the only thing allowed to mutate match_status and the
// matched-target fields, and only through Repository.ApplyStatusChange.
type StatusChange struct {
	Status     MatchStatus
	Assignment Assignment
}

// AutoMatch is the unmatched -> auto transition used by rule application.
// It is only legal while the transaction is still unmatched; rows a human
// has already classified or dismissed are never disturbed.
func AutoMatch(current MatchStatus, target Assignment) (StatusChange, error) {
	if err := target.Validate(); err != nil {
		return StatusChange{}, err
	}
	if current != StatusUnmatched {
		return StatusChange{}, ErrInvalidTransition
	}
	return StatusChange{Status: StatusAuto, Assignment: target}, nil
}

// ManualMatch is the transition to manual. A manual assignment always wins:
// it is legal from every state, including ignored, and is the only way out
// of ignored.
func ManualMatch(target Assignment) (StatusChange, error) {
	if err := target.Validate(); err != nil {
		return StatusChange{}, err
	}
	return StatusChange{Status: StatusManual, Assignment: target}, nil
}

// Ignore is the unmatched -> ignored transition (explicit user dismissal).
// An ignored transaction is excluded from all automatic matching passes.
func Ignore(current MatchStatus) (StatusChange, error) {
	if current != StatusUnmatched {
		return StatusChange{}, ErrInvalidTransition
	}
	return StatusChange{Status: StatusIgnored}, nil
}

// Merge writes the assignment onto the transaction in memory, leaving
// fields the assignment does not declare untouched. The repository mirrors
// this with COALESCE semantics on the persisted row.
func (t *Transaction) Merge(change StatusChange) {
	t.MatchStatus = change.Status
	if change.Assignment.TenantID != nil {
		t.MatchedTenantID = change.Assignment.TenantID
	}
	if change.Assignment.LeaseID != nil {
		t.MatchedLeaseID = change.Assignment.LeaseID
	}
	if change.Assignment.Type != nil {
		t.TransactionType = change.Assignment.Type
	}
	if change.Assignment.BuildingID != nil {
		t.BuildingID = change.Assignment.BuildingID
	}
}
