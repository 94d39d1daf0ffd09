package matchrule

import (
	"errors"
	"fmt"
	"time"

	"mietwerk/internal/domain/banking"
)

var (
	ErrRuleNotFound = errors.New("transaction rule not found")
	ErrForbidden    = errors.New("forbidden: rule does not belong to organization")
	ErrEmptyTarget  = errors.New("bulk match requires at least one target field")
	// ErrConditionTypeMismatch marks a condition whose value cannot be
	// compared against the transaction field (e.g. a non-numeric value on
	// amount_cents). Batch evaluation treats it as "does not match".
	ErrConditionTypeMismatch = errors.New("condition value does not fit the field type")
)

// Field names a transaction attribute a condition can test.
type Field string

const (
	FieldCounterpartName Field = "counterpart_name"
	FieldPurpose         Field = "purpose"
	FieldAmountCents     Field = "amount_cents"
	FieldBookingText     Field = "booking_text"
)

// Valid reports whether f is a known condition field.
func (f Field) Valid() bool {
	switch f {
	case FieldCounterpartName, FieldPurpose, FieldAmountCents, FieldBookingText:
		return true
	}
	return false
}

// Operator names a comparison a condition performs.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpContains    Operator = "contains"
	OpStartsWith  Operator = "starts_with"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
)

// Valid reports whether o is a known condition operator.
func (o Operator) Valid() bool {
	switch o {
	case OpEquals, OpContains, OpStartsWith, OpGreaterThan, OpLessThan:
		return true
	}
	return false
}

// Condition is one field/operator/value test. Text fields use string
// semantics, amount_cents uses numeric semantics.
type Condition struct {
	Field    Field    `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// Validate rejects conditions that could never evaluate: unknown fields or
// operators, numeric operators on text fields, substring operators on the
// amount. Evaluation itself additionally fails closed at runtime.
func (c Condition) Validate() error {
	if !c.Field.Valid() {
		return fmt.Errorf("unknown condition field %q", c.Field)
	}
	if !c.Operator.Valid() {
		return fmt.Errorf("unknown condition operator %q", c.Operator)
	}
	switch c.Operator {
	case OpGreaterThan, OpLessThan:
		if c.Field != FieldAmountCents {
			return fmt.Errorf("operator %q requires field %q", c.Operator, FieldAmountCents)
		}
	case OpContains, OpStartsWith:
		if c.Field == FieldAmountCents {
			return fmt.Errorf("operator %q is not defined for %q", c.Operator, FieldAmountCents)
		}
	}
	return nil
}

// Rule is a named, ordered list of AND-combined conditions plus a target
// assignment template. A rule with zero conditions is storable but inert.
type Rule struct {
	ID         string             `json:"id"`
	OrgID      int64              `json:"-"`
	Name       string             `json:"name"`
	Conditions []Condition        `json:"conditions"`
	Target     banking.Assignment `json:"target"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// CreateRuleParams contains the parameters for persisting a new rule.
type CreateRuleParams struct {
	OrgID      int64
	Name       string
	Conditions []Condition
	Target     banking.Assignment
}

// Validate checks the create parameters before anything is written.
func (p *CreateRuleParams) Validate() error {
	if p.Name == "" {
		return errors.New("rule name is required")
	}
	for i, c := range p.Conditions {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}
	if err := p.Target.Validate(); err != nil {
		return err
	}
	return nil
}

// MatchAttempt is the result of evaluating one rule against one
// transaction. Target is the rule's template, returned unchanged; merging
// it into the transaction is the caller's concern.
type MatchAttempt struct {
	Matches bool
	Target  banking.Assignment
}

// ApplyResult reports a retroactive rule application, per transaction:
// applied (transitioned to auto), skipped (no longer unmatched at apply
// time) and failed (persistence error).
type ApplyResult struct {
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// BulkMatchParams describes a bulk (or single) manual match.
type BulkMatchParams struct {
	TransactionIDs []string
	Target         banking.Assignment
	CreateRule     bool
}

// BulkMatchResult reports a bulk manual match. Rule is non-nil only when
// rule derivation was requested and produced a usable condition.
type BulkMatchResult struct {
	Updated int   `json:"updated"`
	Failed  int   `json:"failed"`
	Rule    *Rule `json:"rule,omitempty"`
}
