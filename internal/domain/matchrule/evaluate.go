package matchrule

import (
	"strconv"
	"strings"

	"mietwerk/internal/domain/banking"
)

// Evaluate tests a single condition against one transaction. It is a pure
// function: no side effects, no I/O.
//
// Substring and prefix tests are case-insensitive and a nil transaction
// field never matches (and never errors). Numeric comparisons parse the
// condition value as integer cents; an unparsable value or an operator
// applied to the wrong field type returns ErrConditionTypeMismatch, which
// callers running batches must treat as "does not match".
func Evaluate(c Condition, txn *banking.Transaction) (bool, error) {
	if c.Field == FieldAmountCents {
		return evaluateAmount(c, txn.AmountCents)
	}

	value := textField(c.Field, txn)

	switch c.Operator {
	case OpEquals:
		return value != nil && *value == c.Value, nil
	case OpContains:
		if value == nil {
			return false, nil
		}
		return strings.Contains(strings.ToLower(*value), strings.ToLower(c.Value)), nil
	case OpStartsWith:
		if value == nil {
			return false, nil
		}
		return strings.HasPrefix(strings.ToLower(*value), strings.ToLower(c.Value)), nil
	case OpGreaterThan, OpLessThan:
		// Ordering comparisons are only defined for amount_cents.
		return false, ErrConditionTypeMismatch
	}
	return false, ErrConditionTypeMismatch
}

func evaluateAmount(c Condition, amountCents int64) (bool, error) {
	want, err := strconv.ParseInt(strings.TrimSpace(c.Value), 10, 64)
	if err != nil {
		return false, ErrConditionTypeMismatch
	}

	switch c.Operator {
	case OpEquals:
		return amountCents == want, nil
	case OpGreaterThan:
		return abs(amountCents) > want, nil
	case OpLessThan:
		return abs(amountCents) < want, nil
	}
	return false, ErrConditionTypeMismatch
}

func textField(f Field, txn *banking.Transaction) *string {
	switch f {
	case FieldCounterpartName:
		return txn.CounterpartName
	case FieldPurpose:
		return txn.Purpose
	case FieldBookingText:
		return txn.BookingText
	}
	return nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
