package matchrule

import "mietwerk/internal/domain/banking"

// TryMatch evaluates all of a rule's conditions (logical AND) against one
// transaction and returns the rule's target template unchanged on success.
//
// A rule with an empty condition list never matches; this guards against
// accidental catch-all rules. Evaluation short-circuits on the first
// failing condition, and a condition that cannot be evaluated
// (ErrConditionTypeMismatch) counts as failing rather than aborting the
// batch.
func TryMatch(r *Rule, txn *banking.Transaction) MatchAttempt {
	if len(r.Conditions) == 0 {
		return MatchAttempt{}
	}

	for _, c := range r.Conditions {
		ok, err := Evaluate(c, txn)
		if err != nil || !ok {
			return MatchAttempt{}
		}
	}

	return MatchAttempt{Matches: true, Target: r.Target}
}
