package matchrule

import (
	"strings"

	"mietwerk/internal/domain/banking"
)

// Synthesize derives a rule condition from a batch of manually classified
// transactions: the most frequent trimmed counterpart name, as a contains
// condition. Ties go to the name encountered first. Returns nil when no
// transaction in the set carries a non-empty counterpart name.
//
// This is deliberately a single-condition heuristic; derived rules are
// meant to be reviewed and refined by the user afterward.
func Synthesize(txns []*banking.Transaction) *Condition {
	counts := make(map[string]int)
	var order []string

	for _, txn := range txns {
		if txn.CounterpartName == nil {
			continue
		}
		name := strings.TrimSpace(*txn.CounterpartName)
		if name == "" {
			continue
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	if len(order) == 0 {
		return nil
	}

	best := order[0]
	for _, name := range order[1:] {
		if counts[name] > counts[best] {
			best = name
		}
	}

	return &Condition{
		Field:    FieldCounterpartName,
		Operator: OpContains,
		Value:    best,
	}
}
