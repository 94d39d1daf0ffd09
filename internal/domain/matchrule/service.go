package matchrule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/agnivade/levenshtein"

	"mietwerk/internal/domain/banking"
)

// Maximum edit distance at which a synthesized condition value is treated
// as a duplicate of an existing rule's value and rule creation is skipped.
const derivedRuleDistance = 2

// Service implements the rule-matching engine operations: retroactive
// preview/apply, bulk manual matching with optional rule derivation, the
// scheduled auto-match pass, and rule CRUD.
type Service struct {
	rules Repository
	txns  banking.Repository
}

// NewService creates a new rule-matching service.
func NewService(rules Repository, txns banking.Repository) *Service {
	return &Service{rules: rules, txns: txns}
}

// PreviewRule returns every currently-unmatched transaction the rule
// matches, without mutating anything. Safe to call repeatedly and
// concurrently.
func (s *Service) PreviewRule(ctx context.Context, orgID int64, ruleID string) ([]*banking.Transaction, error) {
	rule, err := s.getOwnedRule(ctx, orgID, ruleID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.txns.ListUnmatched(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unmatched transactions: %w", err)
	}

	matches := make([]*banking.Transaction, 0)
	for _, txn := range candidates {
		if TryMatch(rule, txn).Matches {
			matches = append(matches, txn)
		}
	}
	return matches, nil
}

// ApplyRule writes the rule's target onto a caller-selected subset of the
// previewed candidates and transitions them to auto. Each transaction is
// re-validated to still be unmatched at apply time; rows that lost that
// race are counted as skipped, per-row persistence errors as failed.
// Neither aborts the batch.
func (s *Service) ApplyRule(ctx context.Context, orgID int64, ruleID string, txnIDs []string) (*ApplyResult, error) {
	rule, err := s.getOwnedRule(ctx, orgID, ruleID)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{}
	expect := banking.StatusUnmatched

	for _, id := range txnIDs {
		change, err := banking.AutoMatch(banking.StatusUnmatched, rule.Target)
		if err != nil {
			// An unusable target (e.g. an empty template) fails every row
			// the same way; surface it once instead of counting.
			return nil, err
		}

		_, err = s.txns.ApplyStatusChange(ctx, orgID, id, change, &expect)
		switch {
		case err == nil:
			result.Applied++
		case errors.Is(err, banking.ErrStatusConflict), errors.Is(err, banking.ErrTransactionNotFound):
			result.Skipped++
		default:
			log.Printf("Rule %s: failed to apply to transaction %s: %v", ruleID, id, err)
			result.Failed++
		}
	}

	return result, nil
}

// ApplyBulk assigns a common target to every listed transaction as a
// manual match (manual always wins, regardless of current state). With
// CreateRule set it additionally derives a standing rule from the batch;
// failure to derive one is not a failure of the bulk operation.
func (s *Service) ApplyBulk(ctx context.Context, orgID int64, params BulkMatchParams) (*BulkMatchResult, error) {
	if params.Target.IsEmpty() {
		return nil, ErrEmptyTarget
	}

	change, err := banking.ManualMatch(params.Target)
	if err != nil {
		return nil, err
	}

	result := &BulkMatchResult{}
	var updated []*banking.Transaction

	for _, id := range params.TransactionIDs {
		txn, err := s.txns.ApplyStatusChange(ctx, orgID, id, change, nil)
		if err != nil {
			log.Printf("Bulk match: failed to update transaction %s: %v", id, err)
			result.Failed++
			continue
		}
		updated = append(updated, txn)
		result.Updated++
	}

	if params.CreateRule {
		rule, err := s.deriveRule(ctx, orgID, updated, params.Target)
		if err != nil {
			// Rule derivation is best-effort; the matches themselves stand.
			log.Printf("Bulk match: skipping derived rule for org %d: %v", orgID, err)
		}
		result.Rule = rule
	}

	return result, nil
}

// deriveRule synthesizes a condition from the batch and persists it as a
// new rule, unless no usable condition exists or an existing rule already
// covers a near-identical counterpart name.
func (s *Service) deriveRule(ctx context.Context, orgID int64, txns []*banking.Transaction, target banking.Assignment) (*Rule, error) {
	cond := Synthesize(txns)
	if cond == nil {
		return nil, nil
	}

	existing, err := s.rules.ListByOrgID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	for _, rule := range existing {
		for _, c := range rule.Conditions {
			if c.Field != FieldCounterpartName || c.Operator != OpContains {
				continue
			}
			d := levenshtein.ComputeDistance(strings.ToLower(c.Value), strings.ToLower(cond.Value))
			if d <= derivedRuleDistance {
				log.Printf("Derived rule %q skipped: near-duplicate of rule %q", cond.Value, rule.Name)
				return nil, nil
			}
		}
	}

	return s.rules.Create(ctx, CreateRuleParams{
		OrgID:      orgID,
		Name:       cond.Value,
		Conditions: []Condition{*cond},
		Target:     target,
	})
}

// AutoMatchAll runs every rule of the organization, in creation order,
// over the currently-unmatched transactions. The first rule to match a
// transaction wins it; later rules see the row as taken and skip it. Safe
// to re-run at any time: manual and ignored rows are never touched.
func (s *Service) AutoMatchAll(ctx context.Context, orgID int64) (*ApplyResult, error) {
	rules, err := s.rules.ListByOrgID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	candidates, err := s.txns.ListUnmatched(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unmatched transactions: %w", err)
	}

	result := &ApplyResult{}
	expect := banking.StatusUnmatched

	for _, txn := range candidates {
		for _, rule := range rules {
			attempt := TryMatch(rule, txn)
			if !attempt.Matches {
				continue
			}

			change, err := banking.AutoMatch(txn.MatchStatus, attempt.Target)
			if err != nil {
				break
			}

			_, err = s.txns.ApplyStatusChange(ctx, orgID, txn.ID, change, &expect)
			switch {
			case err == nil:
				result.Applied++
			case errors.Is(err, banking.ErrStatusConflict), errors.Is(err, banking.ErrTransactionNotFound):
				result.Skipped++
			default:
				log.Printf("Auto-match: failed to apply rule %s to transaction %s: %v", rule.ID, txn.ID, err)
				result.Failed++
			}
			break
		}
	}

	log.Printf("Auto-match pass for org %d: applied=%d, skipped=%d, failed=%d",
		orgID, result.Applied, result.Skipped, result.Failed)

	return result, nil
}

// IgnoreTransaction dismisses an unmatched transaction from all future
// automatic matching.
func (s *Service) IgnoreTransaction(ctx context.Context, orgID int64, id string) (*banking.Transaction, error) {
	txn, err := s.txns.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, banking.ErrTransactionNotFound
	}

	change, err := banking.Ignore(txn.MatchStatus)
	if err != nil {
		return nil, err
	}

	current := txn.MatchStatus
	return s.txns.ApplyStatusChange(ctx, orgID, id, change, &current)
}

// CreateRule validates and persists a user-defined rule.
func (s *Service) CreateRule(ctx context.Context, params CreateRuleParams) (*Rule, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.rules.Create(ctx, params)
}

// GetRule returns a rule by ID, verifying ownership.
func (s *Service) GetRule(ctx context.Context, orgID int64, ruleID string) (*Rule, error) {
	return s.getOwnedRule(ctx, orgID, ruleID)
}

// ListRules returns all rules for an organization in creation order.
func (s *Service) ListRules(ctx context.Context, orgID int64) ([]*Rule, error) {
	return s.rules.ListByOrgID(ctx, orgID)
}

// DeleteRule deletes a rule, verifying ownership.
func (s *Service) DeleteRule(ctx context.Context, orgID int64, ruleID string) error {
	if _, err := s.getOwnedRule(ctx, orgID, ruleID); err != nil {
		return err
	}
	return s.rules.Delete(ctx, ruleID)
}

func (s *Service) getOwnedRule(ctx context.Context, orgID int64, ruleID string) (*Rule, error) {
	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrRuleNotFound
	}
	if rule.OrgID != orgID {
		return nil, ErrForbidden
	}
	return rule, nil
}
