package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mietwerk/internal/domain/banking"
	"mietwerk/internal/domain/matchrule"
)

const transactionRuleColumns = `id, org_id, name, conditions, target_tenant_id, target_lease_id,
	       target_transaction_type, target_building_id, created_at, updated_at`

type TransactionRuleRepository struct {
	db *DB
}

func NewTransactionRuleRepository(db *DB) *TransactionRuleRepository {
	return &TransactionRuleRepository{db: db}
}

func (r *TransactionRuleRepository) Create(ctx context.Context, params matchrule.CreateRuleParams) (*matchrule.Rule, error) {
	conditions, err := json.Marshal(params.Conditions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rule conditions: %w", err)
	}

	query := `
		INSERT INTO transaction_rules (id, org_id, name, conditions, target_tenant_id,
		                               target_lease_id, target_transaction_type, target_building_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + transactionRuleColumns

	row := r.db.QueryRowContext(
		ctx, query,
		uuid.New().String(), params.OrgID, params.Name, conditions,
		params.Target.TenantID, params.Target.LeaseID, params.Target.Type, params.Target.BuildingID,
	)

	rule, err := scanTransactionRule(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction rule: %w", err)
	}
	return rule, nil
}

func (r *TransactionRuleRepository) GetByID(ctx context.Context, id string) (*matchrule.Rule, error) {
	query := `
		SELECT ` + transactionRuleColumns + `
		FROM transaction_rules
		WHERE id = $1
	`

	rule, err := scanTransactionRule(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction rule: %w", err)
	}
	return rule, nil
}

// ListByOrgID returns the rules in creation order, which is the priority
// order the auto-match pass applies them in.
func (r *TransactionRuleRepository) ListByOrgID(ctx context.Context, orgID int64) ([]*matchrule.Rule, error) {
	query := `
		SELECT ` + transactionRuleColumns + `
		FROM transaction_rules
		WHERE org_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction rules: %w", err)
	}
	defer rows.Close()

	var rules []*matchrule.Rule
	for rows.Next() {
		rule, err := scanTransactionRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rules: %w", err)
	}
	return rules, nil
}

func (r *TransactionRuleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transaction_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction rule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return matchrule.ErrRuleNotFound
	}
	return nil
}

func (r *TransactionRuleRepository) ListOrgIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT org_id FROM transaction_rules ORDER BY org_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule organizations: %w", err)
	}
	defer rows.Close()

	var orgIDs []int64
	for rows.Next() {
		var orgID int64
		if err := rows.Scan(&orgID); err != nil {
			return nil, fmt.Errorf("failed to scan organization id: %w", err)
		}
		orgIDs = append(orgIDs, orgID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule organizations: %w", err)
	}
	return orgIDs, nil
}

func scanTransactionRule(row rowScanner) (*matchrule.Rule, error) {
	var rule matchrule.Rule
	var conditions []byte
	var targetType sql.NullString

	err := row.Scan(
		&rule.ID, &rule.OrgID, &rule.Name, &conditions,
		&rule.Target.TenantID, &rule.Target.LeaseID, &targetType, &rule.Target.BuildingID,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
		return nil, fmt.Errorf("failed to decode rule conditions: %w", err)
	}
	if targetType.Valid {
		t := banking.TransactionType(targetType.String)
		rule.Target.Type = &t
	}
	return &rule, nil
}
