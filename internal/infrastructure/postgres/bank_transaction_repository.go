package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mietwerk/internal/domain/banking"
)

const bankTransactionColumns = `id, org_id, booking_date, amount_cents, counterpart_name, purpose,
	       booking_text, counterpart_iban, match_status, matched_tenant_id, matched_lease_id,
	       transaction_type, building_id, created_at, updated_at`

type BankTransactionRepository struct {
	db *DB
}

func NewBankTransactionRepository(db *DB) *BankTransactionRepository {
	return &BankTransactionRepository{db: db}
}

func (r *BankTransactionRepository) Create(ctx context.Context, params banking.CreateTransactionParams) (*banking.Transaction, error) {
	query := `
		INSERT INTO bank_transactions (id, org_id, booking_date, amount_cents, counterpart_name,
		                               purpose, booking_text, counterpart_iban, match_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'unmatched')
		RETURNING ` + bankTransactionColumns

	row := r.db.QueryRowContext(
		ctx, query,
		params.ID, params.OrgID, params.BookingDate, params.AmountCents,
		params.CounterpartName, params.Purpose, params.BookingText, params.CounterpartIBAN,
	)

	txn, err := scanBankTransaction(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create bank transaction: %w", err)
	}
	return txn, nil
}

func (r *BankTransactionRepository) GetByID(ctx context.Context, orgID int64, id string) (*banking.Transaction, error) {
	query := `
		SELECT ` + bankTransactionColumns + `
		FROM bank_transactions
		WHERE id = $1 AND org_id = $2
	`

	txn, err := scanBankTransaction(r.db.QueryRowContext(ctx, query, id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank transaction: %w", err)
	}
	return txn, nil
}

func (r *BankTransactionRepository) ListByStatus(ctx context.Context, orgID int64, status banking.MatchStatus, limit, offset int) ([]*banking.Transaction, error) {
	query := `
		SELECT ` + bankTransactionColumns + `
		FROM bank_transactions
		WHERE org_id = $1 AND match_status = $2
		ORDER BY booking_date DESC, created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, query, orgID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank transactions: %w", err)
	}
	defer rows.Close()

	return collectBankTransactions(rows)
}

func (r *BankTransactionRepository) ListUnmatched(ctx context.Context, orgID int64) ([]*banking.Transaction, error) {
	query := `
		SELECT ` + bankTransactionColumns + `
		FROM bank_transactions
		WHERE org_id = $1 AND match_status = 'unmatched'
		ORDER BY booking_date DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unmatched transactions: %w", err)
	}
	defer rows.Close()

	return collectBankTransactions(rows)
}

// ApplyStatusChange is the single write path for match_status and the
// matched-target columns. Unset assignment fields keep their current value
// (COALESCE). With a non-nil expect the UPDATE is guarded on the row still
// holding that status; a follow-up lookup then distinguishes a lost race
// (ErrStatusConflict) from a missing row (ErrTransactionNotFound).
func (r *BankTransactionRepository) ApplyStatusChange(ctx context.Context, orgID int64, id string, change banking.StatusChange, expect *banking.MatchStatus) (*banking.Transaction, error) {
	query := `
		UPDATE bank_transactions
		SET match_status = $1,
		    matched_tenant_id = COALESCE($2, matched_tenant_id),
		    matched_lease_id = COALESCE($3, matched_lease_id),
		    transaction_type = COALESCE($4, transaction_type),
		    building_id = COALESCE($5, building_id),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $6 AND org_id = $7 AND ($8::text IS NULL OR match_status = $8)
		RETURNING ` + bankTransactionColumns

	var expectArg *string
	if expect != nil {
		s := string(*expect)
		expectArg = &s
	}

	row := r.db.QueryRowContext(
		ctx, query,
		change.Status,
		change.Assignment.TenantID, change.Assignment.LeaseID,
		change.Assignment.Type, change.Assignment.BuildingID,
		id, orgID, expectArg,
	)

	txn, err := scanBankTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		existing, lookupErr := r.GetByID(ctx, orgID, id)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing == nil {
			return nil, banking.ErrTransactionNotFound
		}
		return nil, banking.ErrStatusConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply status change: %w", err)
	}
	return txn, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBankTransaction(row rowScanner) (*banking.Transaction, error) {
	var txn banking.Transaction
	var txType sql.NullString

	err := row.Scan(
		&txn.ID, &txn.OrgID, &txn.BookingDate, &txn.AmountCents,
		&txn.CounterpartName, &txn.Purpose, &txn.BookingText, &txn.CounterpartIBAN,
		&txn.MatchStatus, &txn.MatchedTenantID, &txn.MatchedLeaseID,
		&txType, &txn.BuildingID,
		&txn.CreatedAt, &txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if txType.Valid {
		t := banking.TransactionType(txType.String)
		txn.TransactionType = &t
	}
	return &txn, nil
}

func collectBankTransactions(rows *sql.Rows) ([]*banking.Transaction, error) {
	var transactions []*banking.Transaction
	for rows.Next() {
		txn, err := scanBankTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bank transactions: %w", err)
	}
	return transactions, nil
}
