package banking

import (
	"errors"
	"time"
)

var (
	ErrTransactionNotFound = errors.New("bank transaction not found")
	// ErrStatusConflict is returned when a guarded status change finds the
	// transaction is no longer in the expected state (someone else matched
	// or dismissed it between preview and apply).
	ErrStatusConflict = errors.New("transaction is no longer in the expected match status")
)

// TransactionType classifies what a bank movement pays for.
type TransactionType string

const (
	TypeRent        TransactionType = "rent"
	TypeDeposit     TransactionType = "deposit"
	TypeUtility     TransactionType = "utility"
	TypeMaintenance TransactionType = "maintenance"
	TypeInsurance   TransactionType = "insurance"
	TypeTax         TransactionType = "tax"
	TypeRepair      TransactionType = "repair"
	TypeOther       TransactionType = "other"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeRent, TypeDeposit, TypeUtility, TypeMaintenance, TypeInsurance, TypeTax, TypeRepair, TypeOther:
		return true
	}
	return false
}

// Transaction is one imported bank account movement. Rows are created by
// the bank-feed ingestion in state unmatched and are never deleted, only
// re-classified by the matching engine.
type Transaction struct {
	ID              string           `json:"id"`
	OrgID           int64            `json:"-"`
	BookingDate     time.Time        `json:"bookingDate"`
	AmountCents     int64            `json:"amountCents"` // signed, minor units
	CounterpartName *string          `json:"counterpartName,omitempty"`
	Purpose         *string          `json:"purpose,omitempty"`
	BookingText     *string          `json:"bookingText,omitempty"`
	CounterpartIBAN *string          `json:"counterpartIban,omitempty"`
	MatchStatus     MatchStatus      `json:"matchStatus"`
	MatchedTenantID *string          `json:"matchedTenantId,omitempty"`
	MatchedLeaseID  *string          `json:"matchedLeaseId,omitempty"`
	TransactionType *TransactionType `json:"transactionType,omitempty"`
	BuildingID      *string          `json:"buildingId,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// CreateTransactionParams is used by the feed ingestion boundary. New rows
// always start unmatched; the engine owns every later status change.
type CreateTransactionParams struct {
	ID              string
	OrgID           int64
	BookingDate     time.Time
	AmountCents     int64
	CounterpartName *string
	Purpose         *string
	BookingText     *string
	CounterpartIBAN *string
}
