package banking

import (
	"errors"
	"testing"
)

func strPtr(s string) *string               { return &s }
func typePtr(t TransactionType) *TransactionType { return &t }

func TestAssignment_IsEmpty(t *testing.T) {
	tests := []struct {
		name       string
		assignment Assignment
		want       bool
	}{
		{"all nil", Assignment{}, true},
		{"tenant set", Assignment{TenantID: strPtr("t-1")}, false},
		{"lease set", Assignment{LeaseID: strPtr("l-1")}, false},
		{"type set", Assignment{Type: typePtr(TypeRent)}, false},
		{"building set", Assignment{BuildingID: strPtr("b-1")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.assignment.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssignment_Validate(t *testing.T) {
	bad := TransactionType("subscription")

	if err := (Assignment{}).Validate(); !errors.Is(err, ErrEmptyAssignment) {
		t.Errorf("Validate() on empty assignment = %v, want ErrEmptyAssignment", err)
	}
	if err := (Assignment{Type: &bad}).Validate(); !errors.Is(err, ErrInvalidType) {
		t.Errorf("Validate() with unknown type = %v, want ErrInvalidType", err)
	}
	if err := (Assignment{Type: typePtr(TypeRent)}).Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestAutoMatch_OnlyFromUnmatched(t *testing.T) {
	target := Assignment{Type: typePtr(TypeRent)}

	change, err := AutoMatch(StatusUnmatched, target)
	if err != nil {
		t.Fatalf("AutoMatch() from unmatched failed: %v", err)
	}
	if change.Status != StatusAuto {
		t.Errorf("change.Status = %q, want %q", change.Status, StatusAuto)
	}

	for _, current := range []MatchStatus{StatusAuto, StatusManual, StatusIgnored} {
		if _, err := AutoMatch(current, target); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("AutoMatch() from %q = %v, want ErrInvalidTransition", current, err)
		}
	}
}

func TestAutoMatch_RejectsEmptyTarget(t *testing.T) {
	if _, err := AutoMatch(StatusUnmatched, Assignment{}); !errors.Is(err, ErrEmptyAssignment) {
		t.Errorf("AutoMatch() with empty target = %v, want ErrEmptyAssignment", err)
	}
}

func TestManualMatch_WinsFromAnyState(t *testing.T) {
	target := Assignment{TenantID: strPtr("t-1")}

	change, err := ManualMatch(target)
	if err != nil {
		t.Fatalf("ManualMatch() failed: %v", err)
	}
	if change.Status != StatusManual {
		t.Errorf("change.Status = %q, want %q", change.Status, StatusManual)
	}
}

func TestIgnore_OnlyFromUnmatched(t *testing.T) {
	change, err := Ignore(StatusUnmatched)
	if err != nil {
		t.Fatalf("Ignore() from unmatched failed: %v", err)
	}
	if change.Status != StatusIgnored {
		t.Errorf("change.Status = %q, want %q", change.Status, StatusIgnored)
	}
	if !change.Assignment.IsEmpty() {
		t.Error("Ignore() should not carry an assignment")
	}

	for _, current := range []MatchStatus{StatusAuto, StatusManual, StatusIgnored} {
		if _, err := Ignore(current); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Ignore() from %q = %v, want ErrInvalidTransition", current, err)
		}
	}
}

func TestMerge_PartialAssignmentLeavesOtherFields(t *testing.T) {
	existing := TypeRent
	txn := &Transaction{
		MatchStatus:     StatusAuto,
		TransactionType: &existing,
		MatchedTenantID: strPtr("t-old"),
	}

	change, err := ManualMatch(Assignment{TenantID: strPtr("t-new")})
	if err != nil {
		t.Fatalf("ManualMatch() failed: %v", err)
	}
	txn.Merge(change)

	if txn.MatchStatus != StatusManual {
		t.Errorf("MatchStatus = %q, want %q", txn.MatchStatus, StatusManual)
	}
	if txn.MatchedTenantID == nil || *txn.MatchedTenantID != "t-new" {
		t.Errorf("MatchedTenantID = %v, want t-new", txn.MatchedTenantID)
	}
	if txn.TransactionType == nil || *txn.TransactionType != TypeRent {
		t.Error("Merge() must not clear fields the assignment does not declare")
	}
}

func TestTransactionType_Valid(t *testing.T) {
	for _, typ := range []TransactionType{TypeRent, TypeDeposit, TypeUtility, TypeMaintenance, TypeInsurance, TypeTax, TypeRepair, TypeOther} {
		if !typ.Valid() {
			t.Errorf("TransactionType(%q).Valid() = false, want true", typ)
		}
	}
	if TransactionType("salary").Valid() {
		t.Error(`TransactionType("salary").Valid() = true, want false`)
	}
}
