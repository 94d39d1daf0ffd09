package matchrule

import (
	"errors"
	"testing"

	"mietwerk/internal/domain/banking"
)

func strPtr(s string) *string { return &s }

func sampleTransaction() *banking.Transaction {
	return &banking.Transaction{
		ID:              "txn-1",
		OrgID:           1,
		AmountCents:     85000,
		CounterpartName: strPtr("Max Mustermann"),
		Purpose:         strPtr("Miete Januar Wohnung 3"),
		BookingText:     strPtr("DAUERAUFTRAG"),
		MatchStatus:     banking.StatusUnmatched,
	}
}

func TestEvaluateTextConditions(t *testing.T) {
	txn := sampleTransaction()

	tests := []struct {
		name      string
		condition Condition
		want      bool
	}{
		{
			name:      "equals exact match",
			condition: Condition{Field: FieldCounterpartName, Operator: OpEquals, Value: "Max Mustermann"},
			want:      true,
		},
		{
			name:      "equals is case sensitive",
			condition: Condition{Field: FieldCounterpartName, Operator: OpEquals, Value: "max mustermann"},
			want:      false,
		},
		{
			name:      "contains ignores case",
			condition: Condition{Field: FieldPurpose, Operator: OpContains, Value: "miete"},
			want:      true,
		},
		{
			name:      "contains no hit",
			condition: Condition{Field: FieldPurpose, Operator: OpContains, Value: "Nebenkosten"},
			want:      false,
		},
		{
			name:      "starts_with ignores case",
			condition: Condition{Field: FieldBookingText, Operator: OpStartsWith, Value: "dauer"},
			want:      true,
		},
		{
			name:      "starts_with mid-string is not a prefix",
			condition: Condition{Field: FieldPurpose, Operator: OpStartsWith, Value: "Januar"},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.condition, txn)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateNilFieldNeverMatches(t *testing.T) {
	txn := &banking.Transaction{ID: "txn-2", AmountCents: 100}

	for _, op := range []Operator{OpEquals, OpContains, OpStartsWith} {
		got, err := Evaluate(Condition{Field: FieldCounterpartName, Operator: op, Value: "anything"}, txn)
		if err != nil {
			t.Fatalf("Evaluate(%s) error = %v", op, err)
		}
		if got {
			t.Errorf("Evaluate(%s) on nil field = true, want false", op)
		}
	}
}

func TestEvaluateAmountConditions(t *testing.T) {
	tests := []struct {
		name        string
		amountCents int64
		condition   Condition
		want        bool
	}{
		{
			name:        "equals compares the signed amount",
			amountCents: 85000,
			condition:   Condition{Field: FieldAmountCents, Operator: OpEquals, Value: "85000"},
			want:        true,
		},
		{
			name:        "equals distinguishes sign",
			amountCents: -85000,
			condition:   Condition{Field: FieldAmountCents, Operator: OpEquals, Value: "85000"},
			want:        false,
		},
		{
			name:        "greater_than compares the magnitude",
			amountCents: -90000,
			condition:   Condition{Field: FieldAmountCents, Operator: OpGreaterThan, Value: "85000"},
			want:        true,
		},
		{
			name:        "greater_than strict",
			amountCents: 85000,
			condition:   Condition{Field: FieldAmountCents, Operator: OpGreaterThan, Value: "85000"},
			want:        false,
		},
		{
			name:        "less_than compares the magnitude",
			amountCents: -100,
			condition:   Condition{Field: FieldAmountCents, Operator: OpLessThan, Value: "500"},
			want:        true,
		},
		{
			name:        "value with surrounding whitespace",
			amountCents: 85000,
			condition:   Condition{Field: FieldAmountCents, Operator: OpEquals, Value: " 85000 "},
			want:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := &banking.Transaction{ID: "txn-3", AmountCents: tt.amountCents}
			got, err := Evaluate(tt.condition, txn)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateTypeMismatch(t *testing.T) {
	txn := sampleTransaction()

	tests := []struct {
		name      string
		condition Condition
	}{
		{
			name:      "non-numeric value on amount",
			condition: Condition{Field: FieldAmountCents, Operator: OpEquals, Value: "viel"},
		},
		{
			name:      "greater_than on a text field",
			condition: Condition{Field: FieldCounterpartName, Operator: OpGreaterThan, Value: "100"},
		},
		{
			name:      "contains on amount",
			condition: Condition{Field: FieldAmountCents, Operator: OpContains, Value: "850"},
		},
		{
			name:      "unknown operator",
			condition: Condition{Field: FieldPurpose, Operator: "regex", Value: ".*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.condition, txn)
			if !errors.Is(err, ErrConditionTypeMismatch) {
				t.Fatalf("Evaluate() error = %v, want ErrConditionTypeMismatch", err)
			}
			if got {
				t.Error("Evaluate() = true on mismatch, want false")
			}
		})
	}
}

func TestConditionValidate(t *testing.T) {
	tests := []struct {
		name      string
		condition Condition
		wantErr   bool
	}{
		{
			name:      "valid text condition",
			condition: Condition{Field: FieldPurpose, Operator: OpContains, Value: "Miete"},
			wantErr:   false,
		},
		{
			name:      "valid amount condition",
			condition: Condition{Field: FieldAmountCents, Operator: OpGreaterThan, Value: "100000"},
			wantErr:   false,
		},
		{
			name:      "unknown field",
			condition: Condition{Field: "iban", Operator: OpEquals, Value: "DE00"},
			wantErr:   true,
		},
		{
			name:      "numeric operator on text field",
			condition: Condition{Field: FieldBookingText, Operator: OpLessThan, Value: "5"},
			wantErr:   true,
		},
		{
			name:      "substring operator on amount",
			condition: Condition{Field: FieldAmountCents, Operator: OpStartsWith, Value: "85"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.condition.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
