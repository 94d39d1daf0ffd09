package matchrule

import (
	"testing"

	"mietwerk/internal/domain/banking"
)

func namedTxn(id, name string) *banking.Transaction {
	return &banking.Transaction{ID: id, CounterpartName: strPtr(name)}
}

func TestSynthesizePicksMostFrequentName(t *testing.T) {
	txns := []*banking.Transaction{
		namedTxn("t1", "Stadtwerke Berlin"),
		namedTxn("t2", "Max Mustermann"),
		namedTxn("t3", "Stadtwerke Berlin"),
		namedTxn("t4", "  Stadtwerke Berlin  "), // trimmed before counting
	}

	cond := Synthesize(txns)
	if cond == nil {
		t.Fatal("Synthesize() = nil, want condition")
	}
	if cond.Field != FieldCounterpartName || cond.Operator != OpContains {
		t.Errorf("Synthesize() = %s %s, want counterpart_name contains", cond.Field, cond.Operator)
	}
	if cond.Value != "Stadtwerke Berlin" {
		t.Errorf("Synthesize().Value = %q, want %q", cond.Value, "Stadtwerke Berlin")
	}
}

func TestSynthesizeTieGoesToFirstEncountered(t *testing.T) {
	txns := []*banking.Transaction{
		namedTxn("t1", "Erika Musterfrau"),
		namedTxn("t2", "Max Mustermann"),
		namedTxn("t3", "Max Mustermann"),
		namedTxn("t4", "Erika Musterfrau"),
	}

	cond := Synthesize(txns)
	if cond == nil {
		t.Fatal("Synthesize() = nil, want condition")
	}
	if cond.Value != "Erika Musterfrau" {
		t.Errorf("Synthesize().Value = %q, want first-encountered %q", cond.Value, "Erika Musterfrau")
	}
}

func TestSynthesizeNoUsableName(t *testing.T) {
	tests := []struct {
		name string
		txns []*banking.Transaction
	}{
		{name: "empty batch", txns: nil},
		{
			name: "only nil and blank names",
			txns: []*banking.Transaction{
				{ID: "t1"},
				namedTxn("t2", "   "),
				namedTxn("t3", ""),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if cond := Synthesize(tt.txns); cond != nil {
				t.Errorf("Synthesize() = %+v, want nil", cond)
			}
		})
	}
}

func TestSynthesizeSkipsUnusableRows(t *testing.T) {
	txns := []*banking.Transaction{
		{ID: "t1"},
		namedTxn("t2", "Hausmeisterservice Krause"),
		namedTxn("t3", " "),
	}

	cond := Synthesize(txns)
	if cond == nil {
		t.Fatal("Synthesize() = nil, want condition")
	}
	if cond.Value != "Hausmeisterservice Krause" {
		t.Errorf("Synthesize().Value = %q, want %q", cond.Value, "Hausmeisterservice Krause")
	}
}
