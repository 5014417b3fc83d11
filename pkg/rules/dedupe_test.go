package rules

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		tokens    []string
		joined    string
		count     int
		comboType ComboType
	}{
		{[]string{"paracetamol", "acetaminophen"}, "acetaminophen + paracetamol", 2, ComboCombo},
		{[]string{"collagen"}, "collagen", 1, ComboSingle},
		{[]string{"folic acid", "iron", "folic acid"}, "folic acid + iron", 2, ComboCombo},
		{[]string{"zinc", "zinc"}, "zinc", 1, ComboSingle},
		{[]string{"nicotinamide", "cocarboxylase", "cobalamin", "adenosine triphosphate"},
			"adenosine triphosphate + cobalamin + cocarboxylase + nicotinamide", 4, ComboCombo},
	}
	for _, tt := range tests {
		c := Classify(tt.tokens)
		if c.Joined != tt.joined {
			t.Errorf("Classify(%q).Joined = %q, want %q", tt.tokens, c.Joined, tt.joined)
		}
		if c.Count != tt.count {
			t.Errorf("Classify(%q).Count = %d, want %d", tt.tokens, c.Count, tt.count)
		}
		if c.ComboType != tt.comboType || c.IsCombination != (tt.count > 1) {
			t.Errorf("Classify(%q) combo = %s/%v", tt.tokens, c.ComboType, c.IsCombination)
		}
	}
}
