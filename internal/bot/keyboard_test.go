package bot

import "testing"

func TestActionFromLabel(t *testing.T) {
	tests := []struct {
		text   string
		want   Action
		wantOK bool
	}{
		{"➕ Add Category", ActionAddCategory, true},
		{"Add Category", ActionAddCategory, true},
		{"🗑️ Delete Category", ActionDeleteCategory, true},
		{"🗑️ Delete Entry", ActionDeleteEntry, true},
		{"✏️ Edit Entry", ActionEditEntry, true},
		{"  📋 Show Expenses ", ActionShowExpenses, true},
		{"💵 Paid", ActionPaid, true},
		{"Manual Input", ActionManualInput, true},
		{"Cancel", ActionCancel, true},
		{"🍽️ Lunch", ActionNone, false},
		{"paid", ActionNone, false},
		{"", ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ActionFromLabel(tt.text)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ActionFromLabel(%q) = %v, %v; want %v, %v", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCategoryLabelRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		label string
	}{
		{"Lunch", "🍽️ Lunch"},
		{"Dinner", "🍽️ Dinner"},
		{"Groceries", "🛒 Groceries"},
		{"Taxi", "🍱 Taxi"},
	}

	for _, tt := range tests {
		if got := CategoryLabel(tt.name); got != tt.label {
			t.Errorf("CategoryLabel(%q) = %q, want %q", tt.name, got, tt.label)
		}
		if got := StripCategoryLabel(tt.label); got != tt.name {
			t.Errorf("StripCategoryLabel(%q) = %q, want %q", tt.label, got, tt.name)
		}
	}

	// Some clients send the plate emoji without its variation selector.
	if got := StripCategoryLabel("🍽 Lunch"); got != "Lunch" {
		t.Errorf("StripCategoryLabel without selector = %q", got)
	}
	if got := StripCategoryLabel("Plain"); got != "Plain" {
		t.Errorf("StripCategoryLabel(Plain) = %q", got)
	}
}

func TestAmountKeyboard(t *testing.T) {
	kb := AmountKeyboard()
	want := Keyboard{{"10", "12"}, {"15", "20"}, {"Manual Input"}}
	if len(kb) != len(want) {
		t.Fatalf("rows = %d, want %d", len(kb), len(want))
	}
	for i := range want {
		for j := range want[i] {
			if kb[i][j] != want[i][j] {
				t.Errorf("kb[%d][%d] = %q, want %q", i, j, kb[i][j], want[i][j])
			}
		}
	}
}
