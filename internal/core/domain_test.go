package core

import (
	"errors"
	"strings"
	"testing"
)

func TestNewPeriodKey(t *testing.T) {
	cases := []struct {
		year, month int
		want        string
		ok          bool
	}{
		{2025, 1, "2025_January", true},
		{2026, 12, "2026_December", true},
		{2025, 0, "", false},
		{2025, 13, "", false},
		{0, 5, "", false},
	}
	for i, tc := range cases {
		got, err := NewPeriodKey(tc.year, tc.month)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("case %d: got %q err=%v, want %q", i, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error, got %q", i, got)
		}
	}
}

func TestParsePeriodKey(t *testing.T) {
	y, m, err := ParsePeriodKey("2025_March")
	if err != nil || y != 2025 || m != 3 {
		t.Fatalf("unexpected parse: %d %d %v", y, m, err)
	}
	for _, bad := range []string{"", "2025", "2025_march", "abc_March", "2025-March", "2025_"} {
		if _, _, err := ParsePeriodKey(bad); !errors.Is(err, ErrInvalidPeriodKey) {
			t.Fatalf("%q: expected ErrInvalidPeriodKey, got %v", bad, err)
		}
	}
}

func TestAmountsComplete(t *testing.T) {
	in := Amounts{
		{Category: "Product Marketing", Value: 40},
		{Category: "Brand Marketing", Value: 10},
		{Category: "Not a category", Value: 99},
	}
	got := in.Complete(BudgetCategories)
	if len(got) != len(BudgetCategories) {
		t.Fatalf("expected %d entries, got %d", len(BudgetCategories), len(got))
	}
	for i, name := range BudgetCategories {
		if got[i].Category != name {
			t.Fatalf("position %d: got %q want %q", i, got[i].Category, name)
		}
	}
	if got[0].Value != 10 || got[3].Value != 40 || got[1].Value != 0 {
		t.Fatalf("unexpected values: %v", got.Values())
	}
	if got.Total() != 50 {
		t.Fatalf("unknown category leaked into total: %d", got.Total())
	}
}

func TestAmountsValidate(t *testing.T) {
	if err := (Amounts{{Category: "Social ads", Value: 0}}).Validate(ExpenseCategories); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Amounts{{Category: "Social ads", Value: -1}}).Validate(ExpenseCategories); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if err := (Amounts{{Category: "Brand Marketing", Value: 1}}).Validate(ExpenseCategories); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if err := (Amounts{{Category: "Social ads", Value: MaxAmount}}).Validate(ExpenseCategories); err != nil {
		t.Fatalf("MaxAmount should be accepted, got %v", err)
	}
	if err := (Amounts{{Category: "Social ads", Value: MaxAmount + 1}}).Validate(ExpenseCategories); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
	if err := (Amounts{{Category: "anything", Value: 1}}).Validate(nil); err != nil {
		t.Fatalf("nil categories should skip membership check, got %v", err)
	}
}

func TestPeriodRecordValidate(t *testing.T) {
	good := PeriodRecord{
		Key:      "2025_May",
		Budgets:  BudgetCategories.Zero(),
		Expenses: ExpenseCategories.Zero(),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	partial := good
	partial.Budgets = good.Budgets[:2]
	if err := partial.Validate(); err == nil {
		t.Fatalf("expected error for partial budgets")
	}

	badKey := good
	badKey.Key = "May 2025"
	if err := badKey.Validate(); !errors.Is(err, ErrInvalidPeriodKey) {
		t.Fatalf("expected ErrInvalidPeriodKey, got %v", err)
	}

	long := good
	long.Comment = strings.Repeat("é", maxCommentLength)
	if err := long.Validate(); err != nil {
		t.Fatalf("comment of %d characters should pass, got %v", maxCommentLength, err)
	}
	long.Comment += "x"
	if err := long.Validate(); !errors.Is(err, ErrCommentTooLong) {
		t.Fatalf("expected ErrCommentTooLong, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	r := PeriodRecord{
		Budgets:  Amounts{{"A", 100}, {"B", 200}},
		Expenses: Amounts{{"X", 50}, {"Y", 80}},
	}
	s := Summarize(r)
	if s.TotalBudget != 300 || s.TotalExpense != 130 || s.RemainingBudget != 170 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Overspent() {
		t.Fatalf("170 remaining is not an overspend")
	}

	over := Summarize(PeriodRecord{Budgets: Amounts{{"A", 10}}, Expenses: Amounts{{"X", 25}}})
	if over.RemainingBudget != -15 || !over.Overspent() {
		t.Fatalf("expected signed overspend, got %+v", over)
	}

	empty := Summarize(PeriodRecord{})
	if empty != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", empty)
	}
}

func TestTotalOfMaxAmountsDoesNotOverflow(t *testing.T) {
	a := ExpenseCategories.Zero()
	for i := range a {
		a[i].Value = MaxAmount
	}
	if err := a.Validate(ExpenseCategories); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got, want := a.Total(), MaxAmount*int64(len(ExpenseCategories)); got != want || got <= 0 {
		t.Fatalf("Total = %d, want %d", got, want)
	}
}

func TestCloneKeepsNilAndEmptyApart(t *testing.T) {
	if got := Amounts(nil).Clone(); got != nil {
		t.Fatalf("nil clone = %#v, want nil", got)
	}
	empty := Amounts{}
	if got := empty.Clone(); got == nil || len(got) != 0 {
		t.Fatalf("empty clone = %#v, want empty non-nil", got)
	}

	orig := Amounts{{Category: "Social ads", Value: 1}}
	c := orig.Clone()
	c[0].Value = 2
	if orig[0].Value != 1 {
		t.Fatalf("clone shares backing array with original")
	}
}
