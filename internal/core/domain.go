package core

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// TotalBudgetLabel names the synthetic node between budgets and expenses.
const TotalBudgetLabel = "Total budget"

type (
	// Categories is a closed, ordered enumeration of category names.
	Categories []string

	// Amount is the submitted value for one category.
	Amount struct {
		Category string `json:"category" yaml:"category"`
		Value    int64  `json:"value" yaml:"value"`
	}

	// Amounts is an ordered mapping from category name to value.
	// Order is significant: it drives node and link positions in charts.
	Amounts []Amount

	// PeriodRecord is the persisted entity, one per year+month.
	PeriodRecord struct {
		Key       string    `json:"key" yaml:"key"`
		Budgets   Amounts   `json:"budgets" yaml:"budgets"`
		Expenses  Amounts   `json:"expenses" yaml:"expenses"`
		Comment   string    `json:"comment" yaml:"comment"`
		UpdatedAt time.Time `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
	}
)

var (
	BudgetCategories = Categories{
		"Brand Marketing",
		"Digital Marketing",
		"Functional Marketing",
		"Product Marketing",
		"Other budget",
	}

	ExpenseCategories = Categories{
		"Social ads",
		"Search ads",
		"Display ads",
		"Video ads",
		"Affiliate ads",
		"TV ads",
		"Radio ads",
		"Print ads",
		"Email marketing",
		"Influencers",
		"Tech subscriptions",
		"Other expenses",
	}
)

var (
	ErrInvalidPeriodKey = errors.New("invalid period key")
	ErrInvalidYear      = errors.New("invalid year")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrNegativeAmount   = errors.New("negative amount")
	ErrAmountTooLarge   = errors.New("amount too large")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrCommentTooLong   = errors.New("comment too long (max 2000 characters)")
)

const maxCommentLength = 2000

// MaxAmount is the largest accepted category value. The sum of every
// category stays well inside int64 and every value is exact as a JSON
// (float64) number.
const MaxAmount int64 = 1 << 53

// Contains reports whether name is part of the enumeration.
func (c Categories) Contains(name string) bool {
	return c.Index(name) >= 0
}

// Index returns the declaration position of name, or -1.
func (c Categories) Index(name string) int {
	for i, v := range c {
		if v == name {
			return i
		}
	}
	return -1
}

// Zero returns an Amounts with every category set to 0.
func (c Categories) Zero() Amounts {
	out := make(Amounts, len(c))
	for i, name := range c {
		out[i] = Amount{Category: name}
	}
	return out
}

// Get returns the value for category and whether it is present.
func (a Amounts) Get(category string) (int64, bool) {
	for _, v := range a {
		if v.Category == category {
			return v.Value, true
		}
	}
	return 0, false
}

// Names returns the category names in order.
func (a Amounts) Names() []string {
	out := make([]string, len(a))
	for i, v := range a {
		out[i] = v.Category
	}
	return out
}

// Values returns the values in order.
func (a Amounts) Values() []int64 {
	out := make([]int64, len(a))
	for i, v := range a {
		out[i] = v.Value
	}
	return out
}

// Total sums all values.
func (a Amounts) Total() int64 {
	var sum int64
	for _, v := range a {
		sum += v.Value
	}
	return sum
}

// Complete returns one entry per category in declaration order. Missing
// categories are filled with 0 and names outside the enumeration are dropped.
func (a Amounts) Complete(categories Categories) Amounts {
	out := categories.Zero()
	for i := range out {
		if v, ok := a.Get(out[i].Category); ok {
			out[i].Value = v
		}
	}
	return out
}

// Validate checks that every value is within [0, MaxAmount] and, when
// categories is not nil, that every name belongs to it.
func (a Amounts) Validate(categories Categories) error {
	for _, v := range a {
		if v.Value < 0 {
			return fmt.Errorf("%w: %s=%d", ErrNegativeAmount, v.Category, v.Value)
		}
		if v.Value > MaxAmount {
			return fmt.Errorf("%w: %s=%d (max %d)", ErrAmountTooLarge, v.Category, v.Value, MaxAmount)
		}
		if categories != nil && !categories.Contains(v.Category) {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, v.Category)
		}
	}
	return nil
}

// Clone returns a copy that shares no backing array with a. Nil stays nil
// and empty stays empty.
func (a Amounts) Clone() Amounts {
	return slices.Clone(a)
}

// NewPeriodKey builds the "<year>_<MonthName>" key, e.g. "2025_March".
func NewPeriodKey(year, month int) (string, error) {
	if year < 1 || year > 9999 {
		return "", fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	if month < 1 || month > 12 {
		return "", fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return strconv.Itoa(year) + "_" + time.Month(month).String(), nil
}

// ParsePeriodKey splits a key built by NewPeriodKey back into year and month.
func ParsePeriodKey(key string) (year, month int, err error) {
	y, m, ok := strings.Cut(key, "_")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
	}
	year, err = strconv.Atoi(y)
	if err != nil || year < 1 || year > 9999 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
	}
	for i := 1; i <= 12; i++ {
		if time.Month(i).String() == m {
			return year, i, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
}

// Validate checks the record invariants: a well-formed key, the full
// category sets in declaration order and values within [0, MaxAmount].
func (r PeriodRecord) Validate() error {
	if _, _, err := ParsePeriodKey(r.Key); err != nil {
		return err
	}
	if err := r.Budgets.Validate(BudgetCategories); err != nil {
		return fmt.Errorf("budgets: %w", err)
	}
	if err := r.Expenses.Validate(ExpenseCategories); err != nil {
		return fmt.Errorf("expenses: %w", err)
	}
	if len(r.Budgets) != len(BudgetCategories) {
		return fmt.Errorf("budgets: expected %d categories, got %d", len(BudgetCategories), len(r.Budgets))
	}
	if len(r.Expenses) != len(ExpenseCategories) {
		return fmt.Errorf("expenses: expected %d categories, got %d", len(ExpenseCategories), len(r.Expenses))
	}
	if utf8.RuneCountInString(r.Comment) > maxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}
