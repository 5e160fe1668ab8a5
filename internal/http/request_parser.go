package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"budgetflow/internal/core"
)

const maxBodyBytes = 1 << 20

// Form field prefixes. Inputs are named by category position, e.g.
// "budget_0" for the first budget category.
const (
	budgetField  = "budget_"
	expenseField = "expense_"
)

// PeriodInput is a parsed entry form submission.
type PeriodInput struct {
	Year     int
	Month    int
	Budgets  core.Amounts
	Expenses core.Amounts
	Comment  string
}

// FieldError reports a form value that is not a usable number.
type FieldError struct {
	Field string
	Value string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %q is not a valid amount", e.Field, e.Value)
}

// ParsePeriodForm reads year, month, one amount per category and the
// comment. Blank amounts count as 0.
func ParsePeriodForm(form url.Values) (PeriodInput, error) {
	var in PeriodInput
	var err error

	if in.Year, err = strconv.Atoi(strings.TrimSpace(form.Get("year"))); err != nil {
		return in, &FieldError{Field: "Year", Value: form.Get("year")}
	}
	if in.Month, err = strconv.Atoi(strings.TrimSpace(form.Get("month"))); err != nil {
		return in, &FieldError{Field: "Month", Value: form.Get("month")}
	}
	if in.Budgets, err = parseAmountFields(form, budgetField, core.BudgetCategories); err != nil {
		return in, err
	}
	if in.Expenses, err = parseAmountFields(form, expenseField, core.ExpenseCategories); err != nil {
		return in, err
	}
	in.Comment = sanitizeInput(form.Get("comment"))
	return in, nil
}

func parseAmountFields(form url.Values, prefix string, categories core.Categories) (core.Amounts, error) {
	out := categories.Zero()
	for i := range out {
		raw := form.Get(prefix + strconv.Itoa(i))
		v, err := core.ParseAmount(raw)
		if err != nil {
			return nil, &FieldError{Field: out[i].Category, Value: raw}
		}
		out[i].Value = v
	}
	return out, nil
}

// PeriodPayload is the JSON body of PUT /api/periods/{key}.
type PeriodPayload struct {
	Budgets  map[string]int64 `json:"budgets"`
	Expenses map[string]int64 `json:"expenses"`
	Comment  string           `json:"comment"`
}

// DecodePeriodPayload reads a bounded JSON body and rejects unknown fields.
func DecodePeriodPayload(w http.ResponseWriter, r *http.Request) (PeriodPayload, error) {
	var p PeriodPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return p, errors.New("invalid JSON body: trailing data")
	}
	p.Comment = sanitizeInput(p.Comment)
	return p, nil
}

// toAmounts orders m by declaration order. Names outside categories follow
// in lexical order so validation reports them deterministically.
func toAmounts(m map[string]int64, categories core.Categories) core.Amounts {
	out := make(core.Amounts, 0, len(m))
	for _, name := range categories {
		if v, ok := m[name]; ok {
			out = append(out, core.Amount{Category: name, Value: v})
		}
	}
	var unknown []string
	for name := range m {
		if !categories.Contains(name) {
			unknown = append(unknown, name)
		}
	}
	slices.Sort(unknown)
	for _, name := range unknown {
		out = append(out, core.Amount{Category: name, Value: m[name]})
	}
	return out
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, then trims.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
