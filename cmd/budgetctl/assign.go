package main

import (
	"fmt"
	"strings"

	"budgetflow/internal/core"
)

// parseAssignments turns repeated "Category=Value" flags into amounts over
// the full category list. Unlisted categories stay zero; a repeated
// category keeps the last value.
func parseAssignments(pairs []string, categories core.Categories) (core.Amounts, error) {
	amounts := categories.Zero()
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%q: expected Category=Value", pair)
		}
		name = strings.TrimSpace(name)
		i := categories.Index(name)
		if i < 0 {
			return nil, fmt.Errorf("%q: %w", name, core.ErrUnknownCategory)
		}
		v, err := core.ParseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		amounts[i].Value = v
	}
	return amounts, nil
}
