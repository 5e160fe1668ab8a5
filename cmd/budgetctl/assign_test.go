package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetflow/internal/core"
)

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{
		"Brand Marketing=1,000",
		" Other budget = 250 ",
		"Brand Marketing=1200",
	}, core.BudgetCategories)
	require.NoError(t, err)

	assert.Equal(t, core.BudgetCategories.Zero().Names(), got.Names())
	assert.Equal(t, []int64{1200, 0, 0, 0, 250}, got.Values())
}

func TestParseAssignmentsEmpty(t *testing.T) {
	got, err := parseAssignments(nil, core.ExpenseCategories)
	require.NoError(t, err)
	assert.Len(t, got, len(core.ExpenseCategories))
	assert.Zero(t, got.Total())
}

func TestParseAssignmentsErrors(t *testing.T) {
	tests := []struct {
		name string
		pair string
		want error
	}{
		{"missing separator", "Social ads 300", nil},
		{"unknown category", "Podcasts=10", core.ErrUnknownCategory},
		{"negative", "Social ads=-5", core.ErrInvalidAmount},
		{"fraction", "Social ads=1.5", core.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAssignments([]string{tt.pair}, core.ExpenseCategories)
			require.Error(t, err)
			if tt.want != nil {
				assert.True(t, errors.Is(err, tt.want), "got %v", err)
			}
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"periods", "show", "save", "export"})
}
