// Package core provides amount parsing and formatting utilities.
//
// This file contains functions for parsing whole-unit amounts submitted
// through forms and CLI flags, and for rendering them with a currency code.
package core

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidAmount is returned when an amount is not a whole non-negative number.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a user-entered string into a non-negative whole amount.
//
// Blank input is treated as 0, matching an untouched number input. Thousands
// separators ("1,200", "1.200", "1 200") are accepted; signs, decimals beyond
// a zero fraction, values above MaxAmount and any other character are
// rejected.
//
// Examples:
//
//	ParseAmount("")       -> 0, nil
//	ParseAmount("1200")   -> 1200, nil
//	ParseAmount("1,200")  -> 1200, nil
//	ParseAmount("100.00") -> 100, nil
//	ParseAmount("1.5")    -> 0, ErrInvalidAmount
//	ParseAmount("-5")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	// A one or two digit tail is a fraction, not a thousands group.
	// Only a zero fraction is accepted.
	if i := strings.LastIndexAny(s, ".,"); i >= 0 {
		if tail := len(s) - i - 1; tail == 1 || tail == 2 {
			if strings.Trim(s[i+1:], "0") != "" {
				return 0, ErrInvalidAmount
			}
			s = s[:i]
		}
	}
	s = strings.NewReplacer(",", "", ".", "", " ", "", "_", "").Replace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v > MaxAmount {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders a whole amount with thousands separators and a
// currency code, e.g. FormatAmount(-1200, "USD") == "-1,200 USD".
func FormatAmount(v int64, currency string) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if currency != "" {
		b.WriteByte(' ')
		b.WriteString(currency)
	}
	return b.String()
}
