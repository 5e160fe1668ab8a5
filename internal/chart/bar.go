package chart

import (
	"github.com/shopspring/decimal"

	"budgetflow/internal/core"
)

// Bar is one column of the budget bar chart.
type Bar struct {
	Label string `json:"label" yaml:"label"`
	Value int64  `json:"value" yaml:"value"`
	// Share is the percentage of the total, rounded to one decimal place.
	Share string `json:"share" yaml:"share"`
	// Width is the share scaled against the largest bar, 0-100.
	Width int `json:"width" yaml:"width"`
}

// BarChart is a categorical chart with one bar per category.
type BarChart struct {
	Bars  []Bar `json:"bars" yaml:"bars"`
	Total int64 `json:"total" yaml:"total"`
	Max   int64 `json:"max" yaml:"max"`
}

var hundred = decimal.NewFromInt(100)

// BuildBar produces one bar per entry in amounts, preserving order.
func BuildBar(amounts core.Amounts) BarChart {
	c := BarChart{Bars: make([]Bar, 0, len(amounts))}
	for _, a := range amounts {
		c.Total += a.Value
		if a.Value > c.Max {
			c.Max = a.Value
		}
	}

	total := decimal.NewFromInt(c.Total)
	for _, a := range amounts {
		bar := Bar{Label: a.Category, Value: a.Value, Share: "0.0"}
		if c.Total > 0 {
			bar.Share = decimal.NewFromInt(a.Value).Mul(hundred).Div(total).StringFixed(1)
		}
		if c.Max > 0 && a.Value > 0 {
			w := decimal.NewFromInt(a.Value).Mul(hundred).Div(decimal.NewFromInt(c.Max)).Round(0).IntPart()
			// keep very small values visible
			if w < 2 {
				w = 2
			}
			bar.Width = int(w)
		}
		c.Bars = append(c.Bars, bar)
	}
	return c
}
