// Package export writes a period view to CSV, JSON, YAML or PDF.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"budgetflow/internal/chart"
	"budgetflow/internal/core"
	"budgetflow/internal/services"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatPDF  Format = "pdf"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML, FormatPDF}

// ParseFormat accepts a format name case-insensitively; "yml" means yaml.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatYAML, FormatPDF:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want csv, json, yaml or pdf)", s)
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Document is the serialized shape of an exported period.
type Document struct {
	Period   string         `json:"period" yaml:"period"`
	Currency string         `json:"currency" yaml:"currency"`
	Comment  string         `json:"comment,omitempty" yaml:"comment,omitempty"`
	Budgets  core.Amounts   `json:"budgets" yaml:"budgets"`
	Expenses core.Amounts   `json:"expenses" yaml:"expenses"`
	Summary  core.Summary   `json:"summary" yaml:"summary"`
	Flow     chart.Flow     `json:"flow" yaml:"flow"`
	Bar      chart.BarChart `json:"bar" yaml:"bar"`
}

func NewDocument(view services.PeriodView, currency string) Document {
	return Document{
		Period:   view.Record.Key,
		Currency: currency,
		Comment:  view.Record.Comment,
		Budgets:  view.Record.Budgets,
		Expenses: view.Record.Expenses,
		Summary:  view.Summary,
		Flow:     view.Flow,
		Bar:      view.Bar,
	}
}

// Write renders view in format f to w.
func Write(w io.Writer, f Format, view services.PeriodView, currency string) error {
	doc := NewDocument(view, currency)
	switch f {
	case FormatCSV:
		return writeCSV(w, doc)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("error encoding JSON data: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("error encoding YAML data: %w", err)
		}
		return enc.Close()
	case FormatPDF:
		return writePDF(w, doc)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// ToFile writes view to <dir>/<period>.<format> and returns the absolute path.
func ToFile(dir string, f Format, view services.PeriodView, currency string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}
	name := filepath.Join(dir, view.Record.Key+"."+string(f))

	file, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("error creating %s file: %w", f, err)
	}
	if err := Write(file, f, view, currency); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("error closing %s file: %w", f, err)
	}
	return filepath.Abs(name)
}

// writeCSV emits one row per amount followed by the summary rows.
func writeCSV(w io.Writer, doc Document) error {
	writer := csv.NewWriter(w)
	rows := [][]string{{"period", "section", "category", "amount"}}
	for _, a := range doc.Budgets {
		rows = append(rows, []string{doc.Period, "budget", a.Category, strconv.FormatInt(a.Value, 10)})
	}
	for _, a := range doc.Expenses {
		rows = append(rows, []string{doc.Period, "expense", a.Category, strconv.FormatInt(a.Value, 10)})
	}
	rows = append(rows,
		[]string{doc.Period, "summary", "Total Budget", strconv.FormatInt(doc.Summary.TotalBudget, 10)},
		[]string{doc.Period, "summary", "Total Expense", strconv.FormatInt(doc.Summary.TotalExpense, 10)},
		[]string{doc.Period, "summary", "Remaining Budget", strconv.FormatInt(doc.Summary.RemainingBudget, 10)},
	)
	if doc.Comment != "" {
		rows = append(rows, []string{doc.Period, "comment", "", doc.Comment})
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	return nil
}
