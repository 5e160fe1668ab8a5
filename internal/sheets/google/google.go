package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"budgetflow/internal/core"
	"budgetflow/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// valuesAPI is the slice of the Sheets values API the client needs.
type valuesAPI interface {
	Get(ctx context.Context, rng string) ([][]any, error)
	Update(ctx context.Context, rng string, rows [][]any) error
}

type sheetsValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (v sheetsValues) Get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := v.svc.Spreadsheets.Values.Get(v.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (v sheetsValues) Update(ctx context.Context, rng string, rows [][]any) error {
	_, err := v.svc.Spreadsheets.Values.Update(v.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// Client stores one row per period in a Google Sheet and satisfies
// store.PeriodStore, so it can back the app directly or act as a mirror.
type Client struct {
	// mu serialises the read-then-write upsert in Save.
	mu        sync.Mutex
	values    valuesAPI
	sheetName string
	lastCol   string
}

var _ store.PeriodStore = (*Client)(nil)

// Options configures New.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// NewFromEnv creates a client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID and one of GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Periods").
func NewFromEnv(ctx context.Context) (*Client, error) {
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return New(ctx, Options{
		SpreadsheetID:   strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		SheetName:       strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME")),
		CredentialsJSON: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
		CredentialsFile: file,
	})
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(sheetsValues{svc: svc, spreadsheetID: opts.SpreadsheetID}, opts.SheetName), nil
}

func newClient(values valuesAPI, sheetName string) *Client {
	if sheetName == "" {
		sheetName = "Periods"
	}
	return &Client{
		values:    values,
		sheetName: sheetName,
		lastCol:   columnName(len(periodHeader())),
	}
}

func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case opts.CredentialsJSON != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(opts.CredentialsJSON)
	case opts.CredentialsFile != "":
		slog.InfoContext(ctx, "Reading service account credentials", "path", opts.CredentialsFile)
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func (c *Client) rowRange(row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", c.sheetName, row, c.lastCol, row)
}

// Save upserts the period row: an existing row with the same key is
// overwritten in place, otherwise the row is written below the last one.
//
// Each category has its own column, so the stored row always carries every
// enumerated category in declaration order; Get returns it that way.
func (c *Client) Save(ctx context.Context, key string, budgets, expenses core.Amounts, comment string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.values.Get(ctx, c.sheetName+"!A:A")
	if err != nil {
		return fmt.Errorf("%w: read %s keys: %v", store.ErrStore, c.sheetName, err)
	}

	if len(keys) == 0 {
		header := make([]any, 0, len(periodHeader()))
		for _, h := range periodHeader() {
			header = append(header, h)
		}
		if err := c.values.Update(ctx, c.rowRange(1), [][]any{header}); err != nil {
			return fmt.Errorf("%w: write %s header: %v", store.ErrStore, c.sheetName, err)
		}
		keys = [][]any{{colPeriod}}
	}

	target := len(keys) + 1
	for i := 1; i < len(keys); i++ {
		if len(keys[i]) > 0 && strings.TrimSpace(fmt.Sprint(keys[i][0])) == key {
			target = i + 1
			break
		}
	}

	row := periodRow(core.PeriodRecord{Key: key, Budgets: budgets, Expenses: expenses, Comment: comment})
	if err := c.values.Update(ctx, c.rowRange(target), [][]any{row}); err != nil {
		return fmt.Errorf("%w: write %s row %d: %v", store.ErrStore, c.sheetName, target, err)
	}

	slog.InfoContext(ctx, "Period written to Google Sheets", "period", key, "ref", c.rowRange(target))
	return nil
}

// ListKeys returns the keys found in column A below the header.
func (c *Client) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := c.values.Get(ctx, c.sheetName+"!A2:A")
	if err != nil {
		return nil, fmt.Errorf("%w: read %s keys: %v", store.ErrStore, c.sheetName, err)
	}
	keys := make([]string, 0, len(rows))
	seen := map[string]struct{}{}
	for _, r := range rows {
		if len(r) == 0 {
			continue
		}
		k := strings.TrimSpace(fmt.Sprint(r[0]))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys, nil
}

// Get reads the whole sheet and parses the row whose key matches.
func (c *Client) Get(ctx context.Context, key string) (core.PeriodRecord, bool, error) {
	values, err := c.values.Get(ctx, fmt.Sprintf("%s!A:%s", c.sheetName, c.lastCol))
	if err != nil {
		return core.PeriodRecord{}, false, fmt.Errorf("%w: read %s: %v", store.ErrStore, c.sheetName, err)
	}
	if len(values) < 2 {
		return core.PeriodRecord{}, false, nil
	}
	header := toStrings(values[0])
	keyCol := indexOf(header, colPeriod)
	for _, raw := range values[1:] {
		row := toStrings(raw)
		if safeGet(row, keyCol) != key {
			continue
		}
		rec, err := parsePeriodRow(header, row)
		if err != nil {
			return core.PeriodRecord{}, false, fmt.Errorf("%w: %v", store.ErrStore, err)
		}
		return rec, true, nil
	}
	return core.PeriodRecord{}, false, nil
}
