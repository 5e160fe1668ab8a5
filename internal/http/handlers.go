package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetflow/internal/chart"
	"budgetflow/internal/core"
	applog "budgetflow/internal/log"
	"budgetflow/internal/services"
)

// Entry form input constraints.
const (
	amountMin  = 0
	amountStep = 100
)

// Sankey node styling.
const (
	sankeyPad       = 20
	sankeyThickness = 30
	sankeyColor     = "#E694FF"
)

type amountField struct {
	Name  string
	Label string
}

type monthOption struct {
	Value    int
	Name     string
	Selected bool
}

type formPage struct {
	Title    string
	Years    []int
	Year     int
	Months   []monthOption
	Budgets  []amountField
	Expenses []amountField
	Min      int
	Step     int
}

type visualizePage struct {
	Title     string
	Currency  string
	Periods   []string
	Selected  string
	NotFound  bool
	View      *services.PeriodView
	Overspent bool
	Sankey    *sankeyTrace
}

// sankeyTrace is a Plotly trace, serialized as-is into the page.
type sankeyTrace struct {
	Type string     `json:"type"`
	Node sankeyNode `json:"node"`
	Link sankeyLink `json:"link"`
}

type sankeyNode struct {
	Pad       int      `json:"pad"`
	Thickness int      `json:"thickness"`
	Color     string   `json:"color"`
	Label     []string `json:"label"`
}

type sankeyLink struct {
	Source []int   `json:"source"`
	Target []int   `json:"target"`
	Value  []int64 `json:"value"`
}

func newSankeyTrace(f chart.Flow) *sankeyTrace {
	return &sankeyTrace{
		Type: "sankey",
		Node: sankeyNode{Pad: sankeyPad, Thickness: sankeyThickness, Color: sankeyColor, Label: f.Labels},
		Link: sankeyLink{Source: f.Source, Target: f.Target, Value: f.Value},
	}
}

func fields(categories core.Categories, prefix string) []amountField {
	out := make([]amountField, len(categories))
	for i, name := range categories {
		out[i] = amountField{Name: prefix + strconv.Itoa(i), Label: name}
	}
	return out
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	page := formPage{
		Title:    "Marketing budget",
		Years:    []int{now.Year(), now.Year() + 1},
		Year:     now.Year(),
		Budgets:  fields(core.BudgetCategories, budgetField),
		Expenses: fields(core.ExpenseCategories, expenseField),
		Min:      amountMin,
		Step:     amountStep,
	}
	for m := time.January; m <= time.December; m++ {
		page.Months = append(page.Months, monthOption{Value: int(m), Name: m.String(), Selected: m == now.Month()})
	}
	s.render(w, r, http.StatusOK, "form.html", page)
}

func (s *Server) handleSavePeriod(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	in, err := ParsePeriodForm(r.PostForm)
	if err != nil {
		UnprocessableEntityError("Invalid input: " + err.Error()).Write(w)
		return
	}

	key, err := s.service.Save(r.Context(), in.Year, in.Month, in.Budgets, in.Expenses, in.Comment)
	switch {
	case services.IsValidation(err):
		UnprocessableEntityError("Invalid input: " + err.Error()).Write(w)
		return
	case err != nil:
		s.logStoreError(r.Context(), "Failed to save period", err, applog.OpSave, "")
		InternalServerError("Failed to save data").Write(w)
		return
	}

	SuccessResponse("Data saved!").TriggerPeriodSaved(key).Write(w)
}

// handleVisualize shows the period named by ?period=, or the latest one.
func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := sanitizeInput(r.URL.Query().Get("period"))
	page := visualizePage{Title: "Budget flow", Currency: s.currency}

	var (
		view  services.PeriodView
		found bool
	)
	if key != "" {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			keys, err := s.service.Periods(gctx)
			page.Periods = keys
			return err
		})
		g.Go(func() error {
			var err error
			view, found, err = s.service.View(gctx, key)
			return err
		})
		if err := g.Wait(); err != nil {
			s.logStoreError(ctx, "Failed to load period", err, applog.OpRead, key)
			http.Error(w, "failed to load period", http.StatusInternalServerError)
			return
		}
	} else {
		keys, err := s.service.Periods(ctx)
		if err != nil {
			s.logStoreError(ctx, "Failed to list periods", err, applog.OpList, "")
			http.Error(w, "failed to list periods", http.StatusInternalServerError)
			return
		}
		page.Periods = keys
		if len(keys) == 0 {
			s.render(w, r, http.StatusOK, "visualize.html", page)
			return
		}
		key = keys[len(keys)-1]
		if view, found, err = s.service.View(ctx, key); err != nil {
			s.logStoreError(ctx, "Failed to load period", err, applog.OpRead, key)
			http.Error(w, "failed to load period", http.StatusInternalServerError)
			return
		}
	}

	page.Selected = key
	status := http.StatusOK
	if !found {
		page.NotFound = true
		status = http.StatusNotFound
	} else {
		page.View = &view
		page.Overspent = view.Summary.Overspent()
		page.Sankey = newSankeyTrace(view.Flow)
	}
	s.render(w, r, status, "visualize.html", page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    s.uptime().String(),
	})
}

// handleReady probes the store and the templates.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := map[string]string{"templates": "ok", "store": "ok"}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	if err := s.service.Ping(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			checks["store"] = "timeout"
		} else {
			checks["store"] = fmt.Sprintf("failed: %v", err)
		}
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics reports request, security and rate limit counters as plain text.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	tm := s.tracer.GetMetrics()
	rl := s.limiter.GetMetrics()
	sec := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "budgetflow_uptime_seconds %d\n", int64(s.uptime().Seconds()))
	fmt.Fprintf(w, "budgetflow_http_requests_total %d\n", tm.TotalRequests)
	fmt.Fprintf(w, "budgetflow_http_server_errors_total %d\n", tm.ServerErrors)
	fmt.Fprintf(w, "budgetflow_http_last_duration_ms %d\n", tm.LastDuration.Milliseconds())
	fmt.Fprintf(w, "budgetflow_rate_limit_hits_total %d\n", rl.TotalHits)
	fmt.Fprintf(w, "budgetflow_rate_limit_clients %d\n", rl.ClientCount)
	fmt.Fprintf(w, "budgetflow_suspicious_requests_total %d\n", sec.SuspiciousRequests)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
