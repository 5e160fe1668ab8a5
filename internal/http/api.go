package http

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"budgetflow/internal/core"
	"budgetflow/internal/export"
	applog "budgetflow/internal/log"
	"budgetflow/internal/services"
)

func (s *Server) handleAPIListPeriods(w http.ResponseWriter, r *http.Request) {
	keys, err := s.service.Periods(r.Context())
	if err != nil {
		s.logStoreError(r.Context(), "Failed to list periods", err, applog.OpList, "")
		writeJSONError(w, http.StatusInternalServerError, "failed to list periods")
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, keys)
}

// loadView resolves {key} and writes the error response itself when the
// period cannot be served.
func (s *Server) loadView(w http.ResponseWriter, r *http.Request) (services.PeriodView, bool) {
	key := chi.URLParam(r, "key")
	if _, _, err := core.ParsePeriodKey(key); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return services.PeriodView{}, false
	}
	view, found, err := s.service.View(r.Context(), key)
	if err != nil {
		s.logStoreError(r.Context(), "Failed to load period", err, applog.OpRead, key)
		writeJSONError(w, http.StatusInternalServerError, "failed to load period")
		return services.PeriodView{}, false
	}
	if !found {
		writeJSONError(w, http.StatusNotFound, "period not found")
		return services.PeriodView{}, false
	}
	return view, true
}

func (s *Server) handleAPIGetPeriod(w http.ResponseWriter, r *http.Request) {
	if view, ok := s.loadView(w, r); ok {
		writeJSON(w, http.StatusOK, view)
	}
}

// handleAPIPutPeriod upserts a period from a JSON body and answers with the
// stored view.
func (s *Server) handleAPIPutPeriod(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	p, err := DecodePeriodPayload(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.service.SaveKey(r.Context(), key,
		toAmounts(p.Budgets, core.BudgetCategories),
		toAmounts(p.Expenses, core.ExpenseCategories),
		p.Comment)
	switch {
	case services.IsValidation(err):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		s.logStoreError(r.Context(), "Failed to save period", err, applog.OpSave, key)
		writeJSONError(w, http.StatusInternalServerError, "failed to save period")
		return
	}

	if view, ok := s.loadView(w, r); ok {
		writeJSON(w, http.StatusOK, view)
	}
}

// handleAPIExportPeriod streams the period as ?format=csv|json|yaml|pdf.
func (s *Server) handleAPIExportPeriod(w http.ResponseWriter, r *http.Request) {
	format := export.FormatCSV
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := export.ParseFormat(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	view, ok := s.loadView(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, view, s.currency); err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
			"Export failed", err, applog.ComponentExport, applog.OpExport,
			applog.NewFields().WithErrorType(applog.ErrorTypeInternal))
		writeJSONError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+view.Record.Key+"."+string(format)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
