package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayoisaiah/lift/history"
	"github.com/ayoisaiah/lift/internal/models"
	"github.com/ayoisaiah/lift/internal/timeutil"
	"github.com/ayoisaiah/lift/plan"
	"github.com/ayoisaiah/lift/records"
	"github.com/ayoisaiah/lift/stats"
	"github.com/ayoisaiah/lift/retry"
)

const maxImportBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var serr *retry.StorageError

	switch {
	case errors.Is(err, history.ErrMissingUserID),
		errors.Is(err, history.ErrInvalidRecord),
		errors.Is(err, history.ErrInvalidImport),
		errors.Is(err, plan.ErrInvalidPlan),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, history.ErrRecordNotFound), errors.Is(err, plan.ErrPlanNotFound):
		status = http.StatusNotFound
	case retry.IsQuota(err):
		status = http.StatusInsufficientStorage
	case errors.As(err, &serr):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func userID(r *http.Request) string {
	return chi.URLParam(r, "userID")
}

func parseFilter(r *http.Request) (history.Filter, error) {
	q := r.URL.Query()
	f := history.Filter{Query: q.Get("q")}

	parse := func(name string) (time.Time, error) {
		v := q.Get(name)
		if v == "" {
			return time.Time{}, nil
		}

		t, err := timeutil.FromStr(v)
		if err != nil {
			return time.Time{}, errBadRequest.Fmt(name + ": " + err.Error())
		}

		return t, nil
	}

	var err error

	if f.Start, err = parse("since"); err != nil {
		return f, err
	}

	if f.End, err = parse("until"); err != nil {
		return f, err
	}

	return f, nil
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	list, err := s.history.Filter(r.Context(), userID(r), f)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	var rec models.HistoryRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.writeError(w, errBadRequest.Fmt("invalid JSON: "+err.Error()))
		return
	}

	if rec.ID == "" {
		rec.ID = history.NewID()
	}

	saved, err := s.history.Save(r.Context(), userID(r), rec)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	rec, err := s.history.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateHistory(w http.ResponseWriter, r *http.Request) {
	var patch history.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.writeError(w, errBadRequest.Fmt("invalid JSON: "+err.Error()))
		return
	}

	rec, err := s.history.Update(r.Context(), userID(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	var (
		data        []byte
		err         error
		contentType string
		ext         string
	)

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		data, err = s.history.ExportJSON(r.Context(), userID(r))
		contentType, ext = "application/json", "json"
	case "csv":
		data, err = s.history.ExportCSV(r.Context(), userID(r))
		contentType, ext = "text/csv; charset=utf-8", "csv"
	default:
		err = errBadRequest.Fmt("unsupported export format " + format)
	}

	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="workout-history.`+ext+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		s.writeError(w, errBadRequest.Fmt(err.Error()))
		return
	}

	res, err := s.history.ImportJSON(r.Context(), userID(r), data)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	list, err := s.history.List(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	book := records.NewBook()
	book.Replay(list)

	writeJSON(w, http.StatusOK, book.All())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	list, err := s.history.Filter(r.Context(), userID(r), f)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats.Compute(list, f.Start, f.End, time.Now()))
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.List(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleSavePlan(w http.ResponseWriter, r *http.Request) {
	var p models.Plan
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.writeError(w, errBadRequest.Fmt("invalid JSON: "+err.Error()))
		return
	}

	saved, err := s.plans.Save(r.Context(), userID(r), p)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.plans.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, retry.Diagnostics())
}

func (s *Server) handleResetDiagnostics(w http.ResponseWriter, _ *http.Request) {
	retry.ResetDiagnostics()
	w.WriteHeader(http.StatusNoContent)
}
