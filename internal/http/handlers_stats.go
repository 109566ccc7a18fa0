package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"hamanets/internal/cache"
	"hamanets/internal/charts"
	"hamanets/internal/core"
	"hamanets/internal/export"
	"hamanets/internal/log"
	"hamanets/internal/ofx"
	"hamanets/internal/services"
	"hamanets/internal/stats"
)

const (
	maxOFXBody          = 10 << 20 // 10MB
	defaultUpcomingDays = 7
	maxUpcomingDays     = 366
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady checks the repository and reports cache and request counters.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}
	if err := s.svc.Ping(ctx); err != nil {
		checks["storage"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}
	checks["cache"] = map[string]cache.Stats{
		"summaries":  s.summaries.Stats(),
		"series":     s.series.Stats(),
		"dashboards": s.dashboards.Stats(),
	}
	checks["requests"] = s.tracer.GetMetrics()
	checks["rate_limit"] = s.limiter.Stats()
	checks["security"] = s.detector.GetMetrics()

	writeJSON(w, code, map[string]any{
		"status":   status,
		"revision": s.store.Revision(),
		"checks":   checks,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboards.Get("dashboard:"+s.dayKey(), s.store.Revision(), func() (services.Dashboard, error) {
		return services.BuildDashboard(s.store, s.now(), s.policy), nil
	})
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleMonthStats summarizes the month ?offset= months before the
// current one (0 current, 1 previous).
func (s *Server) handleMonthStats(w http.ResponseWriter, r *http.Request) {
	offset, err := monthOffset(r)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	sum, err := s.monthSummary(offset)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func monthOffset(r *http.Request) (int, error) {
	offset, err := queryInt(r, "offset", 0)
	if err == nil && offset < 0 {
		err = fmt.Errorf("%w: offset counts months back and cannot be negative", core.ErrInvalidInput)
	}
	return offset, err
}

func (s *Server) monthSummary(offset int) (core.Summary, error) {
	key := "month:" + strconv.Itoa(offset) + ":" + s.dayKey()
	return s.summaries.Get(key, s.store.Revision(), func() (core.Summary, error) {
		return stats.Month(s.store.Transactions(), s.now(), offset), nil
	})
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	points, err := s.series.Get("weekly:"+s.dayKey(), s.store.Revision(), func() ([]core.SeriesPoint, error) {
		return stats.Weekly(s.store.Transactions(), s.now()), nil
	})
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) sixMonths() ([]core.SeriesPoint, error) {
	return s.series.Get("six-months:"+s.dayKey(), s.store.Revision(), func() ([]core.SeriesPoint, error) {
		return stats.SixMonths(s.store.Transactions(), s.now()), nil
	})
}

func (s *Server) handleSixMonths(w http.ResponseWriter, r *http.Request) {
	points, err := s.sixMonths()
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

type forecastBody struct {
	NextMonth core.Money    `json:"nextMonth"`
	Currency  core.Currency `json:"currency"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, forecastBody{
		NextMonth: stats.PredictNextMonth(s.store.Transactions(), s.now()),
		Currency:  s.store.Settings().DefaultCurrency,
	})
}

// handleUpcomingReminders lists reminders due within ?days= (default 7).
func (s *Server) handleUpcomingReminders(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", defaultUpcomingDays)
	if err == nil && (days < 0 || days > maxUpcomingDays) {
		err = fmt.Errorf("%w: days must be between 0 and %d", core.ErrInvalidInput, maxUpcomingDays)
	}
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, services.Upcoming(s.store.Reminders(), s.now(), days))
}

// handleExportCSV downloads every transaction. ?quote=true switches to
// RFC 4180 quoting.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	opts := []export.Option{export.WithLabels(s.labels), export.WithLocation(s.now().Location())}
	if r.URL.Query().Get("quote") == "true" {
		opts = append(opts, export.WithQuoting())
	}
	body := export.ToCSV(s.store.Transactions(), s.store.Categories(), opts...)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="hamanets-`+s.dayKey()+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func (s *Server) handleSixMonthsChart(w http.ResponseWriter, r *http.Request) {
	points, err := s.sixMonths()
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	s.writePNG(w, r, func() ([]byte, error) { return s.charts.SixMonths(points) })
}

func (s *Server) handleCategoriesChart(w http.ResponseWriter, r *http.Request) {
	offset, err := monthOffset(r)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	sum, err := s.monthSummary(offset)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	s.writePNG(w, r, func() ([]byte, error) { return s.charts.Categories(sum, s.store.Categories()) })
}

func (s *Server) writePNG(w http.ResponseWriter, r *http.Request, render func() ([]byte, error)) {
	img, err := render()
	if errors.Is(err, charts.ErrNoData) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

type importResult struct {
	Added    int      `json:"added"`
	Skipped  int      `json:"skipped"`
	Rejected []string `json:"rejected"`
}

// handleImportOFX takes a raw OFX/QFX body. Entries whose FITID is
// already in the ledger are skipped; ?category= overrides the category.
func (s *Server) handleImportOFX(w http.ResponseWriter, r *http.Request) {
	parser := *s.ofx
	if c := r.URL.Query().Get("category"); c != "" {
		parser.CategoryID = c
	}

	txns, err := parser.Parse(r.Context(), http.MaxBytesReader(w, r.Body, maxOFXBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "statement too large"})
			return
		}
		s.writeError(w, r, log.OpImport, err)
		return
	}

	fresh, skipped := ofx.Dedupe(s.store.Transactions(), txns)
	added, rejects, err := s.svc.ImportTransactions(r.Context(), fresh)
	if err != nil {
		s.writeError(w, r, log.OpImport, err)
		return
	}
	res := importResult{Added: added, Skipped: skipped, Rejected: make([]string, 0, len(rejects))}
	for _, e := range rejects {
		res.Rejected = append(res.Rejected, e.Error())
	}
	writeJSON(w, http.StatusOK, res)
}
