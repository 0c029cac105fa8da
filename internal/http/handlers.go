package http

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"triad/internal/core"
	applog "triad/internal/log"
	"triad/internal/services"
)

const summaryCacheKey = "summary"

// handleIndex renders the dashboard shell: the decision form, the
// summary strip and the chart containers.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		Categories []core.Category
		ScoreMin   int
		ScoreMax   int
	}{
		Categories: core.Categories(),
		ScoreMin:   int(core.ScoreMin),
		ScoreMax:   int(core.ScoreMax),
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed",
			applog.FieldError, err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleCreateDecision appends one decision from the form and returns
// the impact fragment for the htmx target. A negative sector beats a
// zero one in the fragment: draining a sector is worth stronger wording
// than merely not moving it.
func (s *Server) handleCreateDecision(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse form error", applog.FieldError, err)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="flash flash-error">Malformed request</div>`))
		return
	}

	in := services.SubmissionInput{
		Label:    sanitizeInput(r.Form.Get("label")),
		Category: sanitizeInput(r.Form.Get("category")),
	}
	scores := []struct {
		field string
		dst   *int
	}{
		{"wealth", &in.Wealth},
		{"health", &in.Health},
		{"self", &in.Self},
	}
	for _, sc := range scores {
		raw := strings.TrimSpace(r.Form.Get(sc.field))
		v, err := strconv.Atoi(raw)
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`<div class="flash flash-error">` +
				template.HTMLEscapeString(sc.field) + ` must be a whole number</div>`))
			return
		}
		*sc.dst = v
	}

	res, err := s.svc.HandleSubmission(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrScoreOutOfRange), errors.Is(err, core.ErrUnknownCategory):
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`<div class="flash flash-error">` +
				template.HTMLEscapeString(err.Error()) + `</div>`))
		default:
			s.logger.ErrorContext(r.Context(), "Decision append error",
				applog.FieldError, err, applog.FieldLabel, in.Label)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`<div class="flash flash-error">Failed to save decision</div>`))
		}
		return
	}

	s.metrics.decisionsLogged.Inc()
	s.metrics.negativeFlags.Add(float64(len(res.Impact.Negative)))
	s.invalidateProjections()

	w.Header().Set("HX-Trigger", `{"decision:logged": {"ref": `+strconv.Quote(res.Ref)+`}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(impactFragment(in.Label, res.Impact)))
}

// impactFragment formats the post-submission sanity check. Sectors in
// both lists only show up under the negative wording.
func impactFragment(label string, impact core.ImpactDirections) string {
	name := template.HTMLEscapeString(label)
	if name == "" {
		name = "Decision"
	}
	switch {
	case len(impact.Negative) > 0:
		return `<div class="flash flash-negative">` + name +
			` logged. Negative impact on ` + sectorList(impact.Negative) + `.</div>`
	case len(impact.Zero) > 0:
		return `<div class="flash flash-zero">` + name +
			` logged. No impact on ` + sectorList(impact.Zero) + `.</div>`
	default:
		return `<div class="flash flash-success">` + name +
			` logged. Positive across all sectors.</div>`
	}
}

func sectorList(sectors []core.Sector) string {
	parts := make([]string, len(sectors))
	for i, sec := range sectors {
		parts[i] = string(sec)
	}
	return template.HTMLEscapeString(strings.Join(parts, ", "))
}

// handleSummaryPartial renders the three summary metrics as an htmx
// partial, refreshed after every submission via the decision:logged
// trigger.
func (s *Server) handleSummaryPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	summary, err := s.cachedSummary(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Summary load error", applog.FieldError, err)
		_, _ = w.Write([]byte(`<section id="summary" class="summary"><div class="placeholder">Failed to load summary</div></section>`))
		return
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="summary" class="summary"><div class="placeholder">Decisions today: ` +
			strconv.Itoa(summary.DecisionsToday) + `</div></section>`))
		return
	}

	data := struct {
		DecisionsToday   int
		AvgWealth        string
		AvgNegativeFlags string
	}{
		DecisionsToday:   summary.DecisionsToday,
		AvgWealth:        formatMetric(summary.AvgWealth),
		AvgNegativeFlags: formatMetric(summary.AvgNegativeFlags),
	}
	if err := s.templates.ExecuteTemplate(w, "summary.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Summary template execution failed",
			applog.FieldError, err, "template", "summary.html")
		_, _ = w.Write([]byte(`<section id="summary" class="summary"><div class="placeholder">Failed to render summary</div></section>`))
	}
}

// handleViewModel serves the chart view-model as JSON. Repeating the
// label parameter narrows the selection; omitting it means everything.
func (s *Server) handleViewModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var selection []string
	if labels, ok := r.URL.Query()["label"]; ok {
		selection = make([]string, 0, len(labels))
		for _, l := range labels {
			selection = append(selection, strings.TrimSpace(l))
		}
	}

	vm, err := s.cachedViewModel(r.Context(), selection)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "View-model load error", applog.FieldError, err)
		http.Error(w, `{"error":"failed to load decisions"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(vm); err != nil {
		s.logger.ErrorContext(r.Context(), "View-model encode error", applog.FieldError, err)
	}
}

func (s *Server) cachedSummary(ctx context.Context) (core.Summary, error) {
	if summary, found := s.summaryCache.Get(summaryCacheKey); found {
		s.metrics.cacheHits.WithLabelValues("summary").Inc()
		return summary, nil
	}
	s.metrics.cacheMisses.WithLabelValues("summary").Inc()

	summary, err := s.svc.Summary(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	s.summaryCache.Set(summaryCacheKey, summary)
	return summary, nil
}

func (s *Server) cachedViewModel(ctx context.Context, selection []string) (core.ViewModel, error) {
	key := viewModelCacheKey(selection)
	if vm, found := s.viewModelCache.Get(key); found {
		s.metrics.cacheHits.WithLabelValues("viewmodel").Inc()
		return vm, nil
	}
	s.metrics.cacheMisses.WithLabelValues("viewmodel").Inc()

	vm, err := s.svc.ViewModel(ctx, selection)
	if err != nil {
		return core.ViewModel{}, err
	}
	s.viewModelCache.Set(key, vm)
	return vm, nil
}

func viewModelCacheKey(selection []string) string {
	if selection == nil {
		return "all"
	}
	return "sel:" + strings.Join(selection, "\x1f")
}

// invalidateProjections drops every cached projection after an append.
func (s *Server) invalidateProjections() {
	s.summaryCache.Delete(summaryCacheKey)
	s.viewModelCache.Purge()
}

// sanitizeInput trims whitespace and strips control characters except
// tab, newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func strconvStatus(code int) string {
	return strconv.Itoa(code)
}

// formatMetric renders dashboard averages with two decimals, without
// trailing noise for whole numbers.
func formatMetric(v float64) string {
	out := strconv.FormatFloat(v, 'f', 2, 64)
	out = strings.TrimRight(out, "0")
	out = strings.TrimSuffix(out, ".")
	if out == "" || out == "-" {
		return "0"
	}
	return out
}
