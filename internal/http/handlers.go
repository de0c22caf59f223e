package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"asicrev/internal/form"
	applog "asicrev/internal/log"
	"asicrev/internal/sources/api"
)

// handleIndex loads the config list and mounts a fresh form for this page view.
// A failed load renders the error in place of the form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}

	ctx := r.Context()
	logger := applog.FromContext(ctx)

	if s.templates == nil {
		logger.ErrorContext(ctx, "Templates not loaded", applog.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	w.Header().Set("Cache-Control", "no-store")

	listCtx, cancel := s.upstreamContext(ctx)
	defer cancel()

	asics, err := s.source.ListASICs(listCtx)
	if err != nil {
		s.events.LogError(ctx, "ASIC list load failed", err, applog.OpListASICs, nil)
		s.renderPage(w, r, newPageView(nil, err.Error()))
		return
	}
	s.events.LogASICsLoaded(ctx, len(asics))

	f := form.New(asics)
	id := s.sessions.Create(f)
	s.sessions.SetCookie(w, r, id)
	logger.DebugContext(ctx, "Form mounted", applog.FieldSessionID, id, applog.FieldASICCount, len(asics))

	s.renderPage(w, r, newPageView(newFormView(f.Snapshot(), s.chartHeight), ""))
}

// handleChangeASIC selects a config and returns the computed-field partial.
func (s *Server) handleChangeASIC(w http.ResponseWriter, r *http.Request) {
	f, params, ok := s.formRequest(w, r)
	if !ok {
		return
	}

	f.ChangeConfig(params.ASICID)
	applog.FromContext(r.Context()).DebugContext(r.Context(), "ASIC changed",
		applog.FieldOperation, applog.OpChangeASIC,
		applog.FieldASICID, params.ASICID)

	s.respond(w, r, f, "units", NewHTMXResponse())
}

// handleSubmit runs a revenue query for the posted selection and range and
// returns the result panel.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	f, params, ok := s.formRequest(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if params.ASICID != "" {
		f.ChangeConfig(params.ASICID)
	}
	f.SetRange(params.Start, params.End)

	// The form outlives this request; a client disconnect must not turn into a
	// recorded failure.
	submitCtx, cancel := s.upstreamContext(context.WithoutCancel(ctx))
	defer cancel()

	resp := NewHTMXResponse()
	err := f.Submit(submitCtx, s.source)
	snap := f.Snapshot()

	switch {
	case errors.Is(err, form.ErrMissingField):
		AlertResponse(http.StatusUnprocessableEntity, missingFieldMessage(err)).Write(w)
		return
	case errors.Is(err, form.ErrSuperseded):
		applog.FromContext(ctx).DebugContext(ctx, "Submit superseded",
			applog.FieldOperation, applog.OpSubmit,
			applog.FieldGeneration, snap.Generation)
	case err != nil:
		s.events.LogError(ctx, "Revenue fetch failed", err, applog.OpFetch,
			applog.NewFields().WithQuery(snap.SelectedID, snap.Start, snap.End))
	default:
		s.events.LogRevenueFetched(ctx, snap.SelectedID, snap.Start, snap.End, snap.Unit.String(), len(snap.Series), snap.Total)
		resp.TriggerRevenueUpdated(snap.Unit.String(), len(snap.Series))
	}

	s.respondSnapshot(w, r, snap, "result", resp)
}

// handleToggleUnit flips USD/BTC and returns the re-derived result panel.
func (s *Server) handleToggleUnit(w http.ResponseWriter, r *http.Request) {
	f, _, ok := s.formRequest(w, r)
	if !ok {
		return
	}

	f.ToggleUnit()
	snap := f.Snapshot()
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Unit toggled",
		applog.FieldOperation, applog.OpToggleUnit,
		applog.FieldUnit, snap.Unit.String())

	s.respondSnapshot(w, r, snap, "result", NewHTMXResponse().TriggerUnitChanged(snap.Unit.String()))
}

// formRequest validates method and form encoding and resolves the session's
// form. On failure the response is already written.
func (s *Server) formRequest(w http.ResponseWriter, r *http.Request) (*form.Form, RevenueParams, bool) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return nil, RevenueParams{}, false
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return nil, RevenueParams{}, false
	}

	f, id, ok := s.sessions.FromRequest(r)
	if !ok {
		applog.FromContext(r.Context()).InfoContext(r.Context(), "Form post without live session",
			applog.FieldSessionID, id,
			applog.FieldPath, r.URL.Path)
		if !IsHTMX(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
		} else {
			SessionExpiredError().Write(w)
		}
		return nil, RevenueParams{}, false
	}
	return f, ParseRevenueParams(r.PostForm), true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, f *form.Form, partial string, resp *HTMXResponseBuilder) {
	s.respondSnapshot(w, r, f.Snapshot(), partial, resp)
}

// respondSnapshot renders a partial for HTMX requests and the whole page for
// plain form posts.
func (s *Server) respondSnapshot(w http.ResponseWriter, r *http.Request, snap form.Snapshot, partial string, resp *HTMXResponseBuilder) {
	view := newFormView(snap, s.chartHeight)
	if !IsHTMX(r) {
		s.renderPage(w, r, newPageView(view, ""))
		return
	}
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	if err := resp.Template(s.templates, partial, view); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Partial template execution failed",
			applog.FieldError, err.Error(),
			applog.FieldOperation, applog.OpRender,
			"template", partial)
		InternalServerError("Rendering failed").Write(w)
		return
	}
	resp.Write(w)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page pageView) {
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	resp := NewHTMXResponse()
	if err := resp.Template(s.templates, "index.html", page); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			applog.FieldError, err.Error(),
			applog.FieldOperation, applog.OpRender,
			"template", "index.html")
		InternalServerError("Rendering failed").Write(w)
		return
	}
	resp.Write(w)
}

// upstreamContext bounds a data source call by the configured API timeout.
func (s *Server) upstreamContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.apiTimeout > 0 {
		return context.WithTimeout(ctx, s.apiTimeout)
	}
	return context.WithCancel(ctx)
}

func missingFieldMessage(err error) string {
	var detail string
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !errors.Is(e, form.ErrMissingField) {
				detail = e.Error()
			}
		}
	}
	if detail == "" {
		return "Please select an ASIC and a time range."
	}
	return fmt.Sprintf("Please select an ASIC and a time range (%s).", detail)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports whether templates are loaded and a data source is
// configured. It does not call the upstream API.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	code := http.StatusOK
	checks := map[string]any{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch src := s.source.(type) {
	case nil:
		checks["source"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	case *api.Client:
		if src.BaseURL() == "" {
			checks["source"] = "failed: " + api.ErrMissingBaseURL.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["source"] = "ok"
		}
	default:
		checks["source"] = "ok"
	}

	checks["sessions"] = map[string]any{"active": s.sessions.Len()}
	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients()}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides counters in a Prometheus-like plain text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, help, kind string, value int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", s.tracer.TotalRequests())
	metric("suspicious_requests_total", "Requests matching scanner patterns", "counter", s.detector.SuspiciousCount())
	metric("active_sessions", "Live form sessions", "gauge", int64(s.sessions.Len()))
	metric("rate_limit_active_clients", "Clients tracked by the rate limiter", "gauge", int64(s.rateLimiter.ActiveClients()))
	metric("uptime_seconds", "Seconds since server start", "gauge", int64(time.Since(s.started).Seconds()))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
