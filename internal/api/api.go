// Package api exposes the forecasting operations over HTTP as JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fjacquet/paycycle/internal/bnpl"
	"fjacquet/paycycle/internal/dateutils"
	"fjacquet/paycycle/internal/finerror"
	"fjacquet/paycycle/internal/logging"
	"fjacquet/paycycle/internal/models"
	"fjacquet/paycycle/internal/recurrence"
	"fjacquet/paycycle/internal/scheduler"
	"fjacquet/paycycle/internal/snapshot"

	"github.com/gorilla/mux"
)

// StatusReporter exposes the reconciliation scheduler state.
type StatusReporter interface {
	Status() scheduler.Status
}

// Handler serves the HTTP endpoints.
type Handler struct {
	builder    *snapshot.Builder
	reconciler *bnpl.Reconciler
	scheduler  StatusReporter
	now        func() time.Time
	logger     logging.Logger
}

// NewHandler creates a Handler. now may be nil to use the wall clock.
func NewHandler(builder *snapshot.Builder, reconciler *bnpl.Reconciler, now func() time.Time, logger logging.Logger) *Handler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		builder:    builder,
		reconciler: reconciler,
		now:        now,
		logger:     logger,
	}
}

// WithScheduler enables GET /scheduler/status.
func (h *Handler) WithScheduler(s StatusReporter) *Handler {
	h.scheduler = s
	return h
}

// NewRouter registers every route on a new mux router.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/safe-to-spend", h.SafeToSpend).Methods(http.MethodGet)
	r.HandleFunc("/bnpl", h.ListPlans).Methods(http.MethodGet)
	r.HandleFunc("/bnpl", h.CreatePlan).Methods(http.MethodPost)
	r.HandleFunc("/bnpl/reconcile", h.Reconcile).Methods(http.MethodPost)
	r.HandleFunc("/bnpl/{id}/payments", h.RecordPayment).Methods(http.MethodPost)
	r.HandleFunc("/anomalies", h.Anomalies).Methods(http.MethodGet)
	r.HandleFunc("/snapshot", h.Snapshot).Methods(http.MethodGet)
	if h.scheduler != nil {
		r.HandleFunc("/scheduler/status", h.SchedulerStatus).Methods(http.MethodGet)
	}
	return r
}

// Serve runs handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger logging.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("HTTP server listening", logging.F("address", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("HTTP server shutting down")
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SafeToSpend returns the safe-to-spend figure; verbose=true returns the
// whole projection.
func (h *Handler) SafeToSpend(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	p, err := h.builder.Projection(r.Context(), today)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if verbose, _ := strconv.ParseBool(r.URL.Query().Get("verbose")); verbose {
		writeJSON(w, http.StatusOK, p)
		return
	}
	writeJSON(w, http.StatusOK, p.Result())
}

// ListPlans returns the active plans without advancing them.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.reconciler.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]snapshot.PlanSummary, 0, len(plans))
	for _, p := range plans {
		out = append(out, snapshot.Summarize(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// PlanRequest is the body of POST /bnpl.
type PlanRequest struct {
	ItemName              string `json:"item_name"`
	Provider              string `json:"provider"`
	InstalmentAmountCents int64  `json:"instalment_amount_cents"`
	Frequency             string `json:"frequency"`
	InstalmentsTotal      int    `json:"instalments_total"`
	InstalmentsRemaining  int    `json:"instalments_remaining"`
	NextPaymentDate       string `json:"next_payment_date"`
}

// CreatePlan stores a new plan.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &finerror.ValidationError{Entity: "request", Field: "body", Reason: "is not valid JSON"})
		return
	}
	next, err := dateutils.ParseISODate(req.NextPaymentDate)
	if err != nil {
		h.writeError(w, &finerror.ValidationError{Entity: "bnpl plan", Field: "next_payment_date", Reason: "must be YYYY-MM-DD"})
		return
	}

	created, err := h.reconciler.Add(r.Context(), models.BnplPlan{
		ItemName:              req.ItemName,
		Provider:              req.Provider,
		InstalmentAmountCents: req.InstalmentAmountCents,
		Frequency:             recurrence.ParseFrequency(req.Frequency),
		InstalmentsTotal:      req.InstalmentsTotal,
		InstalmentsRemaining:  req.InstalmentsRemaining,
		NextPaymentDate:       next,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshot.Summarize(created))
}

// Reconcile catches every plan up to today.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	summary, err := h.reconciler.ReconcileAll(r.Context(), today)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// PaymentResponse is the body returned by POST /bnpl/{id}/payments. Plan is
// null once the plan has completed.
type PaymentResponse struct {
	Completed bool                  `json:"completed"`
	Plan      *snapshot.PlanSummary `json:"plan"`
}

// RecordPayment takes one instalment from a plan.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := h.reconciler.Pay(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := PaymentResponse{Completed: res.Completed}
	if res.Plan != nil {
		summary := snapshot.Summarize(*res.Plan)
		resp.Plan = &summary
	}
	writeJSON(w, http.StatusOK, resp)
}

// Anomalies compares the requested month (default: current) with the one
// before it.
func (h *Handler) Anomalies(w http.ResponseWriter, r *http.Request) {
	month := dateutils.Today(h.now())
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := dateutils.ParseMonth(raw)
		if err != nil {
			h.writeError(w, &finerror.ValidationError{Entity: "request", Field: "month", Reason: "must be YYYY-MM"})
			return
		}
		month = parsed
	}

	rows, err := h.builder.Anomalies(r.Context(), month)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Snapshot returns the full financial snapshot.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	s, err := h.builder.Build(r.Context(), today)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// SchedulerStatus reports the last and next reconciliation runs.
func (h *Handler) SchedulerStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.scheduler.Status())
}

// today returns the ?today= override or the current date.
func (h *Handler) today(r *http.Request) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("today"))
	if raw == "" {
		return dateutils.Today(h.now()), nil
	}
	t, err := dateutils.ParseISODate(raw)
	if err != nil {
		return time.Time{}, &finerror.ValidationError{Entity: "request", Field: "today", Reason: "must be YYYY-MM-DD"}
	}
	return t, nil
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, finerror.ErrNoRemainingInstalments):
		status = http.StatusConflict
	case finerror.IsNotFound(err):
		status = http.StatusNotFound
	case finerror.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error("Request failed")
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug("HTTP request",
			logging.F("method", r.Method),
			logging.F("path", r.URL.Path),
			logging.F(logging.FieldStatus, rec.status),
			logging.F(logging.FieldDuration, time.Since(started).Milliseconds()))
	})
}
