// Package intake implements the server-side contact endpoint. It mirrors the
// wizard's checks independently: any caller reaching POST /contact gets the
// full rate-limit, sanitize, and validate treatment whether or not the
// request came from the booking form.
package intake

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sparklesav/sparkle-clean/internal/notify"
	"github.com/sparklesav/sparkle-clean/internal/observability/metrics"
	"github.com/sparklesav/sparkle-clean/internal/ratelimit"
	"github.com/sparklesav/sparkle-clean/internal/schema"
	"github.com/sparklesav/sparkle-clean/pkg/logging"
)

// csrfHeader must carry csrfExpected for a submission to be accepted. This
// is a same-origin heuristic (browsers do not attach the header on simple
// cross-site form posts), not cryptographic CSRF protection.
const (
	csrfHeader   = "X-Requested-With"
	csrfExpected = "XMLHttpRequest"
)

// unknownClientKey buckets requests whose origin cannot be determined.
const unknownClientKey = "unknown"

// Handler handles contact form submissions.
type Handler struct {
	limiter  ratelimit.Store
	notifier *notify.Service
	metrics  *metrics.IntakeMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// Option customizes a Handler.
type Option func(*Handler)

// WithClock overrides the handler's time source for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// NewHandler creates the intake handler.
func NewHandler(limiter ratelimit.Store, notifier *notify.Service, m *metrics.IntakeMetrics, logger *logging.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	h := &Handler{
		limiter:  limiter,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type successResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Error   string              `json:"error"`
	Details []schema.FieldError `json:"details,omitempty"`
}

// CreateLead handles POST /contact.
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := clientKey(r)

	// Rate limit before any body work so abusive clients stay cheap.
	decision, err := h.limiter.Check(ctx, key)
	if err != nil {
		// A broken limiter backend degrades to admit-all rather than
		// blocking every lead.
		h.logger.Error("rate limit check failed, admitting", "error", err, "client", key)
		decision = ratelimit.Decision{Allowed: true}
	}
	if !decision.Allowed {
		h.metrics.ObserveSubmission(metrics.OutcomeRateLimited)
		h.metrics.ObserveRateLimited(decision.Reason)
		h.logger.Warn("submission rate limited", "client", key, "reason", decision.Reason)
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: decision.Message})
		return
	}

	if r.Header.Get(csrfHeader) != csrfExpected {
		h.metrics.ObserveSubmission(metrics.OutcomeCSRFRejected)
		h.logger.Warn("submission missing request marker header", "client", key)
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "Invalid request"})
		return
	}

	var lead schema.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		h.metrics.ObserveSubmission(metrics.OutcomeInvalidBody)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	lead.Scrub()

	if errs := lead.Validate(); len(errs) > 0 {
		h.metrics.ObserveSubmission(metrics.OutcomeValidationFailed)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid form data", Details: errs})
		return
	}

	// Belt-and-suspenders re-checks behind the schema.
	if !strings.Contains(lead.Email, "@") {
		h.metrics.ObserveSubmission(metrics.OutcomeValidationFailed)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid email address"})
		return
	}
	if !schema.ValidPhone(lead.Phone) {
		h.metrics.ObserveSubmission(metrics.OutcomeValidationFailed)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid phone number"})
		return
	}
	if lead.PreferredDate != "" {
		t, ok := schema.ParseDate(lead.PreferredDate)
		if !ok || schema.DateBeforeToday(t, h.now()) {
			h.metrics.ObserveSubmission(metrics.OutcomeValidationFailed)
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Preferred date cannot be in the past"})
			return
		}
	}

	if lead.SubmittedAt == "" {
		lead.SubmittedAt = h.now().UTC().Format(time.RFC3339)
	}
	if lead.UserAgent == "" {
		lead.UserAgent = r.UserAgent()
	}

	// Notification failures are logged but do not reject an already
	// accepted lead.
	if h.notifier != nil {
		if err := h.notifier.NotifyNewLead(ctx, &lead, key); err != nil {
			h.logger.Error("lead notifications failed", "error", err, "client", key)
		}
	}

	h.metrics.ObserveSubmission(metrics.OutcomeAccepted)
	writeJSON(w, http.StatusOK, successResponse{
		Success:   true,
		Message:   "Thank you! Your request has been submitted successfully.",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

// clientKey derives the rate-limit key: forwarded IP, then connection IP,
// then a shared sentinel. Spoofable by design; callers behind the same
// proxy/NAT share a bucket.
func clientKey(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		// First hop of the forwarded chain.
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = strings.TrimSpace(fwd[:i])
		}
		if fwd != "" {
			return fwd
		}
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}
	return unknownClientKey
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
