package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sparklesav/sparkle-clean/internal/notify"
	"github.com/sparklesav/sparkle-clean/internal/ratelimit"
	"github.com/sparklesav/sparkle-clean/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type captureEmail struct{ sent []notify.EmailMessage }

func (c *captureEmail) Send(_ context.Context, msg notify.EmailMessage) error {
	c.sent = append(c.sent, msg)
	return nil
}

type captureSMS struct{ sent []string }

func (c *captureSMS) SendSMS(_ context.Context, _, body string) error {
	c.sent = append(c.sent, body)
	return nil
}

type fixture struct {
	handler *Handler
	clock   *fakeClock
	email   *captureEmail
	sms     *captureSMS
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := newFakeClock()
	logger := logging.New("error")

	store := ratelimit.NewMemoryStore(ratelimit.Config{
		Window:      time.Hour,
		MinInterval: 2 * time.Second,
		MaxAttempts: 5,
	}, ratelimit.WithClock(clock.Now))

	email := &captureEmail{}
	sms := &captureSMS{}
	notifier := notify.NewService(email, sms, []string{"owner@sparklesav.com"}, []string{"+19125550100"}, logger)

	handler := NewHandler(store, notifier, nil, logger, WithClock(clock.Now))
	return &fixture{handler: handler, clock: clock, email: email, sms: sms}
}

func validPayload() map[string]any {
	return map[string]any{
		"firstName":    "Jordan",
		"lastName":     "Avery",
		"email":        "jordan@example.com",
		"phone":        "(910) 555-0123",
		"serviceType":  "residential",
		"propertyType": "house",
	}
}

func (f *fixture) post(t *testing.T, payload any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.RemoteAddr = "203.0.113.9:51234"
	for _, m := range mutate {
		m(req)
	}

	rr := httptest.NewRecorder()
	f.handler.CreateLead(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestCreateLeadHappyPath(t *testing.T) {
	f := newFixture(t)

	payload := map[string]any{
		"firstName":    "Jo",
		"lastName":     "Do",
		"email":        "JO@EX.COM",
		"phone":        "(910) 555-0123",
		"serviceType":  "residential",
		"propertyType": "house",
	}
	rr := f.post(t, payload)

	require.Equal(t, http.StatusOK, rr.Code, "body: %s", rr.Body.String())

	var resp struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Thank you! Your request has been submitted successfully.", resp.Message)
	assert.NotEmpty(t, resp.Timestamp)

	// Notifications went out with the sanitized (lowercased) email.
	require.Len(t, f.email.sent, 1)
	assert.Contains(t, f.email.sent[0].Body, "Email: jo@ex.com")
	require.Len(t, f.sms.sent, 1)
	assert.Equal(t, "New lead: Jo Do - (910) 555-0123 - residential cleaning", f.sms.sent[0])
}

func TestCreateLeadMissingRequiredFields(t *testing.T) {
	for _, field := range []string{"firstName", "lastName", "email", "phone", "serviceType", "propertyType"} {
		t.Run(field, func(t *testing.T) {
			f := newFixture(t)
			payload := validPayload()
			delete(payload, field)

			rr := f.post(t, payload)
			require.Equal(t, http.StatusBadRequest, rr.Code)

			body := decodeError(t, rr)
			assert.Equal(t, "Invalid form data", body["error"])
			assert.NotEmpty(t, body["details"])
		})
	}
}

func TestCreateLeadEnumOutsideSet(t *testing.T) {
	f := newFixture(t)
	payload := validPayload()
	payload["serviceType"] = "window-washing"

	rr := f.post(t, payload)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateLeadInvalidPhone(t *testing.T) {
	f := newFixture(t)
	payload := validPayload()
	payload["phone"] = "0123456789"

	rr := f.post(t, payload)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateLeadPastPreferredDate(t *testing.T) {
	f := newFixture(t)
	payload := validPayload()
	payload["preferredDate"] = time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	rr := f.post(t, payload)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateLeadFuturePreferredDate(t *testing.T) {
	f := newFixture(t)
	payload := validPayload()
	payload["preferredDate"] = time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	rr := f.post(t, payload)
	assert.Equal(t, http.StatusOK, rr.Code, "body: %s", rr.Body.String())
}

func TestCreateLeadMissingCSRFHeader(t *testing.T) {
	f := newFixture(t)

	rr := f.post(t, validPayload(), func(r *http.Request) {
		r.Header.Del("X-Requested-With")
	})
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Invalid request", decodeError(t, rr)["error"])
}

func TestCreateLeadWrongCSRFValue(t *testing.T) {
	f := newFixture(t)

	rr := f.post(t, validPayload(), func(r *http.Request) {
		r.Header.Set("X-Requested-With", "fetch")
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCreateLeadInvalidBody(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader(nil))
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.RemoteAddr = "203.0.113.9:51234"
	rr := httptest.NewRecorder()
	f.handler.CreateLead(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request body", decodeError(t, rr)["error"])
}

func TestCreateLeadBodyNotAnObject(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader([]byte(`["not","an","object"]`)))
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.RemoteAddr = "203.0.113.9:51234"
	rr := httptest.NewRecorder()
	f.handler.CreateLead(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateLeadScriptTagsStripped(t *testing.T) {
	f := newFixture(t)
	payload := validPayload()
	payload["message"] = "<script>alert('hi')</script>"

	rr := f.post(t, payload)
	require.Equal(t, http.StatusOK, rr.Code, "body: %s", rr.Body.String())

	require.Len(t, f.email.sent, 1)
	assert.Contains(t, f.email.sent[0].Body, "scriptalert('hi')/script")
	assert.NotContains(t, f.email.sent[0].Body, "<script>")
}

func TestCreateLeadHourlyCap(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 5; i++ {
		rr := f.post(t, validPayload())
		require.Equal(t, http.StatusOK, rr.Code, "request %d should be admitted", i+1)
		f.clock.Advance(10 * time.Second)
	}

	rr := f.post(t, validPayload())
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, ratelimit.TooManyMessage, decodeError(t, rr)["error"])
}

func TestCreateLeadMinInterval(t *testing.T) {
	f := newFixture(t)

	rr := f.post(t, validPayload())
	require.Equal(t, http.StatusOK, rr.Code)

	f.clock.Advance(time.Second)
	rr = f.post(t, validPayload())
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, ratelimit.PleaseWaitMessage, decodeError(t, rr)["error"])
}

func TestCreateLeadWindowReset(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 5; i++ {
		f.post(t, validPayload())
		f.clock.Advance(10 * time.Second)
	}
	rr := f.post(t, validPayload())
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	f.clock.Advance(time.Hour + time.Second)
	rr = f.post(t, validPayload())
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateLeadRateLimitKeyedByClient(t *testing.T) {
	f := newFixture(t)

	rr := f.post(t, validPayload())
	require.Equal(t, http.StatusOK, rr.Code)

	// A different client is not throttled by the first one's interval.
	f.clock.Advance(time.Second)
	rr = f.post(t, validPayload(), func(r *http.Request) {
		r.RemoteAddr = "198.51.100.4:40000"
	})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestClientKeyDerivation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/contact", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	assert.Equal(t, "203.0.113.9", clientKey(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	assert.Equal(t, "198.51.100.4", clientKey(req))

	req = httptest.NewRequest(http.MethodPost, "/contact", nil)
	req.RemoteAddr = ""
	assert.Equal(t, "unknown", clientKey(req))
}

func TestCreateLeadLimiterErrorAdmits(t *testing.T) {
	clock := newFakeClock()
	logger := logging.New("error")
	handler := NewHandler(failingStore{}, nil, nil, logger, WithClock(clock.Now))

	body, _ := json.Marshal(validPayload())
	req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader(body))
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.RemoteAddr = "203.0.113.9:51234"
	rr := httptest.NewRecorder()
	handler.CreateLead(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "body: %s", rr.Body.String())
}

type failingStore struct{}

func (failingStore) Check(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, assert.AnError
}

func TestCreateLeadOptionalMetadataDefaults(t *testing.T) {
	f := newFixture(t)

	rr := f.post(t, validPayload(), func(r *http.Request) {
		r.Header.Set("User-Agent", "lead-test/1.0")
	})
	require.Equal(t, http.StatusOK, rr.Code)

	require.Len(t, f.email.sent, 1)
	assert.Contains(t, f.email.sent[0].Body, "Submitted At: 2026-04-01T09:00:00Z")
	assert.Contains(t, f.email.sent[0].Body, "User Agent: lead-test/1.0")
	assert.Contains(t, f.email.sent[0].Body, "Client IP: 203.0.113.9")
}
