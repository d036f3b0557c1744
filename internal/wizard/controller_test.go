package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sparklesav/sparkle-clean/internal/schema"
	"github.com/sparklesav/sparkle-clean/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelay struct {
	calls []schema.Lead
	err   error
}

func (f *fakeRelay) Submit(_ context.Context, lead *schema.Lead) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, *lead)
	return nil
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestController(relay *fakeRelay) (*Controller, *testClock) {
	clock := &testClock{t: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	c := NewController(relay, logging.New("error"), WithClock(clock.Now))
	return c, clock
}

func fillContact(c *Controller) {
	form := c.Form()
	form.FirstName = "Jordan"
	form.LastName = "Avery"
	form.Email = "JORDAN@Example.com"
	form.Phone = "(910) 555-0123"
}

// walkToDetails fills each step and advances to the final one.
func walkToDetails(t *testing.T, c *Controller) {
	t.Helper()
	c.Form().ServiceType = "residential"
	require.True(t, c.Advance())
	c.Form().PropertyType = "house"
	require.True(t, c.Advance())
	fillContact(c)
	require.True(t, c.Advance())
	require.Equal(t, StepDetails, c.Step())
}

func TestAdvanceBlockedWithoutServiceType(t *testing.T) {
	c, _ := newTestController(&fakeRelay{})

	assert.False(t, c.Advance())
	assert.Equal(t, StepService, c.Step())
	require.Len(t, c.FieldErrors(), 1)
	assert.Equal(t, "serviceType", c.FieldErrors()[0].Field)
}

func TestAdvanceClearsErrorsOnSuccess(t *testing.T) {
	c, _ := newTestController(&fakeRelay{})

	require.False(t, c.Advance())
	require.NotEmpty(t, c.FieldErrors())

	c.Form().ServiceType = "commercial"
	require.True(t, c.Advance())
	assert.Empty(t, c.FieldErrors())
	assert.Equal(t, StepProperty, c.Step())
}

func TestAdvanceContactStepRequiresAllFields(t *testing.T) {
	c, _ := newTestController(&fakeRelay{})
	c.Form().ServiceType = "residential"
	require.True(t, c.Advance())
	c.Form().PropertyType = "condo"
	require.True(t, c.Advance())

	c.Form().FirstName = "Jordan"
	assert.False(t, c.Advance())
	assert.Equal(t, StepContact, c.Step())

	fields := map[string]bool{}
	for _, fe := range c.FieldErrors() {
		fields[fe.Field] = true
	}
	assert.True(t, fields["lastName"])
	assert.True(t, fields["email"])
	assert.True(t, fields["phone"])

	// Collected state survives the failed transition.
	assert.Equal(t, "Jordan", c.Form().FirstName)
}

func TestRetreatUnconditional(t *testing.T) {
	c, _ := newTestController(&fakeRelay{})
	c.Form().ServiceType = "recurring"
	require.True(t, c.Advance())

	// Wipe the field that got us here; Retreat must not re-validate.
	c.Form().ServiceType = ""
	c.Retreat()
	assert.Equal(t, StepService, c.Step())
	assert.Empty(t, c.FieldErrors())

	// No-op at step 1.
	c.Retreat()
	assert.Equal(t, StepService, c.Step())
}

func TestSubmitHappyPath(t *testing.T) {
	relay := &fakeRelay{}
	c, _ := newTestController(relay)
	walkToDetails(t, c)

	require.NoError(t, c.Submit(context.Background()))
	assert.True(t, c.Submitted())
	require.Len(t, relay.calls, 1)

	sent := relay.calls[0]
	assert.Equal(t, "jordan@example.com", sent.Email, "email lowercased before relay")
	assert.Equal(t, "(910) 555-0123", sent.Phone)
}

func TestSubmitOnlyFromFinalStep(t *testing.T) {
	c, _ := newTestController(&fakeRelay{})
	c.Form().ServiceType = "residential"
	require.True(t, c.Advance())

	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
	assert.False(t, c.Submitted())
}

func TestSubmitThrottle(t *testing.T) {
	relay := &fakeRelay{}
	c, clock := newTestController(relay)
	walkToDetails(t, c)

	require.NoError(t, c.Submit(context.Background()))

	clock.Advance(time.Second)
	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrThrottled)
	assert.Equal(t, "Please wait a moment before submitting again.", c.SubmitError())
	assert.Len(t, relay.calls, 1, "throttled attempt must not reach the relay")

	clock.Advance(2 * time.Second)
	assert.NoError(t, c.Submit(context.Background()))
	assert.Len(t, relay.calls, 2)
}

func TestThrottleIsControllerLocal(t *testing.T) {
	relayA, relayB := &fakeRelay{}, &fakeRelay{}
	a, _ := newTestController(relayA)
	b, _ := newTestController(relayB)
	walkToDetails(t, a)
	walkToDetails(t, b)

	require.NoError(t, a.Submit(context.Background()))

	// A fresh controller is not penalized by another controller's submission.
	assert.NoError(t, b.Submit(context.Background()))
}

func TestSubmitRelayFailureKeepsState(t *testing.T) {
	relay := &fakeRelay{err: errors.New("boom")}
	c, clock := newTestController(relay)
	walkToDetails(t, c)

	err := c.Submit(context.Background())
	require.ErrorIs(t, err, ErrSubmitFailed)
	assert.False(t, c.Submitted())
	assert.Equal(t, StepDetails, c.Step())
	assert.Equal(t, "There was an error submitting your request. Please try again.", c.SubmitError())
	assert.Equal(t, "Jordan", c.Form().FirstName)

	// User-initiated retry succeeds once the relay recovers.
	relay.err = nil
	clock.Advance(3 * time.Second)
	require.NoError(t, c.Submit(context.Background()))
	assert.True(t, c.Submitted())
}

func TestSubmitInvalidPhoneRecheck(t *testing.T) {
	relay := &fakeRelay{}
	c, _ := newTestController(relay)
	walkToDetails(t, c)

	// A phone that passes shape checks loosely but fails the numeric
	// pattern after separator stripping.
	c.Form().Phone = "0005550123"

	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.Empty(t, relay.calls)
}

func TestSubmitSanitizesFreeText(t *testing.T) {
	relay := &fakeRelay{}
	c, _ := newTestController(relay)
	walkToDetails(t, c)
	c.Form().Message = "  <b>Please hurry</b> "

	require.NoError(t, c.Submit(context.Background()))
	require.Len(t, relay.calls, 1)
	assert.Equal(t, "bPlease hurry/b", relay.calls[0].Message)
}
