// Package wizard drives the four-step booking form: service type, property
// details, contact info, then additional details and submission. It shares
// its validation rules with the server intake endpoint through the schema
// package, so the two surfaces enforce the same contract.
package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/sparklesav/sparkle-clean/internal/schema"
	"github.com/sparklesav/sparkle-clean/pkg/logging"
)

// Steps of the wizard.
const (
	StepService  = 1
	StepProperty = 2
	StepContact  = 3
	StepDetails  = 4
)

// MinSubmitInterval is the local cooldown between submission attempts.
const MinSubmitInterval = 2 * time.Second

var (
	// ErrThrottled is returned when Submit is called again within
	// MinSubmitInterval of the previous attempt.
	ErrThrottled = errors.New("wizard: submitted too soon")

	// ErrNotReady is returned when Submit is called before the required
	// contact fields are complete or from a step other than the last.
	ErrNotReady = errors.New("wizard: form not ready for submission")

	// ErrInvalidPhone is returned when the phone number fails the numeric
	// re-check at submit time.
	ErrInvalidPhone = errors.New("wizard: invalid phone number")

	// ErrSubmitFailed is returned when the relay rejects the submission or
	// the network call fails. The form state is preserved for a retry.
	ErrSubmitFailed = errors.New("wizard: submission failed")
)

// Submitter delivers a finalized lead to the form relay.
type Submitter interface {
	Submit(ctx context.Context, lead *schema.Lead) error
}

// Controller holds the wizard state for one visitor session. The submission
// throttle is controller-local, not shared across instances.
type Controller struct {
	relay  Submitter
	logger *logging.Logger
	now    func() time.Time

	step           int
	lead           schema.Lead
	fieldErrors    []schema.FieldError
	submitError    string
	submitted      bool
	lastSubmission time.Time
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock overrides the controller's time source for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a wizard controller starting at step 1.
func NewController(relay Submitter, logger *logging.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Controller{
		relay:  relay,
		logger: logger,
		now:    time.Now,
		step:   StepService,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Step reports the current wizard step (1-4).
func (c *Controller) Step() int { return c.step }

// Form exposes the in-progress lead so inputs can bind to it.
func (c *Controller) Form() *schema.Lead { return &c.lead }

// FieldErrors reports the per-field errors from the last failed transition.
func (c *Controller) FieldErrors() []schema.FieldError { return c.fieldErrors }

// SubmitError reports the user-facing message from the last failed submit.
func (c *Controller) SubmitError() string { return c.submitError }

// Submitted reports whether the form reached its terminal submitted state.
func (c *Controller) Submitted() bool { return c.submitted }

// stepFields lists the JSON field names that must be valid to leave a step.
func stepFields(step int) []string {
	switch step {
	case StepService:
		return []string{"serviceType"}
	case StepProperty:
		return []string{"serviceType", "propertyType"}
	case StepContact, StepDetails:
		return []string{"serviceType", "propertyType", "firstName", "lastName", "email", "phone"}
	default:
		return nil
	}
}

// Advance validates the current step's required fields and moves forward on
// success. On failure the step does not change and the field errors are
// surfaced; collected state is never lost.
func (c *Controller) Advance() bool {
	if c.step >= StepDetails {
		return false
	}

	errs := c.lead.ValidateFields(stepFields(c.step)...)
	if len(errs) > 0 {
		c.fieldErrors = errs
		return false
	}

	c.fieldErrors = nil
	c.submitError = ""
	c.step++
	return true
}

// Retreat moves back one step without re-validation and clears error state.
// No-op at the first step.
func (c *Controller) Retreat() {
	if c.step <= StepService {
		return
	}
	c.fieldErrors = nil
	c.submitError = ""
	c.step--
}

// ready reports whether every field required for submission is non-empty.
// Presence only: the numeric phone re-check happens inside Submit.
func (c *Controller) ready() bool {
	return c.lead.ServiceType != "" && c.lead.PropertyType != "" &&
		c.lead.FirstName != "" && c.lead.LastName != "" &&
		c.lead.Email != "" && c.lead.Phone != ""
}

// Submit finalizes the lead from the last step: throttle check, sanitize,
// phone re-check, then the relay POST. On success the controller enters its
// terminal submitted state; on failure the visitor can correct and retry.
func (c *Controller) Submit(ctx context.Context) error {
	if c.step != StepDetails {
		c.submitError = "Please complete the previous steps first."
		return ErrNotReady
	}
	if !c.ready() {
		c.submitError = "Please complete the required fields."
		return ErrNotReady
	}

	now := c.now()
	if !c.lastSubmission.IsZero() && now.Sub(c.lastSubmission) < MinSubmitInterval {
		c.submitError = "Please wait a moment before submitting again."
		return ErrThrottled
	}
	c.lastSubmission = now

	c.lead.Scrub()

	if !schema.ValidPhone(c.lead.Phone) {
		c.submitError = "Please enter a valid phone number."
		return ErrInvalidPhone
	}

	if err := c.relay.Submit(ctx, &c.lead); err != nil {
		c.logger.Error("wizard: relay submission failed", "error", err)
		c.submitError = "There was an error submitting your request. Please try again."
		return errors.Join(ErrSubmitFailed, err)
	}

	c.fieldErrors = nil
	c.submitError = ""
	c.submitted = true
	c.logger.Info("wizard: lead submitted", "service", c.lead.ServiceType)
	return nil
}
