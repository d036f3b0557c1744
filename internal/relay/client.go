// Package relay posts finalized lead submissions to the third-party form
// relay that handles actual email delivery. The relay is treated as an
// opaque HTTP sink: only the response status is inspected.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sparklesav/sparkle-clean/internal/schema"
	"github.com/sparklesav/sparkle-clean/pkg/logging"
)

// DefaultTimeout bounds the outbound relay call so a hung relay cannot leave
// the form stuck in its submitting state.
const DefaultTimeout = 15 * time.Second

// ErrRelayRejected is returned when the relay answers with a non-2xx status.
var ErrRelayRejected = errors.New("relay: submission rejected")

// Client submits leads to the form relay endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *logging.Logger
}

// New creates a relay client for baseURL/recipient, e.g.
// https://formsubmit.co/owner@example.com.
func New(baseURL, recipient string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + "/" + recipient,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}
}

// Submit posts the lead as form-encoded fields. Delivery metadata (subject
// line, table template, captcha opt-out) rides along with the field set.
func (c *Client) Submit(ctx context.Context, lead *schema.Lead) error {
	form := url.Values{}
	form.Set("serviceType", lead.ServiceType)
	form.Set("propertyType", lead.PropertyType)
	if lead.SquareFootage != nil {
		form.Set("squareFootage", strconv.Itoa(*lead.SquareFootage))
	} else {
		form.Set("squareFootage", "")
	}
	form.Set("frequency", lead.Frequency)
	form.Set("firstName", lead.FirstName)
	form.Set("lastName", lead.LastName)
	form.Set("email", lead.Email)
	form.Set("phone", lead.Phone)
	form.Set("preferredDate", lead.PreferredDate)
	form.Set("howDidYouHear", lead.HowDidYouHear)
	form.Set("message", lead.Message)
	form.Set("_subject", fmt.Sprintf("New Cleaning Lead: %s %s", lead.FirstName, lead.LastName))
	form.Set("_template", "table")
	form.Set("_captcha", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("relay: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("relay: submission failed", "error", err)
		return fmt.Errorf("relay: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("relay: unexpected status", "status", resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrRelayRejected, resp.StatusCode)
	}

	c.logger.Info("relay: lead submitted", "status", resp.StatusCode)
	return nil
}
