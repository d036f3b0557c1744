package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sparklesav/sparkle-clean/internal/schema"
	"github.com/sparklesav/sparkle-clean/pkg/logging"
)

// Service fans a new lead out to the operator notification channels: an
// email-shaped message, an SMS-shaped message, and a structured audit log
// line. With the default log senders nothing leaves the process.
type Service struct {
	email           EmailSender
	sms             SMSSender
	emailRecipients []string
	smsRecipients   []string
	logger          *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, sms SMSSender, emailRecipients, smsRecipients []string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:           email,
		sms:             sms,
		emailRecipients: emailRecipients,
		smsRecipients:   smsRecipients,
		logger:          logger,
	}
}

// NotifyNewLead sends notifications for an accepted lead submission.
// clientIP is the intake client key, included in the audit trail.
func (s *Service) NotifyNewLead(ctx context.Context, lead *schema.Lead, clientIP string) error {
	customer := lead.FirstName + " " + lead.LastName

	var errs []error

	if s.email != nil && len(s.emailRecipients) > 0 {
		subject := fmt.Sprintf("New Cleaning Lead: %s", customer)
		body := leadEmailBody(lead, customer, clientIP)
		for _, recipient := range s.emailRecipients {
			msg := EmailMessage{
				To:      recipient,
				Subject: subject,
				Body:    body,
			}
			if err := s.email.Send(ctx, msg); err != nil {
				s.logger.Error("notify: failed to send lead email", "error", err, "to", recipient)
				errs = append(errs, err)
			}
		}
	}

	if s.sms != nil && len(s.smsRecipients) > 0 {
		smsBody := fmt.Sprintf("New lead: %s - %s - %s cleaning", customer, lead.Phone, lead.ServiceType)
		for _, recipient := range s.smsRecipients {
			if err := s.sms.SendSMS(ctx, recipient, smsBody); err != nil {
				s.logger.Error("notify: failed to send lead SMS", "error", err, "to", recipient)
				errs = append(errs, err)
			}
		}
	}

	s.logger.Info("new lead received",
		"customer", customer,
		"service", lead.ServiceType,
		"submitted_at", lead.SubmittedAt,
		"ip", clientIP,
	)

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d notification(s) failed", len(errs))
	}
	return nil
}

func leadEmailBody(lead *schema.Lead, customer, clientIP string) string {
	footage := "Not specified"
	if lead.SquareFootage != nil {
		footage = strconv.Itoa(*lead.SquareFootage)
	}

	return fmt.Sprintf(`New Cleaning Lead Received!

Customer Information:
- Name: %s
- Email: %s
- Phone: %s

Service Details:
- Service Type: %s
- Property Type: %s
- Square Footage: %s
- Frequency: %s

Additional Information:
- Preferred Date: %s
- How They Heard: %s
- Message: %s

Submission Details:
- Submitted At: %s
- User Agent: %s
- Client IP: %s

Please respond to this lead within 24 hours!`,
		customer, lead.Email, lead.Phone,
		lead.ServiceType, lead.PropertyType, footage, orNotSpecified(lead.Frequency),
		orNotSpecified(lead.PreferredDate), orNotSpecified(lead.HowDidYouHear), orMessage(lead.Message),
		lead.SubmittedAt, orNotSpecified(lead.UserAgent), clientIP)
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

func orMessage(s string) string {
	if s == "" {
		return "No additional message"
	}
	return s
}
