package schema

// Lead represents a cleaning-service lead submission from the booking form.
// The same struct and rules are shared by the wizard controller and the
// intake endpoint so the two surfaces cannot drift apart.
type Lead struct {
	// Personal info
	FirstName string `json:"firstName" validate:"required,min=2"`
	LastName  string `json:"lastName" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,lead_phone"`

	// Service details
	ServiceType   string `json:"serviceType" validate:"required,oneof=residential commercial move-out deep-clean recurring"`
	PropertyType  string `json:"propertyType" validate:"required,oneof=house apartment condo office other"`
	SquareFootage *int   `json:"squareFootage,omitempty" validate:"omitempty,gt=0"`

	// Preferences
	PreferredDate string `json:"preferredDate,omitempty" validate:"omitempty,future_date"`
	Frequency     string `json:"frequency,omitempty"`

	// Additional details
	Message       string `json:"message,omitempty" validate:"omitempty,max=500"`
	HowDidYouHear string `json:"howDidYouHear,omitempty"`

	// Submission metadata
	SubmittedAt string `json:"submittedAt,omitempty"`
	UserAgent   string `json:"userAgent,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"`
}

// Option is a selectable value with its user-facing label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ServiceTypes is the fixed set of offered cleaning services.
var ServiceTypes = []Option{
	{Value: "residential", Label: "Residential Cleaning"},
	{Value: "commercial", Label: "Commercial Cleaning"},
	{Value: "move-out", Label: "Move-Out Cleaning"},
	{Value: "deep-clean", Label: "Deep Cleaning"},
	{Value: "recurring", Label: "Recurring Service"},
}

// PropertyTypes is the fixed set of property kinds.
var PropertyTypes = []Option{
	{Value: "house", Label: "House"},
	{Value: "apartment", Label: "Apartment"},
	{Value: "condo", Label: "Condo"},
	{Value: "office", Label: "Office"},
	{Value: "other", Label: "Other"},
}

// FrequencyOptions are UI suggestions only; frequency remains free-form.
var FrequencyOptions = []Option{
	{Value: "one-time", Label: "One Time"},
	{Value: "weekly", Label: "Weekly"},
	{Value: "bi-weekly", Label: "Bi-Weekly"},
	{Value: "monthly", Label: "Monthly"},
}

// ReferralSources are UI suggestions only; howDidYouHear remains free-form.
var ReferralSources = []Option{
	{Value: "google", Label: "Google Search"},
	{Value: "facebook", Label: "Facebook"},
	{Value: "referral", Label: "Friend/Family Referral"},
	{Value: "nextdoor", Label: "Nextdoor"},
	{Value: "other", Label: "Other"},
}
