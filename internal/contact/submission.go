// Package contact screens contact-form submissions and forwards the
// legitimate ones by email.
package contact

import "strings"

// Submission is one contact-form post.
type Submission struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Message         string   `json:"message"`
	Interested      string   `json:"interested"`
	PhotoshootTypes []string `json:"photoshootTypes"`
	DonationAmount  string   `json:"donationAmount"`
	Honeypot        string   `json:"website"`
	// FormStartedAt is when the form was rendered, unix milliseconds. Zero
	// means the client did not report it.
	FormStartedAt int64 `json:"formStartedAt"`

	RemoteIP string `json:"-"`
}

func (s Submission) normalized() Submission {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Message = strings.TrimSpace(s.Message)
	s.Interested = strings.ToLower(strings.TrimSpace(s.Interested))
	s.DonationAmount = strings.TrimSpace(s.DonationAmount)
	types := make([]string, 0, len(s.PhotoshootTypes))
	for _, t := range s.PhotoshootTypes {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	s.PhotoshootTypes = types
	return s
}

// Reason classifies a rejection. The empty Reason means accepted.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonBot         Reason = "bot"
	ReasonValidation  Reason = "validation"
	ReasonSpam        Reason = "spam"
	ReasonRateLimited Reason = "rate_limited"
	ReasonDelivery    Reason = "delivery"
)

// Verdict is the outcome of running a submission through the filter.
type Verdict struct {
	Accepted bool
	Reason   Reason
	// Field names the offending input for validation rejections.
	Field   string
	Message string
}

func reject(reason Reason, field, msg string) Verdict {
	return Verdict{Reason: reason, Field: field, Message: msg}
}

// Result is what callers of Service.Submit get back.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Reason  Reason `json:"-"`
}
