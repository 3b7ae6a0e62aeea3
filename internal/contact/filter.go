package contact

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"studio/internal/money"
)

const (
	minNameLen    = 2
	maxNameLen    = 100
	minMessageLen = 10
	maxMessageLen = 5000
	maxDonation   = 10000
	minFillTime   = 3 * time.Second

	// GenericFailure is shown for spam and delivery failures so the sender
	// cannot tell which one happened.
	GenericFailure = "Failed to send message. Please try again later."
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

var disposableDomain = regexp.MustCompile(`(?i)(mailinator|guerrillamail|10minutemail|tempmail|temp-mail|throwaway|yopmail|trashmail|fakeinbox|sharklasers|getnada|dispostable|maildrop|mailnesia|spamgourmet)`)

var digitRun = regexp.MustCompile(`[0-9]{6,}`)

var spamKeywords = []string{
	"viagra", "cialis", "casino", "crypto", "bitcoin", "forex", "payday loan",
	"seo services", "backlinks", "porn", "lottery", "click here", "buy now",
	"free money", "make money", "work from home", "weight loss", "investment opportunity",
	"nigerian prince", "wire transfer",
}

// Filter runs the intake pipeline. Limiter may be nil to skip rate limiting.
type Filter struct {
	Limiter *Limiter
}

// NewFilter returns a filter enforcing the default per-email limit.
func NewFilter() *Filter {
	return &Filter{Limiter: NewLimiter(DefaultLimit, DefaultWindow)}
}

// Evaluate runs every check in order and stops at the first failure. An
// accepted verdict is recorded against the sender's email.
func (f *Filter) Evaluate(sub Submission, now time.Time) Verdict {
	sub = sub.normalized()

	if sub.Honeypot != "" {
		return reject(ReasonBot, "", GenericFailure)
	}
	if v, ok := checkRequired(sub); !ok {
		return v
	}
	if v, ok := checkName(sub.Name); !ok {
		return v
	}
	if v, ok := checkEmail(sub.Email); !ok {
		return v
	}
	if n := utf8.RuneCountInString(sub.Message); n < minMessageLen || n > maxMessageLen {
		return reject(ReasonValidation, "message", "Message must be between 10 and 5000 characters")
	}
	if v, ok := checkDonation(sub.DonationAmount); !ok {
		return v
	}
	if isGibberish(sub.Message) {
		return reject(ReasonValidation, "message", "Your message looks like gibberish. Please write a real message.")
	}
	if countLongWords(sub.Message) < 2 {
		return reject(ReasonValidation, "message", "Please write a few more words about what you are looking for")
	}
	if containsSpam(sub.Name + " " + sub.Email + " " + sub.Message) {
		return reject(ReasonSpam, "", GenericFailure)
	}

	key := strings.ToLower(sub.Email)
	if f.Limiter != nil && !f.Limiter.Allow(key, now) {
		return reject(ReasonRateLimited, "", "Too many messages from this email. Please try again in an hour.")
	}
	if sub.FormStartedAt > 0 {
		started := time.UnixMilli(sub.FormStartedAt)
		if now.Sub(started) < minFillTime {
			if f.Limiter != nil {
				f.Limiter.Release(key, now)
			}
			return reject(ReasonBot, "", "Please take a moment to review your message before sending.")
		}
	}

	return Verdict{Accepted: true}
}

func checkRequired(sub Submission) (Verdict, bool) {
	switch {
	case sub.Name == "":
		return reject(ReasonValidation, "name", "Name is required"), false
	case sub.Email == "":
		return reject(ReasonValidation, "email", "Email is required"), false
	case sub.Message == "":
		return reject(ReasonValidation, "message", "Message is required"), false
	case sub.Interested != "yes" && sub.Interested != "no":
		return reject(ReasonValidation, "interested", "Please tell us whether you are interested in a photoshoot"), false
	case sub.Interested == "yes" && len(sub.PhotoshootTypes) == 0:
		return reject(ReasonValidation, "photoshootTypes", "Please select at least one photoshoot type"), false
	}
	return Verdict{}, true
}

func checkName(name string) (Verdict, bool) {
	if n := utf8.RuneCountInString(name); n < minNameLen || n > maxNameLen {
		return reject(ReasonValidation, "name", "Name must be between 2 and 100 characters"), false
	}
	if emailPattern.MatchString(name) {
		return reject(ReasonValidation, "name", "Please enter your name, not an email address"), false
	}
	return Verdict{}, true
}

func checkEmail(email string) (Verdict, bool) {
	invalid := reject(ReasonValidation, "email", "Please enter a valid email address")
	if !emailPattern.MatchString(email) {
		return invalid, false
	}
	at := strings.LastIndexByte(email, '@')
	local, domain := email[:at], email[at+1:]
	if disposableDomain.MatchString(domain) {
		return reject(ReasonValidation, "email", "Please use a permanent email address"), false
	}
	if len(local) < 2 || len(domain) < 4 {
		return invalid, false
	}
	if digitRun.MatchString(local) || longestRun(strings.ToLower(email)) >= 4 {
		return invalid, false
	}
	return Verdict{}, true
}

func checkDonation(raw string) (Verdict, bool) {
	if raw == "" {
		return Verdict{}, true
	}
	amount, err := money.ParseAmount(raw)
	if err != nil {
		return reject(ReasonValidation, "donationAmount", "Please enter a valid donation amount"), false
	}
	if amount > maxDonation {
		return reject(ReasonValidation, "donationAmount", "Donation amount seems too high. Please contact us directly for large donations."), false
	}
	if amount <= 0 {
		return reject(ReasonValidation, "donationAmount", "Donation amount must be greater than zero"), false
	}
	return Verdict{}, true
}

func containsSpam(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range spamKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
