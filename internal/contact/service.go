package contact

import (
	"context"
	"time"

	"studio/internal/infra"
	"studio/internal/infra/geoip"
	"studio/internal/mail"
)

const successMessage = "Thank you! Your message has been sent."

// Service screens a submission and mails accepted ones to the site owner.
type Service struct {
	Filter    *Filter
	Mailer    mail.Mailer
	Geo       geoip.CountryResolver
	Recipient string
	Logger    infra.Logger
	Now       func() time.Time
}

func NewService(filter *Filter, mailer mail.Mailer, geo geoip.CountryResolver, recipient string, logger infra.Logger) *Service {
	return &Service{Filter: filter, Mailer: mailer, Geo: geo, Recipient: recipient, Logger: logger, Now: time.Now}
}

// Submit never returns an error; every outcome is a Result.
func (s *Service) Submit(ctx context.Context, sub Submission) Result {
	now := s.now()
	verdict := s.Filter.Evaluate(sub, now)
	if !verdict.Accepted {
		ev := s.Logger.Info()
		if verdict.Reason == ReasonSpam || verdict.Reason == ReasonBot {
			ev = s.Logger.Warn()
		}
		ev.Str("reason", string(verdict.Reason)).
			Str("field", verdict.Field).
			Str("ip", sub.RemoteIP).
			Msg("contact submission rejected")
		return Result{Message: verdict.Message, Reason: verdict.Reason}
	}

	sub = sub.normalized()
	body, err := renderEmail(sub, s.country(sub.RemoteIP), now)
	if err != nil {
		s.Logger.Error().Err(err).Msg("contact email render failed")
		return Result{Message: GenericFailure, Reason: ReasonDelivery}
	}
	msg := mail.Message{To: s.Recipient, ReplyTo: sub.Email, Subject: subjectFor(sub), HTML: body}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		s.Logger.Error().Err(err).Msg("contact email delivery failed")
		return Result{Message: GenericFailure, Reason: ReasonDelivery}
	}

	s.Logger.Info().Str("ip", sub.RemoteIP).Msg("contact submission delivered")
	return Result{Success: true, Message: successMessage}
}

func (s *Service) country(ip string) string {
	if s.Geo == nil || ip == "" {
		return ""
	}
	c, err := s.Geo.Country(ip)
	if err != nil {
		s.Logger.Debug().Err(err).Str("ip", ip).Msg("geoip lookup skipped")
		return ""
	}
	return c.String()
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
