package contact

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var emailTemplate = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>New contact form submission</h2>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><strong>Name</strong></td><td>{{.Name}}</td></tr>
    <tr><td><strong>Email</strong></td><td><a href="mailto:{{.Email}}">{{.Email}}</a></td></tr>
    {{- if .Phone}}
    <tr><td><strong>Phone</strong></td><td>{{.Phone}}</td></tr>
    {{- end}}
    <tr><td><strong>Interested in a photoshoot</strong></td><td>{{.Interested}}</td></tr>
    {{- if .PhotoshootTypes}}
    <tr><td><strong>Photoshoot types</strong></td><td>{{range $i, $t := .PhotoshootTypes}}{{if $i}}, {{end}}{{$t}}{{end}}</td></tr>
    {{- end}}
    {{- if .DonationAmount}}
    <tr><td><strong>Donation amount</strong></td><td>{{.DonationAmount}}</td></tr>
    {{- end}}
    {{- if .Country}}
    <tr><td><strong>Sender country</strong></td><td>{{.Country}}</td></tr>
    {{- end}}
  </table>
  <h3>Message</h3>
  <p style="white-space: pre-wrap;">{{.Message}}</p>
  <p style="color: #888; font-size: 12px;">Received {{.ReceivedAt}}</p>
</body>
</html>
`))

type emailData struct {
	Submission
	Country    string
	ReceivedAt string
}

func renderEmail(sub Submission, country string, now time.Time) (string, error) {
	var buf bytes.Buffer
	data := emailData{Submission: sub, Country: country, ReceivedAt: now.UTC().Format(time.RFC1123)}
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render contact email: %w", err)
	}
	return buf.String(), nil
}

func subjectFor(sub Submission) string {
	return fmt.Sprintf("New contact form message from %s", sub.Name)
}
