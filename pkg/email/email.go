package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"go-talentmatch-backend/config"
	"go-talentmatch-backend/internal/domain"
)

// EmailService sends transactional mail over SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
		send:      smtp.SendMail,
	}
}

var invitationTemplate = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Interview Invitation</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1E3A5F; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .label { font-weight: bold; color: #555; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Interview Invitation</h1>
        </div>
        <div class="content">
            <p>Hi {{.CandidateName}},</p>
            <p>You have been invited to interview for <strong>{{.JobTitle}}</strong> at {{.Company}}.</p>
            <p><span class="label">When:</span> {{.When}} (UTC)</p>
            <p><span class="label">Duration:</span> {{.Duration}} minutes</p>
            <p><span class="label">Format:</span> {{.Format}}</p>
        </div>
        <div class="footer">
            <p>This email was sent by TalentMatch.</p>
        </div>
    </div>
</body>
</html>`))

var interviewFormats = map[domain.InterviewType]string{
	domain.InterviewTypeVideo:    "Video call",
	domain.InterviewTypePhone:    "Phone call",
	domain.InterviewTypeInPerson: "In person",
}

// SendInterviewInvitation mails the candidate the interview details.
func (s *EmailService) SendInterviewInvitation(ctx context.Context, inv domain.InterviewInvitation) error {
	if !s.IsConfigured() {
		return fmt.Errorf("smtp is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	err := invitationTemplate.Execute(&body, map[string]any{
		"CandidateName": inv.CandidateName,
		"JobTitle":      inv.JobTitle,
		"Company":       inv.Company,
		"When":          inv.Interview.ScheduledTime.UTC().Format(time.RFC1123),
		"Duration":      inv.Interview.DurationMinutes,
		"Format":        interviewFormats[inv.Interview.Type],
	})
	if err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := buildMessage(s.fromEmail, inv.CandidateEmail, fmt.Sprintf("Interview invitation: %s", inv.JobTitle), body.String())

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, auth, s.fromEmail, []string{inv.CandidateEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, html string) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		from, to, subject, html,
	))
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
