package email

import (
	"fmt"
	"net/smtp"

	"github.com/Dan9191/loan-approval/internal/config"
	"github.com/Dan9191/loan-approval/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending decision letters via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendDecision mails the outcome of a scored application to its contact address.
// Failures are returned, not logged; the caller owns the log line.
func (s *Sender) SendDecision(app models.Application, decision models.Decision) error {
	if app.ContactEmail == "" {
		return fmt.Errorf("application has no contact email")
	}

	e := buildDecisionEmail(s.cfg.SenderEmail, app, decision)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := s.send(e, addr, auth); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.WithField("applicant_id", app.ApplicantID).Infof("Email sent: %s", e.Subject)
	return nil
}

func buildDecisionEmail(from string, app models.Application, decision models.Decision) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{app.ContactEmail}
	if decision.Approved {
		e.Subject = "Loan Application Approved"
	} else {
		e.Subject = "Loan Application Decision"
	}

	name := app.FullName
	if name == "" {
		name = "Applicant"
	}
	body := fmt.Sprintf("Dear %s,\n\n", name)
	if decision.Approved {
		body += "We are pleased to inform you that your loan application has been approved.\n"
	} else {
		body += "After reviewing your application we are unable to approve your loan at this time.\n"
	}
	body += fmt.Sprintf(
		"Confidence: %.1f%%\n"+
			"Risk level: %s\n"+
			"Model version: %s\n",
		decision.Confidence*100, decision.RiskLevel, decision.ModelVersion,
	)
	body += "\nThis decision was produced by an automated demonstration model.\n"
	body += "\nBest regards,\nLoan Approval Service"
	e.Text = []byte(body)
	return e
}
