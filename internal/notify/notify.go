// Package notify sends best-effort service-desk notifications over SMTP.
package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"bank-ledger/internal/config"
	"bank-ledger/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// Enabled reports whether SMTP delivery is configured.
func (s *Sender) Enabled() bool {
	return s.cfg.SMTPHost != "" && s.cfg.ServiceDesk != ""
}

// SendComplaintNotice forwards a freshly registered complaint to the
// service desk. Delivery failures are the caller's to log; the complaint
// itself is already persisted.
func (s *Sender) SendComplaintNotice(kind models.ComplaintKind, details string, registeredAt time.Time) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.ServiceDesk}
	e.Subject = fmt.Sprintf("New %s complaint registered", kind)

	body := fmt.Sprintf(
		"A new complaint was registered on %s.\n\n"+
			"Type: %s\n"+
			"Details:\n%s\n",
		registeredAt.Format("2006-01-02 15:04:05"), kind, details,
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("failed to send complaint notice: %w", err)
	}

	s.logger.Infof("Complaint notice sent to %s", s.cfg.ServiceDesk)
	return nil
}
