package notify

import (
	"errors"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// Mailer sends price alert emails over SMTP with STARTTLS.
type Mailer struct {
	host     string
	port     string
	from     string
	password string
	logger   *zap.Logger
}

func NewMailer(host, port, from, password string, logger *zap.Logger) *Mailer {
	return &Mailer{host: host, port: port, from: from, password: password, logger: logger}
}

// Notify emails the user that the tracked product dropped to or below the
// target price. Returns an error on any delivery failure; the caller treats
// that as non-fatal.
func (m *Mailer) Notify(userEmail, productTitle string, currentPrice, targetPrice float64, productURL string) error {
	if m.from == "" || m.password == "" {
		return errors.New("email credentials not configured")
	}

	subject := fmt.Sprintf("Price Alert: %s is now $%.2f!", productTitle, currentPrice)
	body := fmt.Sprintf(
		"Good news! The price for %s has dropped below your target price.\r\n\r\n"+
			"Current Price: $%.2f\r\n"+
			"Your Target Price: $%.2f\r\n\r\n"+
			"You can view the product here:\r\n%s\r\n\r\n"+
			"Happy shopping!\r\n\r\n"+
			"Best regards,\r\nYour Price Tracker\r\n",
		productTitle, currentPrice, targetPrice, productURL)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.from, userEmail, subject, body)

	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.from, []string{userEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}

	m.logger.Info("price alert email sent", zap.String("to", userEmail))
	return nil
}
