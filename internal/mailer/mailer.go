package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig holds the mail-relay connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// AlertData is the payload rendered into a Kp alert email.
type AlertData struct {
	KpIndex     float64
	Location    string
	Probability int
	Time        time.Time
}

// Mailer formats and sends application emails over SMTP.
type Mailer struct {
	cfg      SMTPConfig
	alertTpl *template.Template
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New creates a Mailer. It fails fast on incomplete relay configuration.
func New(cfg SMTPConfig) (*Mailer, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, errors.New("smtp host/port required")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp from address required")
	}
	if cfg.FromName == "" {
		cfg.FromName = "Aurora Alert System"
	}
	return &Mailer{
		cfg:      cfg,
		alertTpl: template.Must(template.New("alert").Parse(alertHTMLTemplate)),
		send:     smtp.SendMail,
	}, nil
}

const alertHTMLTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Aurora Alert: High KP Index Detected!</h2>
  <p>Current conditions are favorable for aurora viewing:</p>
  <ul>
    <li>Current Kp Index: {{printf "%.1f" .KpIndex}}</li>
    <li>Location: {{.Location}}</li>
    <li>Probability: {{.Probability}}%</li>
    <li>Time: {{.Time.Format "Jan 2, 2006 3:04 PM"}}</li>
  </ul>
  <p>Head outside and look up! The northern lights might be visible in your area.</p>
  <p>- LightsTrail</p>
</div>`

// SendKpAlert delivers the aurora alert email for the given conditions.
func (m *Mailer) SendKpAlert(to string, data AlertData) error {
	if to == "" {
		return errors.New("recipient email is empty")
	}

	var body bytes.Buffer
	if err := m.alertTpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render alert email: %w", err)
	}

	subject := fmt.Sprintf("Aurora Alert - High KP Index (%.1f) Detected!", data.KpIndex)
	return m.sendMail(to, subject, body.String(), "text/html")
}

// SendTestEmail delivers a plain confirmation used by the test-email endpoint.
func (m *Mailer) SendTestEmail(to string) error {
	if to == "" {
		return errors.New("recipient email is empty")
	}
	body := "This is a test email from LightsTrail.\r\n\r\n" +
		"Your aurora alert preferences are set up correctly. " +
		"You will be notified when the Kp index reaches your threshold."
	return m.sendMail(to, "LightsTrail Test Email", body, "text/plain")
}

// SendBookingConfirmation delivers the aurora trip booking email.
func (m *Mailer) SendBookingConfirmation(to, name, destination, date string) error {
	if to == "" {
		return errors.New("recipient email is empty")
	}
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nThank you for booking your Aurora adventure! Here are your details:\r\n\r\n"+
			"Destination: %s\r\nTravel Date: %s\r\n\r\n"+
			"Our executives will contact you in the next 3 hours.\r\n\r\n"+
			"We look forward to helping you chase the Aurora!\r\n\r\nBest Regards,\r\nLights Trail Team",
		name, destination, date,
	)
	subject := fmt.Sprintf("Aurora Booking Confirmation for %s", destination)
	return m.sendMail(to, subject, body, "text/plain")
}

func (m *Mailer) sendMail(to, subject, body, contentType string) error {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", m.cfg.FromName, m.cfg.From),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		fmt.Sprintf("Date: %s", time.Now().Format(time.RFC1123Z)),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: %s; charset=utf-8", contentType),
		"",
		"",
	}
	msg := strings.Join(headers, "\r\n") + body

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	return m.send(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}
