package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"os"
	"strconv"

	"github.com/joy095/roombooking/config"
	"github.com/joy095/roombooking/logger"
	gomail "gopkg.in/gomail.v2"
)

func init() {
	config.LoadEnv()
}

const bookingStatusTemplate = `<html>
<body style="font-family: sans-serif;">
  <p>Hi {{.Username}},</p>
  <p>Your booking for <b>{{.RoomName}}</b> ({{.SlotName}}) on <b>{{.Date}}</b> has been <b>{{.Action}}</b>.</p>
  {{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
  <p>Room Booking Service</p>
</body>
</html>`

var statusTmpl = template.Must(template.New("booking_status").Parse(bookingStatusTemplate))

// BookingStatusData carries the fields rendered into the notification email.
type BookingStatusData struct {
	Username string
	RoomName string
	SlotName string
	Date     string
	Action   string
	Reason   string
}

// Enabled reports whether SMTP delivery is configured. Notifications are
// best effort and skipped entirely when it is not.
func Enabled() bool {
	return os.Getenv("SMTP_HOST") != "" && os.Getenv("FROM_EMAIL") != ""
}

// SendBookingStatusEmail notifies a requester that a booking was approved or
// rejected.
func SendBookingStatusEmail(toEmail string, data BookingStatusData) error {
	subject := fmt.Sprintf("Your room booking was %s", data.Action)
	return sendEmail(toEmail, subject, data)
}

func sendEmail(toEmail, subject string, data BookingStatusData) error {
	mailer := gomail.NewMessage()
	mailer.SetHeader("From", os.Getenv("FROM_EMAIL"))
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)

	var body bytes.Buffer
	if err := statusTmpl.Execute(&body, data); err != nil {
		logger.ErrorLogger.Errorf("Failed to execute email template: %v", err)
		return fmt.Errorf("failed to execute email template: %w", err)
	}
	mailer.SetBody("text/html", body.String())

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid SMTP port: %v", err)
		return fmt.Errorf("invalid SMTP port: %w", err)
	}

	smtpHost := os.Getenv("SMTP_HOST")
	dialer := gomail.NewDialer(smtpHost, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	dialer.TLSConfig = &tls.Config{ServerName: smtpHost}

	if err := dialer.DialAndSend(mailer); err != nil {
		logger.ErrorLogger.Errorf("Failed to send email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.InfoLogger.Infof("Booking status email sent to %s", toEmail)
	return nil
}
