package auth

import (
	"log"
	"net/smtp"
	"os"
)

// Mailer sends account emails. Implementations must never log message
// bodies; activation and reset links are credentials.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer ships mail through the server named in the environment
// (SMTP_HOST, SMTP_PORT, SMTP_FROM, SMTP_PASSWORD). With no SMTP_HOST set it
// degrades to a log line so local development works without a mail server.
type SMTPMailer struct{}

func (SMTPMailer) Send(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Printf("📧 SMTP not configured, skipping mail to %s (%s)", to, subject)
		return nil
	}

	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	password := os.Getenv("SMTP_PASSWORD")

	msg := []byte("From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	a := smtp.PlainAuth("", from, password, host)
	return smtp.SendMail(host+":"+port, a, from, []string{to}, msg)
}
