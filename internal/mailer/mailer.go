package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New creates a Mailer from SMTP settings.
func New(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers one HTML message.
func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

// SendOTP delivers a registration verification code.
func (m *Mailer) SendOTP(to, otp string) error {
	body := fmt.Sprintf(`<p>Your verification code is <b>%s</b>.</p><p>It expires in 10 minutes.</p>`, otp)
	return m.Send(to, "Your verification code", body)
}

// SendResetLink delivers a password reset token.
func (m *Mailer) SendResetLink(to, token string) error {
	body := fmt.Sprintf(`<p>Use this token to reset your password: <b>%s</b></p><p>It expires in one hour.</p>`, token)
	return m.Send(to, "Password reset", body)
}

// SendSupportNotice forwards a stored support message to the support
// inbox.
func (m *Mailer) SendSupportNotice(to, category, name, email, message string) error {
	body := fmt.Sprintf(
		`<p>New %s message from <b>%s</b> (%s):</p><blockquote>%s</blockquote>`,
		category, name, email, message)
	return m.Send(to, fmt.Sprintf("[%s] %s", category, name), body)
}

// SendTestInvite shares a test ID and password with a student.
func (m *Mailer) SendTestInvite(to, subject, testID, password string) error {
	body := fmt.Sprintf(
		`<p>You have been invited to the test <b>%s</b>.</p><p>Test ID: <b>%s</b><br>Password: <b>%s</b></p>`,
		subject, testID, password)
	return m.Send(to, "Test invitation: "+subject, body)
}
