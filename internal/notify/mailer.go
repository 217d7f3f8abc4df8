package notify

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer sends HTML mail over plain SMTP with AUTH PLAIN. Addr is
// host:port.
type SMTPMailer struct {
	Addr string
	User string
	Pass string
	From string
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	host := m.Addr
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n",
		m.From, to, subject, htmlBody)

	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, host)
	}
	return smtp.SendMail(m.Addr, auth, m.From, []string{to}, []byte(msg))
}
