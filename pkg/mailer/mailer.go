package mailer

import (
	"fmt"
	"log"
	"net/url"

	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	BaseURL  string
}

type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
}

func New(cfg Config) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// SendVerification mails the link that confirms a new account.
func (m *Mailer) SendVerification(to, token string) error {
	msg := m.verificationMessage(to, token)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	log.Printf("[Mailer] verification mail sent to %s", to)
	return nil
}

func (m *Mailer) verificationMessage(to, token string) *gomail.Message {
	link := VerificationLink(m.cfg.BaseURL, token)

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.From, m.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Confirma tu cuenta de BitBoletos")
	msg.SetBody("text/plain", "Confirma tu correo para empezar a usar BitBoletos:\n\n"+link+"\n")
	msg.AddAlternative("text/html", fmt.Sprintf(
		`<p>Confirma tu correo para empezar a usar BitBoletos.</p><p><a href="%s">Confirmar cuenta</a></p>`, link))
	return msg
}

func VerificationLink(baseURL, token string) string {
	return baseURL + "/api/v1/auth/verify?token=" + url.QueryEscape(token)
}
