package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
)

type EmailConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// EmailService шлёт письма напрямую через SMTP. Письма вспомогательные:
// ошибка отправки логируется вызывающим и не откатывает бизнес-операцию.
type EmailService struct {
	cfg EmailConfig
}

func NewEmailService(cfg EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled сообщает, настроен ли SMTP. Без конфигурации сервис работает как
// no-op, чтобы локальная разработка не требовала почтового сервера.
func (s *EmailService) Enabled() bool {
	return s.cfg.Host != "" && s.cfg.From != ""
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	if !s.Enabled() {
		return nil
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	tlsconfig := &tls.Config{
		ServerName: s.cfg.Host,
	}

	var client *smtp.Client
	if s.cfg.Port == 465 {
		// Прямое TLS-соединение (обычно порт 465)
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("failed to open TLS connection: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.Host)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
	} else {
		// STARTTLS (обычно порт 587)
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("failed to dial SMTP server: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("STARTTLS command failed: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("RCPT TO failed: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close DATA writer: %w", err)
	}

	return nil
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<h2>Welcome to Medical Camp Management!</h2>
<p>Hi {{.Name}},</p>
<p>Your account is ready. Browse the available camps and join the ones that suit you.</p>
`))

var receiptTemplate = template.Must(template.New("receipt").Parse(`
<h2>Payment received</h2>
<p>Your registration for <strong>{{.CampName}}</strong> is confirmed.</p>
<p>Amount: {{.Amount}}<br>Transaction ID: {{.TransactionID}}</p>
`))

func (s *EmailService) SendWelcomeEmail(userEmail string, name string) error {
	var body bytes.Buffer
	data := struct{ Name string }{Name: name}
	if err := welcomeTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render welcome email: %w", err)
	}
	return s.SendEmail([]string{userEmail}, "Welcome to Medical Camp Management", body.String())
}

// SendPaymentReceipt реализует ReceiptSender.
func (s *EmailService) SendPaymentReceipt(to string, campName string, amount float64, transactionID string) error {
	var body bytes.Buffer
	data := struct {
		CampName      string
		Amount        string
		TransactionID string
	}{
		CampName:      campName,
		Amount:        fmt.Sprintf("%.2f", amount),
		TransactionID: transactionID,
	}
	if err := receiptTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render receipt email: %w", err)
	}
	return s.SendEmail([]string{to}, "Payment receipt: "+campName, body.String())
}
