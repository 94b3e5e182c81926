package email

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/campushq/event-portal-api/config"
)

// Service handles sending transactional emails via SMTP
type Service struct {
	host     string
	port     int
	username string
	password string
	from     string
	appURL   string
}

// NewService creates an email service from the loaded configuration
func NewService(env *config.EnvironmentVariable) *Service {
	from := env.SMTP_FROM
	if from == "" {
		from = "noreply@campushq.events"
	}
	return &Service{
		host:     env.SMTP_HOST,
		port:     env.SMTP_PORT,
		username: env.SMTP_USERNAME,
		password: env.SMTP_PASSWORD,
		from:     from,
		appURL:   env.APP_URL,
	}
}

// IsConfigured checks if SMTP is properly configured
func (e *Service) IsConfigured() bool {
	return e.username != "" && e.password != ""
}

// SendVerificationEmail sends the account activation email to a new user
func (e *Service) SendVerificationEmail(toEmail, verifyToken, userName string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Verification token for %s: %s", toEmail, verifyToken)
		return fmt.Errorf("SMTP not configured")
	}

	verifyLink := fmt.Sprintf("%s/verify-email?token=%s", e.appURL, verifyToken)

	subject := "Verify Your Email - CampusHQ Events"
	body := e.buildEmailBody(userName,
		"Verify Your Email",
		"Thanks for signing up for CampusHQ Events. Click the button below to activate your account:",
		"Verify Email",
		verifyLink,
		"This link will expire in 30 minutes. If you didn't create an account, you can safely ignore this email.",
	)

	return e.sendEmail(toEmail, subject, body)
}

// SendPasswordResetEmail sends a password reset email to the user
func (e *Service) SendPasswordResetEmail(toEmail, resetToken, userName string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Reset token for %s: %s", toEmail, resetToken)
		return fmt.Errorf("SMTP not configured")
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", e.appURL, resetToken)

	subject := "Reset Your Password - CampusHQ Events"
	body := e.buildEmailBody(userName,
		"Reset Your Password",
		"We received a request to reset the password for your CampusHQ Events account. Click the button below to create a new password:",
		"Reset Password",
		resetLink,
		"This link will expire in 30 minutes. If you didn't request a password reset, please ignore this email.",
	)

	return e.sendEmail(toEmail, subject, body)
}

// buildEmailBody creates the HTML email body shared by all transactional mails
func (e *Service) buildEmailBody(userName, heading, intro, buttonLabel, link, warning string) string {
	if userName == "" {
		userName = "there"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s - CampusHQ Events</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: #ffffff;
            border-radius: 8px;
            padding: 40px;
            box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);
        }
        .logo {
            text-align: center;
            margin-bottom: 30px;
            padding-bottom: 20px;
            border-bottom: 2px solid #1a3c6e;
        }
        .logo h1 {
            color: #1a3c6e;
            font-size: 28px;
            margin: 0;
        }
        h2 {
            color: #1a3c6e;
            margin-top: 0;
        }
        .button {
            display: inline-block;
            background-color: #1a3c6e;
            color: #ffffff !important;
            padding: 14px 28px;
            text-decoration: none;
            border-radius: 6px;
            font-weight: 600;
            margin: 20px 0;
        }
        .link-text {
            word-break: break-all;
            color: #666;
            font-size: 12px;
            background-color: #f5f5f5;
            padding: 10px;
            border-radius: 4px;
            margin-top: 15px;
        }
        .warning {
            background-color: #fff3cd;
            border: 1px solid #ffc107;
            border-radius: 4px;
            padding: 12px;
            margin-top: 20px;
            font-size: 13px;
        }
        .footer {
            margin-top: 30px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            font-size: 12px;
            color: #666;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo">
            <h1>CampusHQ Events</h1>
        </div>

        <h2>%s</h2>

        <p>Hello %s,</p>

        <p>%s</p>

        <p style="text-align: center;">
            <a href="%s" class="button">%s</a>
        </p>

        <p>If the button doesn't work, copy and paste this link into your browser:</p>
        <div class="link-text">%s</div>

        <div class="warning">
            <strong>Important:</strong> %s
        </div>

        <div class="footer">
            <p><strong>CampusHQ Events</strong></p>
            <p>Event registration and administration</p>
        </div>
    </div>
</body>
</html>`, heading, heading, userName, intro, link, buttonLabel, link, warning)
}

// sendEmail sends an email using SMTP with TLS
func (e *Service) sendEmail(to, subject, htmlBody string) error {
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("CampusHQ Events <%s>", e.from)
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.username, e.password, e.host)

	tlsConfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         e.host,
	}

	conn, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if err := conn.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := conn.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err = w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	conn.Quit()

	log.Printf("Email sent to %s: %s", to, subject)
	return nil
}
