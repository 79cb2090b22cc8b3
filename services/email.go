package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gatherhq/gather-api/utils"
)

// Mailer is the outbound notification surface. Sends are dispatched in the
// background; the returned channel carries the delivery result and may be
// ignored, which is what the core flows do.
type Mailer interface {
	SendInvitation(to, eventName string) <-chan error
	SendReminder(to, eventName, itemList string) <-chan error
}

// MailGate is checked before any send fan-out is attempted.
type MailGate interface {
	CheckSendMail() error
}

// EmailService delivers mail through the Resend HTTP API.
type EmailService struct {
	apiKey      string
	fromEmail   string
	frontendURL string
	client      *http.Client
}

func NewEmailService(apiKey, fromEmail, frontendURL string) *EmailService {
	return &EmailService{
		apiKey:      apiKey,
		fromEmail:   fromEmail,
		frontendURL: frontendURL,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func NewEmailServiceFromEnv() *EmailService {
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	fromEmail := os.Getenv("FROM_EMAIL")
	if fromEmail == "" {
		fromEmail = "noreply@gatherapp.dev"
	}
	return NewEmailService(os.Getenv("RESEND_API_KEY"), fromEmail, frontendURL)
}

func (s *EmailService) SendInvitation(to, eventName string) <-chan error {
	signupURL := fmt.Sprintf("%s/signup?invited=%s", s.frontendURL, to)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2937;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>You're invited! 🎉</h2>
        <p>You have been invited to join the event <strong>%s</strong> on Gather.</p>
        <p>Create an account to see the details and claim items from the checklist.</p>
        <a href="%s" style="display: inline-block; background: #667eea; color: white; padding: 14px 28px; text-decoration: none; border-radius: 8px;">Join Gather</a>
    </div>
</body>
</html>
	`, eventName, signupURL)

	subject := fmt.Sprintf("You're invited to %s", eventName)
	return s.dispatch(to, func() error {
		return s.send(to, subject, htmlBody)
	})
}

func (s *EmailService) SendReminder(to, eventName, itemList string) <-chan error {
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2937;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>⏰ Reminder for %s</h2>
        <p>Nobody has claimed these items yet:</p>
        <p style="background: #f8f9fa; padding: 16px; border-radius: 8px;"><strong>%s</strong></p>
        <p>Open the event and pick what you can bring.</p>
    </div>
</body>
</html>
	`, eventName, itemList)

	subject := fmt.Sprintf("Still needed for %s", eventName)
	return s.dispatch(to, func() error {
		return s.send(to, subject, htmlBody)
	})
}

// dispatch runs a send in the background. The caller may wait on the result
// but state changes never do.
func (s *EmailService) dispatch(to string, fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := fn()
		if err != nil {
			log.Printf("⚠️ Email to %s failed: %v", utils.MaskEmail(to), err)
		}
		done <- err
	}()
	return done
}

func (s *EmailService) send(to, subject, htmlBody string) error {
	if s.apiKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	payload := map[string]interface{}{
		"from":    fmt.Sprintf("Gather <%s>", s.fromEmail),
		"to":      []string{to},
		"subject": subject,
		"html":    htmlBody,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send email: status %d", resp.StatusCode)
	}
	return nil
}
