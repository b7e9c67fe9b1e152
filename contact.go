package brandsite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContactRequest is the payload of a contact form submission.
type ContactRequest struct {
	Name    string `json:"name" form:"name"`
	Company string `json:"company" form:"company"`
	Email   string `json:"email" form:"email"`
	Country string `json:"country" form:"country"`
	Message string `json:"message" form:"message"`
}

func (r ContactRequest) validate(minMessageLen int) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Company, validation.Required),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Country, validation.Required),
		validation.Field(&r.Message, validation.Required, validation.Length(minMessageLen, 0)),
	)
}

func (r ContactRequest) missingFields() bool {
	return r.Name == "" || r.Company == "" || r.Email == "" || r.Country == "" || r.Message == ""
}

// ContactSubmission is one accepted entry of the submission log.
type ContactSubmission struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Company    string    `json:"company"`
	Email      string    `json:"email"`
	Country    string    `json:"country"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// SubmissionLog is an append-only JSON-array file. Each append rewrites
// the whole file; the mutex makes that safe for a single process, which is
// the stated durability boundary. Not safe across processes.
type SubmissionLog struct {
	mu   sync.Mutex
	path string
}

// NewSubmissionLog creates a log stored at path.
func NewSubmissionLog(path string) *SubmissionLog {
	return &SubmissionLog{path: path}
}

// Append adds one submission to the log.
func (l *SubmissionLog) Append(sub ContactSubmission) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	subs, err := l.readAll()
	if err != nil {
		return err
	}
	subs = append(subs, sub)
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0o644)
}

// All returns every logged submission.
func (l *SubmissionLog) All() ([]ContactSubmission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readAll()
}

func (l *SubmissionLog) readAll() ([]ContactSubmission, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var subs []ContactSubmission
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("submission log corrupt: %w", err)
	}
	return subs, nil
}

// Email is an outbound notification message.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Mailer sends notification email. Sending is best-effort: a failure is
// logged, never surfaced to the submitter.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// HTTPMailer delivers through a transactional email HTTP API: one JSON
// POST with a bearer token.
type HTTPMailer struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

// NewHTTPMailer creates a mailer for the given API endpoint and key.
func NewHTTPMailer(endpoint, apiKey string) *HTTPMailer {
	return &HTTPMailer{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the message to the email API.
func (m *HTTPMailer) Send(ctx context.Context, msg Email) error {
	payload, err := json.Marshal(map[string]any{
		"from":    msg.From,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.APIKey)

	resp, err := m.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("email api returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

// handleContact validates a submission, appends it to the local log (the
// durability boundary), and relays it by email best-effort.
func (a *App) handleContact(c echo.Context) error {
	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if req.missingFields() {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "All fields are required",
			"fields": fieldErrors(req.validate(a.Config.MinMessageLen)),
		})
	}
	if err := req.validate(a.Config.MinMessageLen); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "Validation failed",
			"fields": fieldErrors(err),
		})
	}

	sub := ContactSubmission{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Company:    req.Company,
		Email:      req.Email,
		Country:    req.Country,
		Message:    req.Message,
		ReceivedAt: time.Now().UTC(),
	}
	if err := a.submissions.Append(sub); err != nil {
		c.Logger().Errorf("append contact submission: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not record submission"})
	}

	if a.mailer != nil {
		if err := a.mailer.Send(c.Request().Context(), Email{
			From:    a.Config.ContactEmailFrom,
			To:      a.Config.ContactEmailTo,
			Subject: fmt.Sprintf("New inquiry from %s (%s)", sub.Name, sub.Company),
			HTML:    contactEmailHTML(sub),
		}); err != nil {
			// Best-effort: the log write above is the durability boundary.
			c.Logger().Errorf("contact notification email: %v", err)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "id": sub.ID})
}

// fieldErrors flattens an ozzo validation error into field -> message.
func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
	}
	return out
}

func contactEmailHTML(sub ContactSubmission) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<h2>New contact inquiry</h2>")
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>", html.EscapeString(sub.Name))
	fmt.Fprintf(&b, "<p><strong>Company:</strong> %s</p>", html.EscapeString(sub.Company))
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>", html.EscapeString(sub.Email))
	fmt.Fprintf(&b, "<p><strong>Country:</strong> %s</p>", html.EscapeString(sub.Country))
	fmt.Fprintf(&b, "<p><strong>Message:</strong></p><p>%s</p>", html.EscapeString(sub.Message))
	fmt.Fprintf(&b, "<p><em>Received %s</em></p>", sub.ReceivedAt.Format(time.RFC1123))
	return b.String()
}
