package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Mailer posts messages to the mail relay. Rendering happens on the relay
// side; this client only carries the template key and the order summary.
type Mailer struct {
	URL    string
	Client *http.Client
}

func NewMailer(url string) *Mailer {
	return &Mailer{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *Mailer) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("mail relay: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mail relay: unexpected status %d", resp.StatusCode)
	}
	return nil
}
