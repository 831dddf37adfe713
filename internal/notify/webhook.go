package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/example/cabshare/internal/models"
)

// WebhookNotifier posts each new ride as JSON to a configured endpoint,
// typically a community chat bridge.
type WebhookNotifier struct {
	Endpoint string
	Client   *http.Client
}

func NewWebhookNotifier(endpoint string) *WebhookNotifier {
	return &WebhookNotifier{Endpoint: endpoint, Client: &http.Client{Timeout: 3 * time.Second}}
}

func (n *WebhookNotifier) NotifyRide(r models.Ride) error {
	payload := map[string]any{"event": "ride_posted", "ride": r}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := n.Client.Post(n.Endpoint, "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned %d", resp.StatusCode)
	}
	return nil
}
