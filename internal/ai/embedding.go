// Package ai wraps the external embedding provider. The contract is
// deliberately thin: text in, vector out, empty vector when the provider
// has nothing.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/example/cabshare/internal/observability"
)

// ErrMissingAPIKey means the embedding provider credential was not
// configured.
var ErrMissingAPIKey = errors.New("ai: missing embedding api key")

const (
	defaultEmbeddingEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	defaultEmbeddingModel    = "text-embedding-004"
)

// EmbeddingClient calls the hosted embedding model.
type EmbeddingClient struct {
	Endpoint string
	Key      string
	Model    string
	Client   *http.Client
}

func NewEmbeddingClient(key string) (*EmbeddingClient, error) {
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	return &EmbeddingClient{
		Endpoint: defaultEmbeddingEndpoint,
		Key:      key,
		Model:    defaultEmbeddingModel,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Embed returns the embedding for text. A provider failure yields an empty
// vector rather than an error when the provider answered at all; ranking
// then degrades to string signals. Transport failures surface as errors so
// callers can log them.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float64, error) {
	body := map[string]any{
		"content": map[string]any{
			"parts": []map[string]string{{"text": text}},
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:embedContent?key=%s", c.Endpoint, c.Model, url.QueryEscape(c.Key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		observability.ProviderRequestsTotal.WithLabelValues("embedding", "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		Embedding struct {
			Values []float64 `json:"values"`
		} `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		observability.ProviderRequestsTotal.WithLabelValues("embedding", "error").Inc()
		return nil, err
	}
	if len(out.Embedding.Values) == 0 {
		observability.ProviderRequestsTotal.WithLabelValues("embedding", "empty").Inc()
		return []float64{}, nil
	}
	observability.ProviderRequestsTotal.WithLabelValues("embedding", "ok").Inc()
	return out.Embedding.Values, nil
}
