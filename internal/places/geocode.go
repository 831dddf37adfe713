package places

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/example/cabshare/internal/models"
	"github.com/example/cabshare/internal/observability"
)

// ErrMissingAPIKey means the geocoding provider credential was not
// configured. This is a deployment problem, distinct from a place that
// simply fails to resolve.
var ErrMissingAPIKey = errors.New("places: missing maps api key")

const defaultGeocodeEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// GeocodeClient queries the Google geocoding API with a fixed country,
// region and language bias.
type GeocodeClient struct {
	Endpoint string
	Key      string
	Client   *http.Client
}

func NewGeocodeClient(key string) (*GeocodeClient, error) {
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	return &GeocodeClient{
		Endpoint: defaultGeocodeEndpoint,
		Key:      key,
		Client:   &http.Client{Timeout: 5 * time.Second},
	}, nil
}

// Geocode resolves a raw address string. A nil result with nil error means
// the provider could not resolve the place; that is an expected outcome and
// callers fall back to the raw string. Only transport problems surface as
// errors. Multiple candidates are not disambiguated; the first result wins.
func (g *GeocodeClient) Geocode(ctx context.Context, address string) (*models.ResolvedPlace, error) {
	u, err := url.Parse(g.Endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("address", address)
	q.Set("key", g.Key)
	q.Set("components", "country:IN")
	q.Set("region", "in")
	q.Set("language", "en")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		observability.ProviderRequestsTotal.WithLabelValues("geocode", "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		Status  string `json:"status"`
		Results []struct {
			PlaceID          string `json:"place_id"`
			FormattedAddress string `json:"formatted_address"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		observability.ProviderRequestsTotal.WithLabelValues("geocode", "error").Inc()
		return nil, err
	}
	if out.Status != "OK" || len(out.Results) == 0 {
		observability.ProviderRequestsTotal.WithLabelValues("geocode", "unresolved").Inc()
		return nil, nil
	}
	observability.ProviderRequestsTotal.WithLabelValues("geocode", "ok").Inc()
	r := out.Results[0]
	return &models.ResolvedPlace{RawQuery: address, PlaceID: r.PlaceID, Formatted: r.FormattedAddress}, nil
}
