package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/example/cabshare/internal/observability"
)

// ErrMissingAPIKey means the directions provider credential was not
// configured.
var ErrMissingAPIKey = errors.New("routes: missing maps api key")

const defaultDirectionsEndpoint = "https://maps.googleapis.com/maps/api/directions/json"

// Leg is the first leg of the provider's best route. TrafficSeconds is 0
// when the provider returned no live-traffic estimate.
type Leg struct {
	DistanceMeters  int
	DurationSeconds int
	TrafficSeconds  int
	StartAddress    string
	EndAddress      string
}

// DirectionsClient queries the Google directions API for a single driving
// route: metric units, departure now, no alternatives.
type DirectionsClient struct {
	Endpoint string
	Key      string
	Client   *http.Client
}

func NewDirectionsClient(key string) (*DirectionsClient, error) {
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	return &DirectionsClient{
		Endpoint: defaultDirectionsEndpoint,
		Key:      key,
		Client:   &http.Client{Timeout: 5 * time.Second},
	}, nil
}

// Route returns nil with nil error when the provider found no route; only
// transport problems surface as errors.
func (c *DirectionsClient) Route(ctx context.Context, origin, destination string) (*Leg, error) {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("key", c.Key)
	q.Set("alternatives", "false")
	q.Set("departure_time", "now")
	q.Set("mode", "driving")
	q.Set("units", "metric")
	q.Set("region", "in")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		observability.ProviderRequestsTotal.WithLabelValues("directions", "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		Status string `json:"status"`
		Routes []struct {
			Legs []struct {
				Distance struct {
					Value int `json:"value"`
				} `json:"distance"`
				Duration struct {
					Value int `json:"value"`
				} `json:"duration"`
				DurationInTraffic *struct {
					Value int `json:"value"`
				} `json:"duration_in_traffic"`
				StartAddress string `json:"start_address"`
				EndAddress   string `json:"end_address"`
			} `json:"legs"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		observability.ProviderRequestsTotal.WithLabelValues("directions", "error").Inc()
		return nil, err
	}
	if out.Status != "OK" || len(out.Routes) == 0 || len(out.Routes[0].Legs) == 0 {
		observability.ProviderRequestsTotal.WithLabelValues("directions", "no_route").Inc()
		return nil, nil
	}
	observability.ProviderRequestsTotal.WithLabelValues("directions", "ok").Inc()

	leg := out.Routes[0].Legs[0]
	info := &Leg{
		DistanceMeters:  leg.Distance.Value,
		DurationSeconds: leg.Duration.Value,
		StartAddress:    leg.StartAddress,
		EndAddress:      leg.EndAddress,
	}
	if leg.DurationInTraffic != nil {
		info.TrafficSeconds = leg.DurationInTraffic.Value
	}
	return info, nil
}
