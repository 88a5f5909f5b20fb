package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	zoomLong  = 18
	zoomShort = 16

	shortFallback = "Location"
)

// nominatimResponse is the subset of the reverse-geocoding payload the
// resolver reads.
type nominatimResponse struct {
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	Locality      string `json:"locality"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	State         string `json:"state"`
	Region        string `json:"region"`
	Country       string `json:"country"`
}

// Resolver turns coordinates into human-readable addresses via Nominatim.
// Resolve never fails: any network or parse problem degrades to a
// deterministic fallback string.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

func NewResolver(baseURL string, timeout time.Duration, logger *zap.SugaredLogger) *Resolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Resolve returns the long or short form address for the coordinates. The
// long-form fallback is the coordinate pair at 6 decimals, the short-form
// fallback is the literal "Location".
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64, short bool) string {
	if short {
		return r.resolveShort(ctx, lat, lon)
	}
	return r.resolveLong(ctx, lat, lon)
}

func (r *Resolver) resolveLong(ctx context.Context, lat, lon float64) string {
	fallback := fmt.Sprintf("%.6f, %.6f", lat, lon)

	resp, err := r.fetch(ctx, lat, lon, zoomLong)
	if err != nil {
		if r.logger != nil {
			r.logger.Errorf("geocode: reverse lookup failed for %.6f,%.6f: %v", lat, lon, err)
		}
		return fallback
	}

	if resp.DisplayName == "" {
		return "Address not found"
	}

	a := resp.Address
	var parts []string

	if a.HouseNumber != "" && a.Road != "" {
		parts = append(parts, a.HouseNumber+" "+a.Road)
	} else if a.Road != "" {
		parts = append(parts, a.Road)
	}
	if p := firstNonEmpty(a.Neighbourhood, a.Suburb, a.Locality); p != "" {
		parts = append(parts, p)
	}
	if p := firstNonEmpty(a.City, a.Town, a.Village); p != "" {
		parts = append(parts, p)
	}
	if p := firstNonEmpty(a.State, a.Region); p != "" {
		parts = append(parts, p)
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}

	if formatted := strings.Join(parts, ", "); formatted != "" {
		return formatted
	}
	return resp.DisplayName
}

func (r *Resolver) resolveShort(ctx context.Context, lat, lon float64) string {
	resp, err := r.fetch(ctx, lat, lon, zoomShort)
	if err != nil {
		if r.logger != nil {
			r.logger.Errorf("geocode: short reverse lookup failed for %.6f,%.6f: %v", lat, lon, err)
		}
		return shortFallback
	}

	a := resp.Address
	var parts []string
	if a.Road != "" {
		parts = append(parts, a.Road)
	}
	if p := firstNonEmpty(a.City, a.Town, a.Village); p != "" {
		parts = append(parts, p)
	}

	if formatted := strings.Join(parts, ", "); formatted != "" {
		return formatted
	}
	return shortFallback
}

func (r *Resolver) fetch(ctx context.Context, lat, lon float64, zoom int) (*nominatimResponse, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("zoom", fmt.Sprintf("%d", zoom))
	q.Set("addressdetails", "1")
	q.Set("accept-language", "en")

	reqURL := r.baseURL + "/reverse?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	res, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding request failed: status %d", res.StatusCode)
	}

	var payload nominatimResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
