// internal/infra/holidays/nager.go
package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"isitpayday/internal/domain/payday"
)

const (
	DefaultNagerURL     = "https://date.nager.at/api/v3"
	defaultFetchTimeout = 10 * time.Second
)

// HTTPDoer is the part of *http.Client the Nager client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Country is one entry of the Nager.Date country list.
type Country struct {
	CountryCode string `json:"countryCode"`
	Name        string `json:"name"`
}

type nagerHoliday struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
	Name      string `json:"name"`
}

// NagerClient fetches public holidays from the Nager.Date API.
type NagerClient struct {
	baseURL string
	client  HTTPDoer
	timeout time.Duration
}

func NewNagerClient(baseURL string, client HTTPDoer, timeout time.Duration) *NagerClient {
	if baseURL == "" {
		baseURL = DefaultNagerURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &NagerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		timeout: timeout,
	}
}

// Holidays returns the public holidays of country in year.
func (c *NagerClient) Holidays(ctx context.Context, country string, year int) (payday.HolidaySet, error) {
	url := fmt.Sprintf("%s/PublicHolidays/%d/%s", c.baseURL, year, strings.ToUpper(country))

	var raw []nagerHoliday
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return payday.HolidaySet{}, err
	}

	dates := make([]payday.Date, 0, len(raw))
	for _, h := range raw {
		d, err := payday.ParseDate(h.Date)
		if err != nil {
			return payday.HolidaySet{}, fmt.Errorf("malformed holiday date %q for %s: %w", h.Date, h.Name, err)
		}
		dates = append(dates, d)
	}
	return payday.NewHolidaySet(dates...), nil
}

// AvailableCountries returns the countries Nager.Date has calendars for.
func (c *NagerClient) AvailableCountries(ctx context.Context) ([]Country, error) {
	var countries []Country
	if err := c.getJSON(ctx, c.baseURL+"/AvailableCountries", &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

func (c *NagerClient) getJSON(ctx context.Context, url string, dest any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status from %s: HTTP %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("malformed response from %s: %w", url, err)
	}
	return nil
}
