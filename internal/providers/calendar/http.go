package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/reservo/pkg/dateonly"
)

// HTTPProvider queries a busy-dates API: GET
// {base}/v1/busy?tenant=<id>&start=<date>&end=<date> returning
// {"busy":["2025-06-01", ...]}.
type HTTPProvider struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

func NewHTTPProvider(baseURL, apiToken string) *HTTPProvider {
	return &HTTPProvider{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiToken: strings.TrimSpace(apiToken),
		client:   &http.Client{Timeout: 8 * time.Second},
	}
}

type busyResponse struct {
	Busy []string `json:"busy"`
}

func (p *HTTPProvider) BusyDates(ctx context.Context, tenantID snowflake.ID, start, end dateonly.Date) (map[dateonly.Date]struct{}, error) {
	if p.baseURL == "" {
		return nil, ErrProviderUnavailable
	}

	values := url.Values{}
	values.Set("tenant", tenantID.String())
	values.Set("start", start.String())
	values.Set("end", end.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/busy?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if p.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var body busyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	busy := make(map[dateonly.Date]struct{}, len(body.Busy))
	for _, raw := range body.Busy {
		date, err := dateonly.Parse(raw)
		if err != nil {
			continue
		}
		busy[date] = struct{}{}
	}
	return busy, nil
}
