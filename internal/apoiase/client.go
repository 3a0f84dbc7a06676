// Package apoiase talks to the Apoia.se crowdfunding platform. It only
// reads: the per-campaign supporter report is fetched and handed to the
// reconciliation engine, nothing is ever written back.
package apoiase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"apoiasync/entity"
	"apoiasync/lib/sl"
)

type Client struct {
	hc      *http.Client
	baseURL string
	token   string
	log     *slog.Logger
}

type Config struct {
	Url   string
	Token string
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		hc:      &http.Client{Timeout: 10 * time.Second},
		baseURL: cfg.Url,
		token:   cfg.Token,
		log:     logger.With(sl.Module("apoiase")),
	}
}

// FetchSupporters returns the platform's current supporter report for one
// campaign. The caller bounds the call through ctx; a timed-out or failed
// fetch is a per-campaign condition, not a process failure.
func (c *Client) FetchSupporters(ctx context.Context, campaign *entity.Campaign) ([]entity.SupporterRecord, error) {
	log := c.log.With(slog.Int64("campaign_id", campaign.Id))

	status := "ERROR"
	t1 := time.Now()
	defer func() {
		t2 := time.Now()
		log.Debug("supporter report fetched",
			slog.String("duration", fmt.Sprintf("%.3fms", float64(t2.Sub(t1))/float64(time.Millisecond))),
			slog.String("status", status))
	}()

	endpoint := fmt.Sprintf("%s/v1/campaigns/%d/supporters", c.baseURL, campaign.Id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.hc.Do(req)
	if err != nil {
		log.Warn("request failed", sl.Err(err))
		return nil, fmt.Errorf("apoiase fetch: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	status = resp.Status
	if resp.StatusCode >= 300 {
		log.Warn("apoiase API returned error",
			slog.String("status", resp.Status),
			slog.String("body", string(body)))
		return nil, fmt.Errorf("apoiase %s: %s", resp.Status, body)
	}

	var records []entity.SupporterRecord
	if err = json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode supporter report: %w", err)
	}
	return records, nil
}
