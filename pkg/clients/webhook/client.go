// Package webhook posts report events to a configured external endpoint.
package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/adscenter/reports/internal/domain/models"
)

// ReportSavedEvent is the payload delivered after a report is persisted.
type ReportSavedEvent struct {
	Event         string `json:"event"`
	ReportID      string `json:"reportId"`
	Date          string `json:"date"`
	TotalServices string `json:"totalServices"`
	TotalExpenses string `json:"totalExpenses"`
	NetProfit     string `json:"netProfit"`
}

// Client is a resty-backed notifier.
type Client struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client for the given URL.
func NewClient(url string) *Client {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &Client{httpClient: restyClient, url: url}
}

// ReportSaved delivers a report-saved event. A non-2xx response is an error so
// the caller can log the failed delivery.
func (c *Client) ReportSaved(ctx context.Context, report models.DailyReport) error {
	event := ReportSavedEvent{
		Event:         "report.saved",
		ReportID:      report.ID,
		Date:          report.Date,
		TotalServices: report.TotalServices,
		TotalExpenses: report.TotalExpenses,
		NetProfit:     report.NetProfit,
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(event).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post report event: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("post report event: unexpected status %d", resp.StatusCode())
	}
	return nil
}
