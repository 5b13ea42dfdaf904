// Package sheets appends exported report rows to a Google Sheet, used as an
// optional off-site export target.
package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/adscenter/reports/internal/config"
	"github.com/adscenter/reports/internal/domain/models"
)

const exportRange = "Reports!A:H"

// Exporter is the sheet-append operation the scheduler depends on.
type Exporter interface {
	AppendReport(ctx context.Context, report models.DailyReport) error
}

// GoogleSheetExporter implements Exporter using the official Google Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetExporter builds a Google Sheets backed exporter.
func NewGoogleSheetExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetExporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendReport appends one row with the report's date, totals and item counts.
func (e *GoogleSheetExporter) AppendReport(ctx context.Context, report models.DailyReport) error {
	row := []interface{}{
		report.Date,
		report.TotalServices,
		report.TotalExpenses,
		report.NetProfit,
		report.OnlinePayment,
		report.CashPayment,
		len(report.Services),
		len(report.Expenses),
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{row}}

	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, exportRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append report row for %s: %w", report.Date, err)
	}

	e.logger.Debug("report row appended to sheet", zap.String("date", report.Date))
	return nil
}
