// Package export renders stored reports as CSV or JSON for downloads and
// scheduled snapshots.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adscenter/reports/internal/domain/models"
)

// Lister is the read-only view of the report repository the exporter needs.
type Lister interface {
	GetAll(ctx context.Context) ([]models.DailyReport, error)
}

// Service renders report exports.
type Service struct {
	repo   Lister
	logger *zap.Logger
}

// NewService wires an export service.
func NewService(repo Lister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

var csvHeader = []string{
	"date", "total_services", "total_expenses", "net_profit",
	"online_payment", "cash_payment", "services", "expenses",
}

// RenderCSV renders all reports, newest first, as a CSV document.
func (s *Service) RenderCSV(ctx context.Context) ([]byte, error) {
	reports, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, report := range reports {
		record := []string{
			report.Date,
			report.TotalServices,
			report.TotalExpenses,
			report.NetProfit,
			report.OnlinePayment,
			report.CashPayment,
			joinItems(report.Services),
			joinItems(report.Expenses),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderJSON renders all reports as an indented JSON array.
func (s *Service) RenderJSON(ctx context.Context) ([]byte, error) {
	reports, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal reports: %w", err)
	}
	return data, nil
}

// WriteSnapshot writes a CSV snapshot of all reports into dir and returns the
// file path.
func (s *Service) WriteSnapshot(ctx context.Context, dir string) (string, error) {
	data, err := s.RenderCSV(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	name := fmt.Sprintf("reports-%s-%s.csv", time.Now().Format("20060102"), uuid.NewString()[:8])
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	s.logger.Info("export snapshot written", zap.String("path", path))
	return path, nil
}

func joinItems(items []models.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s (%s)", item.Name, item.Amount.StringFixed(2)))
	}
	return strings.Join(parts, "; ")
}
