package export_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adscenter/reports/internal/domain/models"
	"github.com/adscenter/reports/internal/service/export"
)

type staticLister struct {
	reports []models.DailyReport
}

func (s *staticLister) GetAll(context.Context) ([]models.DailyReport, error) {
	return s.reports, nil
}

func sampleReports() []models.DailyReport {
	return []models.DailyReport{
		{
			ID:   "656f1e4b9d3f2a0012345678",
			Date: "2024-01-15",
			Services: []models.LineItem{
				{ID: "a", Name: "Aadhaar Card", Amount: decimal.RequireFromString("50")},
			},
			Expenses: []models.LineItem{
				{ID: "b", Name: "Paper", Amount: decimal.RequireFromString("5")},
			},
			TotalServices: "50.00",
			TotalExpenses: "5.00",
			NetProfit:     "45.00",
			OnlinePayment: "20.00",
			CashPayment:   "30.00",
			CreatedAt:     time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC),
		},
	}
}

func TestRenderCSV(t *testing.T) {
	svc := export.NewService(&staticLister{reports: sampleReports()}, nil)

	data, err := svc.RenderCSV(context.Background())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{
		"date", "total_services", "total_expenses", "net_profit",
		"online_payment", "cash_payment", "services", "expenses",
	}, records[0])
	assert.Equal(t, []string{
		"2024-01-15", "50.00", "5.00", "45.00", "20.00", "30.00",
		"Aadhaar Card (50.00)", "Paper (5.00)",
	}, records[1])
}

func TestRenderCSV_EmptyCollection(t *testing.T) {
	svc := export.NewService(&staticLister{}, nil)

	data, err := svc.RenderCSV(context.Background())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1, "header only")
}

func TestRenderJSON(t *testing.T) {
	svc := export.NewService(&staticLister{reports: sampleReports()}, nil)

	data, err := svc.RenderJSON(context.Background())
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "2024-01-15", decoded[0]["date"])
	assert.Equal(t, "45.00", decoded[0]["netProfit"])
}

func TestWriteSnapshot(t *testing.T) {
	svc := export.NewService(&staticLister{reports: sampleReports()}, nil)
	dir := t.TempDir()

	path, err := svc.WriteSnapshot(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024-01-15")
}
