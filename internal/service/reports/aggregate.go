package reports

import (
	"github.com/shopspring/decimal"

	"github.com/adscenter/reports/internal/domain/models"
)

// Summary holds the derived totals of a report. NetProfit may be negative; a
// loss is a valid state, not an error.
type Summary struct {
	TotalServices decimal.Decimal
	TotalExpenses decimal.Decimal
	NetProfit     decimal.Decimal
}

// Aggregate sums the service and expense line items with exact decimal
// arithmetic. Empty lists yield an all-zero summary.
func Aggregate(services, expenses []models.LineItem) Summary {
	totalServices := decimal.Zero
	for _, item := range services {
		totalServices = totalServices.Add(item.Amount)
	}

	totalExpenses := decimal.Zero
	for _, item := range expenses {
		totalExpenses = totalExpenses.Add(item.Amount)
	}

	return Summary{
		TotalServices: totalServices,
		TotalExpenses: totalExpenses,
		NetProfit:     totalServices.Sub(totalExpenses),
	}
}

// TotalServicesString formats the services total for storage (2 fraction digits).
func (s Summary) TotalServicesString() string { return s.TotalServices.StringFixed(2) }

// TotalExpensesString formats the expenses total for storage.
func (s Summary) TotalExpensesString() string { return s.TotalExpenses.StringFixed(2) }

// NetProfitString formats the net profit for storage.
func (s Summary) NetProfitString() string { return s.NetProfit.StringFixed(2) }
