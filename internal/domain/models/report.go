package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single named amount entry, either a service rendered or an
// expense incurred. IDs are generated client-side and immutable once created.
type LineItem struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// DailyReport is the per-date aggregate stored in MongoDB. Totals are derived
// decimal strings with two fraction digits and must match the line-item sums at
// the moment of save. At most one report exists per date.
type DailyReport struct {
	ID            string     `json:"id"`
	Date          string     `json:"date"`
	Services      []LineItem `json:"services"`
	Expenses      []LineItem `json:"expenses"`
	TotalServices string     `json:"totalServices"`
	TotalExpenses string     `json:"totalExpenses"`
	NetProfit     string     `json:"netProfit"`
	OnlinePayment string     `json:"onlinePayment,omitempty"`
	CashPayment   string     `json:"cashPayment,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// InsertReport is the input for creating a report. Totals are computed
// server-side from the line items, never trusted from the caller.
type InsertReport struct {
	Date          string     `json:"date"`
	Services      []LineItem `json:"services"`
	Expenses      []LineItem `json:"expenses"`
	OnlinePayment string     `json:"onlinePayment,omitempty"`
}

// ReportPatch is a sparse update: nil fields are left at their stored value,
// non-nil fields overwrite.
type ReportPatch struct {
	Services      *[]LineItem `json:"services,omitempty"`
	Expenses      *[]LineItem `json:"expenses,omitempty"`
	TotalServices *string     `json:"totalServices,omitempty"`
	TotalExpenses *string     `json:"totalExpenses,omitempty"`
	NetProfit     *string     `json:"netProfit,omitempty"`
	OnlinePayment *string     `json:"onlinePayment,omitempty"`
	CashPayment   *string     `json:"cashPayment,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p ReportPatch) IsEmpty() bool {
	return p.Services == nil && p.Expenses == nil &&
		p.TotalServices == nil && p.TotalExpenses == nil && p.NetProfit == nil &&
		p.OnlinePayment == nil && p.CashPayment == nil
}
