package reports

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adscenter/reports/internal/apperror"
	"github.com/adscenter/reports/internal/domain/models"
)

const dateLayout = "2006-01-02"

// validateInsert checks the shape of a report submission and returns a
// validation error carrying field-level messages when anything is off.
func validateInsert(input models.InsertReport) error {
	fields := map[string]string{}

	if input.Date == "" {
		fields["date"] = "Date is required"
	} else if _, err := time.Parse(dateLayout, input.Date); err != nil {
		fields["date"] = "Date must be in YYYY-MM-DD format"
	}

	validateItems(fields, "services", "Service name is required", input.Services)
	validateItems(fields, "expenses", "Expense name is required", input.Expenses)

	if input.OnlinePayment != "" {
		if online, err := decimal.NewFromString(input.OnlinePayment); err != nil {
			fields["onlinePayment"] = "Online payment must be a decimal amount"
		} else if online.IsNegative() {
			fields["onlinePayment"] = "Online payment must be positive"
		}
	}

	if len(fields) > 0 {
		return apperror.NewFieldValidation(fields)
	}
	return nil
}

func validateItems(fields map[string]string, key, nameMessage string, items []models.LineItem) {
	for i, item := range items {
		if item.Name == "" {
			fields[fmt.Sprintf("%s[%d].name", key, i)] = nameMessage
		}
		if item.Amount.IsNegative() {
			fields[fmt.Sprintf("%s[%d].amount", key, i)] = "Amount must be positive"
		}
	}
}
