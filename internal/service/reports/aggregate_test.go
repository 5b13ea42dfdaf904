package reports

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adscenter/reports/internal/domain/models"
)

func item(name string, amount string) models.LineItem {
	return models.LineItem{Name: name, Amount: decimal.RequireFromString(amount)}
}

func TestAggregate_Scenario(t *testing.T) {
	summary := Aggregate(
		[]models.LineItem{item("Aadhaar Card", "50")},
		[]models.LineItem{item("Paper", "5")},
	)

	assert.Equal(t, "50.00", summary.TotalServicesString())
	assert.Equal(t, "5.00", summary.TotalExpensesString())
	assert.Equal(t, "45.00", summary.NetProfitString())
}

func TestAggregate_EmptyListsYieldZeroSummary(t *testing.T) {
	summary := Aggregate(nil, nil)

	assert.Equal(t, "0.00", summary.TotalServicesString())
	assert.Equal(t, "0.00", summary.TotalExpensesString())
	assert.Equal(t, "0.00", summary.NetProfitString())
}

func TestAggregate_LossIsRepresentable(t *testing.T) {
	summary := Aggregate(
		[]models.LineItem{item("PAN Card", "100")},
		[]models.LineItem{item("Printer repair", "350.50")},
	)

	assert.Equal(t, "-250.50", summary.NetProfitString())
	assert.True(t, summary.NetProfit.IsNegative())
}

// Net profit must equal totalServices - totalExpenses exactly for random
// non-negative decimal inputs, including empty lists. Fractional amounts like
// 0.1 are chosen deliberately: they have no exact float64 representation.
func TestAggregate_NetProfitMatchesTotalsExactly(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	randomItems := func(n int) []models.LineItem {
		items := make([]models.LineItem, 0, n)
		for i := 0; i < n; i++ {
			// Random amount with two fraction digits, up to 9999.99.
			cents := rng.Int63n(1_000_000)
			items = append(items, models.LineItem{
				Name:   fmt.Sprintf("item-%d", i),
				Amount: decimal.New(cents, -2),
			})
		}
		return items
	}

	for i := 0; i < 50; i++ {
		services := randomItems(rng.Intn(20))
		expenses := randomItems(rng.Intn(20))

		summary := Aggregate(services, expenses)

		require.True(t, summary.NetProfit.Equal(summary.TotalServices.Sub(summary.TotalExpenses)),
			"case %d: netProfit %s != %s - %s", i,
			summary.NetProfit, summary.TotalServices, summary.TotalExpenses)

		// Cross-check the services sum against an independent accumulation.
		expected := decimal.Zero
		for _, it := range services {
			expected = expected.Add(it.Amount)
		}
		require.True(t, summary.TotalServices.Equal(expected))
	}
}

func TestAggregate_NoDriftAcrossManySmallItems(t *testing.T) {
	// 1000 x 0.10 must be exactly 100.00.
	services := make([]models.LineItem, 1000)
	for i := range services {
		services[i] = item(fmt.Sprintf("photo-%d", i), "0.10")
	}

	summary := Aggregate(services, nil)
	assert.Equal(t, "100.00", summary.TotalServicesString())
}
