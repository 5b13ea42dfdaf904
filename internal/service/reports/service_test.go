package reports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adscenter/reports/internal/apperror"
	"github.com/adscenter/reports/internal/domain/models"
	"github.com/adscenter/reports/internal/repository/memory"
	"github.com/adscenter/reports/internal/service/reports"
)

func newService(t *testing.T) (*reports.Service, *memory.ReportRepository) {
	t.Helper()
	repo := memory.NewReportRepository()
	return reports.NewService(repo, nil, nil), repo
}

func lineItem(name, amount string) models.LineItem {
	return models.LineItem{Name: name, Amount: decimal.RequireFromString(amount)}
}

func sampleInsert() models.InsertReport {
	return models.InsertReport{
		Date:     "2024-01-15",
		Services: []models.LineItem{lineItem("Aadhaar Card", "50")},
		Expenses: []models.LineItem{lineItem("Paper", "5")},
	}
}

func TestSave_ComputesTotalsAndAssignsIdentity(t *testing.T) {
	svc, _ := newService(t)

	stored, err := svc.Save(context.Background(), sampleInsert())
	require.NoError(t, err)

	assert.Equal(t, "50.00", stored.TotalServices)
	assert.Equal(t, "5.00", stored.TotalExpenses)
	assert.Equal(t, "45.00", stored.NetProfit)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.NotEmpty(t, stored.Services[0].ID, "missing line-item ids are generated")
}

func TestSave_RoundTrip(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	stored, err := svc.Save(ctx, sampleInsert())
	require.NoError(t, err)

	fetched, err := svc.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, fetched)
}

func TestSave_DuplicateDateLeavesOriginalUntouched(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, sampleInsert())
	require.NoError(t, err)

	second := sampleInsert()
	second.Services = []models.LineItem{lineItem("PAN Card", "100")}
	_, err = svc.Save(ctx, second)
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicateDate(err))

	current, err := svc.GetByDate(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, first, current)
}

func TestSave_ValidationErrorsCarryFieldMessages(t *testing.T) {
	svc, _ := newService(t)

	input := models.InsertReport{
		Date: "15-01-2024",
		Services: []models.LineItem{
			{Name: "", Amount: decimal.RequireFromString("10")},
		},
		Expenses: []models.LineItem{
			{Name: "Ink", Amount: decimal.RequireFromString("-3")},
		},
	}

	_, err := svc.Save(context.Background(), input)
	require.Error(t, err)
	require.True(t, apperror.IsValidation(err))

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	fields, ok := appErr.Details["fields"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Date must be in YYYY-MM-DD format", fields["date"])
	assert.Equal(t, "Service name is required", fields["services[0].name"])
	assert.Equal(t, "Amount must be positive", fields["expenses[0].amount"])
}

func TestSave_OnlinePaymentSplit(t *testing.T) {
	svc, _ := newService(t)

	input := sampleInsert()
	input.OnlinePayment = "20"
	stored, err := svc.Save(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "20.00", stored.OnlinePayment)
	assert.Equal(t, "30.00", stored.CashPayment)
}

func TestSave_ConcurrentSameDateCreatesExactlyOneReport(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	const writers = 8
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Save(ctx, sampleInsert())
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperror.IsDuplicateDate(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, writers-1, conflicts)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestList_EmptyAndSortedNewestFirst(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	for _, date := range []string{"2024-01-15", "2024-03-02", "2024-02-10"} {
		input := sampleInsert()
		input.Date = date
		_, err := svc.Save(ctx, input)
		require.NoError(t, err)
	}

	all, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-03-02", all[0].Date)
	assert.Equal(t, "2024-02-10", all[1].Date)
	assert.Equal(t, "2024-01-15", all[2].Date)
}

func TestGetByDate_IsIdempotent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, sampleInsert())
	require.NoError(t, err)

	first, err := svc.GetByDate(ctx, "2024-01-15")
	require.NoError(t, err)
	second, err := svc.GetByDate(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGet_MalformedIDIsDistinctFromNotFound(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "not-a-hex-id")
	assert.True(t, apperror.IsInvalidID(err))

	_, err = svc.Get(ctx, "656f1e4b9d3f2a0012345678")
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdate_SparsePatchLeavesOtherFieldsUntouched(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	stored, err := svc.Save(ctx, sampleInsert())
	require.NoError(t, err)

	newExpenses := "50.00"
	err = svc.Update(ctx, stored.ID, models.ReportPatch{TotalExpenses: &newExpenses}, reports.UpdateOptions{})
	require.NoError(t, err)

	updated, err := svc.Get(ctx, stored.ID)
	require.NoError(t, err)

	// Only totalExpenses changed, even though the document is now numerically
	// inconsistent: the patch is truly sparse, never recomputed by default.
	assert.Equal(t, "50.00", updated.TotalExpenses)
	assert.Equal(t, stored.TotalServices, updated.TotalServices)
	assert.Equal(t, stored.NetProfit, updated.NetProfit)
	assert.Equal(t, stored.Services, updated.Services)
	assert.Equal(t, stored.Expenses, updated.Expenses)
	assert.Equal(t, stored.CreatedAt, updated.CreatedAt)
}

func TestUpdate_RecomputeDerivesTotalsFromPatchedItems(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	stored, err := svc.Save(ctx, sampleInsert())
	require.NoError(t, err)

	expenses := []models.LineItem{lineItem("Toner", "12.50"), lineItem("Paper", "7.50")}
	patch := models.ReportPatch{Expenses: &expenses}
	err = svc.Update(ctx, stored.ID, patch, reports.UpdateOptions{RecomputeTotals: true})
	require.NoError(t, err)

	updated, err := svc.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "20.00", updated.TotalExpenses)
	assert.Equal(t, "50.00", updated.TotalServices)
	assert.Equal(t, "30.00", updated.NetProfit)
}

func TestUpdate_EmptyPatchIsRejected(t *testing.T) {
	svc, _ := newService(t)

	err := svc.Update(context.Background(), "656f1e4b9d3f2a0012345678", models.ReportPatch{}, reports.UpdateOptions{})
	assert.True(t, apperror.IsValidation(err))
}

func TestUpdate_MissingReport(t *testing.T) {
	svc, _ := newService(t)

	total := "10.00"
	err := svc.Update(context.Background(), "656f1e4b9d3f2a0012345678",
		models.ReportPatch{TotalServices: &total}, reports.UpdateOptions{})
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_MissingReportFailsAndCollectionUnchanged(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	stored, err := svc.Save(ctx, sampleInsert())
	require.NoError(t, err)

	err = svc.Delete(ctx, "656f1e4b9d3f2a0012345678")
	assert.True(t, apperror.IsNotFound(err))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.Delete(ctx, stored.ID))
	all, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
