// Package memory provides in-process implementations of the repositories,
// used when no MongoDB URI is configured and as test doubles. They honor the
// same error taxonomy and the date-uniqueness invariant.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adscenter/reports/internal/apperror"
	"github.com/adscenter/reports/internal/domain/models"
)

// ReportRepository keeps reports in a mutex-guarded map. Ids follow the same
// ObjectId hex format as the MongoDB repository so identifier validation
// behaves identically.
type ReportRepository struct {
	mu       sync.Mutex
	byID     map[string]models.DailyReport
	idByDate map[string]string
}

// NewReportRepository builds an empty in-memory report store.
func NewReportRepository() *ReportRepository {
	return &ReportRepository{
		byID:     make(map[string]models.DailyReport),
		idByDate: make(map[string]string),
	}
}

// Create stores a new report, enforcing one report per date.
func (r *ReportRepository) Create(_ context.Context, report models.DailyReport) (models.DailyReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.idByDate[report.Date]; exists {
		return models.DailyReport{}, apperror.NewDuplicateDate(report.Date)
	}

	report.ID = primitive.NewObjectID().Hex()
	report.CreatedAt = time.Now().UTC()
	report.Services = cloneItems(report.Services)
	report.Expenses = cloneItems(report.Expenses)

	r.byID[report.ID] = report
	r.idByDate[report.Date] = report.ID
	return cloneReport(report), nil
}

// GetAll returns every report ordered by date descending.
func (r *ReportRepository) GetAll(_ context.Context) ([]models.DailyReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reports := make([]models.DailyReport, 0, len(r.byID))
	for _, report := range r.byID {
		reports = append(reports, cloneReport(report))
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Date > reports[j].Date })
	return reports, nil
}

// GetByID returns the report with the given id.
func (r *ReportRepository) GetByID(_ context.Context, id string) (models.DailyReport, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return models.DailyReport{}, apperror.NewInvalidID(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	report, ok := r.byID[id]
	if !ok {
		return models.DailyReport{}, apperror.NewNotFound("report", id)
	}
	return cloneReport(report), nil
}

// GetByDate returns the report for a calendar date.
func (r *ReportRepository) GetByDate(_ context.Context, date string) (models.DailyReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.idByDate[date]
	if !ok {
		return models.DailyReport{}, apperror.NewNotFound("report", date)
	}
	return cloneReport(r.byID[id]), nil
}

// Update applies a sparse patch; nil fields stay untouched.
func (r *ReportRepository) Update(_ context.Context, id string, patch models.ReportPatch) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return apperror.NewInvalidID(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	report, ok := r.byID[id]
	if !ok {
		return apperror.NewNotFound("report", id)
	}

	if patch.Services != nil {
		report.Services = cloneItems(*patch.Services)
	}
	if patch.Expenses != nil {
		report.Expenses = cloneItems(*patch.Expenses)
	}
	if patch.TotalServices != nil {
		report.TotalServices = *patch.TotalServices
	}
	if patch.TotalExpenses != nil {
		report.TotalExpenses = *patch.TotalExpenses
	}
	if patch.NetProfit != nil {
		report.NetProfit = *patch.NetProfit
	}
	if patch.OnlinePayment != nil {
		report.OnlinePayment = *patch.OnlinePayment
	}
	if patch.CashPayment != nil {
		report.CashPayment = *patch.CashPayment
	}

	r.byID[id] = report
	return nil
}

// Delete removes the report; deleting a missing id is an error.
func (r *ReportRepository) Delete(_ context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return apperror.NewInvalidID(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	report, ok := r.byID[id]
	if !ok {
		return apperror.NewNotFound("report", id)
	}

	delete(r.byID, id)
	delete(r.idByDate, report.Date)
	return nil
}

func cloneReport(report models.DailyReport) models.DailyReport {
	report.Services = cloneItems(report.Services)
	report.Expenses = cloneItems(report.Expenses)
	return report
}

func cloneItems(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, len(items))
	copy(out, items)
	return out
}
