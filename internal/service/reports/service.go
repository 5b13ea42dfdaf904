// Package reports implements the daily-report core: input validation, exact
// decimal aggregation and orchestration of the report repository.
package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/adscenter/reports/internal/apperror"
	"github.com/adscenter/reports/internal/domain/models"
)

// Repository defines the persistence operations the service depends on.
// Implementations must enforce the one-report-per-date uniqueness constraint
// atomically at the storage level.
type Repository interface {
	Create(ctx context.Context, report models.DailyReport) (models.DailyReport, error)
	GetAll(ctx context.Context) ([]models.DailyReport, error)
	GetByID(ctx context.Context, id string) (models.DailyReport, error)
	GetByDate(ctx context.Context, date string) (models.DailyReport, error)
	Update(ctx context.Context, id string, patch models.ReportPatch) error
	Delete(ctx context.Context, id string) error
}

// Notifier receives a best-effort event after a report is persisted.
type Notifier interface {
	ReportSaved(ctx context.Context, report models.DailyReport) error
}

// UpdateOptions controls the update path. RecomputeTotals derives the totals
// from the patched line-item lists instead of trusting the caller's values.
type UpdateOptions struct {
	RecomputeTotals bool
}

// Service validates report submissions, computes totals and drives the
// repository.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
}

// NewService wires a report service. notifier may be nil.
func NewService(repo Repository, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Save validates the submission, aggregates totals and persists a new report.
// A duplicate date surfaces as a conflict; the service never overwrites an
// existing report implicitly.
func (s *Service) Save(ctx context.Context, input models.InsertReport) (models.DailyReport, error) {
	if err := validateInsert(input); err != nil {
		return models.DailyReport{}, err
	}

	summary := Aggregate(input.Services, input.Expenses)

	report := models.DailyReport{
		Date:          input.Date,
		Services:      withItemIDs(input.Services),
		Expenses:      withItemIDs(input.Expenses),
		TotalServices: summary.TotalServicesString(),
		TotalExpenses: summary.TotalExpensesString(),
		NetProfit:     summary.NetProfitString(),
	}

	online := decimal.Zero
	if input.OnlinePayment != "" {
		// Already validated as a non-negative decimal.
		online, _ = decimal.NewFromString(input.OnlinePayment)
	}
	report.OnlinePayment = online.StringFixed(2)
	report.CashPayment = summary.TotalServices.Sub(online).StringFixed(2)

	stored, err := s.repo.Create(ctx, report)
	if err != nil {
		return models.DailyReport{}, err
	}

	s.logger.Info("report saved",
		zap.String("date", stored.Date),
		zap.String("net_profit", stored.NetProfit))

	if s.notifier != nil {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.notifier.ReportSaved(notifyCtx, stored); err != nil {
			s.logger.Warn("report webhook notification failed", zap.Error(err))
		}
	}

	return stored, nil
}

// List returns all reports, newest date first.
func (s *Service) List(ctx context.Context) ([]models.DailyReport, error) {
	return s.repo.GetAll(ctx)
}

// Get returns the report with the given storage id.
func (s *Service) Get(ctx context.Context, id string) (models.DailyReport, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByDate returns the report for a calendar date.
func (s *Service) GetByDate(ctx context.Context, date string) (models.DailyReport, error) {
	return s.repo.GetByDate(ctx, date)
}

// Update applies a sparse patch to an existing report. Only supplied fields
// change; totals are NOT recomputed unless opts.RecomputeTotals is set, which
// derives them from the patched line-item lists (falling back to the stored
// lists for whichever side the patch omits).
func (s *Service) Update(ctx context.Context, id string, patch models.ReportPatch, opts UpdateOptions) error {
	if patch.IsEmpty() {
		return apperror.NewValidation("update payload contains no fields")
	}

	if err := validatePatchItems(patch); err != nil {
		return err
	}

	if opts.RecomputeTotals {
		existing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		services := existing.Services
		if patch.Services != nil {
			services = *patch.Services
		}
		expenses := existing.Expenses
		if patch.Expenses != nil {
			expenses = *patch.Expenses
		}

		summary := Aggregate(services, expenses)
		totalServices := summary.TotalServicesString()
		totalExpenses := summary.TotalExpensesString()
		netProfit := summary.NetProfitString()
		patch.TotalServices = &totalServices
		patch.TotalExpenses = &totalExpenses
		patch.NetProfit = &netProfit
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		return err
	}

	s.logger.Info("report updated", zap.String("id", id), zap.Bool("recomputed", opts.RecomputeTotals))
	return nil
}

// Delete removes a report permanently. The HTTP layer guarantees the caller
// passed the authentication gate before this is reached.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("report deleted", zap.String("id", id))
	return nil
}

func validatePatchItems(patch models.ReportPatch) error {
	fields := map[string]string{}
	if patch.Services != nil {
		validateItems(fields, "services", "Service name is required", *patch.Services)
	}
	if patch.Expenses != nil {
		validateItems(fields, "expenses", "Expense name is required", *patch.Expenses)
	}
	if len(fields) > 0 {
		return apperror.NewFieldValidation(fields)
	}
	return nil
}

// withItemIDs copies the list, assigning an id to any item missing one.
func withItemIDs(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}
