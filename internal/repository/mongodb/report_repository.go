package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/adscenter/reports/internal/apperror"
	"github.com/adscenter/reports/internal/domain/models"
)

const reportsCollection = "reports"

// lineItemDoc is the stored shape of a line item. Amounts are kept as decimal
// strings so no binary floating point ever reaches the database.
type lineItemDoc struct {
	ID     string `bson:"id"`
	Name   string `bson:"name"`
	Amount string `bson:"amount"`
}

type reportDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Date          string             `bson:"date"`
	Services      []lineItemDoc      `bson:"services"`
	Expenses      []lineItemDoc      `bson:"expenses"`
	TotalServices string             `bson:"totalServices"`
	TotalExpenses string             `bson:"totalExpenses"`
	NetProfit     string             `bson:"netProfit"`
	OnlinePayment string             `bson:"onlinePayment,omitempty"`
	CashPayment   string             `bson:"cashPayment,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

// ReportRepository persists one DailyReport document per calendar date.
type ReportRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewReportRepository builds the repository and ensures the unique index on
// date, which is what makes concurrent same-date creates resolve to exactly
// one success.
func NewReportRepository(ctx context.Context, client *mongo.Client, dbName string, logger *zap.Logger) (*ReportRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	collection := client.Database(dbName).Collection(reportsCollection)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create unique date index: %w", err)
	}

	return &ReportRepository{collection: collection, logger: logger}, nil
}

// Create inserts a new report document. The unique index turns a second
// report for the same date into a DuplicateDate conflict.
func (r *ReportRepository) Create(ctx context.Context, report models.DailyReport) (models.DailyReport, error) {
	doc := toDoc(report)
	doc.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.DailyReport{}, apperror.NewDuplicateDate(report.Date)
		}
		return models.DailyReport{}, wrapError("insert report", err)
	}

	doc.ID = result.InsertedID.(primitive.ObjectID)
	return fromDoc(doc)
}

// GetAll returns every report ordered by date descending. An empty collection
// yields an empty slice, not an error.
func (r *ReportRepository) GetAll(ctx context.Context) ([]models.DailyReport, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, wrapError("find reports", err)
	}
	defer cursor.Close(ctx)

	var docs []reportDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapError("decode reports", err)
	}

	reports := make([]models.DailyReport, 0, len(docs))
	for _, doc := range docs {
		report, err := fromDoc(doc)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// GetByID returns the report with the given id. A malformed id is reported as
// InvalidID, distinct from NotFound.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (models.DailyReport, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.DailyReport{}, apperror.NewInvalidID(id)
	}

	var doc reportDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.DailyReport{}, apperror.NewNotFound("report", id)
		}
		return models.DailyReport{}, wrapError("find report by id", err)
	}
	return fromDoc(doc)
}

// GetByDate returns the report for a calendar date.
func (r *ReportRepository) GetByDate(ctx context.Context, date string) (models.DailyReport, error) {
	var doc reportDoc
	if err := r.collection.FindOne(ctx, bson.M{"date": date}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.DailyReport{}, apperror.NewNotFound("report", date)
		}
		return models.DailyReport{}, wrapError("find report by date", err)
	}
	return fromDoc(doc)
}

// Update applies a sparse $set of only the fields present in the patch.
// Stored totals are deliberately not recomputed here.
func (r *ReportRepository) Update(ctx context.Context, id string, patch models.ReportPatch) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NewInvalidID(id)
	}

	set := bson.M{}
	if patch.Services != nil {
		set["services"] = toItemDocs(*patch.Services)
	}
	if patch.Expenses != nil {
		set["expenses"] = toItemDocs(*patch.Expenses)
	}
	if patch.TotalServices != nil {
		set["totalServices"] = *patch.TotalServices
	}
	if patch.TotalExpenses != nil {
		set["totalExpenses"] = *patch.TotalExpenses
	}
	if patch.NetProfit != nil {
		set["netProfit"] = *patch.NetProfit
	}
	if patch.OnlinePayment != nil {
		set["onlinePayment"] = *patch.OnlinePayment
	}
	if patch.CashPayment != nil {
		set["cashPayment"] = *patch.CashPayment
	}
	if len(set) == 0 {
		return nil
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return wrapError("update report", err)
	}
	if result.MatchedCount == 0 {
		return apperror.NewNotFound("report", id)
	}
	return nil
}

// Delete removes the document permanently. Deleting a missing report is an
// error, matching the update path.
func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NewInvalidID(id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return wrapError("delete report", err)
	}
	if result.DeletedCount == 0 {
		return apperror.NewNotFound("report", id)
	}
	return nil
}

func toDoc(report models.DailyReport) reportDoc {
	return reportDoc{
		Date:          report.Date,
		Services:      toItemDocs(report.Services),
		Expenses:      toItemDocs(report.Expenses),
		TotalServices: report.TotalServices,
		TotalExpenses: report.TotalExpenses,
		NetProfit:     report.NetProfit,
		OnlinePayment: report.OnlinePayment,
		CashPayment:   report.CashPayment,
		CreatedAt:     report.CreatedAt,
	}
}

func toItemDocs(items []models.LineItem) []lineItemDoc {
	docs := make([]lineItemDoc, 0, len(items))
	for _, item := range items {
		docs = append(docs, lineItemDoc{ID: item.ID, Name: item.Name, Amount: item.Amount.String()})
	}
	return docs
}

func fromDoc(doc reportDoc) (models.DailyReport, error) {
	services, err := fromItemDocs(doc.Services)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("report %s: %w", doc.ID.Hex(), err)
	}
	expenses, err := fromItemDocs(doc.Expenses)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("report %s: %w", doc.ID.Hex(), err)
	}

	return models.DailyReport{
		ID:            doc.ID.Hex(),
		Date:          doc.Date,
		Services:      services,
		Expenses:      expenses,
		TotalServices: doc.TotalServices,
		TotalExpenses: doc.TotalExpenses,
		NetProfit:     doc.NetProfit,
		OnlinePayment: doc.OnlinePayment,
		CashPayment:   doc.CashPayment,
		CreatedAt:     doc.CreatedAt,
	}, nil
}

func fromItemDocs(docs []lineItemDoc) ([]models.LineItem, error) {
	items := make([]models.LineItem, 0, len(docs))
	for _, doc := range docs {
		amount, err := decimal.NewFromString(doc.Amount)
		if err != nil {
			return nil, fmt.Errorf("decode amount %q: %w", doc.Amount, err)
		}
		items = append(items, models.LineItem{ID: doc.ID, Name: doc.Name, Amount: amount})
	}
	return items, nil
}
