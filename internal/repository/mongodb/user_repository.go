package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/adscenter/reports/internal/apperror"
	"github.com/adscenter/reports/internal/domain/models"
)

const usersCollection = "users"

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// UserRepository stores authentication users.
type UserRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewUserRepository builds the repository and ensures the unique username index.
func NewUserRepository(ctx context.Context, client *mongo.Client, dbName string, logger *zap.Logger) (*UserRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	collection := client.Database(dbName).Collection(usersCollection)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create unique username index: %w", err)
	}

	return &UserRepository{collection: collection, logger: logger}, nil
}

// Create inserts a new user with an already-hashed password.
func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	doc := userDoc{
		Username:  user.Username,
		Password:  user.Password,
		CreatedAt: time.Now().UTC(),
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, apperror.NewValidation("username already taken").WithDetail("username", user.Username)
		}
		return models.User{}, wrapError("insert user", err)
	}

	doc.ID = result.InsertedID.(primitive.ObjectID)
	return userFromDoc(doc), nil
}

// GetByUsername returns the user with the given username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var doc userDoc
	if err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, apperror.NewNotFound("user", username)
		}
		return models.User{}, wrapError("find user by username", err)
	}
	return userFromDoc(doc), nil
}

// GetByID returns the user with the given storage id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, apperror.NewInvalidID(id)
	}

	var doc userDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, apperror.NewNotFound("user", id)
		}
		return models.User{}, wrapError("find user by id", err)
	}
	return userFromDoc(doc), nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperror.NewInvalidID(id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"password": passwordHash}})
	if err != nil {
		return wrapError("update user password", err)
	}
	if result.MatchedCount == 0 {
		return apperror.NewNotFound("user", id)
	}
	return nil
}

func userFromDoc(doc userDoc) models.User {
	return models.User{
		ID:        doc.ID.Hex(),
		Username:  doc.Username,
		Password:  doc.Password,
		CreatedAt: doc.CreatedAt,
	}
}
