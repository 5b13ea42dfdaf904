package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adscenter/reports/internal/apperror"
	"github.com/adscenter/reports/internal/domain/models"
)

// UserRepository keeps users in memory. Accounts created here do not survive a
// restart; the admin bootstrap recreates the default account on startup.
type UserRepository struct {
	mu         sync.Mutex
	byID       map[string]models.User
	byUsername map[string]string
}

// NewUserRepository builds an empty in-memory user store.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[string]models.User),
		byUsername: make(map[string]string),
	}
}

// Create stores a new user with a unique username.
func (r *UserRepository) Create(_ context.Context, user models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return models.User{}, apperror.NewValidation("username already taken").WithDetail("username", user.Username)
	}

	user.ID = primitive.NewObjectID().Hex()
	user.CreatedAt = time.Now().UTC()
	r.byID[user.ID] = user
	r.byUsername[user.Username] = user.ID
	return user, nil
}

// GetByUsername returns the user with the given username.
func (r *UserRepository) GetByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byUsername[username]
	if !ok {
		return models.User{}, apperror.NewNotFound("user", username)
	}
	return r.byID[id], nil
}

// GetByID returns the user with the given id.
func (r *UserRepository) GetByID(_ context.Context, id string) (models.User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return models.User{}, apperror.NewInvalidID(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return models.User{}, apperror.NewNotFound("user", id)
	}
	return user, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return apperror.NewInvalidID(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return apperror.NewNotFound("user", id)
	}
	user.Password = passwordHash
	r.byID[id] = user
	return nil
}
