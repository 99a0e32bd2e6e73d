package repositories

import (
	"context"

	"scango/internal/apperrors"
	"scango/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := checkDocument("user", user.ID, user); err != nil {
		return err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return apperrors.Remote("check email", err)
	}
	if count > 0 {
		return apperrors.Conflict("email '%s' already registered", user.Email)
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return apperrors.Remote("create user", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, lookupError(err, "user with email", email)
	}
	if err := checkDocument("user", user.ID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "user", id)
	}
	if err := checkDocument("user", id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
