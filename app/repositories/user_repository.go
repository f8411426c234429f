package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/pkg/orm"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := orm.New(r.db).WithContext(ctx).Model(&models.User{}).Where("email = ?", email).First(&user)
	return user, err
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := orm.New(r.db).WithContext(ctx).Model(&models.User{}).Where("id = ?", id).First(&user)
	return user, err
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := orm.New(r.db).WithContext(ctx).Create(user); err != nil {
		return fmt.Errorf("repositories: create user: %w", err)
	}
	return nil
}

// Upsert creates the user or updates name and password when the email
// already exists.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	existing, err := r.FindByEmail(ctx, user.Email)
	switch {
	case err == nil:
		user.ID = existing.ID
		_, err = orm.New(r.db).WithContext(ctx).Model(&models.User{}).Where("id = ?", existing.ID).
			Updates(map[string]any{"name": user.Name, "password": user.Password})
		return err
	case err == gorm.ErrRecordNotFound:
		return r.Create(ctx, user)
	default:
		return err
	}
}
