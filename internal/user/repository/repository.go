package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pinned-app/pinned/internal/user/domain"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM user repository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new user
func (r *GormUserRepository) Create(user *domain.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by ID
func (r *GormUserRepository) FindByID(id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FindByEmail retrieves a user by email address
func (r *GormUserRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// Update saves a user's fields
func (r *GormUserRepository) Update(user *domain.User) error {
	if err := r.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes a user together with everything they own: their votes,
// their reviews and the votes on them, and their stall with its menu,
// reviews and votes
func (r *GormUserRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(`DELETE FROM review_votes WHERE user_id = ?
			OR review_id IN (SELECT id FROM reviews WHERE user_id = ?
				OR stall_id IN (SELECT id FROM food_stalls WHERE owner_id = ?))`, id, id, id).Error
		if err != nil {
			return fmt.Errorf("failed to delete user votes: %w", err)
		}
		err = tx.Exec(`DELETE FROM reviews WHERE user_id = ?
			OR stall_id IN (SELECT id FROM food_stalls WHERE owner_id = ?)`, id, id).Error
		if err != nil {
			return fmt.Errorf("failed to delete user reviews: %w", err)
		}
		err = tx.Exec("DELETE FROM menu_items WHERE stall_id IN (SELECT id FROM food_stalls WHERE owner_id = ?)", id).Error
		if err != nil {
			return fmt.Errorf("failed to delete user menu items: %w", err)
		}
		if err := tx.Exec("DELETE FROM food_stalls WHERE owner_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete user stall: %w", err)
		}
		result := tx.Delete(&domain.User{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Count returns the total number of users
func (r *GormUserRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&domain.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// AutoMigrate runs database migrations
func (r *GormUserRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.User{})
}
