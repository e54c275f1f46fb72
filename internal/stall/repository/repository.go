package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pinned-app/pinned/internal/stall/domain"
)

// GormStallRepository implements StallRepository using GORM
type GormStallRepository struct {
	db *gorm.DB
}

// NewGormStallRepository creates a new GORM stall repository
func NewGormStallRepository(db *gorm.DB) *GormStallRepository {
	return &GormStallRepository{db: db}
}

// Create inserts a new stall
func (r *GormStallRepository) Create(stall *domain.Stall) error {
	if err := r.db.Create(stall).Error; err != nil {
		return fmt.Errorf("failed to create stall: %w", err)
	}
	return nil
}

// FindByID retrieves a stall by ID
func (r *GormStallRepository) FindByID(id uint) (*domain.Stall, error) {
	var stall domain.Stall
	if err := r.db.First(&stall, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find stall: %w", err)
	}
	return &stall, nil
}

// FindByOwner retrieves the stall registered by a user, if any
func (r *GormStallRepository) FindByOwner(ownerID uint) (*domain.Stall, error) {
	var stall domain.Stall
	if err := r.db.Where("owner_id = ?", ownerID).First(&stall).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find stall by owner: %w", err)
	}
	return &stall, nil
}

// FindAll retrieves stalls with pagination, newest first
func (r *GormStallRepository) FindAll(limit, offset int) ([]domain.Stall, error) {
	var stalls []domain.Stall
	query := r.db.Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&stalls).Error; err != nil {
		return nil, fmt.Errorf("failed to find stalls: %w", err)
	}
	return stalls, nil
}

// FindPinned retrieves the stalls that have both pin coordinates set
func (r *GormStallRepository) FindPinned() ([]domain.Stall, error) {
	var stalls []domain.Stall
	err := r.db.
		Where("pin_x IS NOT NULL AND pin_y IS NOT NULL").
		Order("name ASC").
		Find(&stalls).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pinned stalls: %w", err)
	}
	return stalls, nil
}

// Update saves a stall's details
func (r *GormStallRepository) Update(stall *domain.Stall) error {
	if err := r.db.Save(stall).Error; err != nil {
		return fmt.Errorf("failed to update stall: %w", err)
	}
	return nil
}

// UpdatePin persists the pin coordinates and location label in one
// statement and refreshes the update timestamp
func (r *GormStallRepository) UpdatePin(stallID uint, x, y float64, location string) error {
	result := r.db.Model(&domain.Stall{}).
		Where("id = ?", stallID).
		Updates(map[string]interface{}{
			"pin_x":      x,
			"pin_y":      y,
			"location":   location,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update pin: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a stall together with its menu items, reviews and the
// votes on those reviews
func (r *GormStallRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Exec("DELETE FROM review_votes WHERE review_id IN (SELECT id FROM reviews WHERE stall_id = ?)", id).Error
		if err != nil {
			return fmt.Errorf("failed to delete stall review votes: %w", err)
		}
		if err := tx.Exec("DELETE FROM reviews WHERE stall_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete stall reviews: %w", err)
		}
		if err := tx.Where("stall_id = ?", id).Delete(&domain.MenuItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete menu items: %w", err)
		}
		result := tx.Delete(&domain.Stall{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete stall: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Count returns the total number of stalls
func (r *GormStallRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&domain.Stall{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count stalls: %w", err)
	}
	return count, nil
}

// CreateMenuItem inserts a new menu item
func (r *GormStallRepository) CreateMenuItem(item *domain.MenuItem) error {
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

// FindMenuItem retrieves a menu item by ID
func (r *GormStallRepository) FindMenuItem(id uint) (*domain.MenuItem, error) {
	var item domain.MenuItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find menu item: %w", err)
	}
	return &item, nil
}

// MenuForStall retrieves a stall's menu ordered by item name
func (r *GormStallRepository) MenuForStall(stallID uint) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	err := r.db.Where("stall_id = ?", stallID).Order("name ASC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}
	return items, nil
}

// UpdateMenuItem saves a menu item's fields
func (r *GormStallRepository) UpdateMenuItem(item *domain.MenuItem) error {
	if err := r.db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	return nil
}

// DeleteMenuItem removes a menu item
func (r *GormStallRepository) DeleteMenuItem(id uint) error {
	result := r.db.Delete(&domain.MenuItem{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete menu item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AutoMigrate runs database migrations for the stall tables
func (r *GormStallRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Stall{}, &domain.MenuItem{})
}
