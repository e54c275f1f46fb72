package domain

import (
	"time"
)

// MaxStallNameLen bounds the stall name as shown on map pins
const MaxStallNameLen = 16

// Stall represents a food vendor listing, owned by one user. PinX and
// PinY are percentage coordinates on the fixed campus map image; they
// are either both set and within [0,100], or both absent ("no pin").
type Stall struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	OwnerID     uint       `json:"owner_id" gorm:"not null;index"`
	Name        string     `json:"name" gorm:"not null"`
	Description string     `json:"description" gorm:"not null"`
	FoodType    string     `json:"food_type" gorm:"not null"` // comma-joined category list
	Location    string     `json:"location"`
	PinX        *float64   `json:"pin_x"`
	PinY        *float64   `json:"pin_y"`
	LogoPath    string     `json:"logo_path"`
	Hours       string     `json:"hours"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name
func (Stall) TableName() string {
	return "food_stalls"
}

// Pin is a displayable map position
type Pin struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DisplayPin returns the stall's pin when both coordinates are present,
// clamped into [0,100] for rendering. A stall without a pin yields nil;
// a missing pin is never rendered as (0,0).
func (s *Stall) DisplayPin() *Pin {
	if s.PinX == nil || s.PinY == nil {
		return nil
	}
	return &Pin{X: ClampCoordinate(*s.PinX), Y: ClampCoordinate(*s.PinY)}
}

// ClampCoordinate forces a percentage coordinate into [0,100]
func ClampCoordinate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// MenuItem represents one dish on a stall's menu
type MenuItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	StallID     uint      `json:"stall_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Price       float64   `json:"price" gorm:"not null"`
	ImagePath   string    `json:"image_path"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (MenuItem) TableName() string {
	return "menu_items"
}

// StallRepository defines the contract for stall data access
type StallRepository interface {
	Create(stall *Stall) error
	FindByID(id uint) (*Stall, error)
	FindByOwner(ownerID uint) (*Stall, error)
	FindAll(limit, offset int) ([]Stall, error)
	FindPinned() ([]Stall, error)
	Update(stall *Stall) error
	UpdatePin(stallID uint, x, y float64, location string) error
	Delete(id uint) error
	Count() (int64, error)

	CreateMenuItem(item *MenuItem) error
	FindMenuItem(id uint) (*MenuItem, error)
	MenuForStall(stallID uint) ([]MenuItem, error)
	UpdateMenuItem(item *MenuItem) error
	DeleteMenuItem(id uint) error
}
