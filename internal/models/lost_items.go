package models

import (
	"time"

	"github.com/google/uuid"
)

// LostItemStatus values for LostItem.Status.
const (
	LostItemStatusLost     = "lost"
	LostItemStatusReturned = "returned"
)

// LostItem represents an item reported as lost by a user.
// Immutable once created except for Status.
type LostItem struct {
	ID          uuid.UUID  `json:"id"`
	Category    string     `json:"category"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Color       string     `json:"color,omitempty"` // comma-separated list, e.g. "Black, Red"
	Brand       string     `json:"brand,omitempty"`
	Serial      string     `json:"serial,omitempty"`
	DateLost    time.Time  `json:"date_lost"`
	TimeLost    *time.Time `json:"time_lost,omitempty"`
	Location    string     `json:"location"`
	Landmark    string     `json:"landmark,omitempty"`
	OwnerName   string     `json:"owner_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Images      []string   `json:"images,omitempty"` // file paths or base64 payloads; first image is the one embedded
	UserID      uuid.UUID  `json:"user_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FirstImage returns the image reference used for visual matching, or "" when the item has none.
func (i *LostItem) FirstImage() string {
	if len(i.Images) == 0 {
		return ""
	}

	return i.Images[0]
}

// CreateLostItemRequest is the payload for reporting a lost item.
type CreateLostItemRequest struct {
	Category    string   `json:"category" validate:"required,min=1,max=50"`
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Color       string   `json:"color,omitempty" validate:"omitempty,max=50"`
	Brand       string   `json:"brand,omitempty" validate:"omitempty,max=50"`
	Serial      string   `json:"serial,omitempty" validate:"omitempty,max=50"`
	Date        string   `json:"date" validate:"required,item_date"`
	Time        string   `json:"time,omitempty" validate:"omitempty,item_time"`
	Location    string   `json:"location" validate:"required,min=1,max=200"`
	Landmark    string   `json:"landmark,omitempty" validate:"omitempty,max=200"`
	OwnerName   string   `json:"ownerName" validate:"required,min=1,max=100"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"required,min=3,max=20"`
	Images      []string `json:"images,omitempty"`
}

// UpdateLostItemStatusRequest is the payload for changing a report's status,
// e.g. marking an item returned once it is back with its owner.
type UpdateLostItemStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=lost returned"`
}
