package models

import (
	"time"

	"github.com/google/uuid"
)

// Custody values for FoundItem.Custody.
const (
	CustodyWithFinder = "with_me"
	CustodyHandedIn   = "handed_in"
)

// FoundItem represents an item reported as found.
type FoundItem struct {
	ID            uuid.UUID `json:"id"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Color         string    `json:"color,omitempty"`
	DateFound     time.Time `json:"date_found"`
	LocationFound string    `json:"location_found"`
	Custody       string    `json:"custody,omitempty"`
	FinderName    string    `json:"finder_name"`
	Contact       string    `json:"contact"`
	Consent       bool      `json:"consent"`
	Images        []string  `json:"images,omitempty"`
	UserID        uuid.UUID `json:"user_id"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// FirstImage returns the image reference used for visual matching, or "" when the item has none.
func (i *FoundItem) FirstImage() string {
	if len(i.Images) == 0 {
		return ""
	}

	return i.Images[0]
}

// CreateFoundItemRequest is the payload for reporting a found item.
type CreateFoundItemRequest struct {
	Category      string   `json:"category" validate:"required,min=1,max=50"`
	Description   string   `json:"description" validate:"required,min=1,max=2000"`
	Color         string   `json:"color" validate:"required,max=50"`
	DateFound     string   `json:"dateFound" validate:"required,item_date"`
	LocationFound string   `json:"locationFound" validate:"required,min=1,max=200"`
	Custody       string   `json:"custody,omitempty" validate:"omitempty,oneof=with_me handed_in"`
	FinderName    string   `json:"finderName" validate:"required,min=1,max=100"`
	Contact       string   `json:"contact" validate:"required,min=3,max=120"`
	Consent       bool     `json:"consent,omitempty"`
	Images        []string `json:"images,omitempty"`
}

// FoundItemFilter is the hard filter applied when listing candidate found items
// for attribute matching: same category, and not found before the loss date.
type FoundItemFilter struct {
	Category     string
	MinDateFound time.Time
}
