package spaces

import (
	"time"

	"github.com/google/uuid"
)

// Supported listing categories.
const (
	CategoryDesk          = "DESK"
	CategoryMeetingRoom   = "MEETING_ROOM"
	CategoryPrivateOffice = "PRIVATE_OFFICE"
	CategoryEventSpace    = "EVENT_SPACE"
)

// Space defines a workspace listing owned by a host
type Space struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `gorm:"type:varchar(50);check:category IN ('DESK', 'MEETING_ROOM', 'PRIVATE_OFFICE', 'EVENT_SPACE')" json:"category"`
	Address     string    `gorm:"not null" json:"address"`
	City        string    `gorm:"index" json:"city"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	IsApproved  bool      `gorm:"not null;default:false" json:"is_approved"`
	RatingAvg   float64   `gorm:"not null;default:0" json:"rating_avg"`
	RatingCount int       `gorm:"not null;default:0" json:"rating_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Rooms []Room `json:"rooms,omitempty" gorm:"foreignKey:SpaceID;constraint:OnDelete:CASCADE;"`
}

// Room defines an individually bookable unit inside a space
type Room struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SpaceID    uuid.UUID `gorm:"type:uuid;index;not null" json:"space_id"`
	Name       string    `gorm:"not null" json:"name"`
	Capacity   int       `gorm:"not null;check:capacity > 0" json:"capacity"`
	HourlyRate float64   `gorm:"not null" json:"hourly_rate"`
	Equipment  []string  `gorm:"serializer:json" json:"equipment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	Space *Space `json:"space,omitempty" gorm:"foreignKey:SpaceID;constraint:OnDelete:CASCADE;"`
}

// TableName sets the table name for Space
func (Space) TableName() string {
	return "spaces"
}

// TableName sets the table name for Room
func (Room) TableName() string {
	return "rooms"
}

// IsBookable checks whether the listing accepts new bookings
func (s *Space) IsBookable() bool {
	return s.IsActive && s.IsApproved
}

// IsValidCategory checks if the space category is one of the supported kinds
func IsValidCategory(category string) bool {
	switch category {
	case CategoryDesk, CategoryMeetingRoom, CategoryPrivateOffice, CategoryEventSpace:
		return true
	}
	return false
}
