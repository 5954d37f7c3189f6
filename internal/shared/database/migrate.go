package database

import (
	"spacehub/internal/bookings"
	"spacehub/internal/reviews"
	"spacehub/internal/spaces"
	"spacehub/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&spaces.Space{},
		&spaces.Room{},
		&bookings.Booking{},
		&bookings.Transition{},
		&reviews.Review{},
	)
}
