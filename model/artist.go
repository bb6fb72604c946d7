package model

import "time"

// Artist is the public profile attached one-to-one to a user with the
// artist role. Followers live in the artist_follows edge table.
type Artist struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"uniqueIndex" json:"userId"`
	Name      string    `gorm:"size:255" json:"name"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Image     string    `gorm:"size:767" json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
