package model

import "time"

// Roles a user account can hold. The role gates which operations the
// request layer allows.
const (
	RoleUser   = "user"
	RoleAdmin  = "admin"
	RoleArtist = "artist"
)

// ValidRole reports whether s is a known role.
func ValidRole(s string) bool {
	return s == RoleUser || s == RoleAdmin || s == RoleArtist
}

// User represents an account in the system.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:100;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Role         string    `gorm:"size:20;default:user" json:"role"`
	Phone        string    `gorm:"size:20" json:"phone,omitempty"`
	DOB          string    `gorm:"size:20" json:"dob,omitempty"`
	Location     string    `gorm:"size:255" json:"location,omitempty"`
	ProfilePic   string    `gorm:"size:767" json:"profilePic,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserProfile is a User plus the ids of everything they like or follow.
// The id lists live in their own edge tables (song_likes, album_likes,
// artist_follows) and are joined in by the repository.
type UserProfile struct {
	User
	LikedSongs      []int64 `json:"likedSongs"`
	LikedAlbums     []int64 `json:"likedAlbums"`
	FollowedArtists []int64 `json:"followedArtists"`
}
