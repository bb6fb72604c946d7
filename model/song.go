package model

import "time"

// Genres accepted for songs.
var Genres = []string{
	"Pop", "Rock", "Hip-Hop", "Rap", "R&B", "EDM", "Dance", "Indie",
	"Alternative", "Country", "Jazz", "Blues", "Classical", "Reggae",
	"Metal", "Punk", "Funk", "Soul", "Folk", "Romantic", "Remix",
	"Upbeat", "Melodic", "Nostalgic", "Theme",
}

// ValidGenre reports whether g is in the genre enum.
func ValidGenre(g string) bool {
	for _, v := range Genres {
		if v == g {
			return true
		}
	}
	return false
}

// Song is one track belonging to an album and an artist. Likes mirrors
// song_likes rows; Views only ever increases.
type Song struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255" json:"name"`
	Desc        string    `gorm:"type:text" json:"desc"`
	AlbumID     int64     `gorm:"index" json:"albumId"`
	ArtistID    int64     `gorm:"index" json:"artistId"`
	Genre       string    `gorm:"size:40" json:"genre"`
	Duration    float64   `json:"duration"` // seconds, always positive
	Image       string    `gorm:"size:767" json:"image"`
	Audio       string    `gorm:"size:767" json:"audio"`
	Likes       int64     `json:"likes"`
	Views       int64     `json:"views"`
	ReleaseDate time.Time `json:"releaseDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SongDetail is a Song hydrated with its album and artist names for display.
type SongDetail struct {
	Song
	AlbumName  string `json:"albumName"`
	ArtistName string `json:"artistName"`
}
