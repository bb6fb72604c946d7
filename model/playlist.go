package model

import "time"

// Playlist is a user-owned ordered song collection. Only the owner may
// mutate it.
type Playlist struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255" json:"title"`
	Image     string    `gorm:"size:767" json:"image"`
	UserID    int64     `gorm:"index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlaylistSong is one entry in a playlist. The composite unique index keeps
// a song from appearing twice; Position preserves ordering.
type PlaylistSong struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	PlaylistID int64     `gorm:"uniqueIndex:uq_playlist_song" json:"playlistId"`
	SongID     int64     `gorm:"uniqueIndex:uq_playlist_song" json:"songId"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PlaylistWithSongs bundles a playlist with its hydrated songs in order.
type PlaylistWithSongs struct {
	Playlist
	Songs []*SongDetail `json:"songs"`
}
