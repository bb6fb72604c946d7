package model

import "time"

// Stream is one play event. Rows are append-only: they are created on every
// play and never updated, forming the raw log analytics are computed from.
// UserID is nil for anonymous plays, which count toward song rollups but
// never toward listener metrics.
type Stream struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    *int64    `gorm:"index" json:"userId,omitempty"`
	SongID    int64     `gorm:"index" json:"songId"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

// PlayCount is one group of a grouped stream rollup: an entity id and how
// many plays it accumulated inside a window.
type PlayCount struct {
	ID    int64 `json:"id"`
	Count int64 `json:"count"`
}

// PlayedSong is the slice of a stream row the recommender tallies over.
type PlayedSong struct {
	Genre    string
	ArtistID int64
}
