package model

import "time"

// The social graph is stored as explicit relationship rows rather than id
// arrays on each endpoint. The composite unique indexes make a duplicate
// edge a constraint violation, and mutating the edge plus its denormalized
// counter inside one transaction keeps both endpoints consistent.

// SongLike is one user-likes-song edge.
type SongLike struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:uq_song_like" json:"userId"`
	SongID    int64     `gorm:"uniqueIndex:uq_song_like" json:"songId"`
	CreatedAt time.Time `json:"createdAt"`
}

// AlbumLike is one user-likes-album edge.
type AlbumLike struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:uq_album_like" json:"userId"`
	AlbumID   int64     `gorm:"uniqueIndex:uq_album_like" json:"albumId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ArtistFollow is one user-follows-artist edge. CreatedAt feeds the artist
// dashboard's follower growth metric.
type ArtistFollow struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:uq_artist_follow" json:"userId"`
	ArtistID  int64     `gorm:"uniqueIndex:uq_artist_follow" json:"artistId"`
	CreatedAt time.Time `json:"createdAt"`
}
