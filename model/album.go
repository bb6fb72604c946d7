package model

import "time"

// Album groups songs under one artist. Likes is a denormalized counter
// mirroring album_likes rows; the social mutator keeps it in sync and the
// reconcile command can rebuild it.
type Album struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255" json:"name"`
	Desc        string    `gorm:"type:text" json:"desc"`
	ArtistID    int64     `gorm:"index" json:"artistId"`
	Image       string    `gorm:"size:767" json:"image"`
	ReleaseDate time.Time `json:"releaseDate"`
	Likes       int64     `json:"likes"`
	BgColor     string    `gorm:"size:20;default:#000000" json:"bgColor"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AlbumDetail is an Album hydrated with its owning artist's name.
type AlbumDetail struct {
	Album
	ArtistName string `json:"artistName"`
}
