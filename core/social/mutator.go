// Package social toggles the bidirectional relationships between users and
// artists, songs and albums. Each relationship is a row in an edge table;
// the toggle flips the row and the denormalized like counter inside one
// transaction, so a failed write can never leave the two sides diverged.
package social

import (
	"context"

	"sonique/core/apperr"
	"sonique/model"
	"sonique/repository"
)

// UserStore resolves the acting user.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// SongStore resolves like targets.
type SongStore interface {
	GetByID(ctx context.Context, id int64) (*model.Song, error)
}

// AlbumStore resolves like targets.
type AlbumStore interface {
	GetByID(ctx context.Context, id int64) (*model.Album, error)
}

// ArtistStore resolves follow targets.
type ArtistStore interface {
	GetByID(ctx context.Context, id int64) (*model.Artist, error)
}

// Mutator applies social-graph toggles. Toggles are idempotent per call:
// repeating one returns to the prior state and never errors for being
// "already there".
type Mutator struct {
	store   repository.SocialRepository
	users   UserStore
	songs   SongStore
	albums  AlbumStore
	artists ArtistStore
}

// NewMutator builds a Mutator over the given stores.
func NewMutator(store repository.SocialRepository, users UserStore, songs SongStore, albums AlbumStore, artists ArtistStore) *Mutator {
	return &Mutator{store: store, users: users, songs: songs, albums: albums, artists: artists}
}

// ToggleSongLike flips the user's like on a song and returns the resulting
// state: true when the song is now liked.
func (m *Mutator) ToggleSongLike(ctx context.Context, userID, songID int64) (bool, error) {
	if err := m.userExists(ctx, userID); err != nil {
		return false, err
	}
	song, err := m.songs.GetByID(ctx, songID)
	if err != nil {
		return false, apperr.Unavailable(err)
	}
	if song == nil {
		return false, apperr.NotFound("song %d not found", songID)
	}

	var liked bool
	err = m.store.Transact(ctx, func(tx repository.SocialTx) error {
		present, err := tx.SongLiked(ctx, userID, songID)
		if err != nil {
			return err
		}
		if present {
			if err := tx.RemoveSongLike(ctx, userID, songID); err != nil {
				return err
			}
			return tx.AdjustSongLikes(ctx, songID, -1)
		}
		liked = true
		if err := tx.AddSongLike(ctx, userID, songID); err != nil {
			return err
		}
		return tx.AdjustSongLikes(ctx, songID, 1)
	})
	if err != nil {
		return false, apperr.Unavailable(err)
	}
	return liked, nil
}

// ToggleAlbumLike flips the user's like on an album and returns the
// resulting state.
func (m *Mutator) ToggleAlbumLike(ctx context.Context, userID, albumID int64) (bool, error) {
	if err := m.userExists(ctx, userID); err != nil {
		return false, err
	}
	album, err := m.albums.GetByID(ctx, albumID)
	if err != nil {
		return false, apperr.Unavailable(err)
	}
	if album == nil {
		return false, apperr.NotFound("album %d not found", albumID)
	}

	var liked bool
	err = m.store.Transact(ctx, func(tx repository.SocialTx) error {
		present, err := tx.AlbumLiked(ctx, userID, albumID)
		if err != nil {
			return err
		}
		if present {
			if err := tx.RemoveAlbumLike(ctx, userID, albumID); err != nil {
				return err
			}
			return tx.AdjustAlbumLikes(ctx, albumID, -1)
		}
		liked = true
		if err := tx.AddAlbumLike(ctx, userID, albumID); err != nil {
			return err
		}
		return tx.AdjustAlbumLikes(ctx, albumID, 1)
	})
	if err != nil {
		return false, apperr.Unavailable(err)
	}
	return liked, nil
}

// ToggleFollow flips the user's follow on an artist and returns the
// resulting state: true when the artist is now followed.
func (m *Mutator) ToggleFollow(ctx context.Context, userID, artistID int64) (bool, error) {
	if err := m.userExists(ctx, userID); err != nil {
		return false, err
	}
	artist, err := m.artists.GetByID(ctx, artistID)
	if err != nil {
		return false, apperr.Unavailable(err)
	}
	if artist == nil {
		return false, apperr.NotFound("artist %d not found", artistID)
	}

	var following bool
	err = m.store.Transact(ctx, func(tx repository.SocialTx) error {
		present, err := tx.Following(ctx, userID, artistID)
		if err != nil {
			return err
		}
		if present {
			return tx.RemoveFollow(ctx, userID, artistID)
		}
		following = true
		return tx.AddFollow(ctx, userID, artistID)
	})
	if err != nil {
		return false, apperr.Unavailable(err)
	}
	return following, nil
}

func (m *Mutator) userExists(ctx context.Context, userID int64) error {
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return apperr.Unavailable(err)
	}
	if user == nil {
		return apperr.NotFound("user %d not found", userID)
	}
	return nil
}
