package discover

import (
	"context"
	"strings"

	"sonique/core/apperr"
	"sonique/model"
)

// ArtistSearchStore matches artists by name substring.
type ArtistSearchStore interface {
	SearchByName(ctx context.Context, q string) ([]*model.Artist, error)
}

// AlbumSearchStore matches albums by name substring or owning artist.
type AlbumSearchStore interface {
	Search(ctx context.Context, q string, artistIDs []int64) ([]*model.AlbumDetail, error)
}

// SongSearchStore matches songs by name/genre substring or owning
// artist/album.
type SongSearchStore interface {
	Search(ctx context.Context, q string, artistIDs, albumIDs []int64) ([]*model.SongDetail, error)
}

// SearchResults bundles the three entity kinds one query fans across.
type SearchResults struct {
	Artists []*model.Artist      `json:"artists"`
	Albums  []*model.AlbumDetail `json:"albums"`
	Songs   []*model.SongDetail  `json:"songs"`
}

// Searcher fans a free-text query across artists, albums and songs,
// cross-referencing matches by owning artist and album.
type Searcher struct {
	artists ArtistSearchStore
	albums  AlbumSearchStore
	songs   SongSearchStore
}

// NewSearcher builds a Searcher over the given stores.
func NewSearcher(artists ArtistSearchStore, albums AlbumSearchStore, songs SongSearchStore) *Searcher {
	return &Searcher{artists: artists, albums: albums, songs: songs}
}

// Search runs one free-text lookup. An empty or whitespace-only query is
// malformed input, not an empty result.
func (s *Searcher) Search(ctx context.Context, query string) (*SearchResults, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, apperr.Malformed("search query is required")
	}

	artists, err := s.artists.SearchByName(ctx, q)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	artistIDs := make([]int64, 0, len(artists))
	for _, a := range artists {
		artistIDs = append(artistIDs, a.ID)
	}

	albums, err := s.albums.Search(ctx, q, artistIDs)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	albumIDs := make([]int64, 0, len(albums))
	for _, a := range albums {
		albumIDs = append(albumIDs, a.ID)
	}

	songs, err := s.songs.Search(ctx, q, artistIDs, albumIDs)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	return &SearchResults{Artists: artists, Albums: albums, Songs: songs}, nil
}
