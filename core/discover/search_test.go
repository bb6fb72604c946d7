package discover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonique/core/apperr"
	"sonique/model"
)

type searchArtists struct {
	results []*model.Artist
	gotQ    string
}

func (f *searchArtists) SearchByName(ctx context.Context, q string) ([]*model.Artist, error) {
	f.gotQ = q
	return f.results, nil
}

type searchAlbums struct {
	results    []*model.AlbumDetail
	gotQ       string
	gotArtists []int64
}

func (f *searchAlbums) Search(ctx context.Context, q string, artistIDs []int64) ([]*model.AlbumDetail, error) {
	f.gotQ = q
	f.gotArtists = artistIDs
	return f.results, nil
}

type searchSongs struct {
	results    []*model.SongDetail
	gotQ       string
	gotArtists []int64
	gotAlbums  []int64
}

func (f *searchSongs) Search(ctx context.Context, q string, artistIDs, albumIDs []int64) ([]*model.SongDetail, error) {
	f.gotQ = q
	f.gotArtists = artistIDs
	f.gotAlbums = albumIDs
	return f.results, nil
}

func TestSearchEmptyQuery(t *testing.T) {
	s := NewSearcher(&searchArtists{}, &searchAlbums{}, &searchSongs{})

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := s.Search(context.Background(), q)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindMalformedInput))
	}
}

func TestSearchCrossReferences(t *testing.T) {
	artists := &searchArtists{results: []*model.Artist{{ID: 1, Name: "Nova"}, {ID: 2, Name: "Novara"}}}
	albums := &searchAlbums{results: []*model.AlbumDetail{
		{Album: model.Album{ID: 7, ArtistID: 1}},
	}}
	songs := &searchSongs{results: []*model.SongDetail{
		{Song: model.Song{ID: 30, AlbumID: 7}},
	}}

	s := NewSearcher(artists, albums, songs)
	results, err := s.Search(context.Background(), "  nova ")
	require.NoError(t, err)

	assert.Equal(t, "nova", artists.gotQ, "query is trimmed before matching")
	assert.Equal(t, []int64{1, 2}, albums.gotArtists, "album search sees matched artist ids")
	assert.Equal(t, []int64{1, 2}, songs.gotArtists)
	assert.Equal(t, []int64{7}, songs.gotAlbums, "song search sees matched album ids")

	assert.Len(t, results.Artists, 2)
	assert.Len(t, results.Albums, 1)
	assert.Len(t, results.Songs, 1)
}

func TestSearchNoMatches(t *testing.T) {
	s := NewSearcher(&searchArtists{}, &searchAlbums{}, &searchSongs{})
	results, err := s.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, results.Artists)
	assert.Empty(t, results.Albums)
	assert.Empty(t, results.Songs)
}
