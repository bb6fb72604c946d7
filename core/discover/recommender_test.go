package discover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonique/core/apperr"
	"sonique/model"
)

type recUsers struct {
	users map[int64]*model.User
	liked map[int64][]int64
}

func (f recUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return f.users[id], nil
}
func (f recUsers) LikedSongIDs(ctx context.Context, userID int64) ([]int64, error) {
	return f.liked[userID], nil
}

type recSongs struct {
	details map[int64]*model.SongDetail

	candidates []*model.SongDetail
	// arguments of the last FindCandidates call
	gotGenres  []string
	gotArtists []int64
	gotExclude []int64
	gotLimit   int
	called     bool
}

func (f *recSongs) DetailsByIDs(ctx context.Context, ids []int64) ([]*model.SongDetail, error) {
	var out []*model.SongDetail
	for _, id := range ids {
		if d, ok := f.details[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}
func (f *recSongs) FindCandidates(ctx context.Context, genres []string, artistIDs, excludeIDs []int64, limit int) ([]*model.SongDetail, error) {
	f.called = true
	f.gotGenres = genres
	f.gotArtists = artistIDs
	f.gotExclude = excludeIDs
	f.gotLimit = limit
	return f.candidates, nil
}

type recStreams struct {
	history map[int64][]model.PlayedSong
}

func (f recStreams) PlayHistory(ctx context.Context, userID int64) ([]model.PlayedSong, error) {
	return f.history[userID], nil
}

func likedSong(id, artistID int64, genre string) *model.SongDetail {
	return &model.SongDetail{Song: model.Song{ID: id, ArtistID: artistID, Genre: genre}}
}

func TestRecommendFromLikes(t *testing.T) {
	users := recUsers{
		users: map[int64]*model.User{1: {ID: 1}},
		liked: map[int64][]int64{1: {10, 11}},
	}
	songs := &recSongs{
		details: map[int64]*model.SongDetail{
			10: likedSong(10, 5, "jazz"),
			11: likedSong(11, 6, "rock"),
		},
		candidates: []*model.SongDetail{likedSong(20, 5, "jazz")},
	}
	r := NewRecommender(users, songs, recStreams{history: map[int64][]model.PlayedSong{}})

	recs, err := r.Recommend(context.Background(), 1)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"jazz", "rock"}, recs.TopGenres)
	assert.ElementsMatch(t, []string{"jazz", "rock"}, songs.gotGenres)
	assert.ElementsMatch(t, []int64{5, 6}, songs.gotArtists)
	assert.Equal(t, []int64{10, 11}, songs.gotExclude, "liked songs are excluded from candidates")
	assert.Equal(t, 12, songs.gotLimit)
	require.Len(t, recs.Songs, 1)
	assert.Equal(t, int64(20), recs.Songs[0].ID)
}

func TestRecommendImplicitSignalsTopThree(t *testing.T) {
	history := []model.PlayedSong{}
	add := func(genre string, artistID int64, n int) {
		for i := 0; i < n; i++ {
			history = append(history, model.PlayedSong{Genre: genre, ArtistID: artistID})
		}
	}
	add("jazz", 1, 5)
	add("rock", 2, 4)
	add("pop", 3, 3)
	add("folk", 4, 1) // fourth place, must not make the cut

	users := recUsers{users: map[int64]*model.User{1: {ID: 1}}, liked: map[int64][]int64{}}
	songs := &recSongs{details: map[int64]*model.SongDetail{}}
	r := NewRecommender(users, songs, recStreams{history: map[int64][]model.PlayedSong{1: history}})

	recs, err := r.Recommend(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"jazz", "rock", "pop"}, recs.TopGenres)
	assert.Equal(t, []int64{1, 2, 3}, songs.gotArtists)
}

func TestRecommendImplicitTieBreak(t *testing.T) {
	history := []model.PlayedSong{
		{Genre: "rock", ArtistID: 9},
		{Genre: "jazz", ArtistID: 2},
		{Genre: "pop", ArtistID: 5},
	}
	users := recUsers{users: map[int64]*model.User{1: {ID: 1}}, liked: map[int64][]int64{}}
	songs := &recSongs{details: map[int64]*model.SongDetail{}}
	r := NewRecommender(users, songs, recStreams{history: map[int64][]model.PlayedSong{1: history}})

	recs, err := r.Recommend(context.Background(), 1)
	require.NoError(t, err)

	// Equal counts rank deterministically: genres lexicographic, artists
	// ascending by id.
	assert.Equal(t, []string{"jazz", "pop", "rock"}, recs.TopGenres)
	assert.Equal(t, []int64{2, 5, 9}, songs.gotArtists)
}

func TestRecommendNoSignals(t *testing.T) {
	users := recUsers{users: map[int64]*model.User{1: {ID: 1}}, liked: map[int64][]int64{}}
	songs := &recSongs{details: map[int64]*model.SongDetail{}}
	r := NewRecommender(users, songs, recStreams{history: map[int64][]model.PlayedSong{}})

	recs, err := r.Recommend(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, recs.Songs)
	assert.Empty(t, recs.TopGenres)
	assert.False(t, songs.called, "no candidate query without signals")
}

func TestRecommendUnknownUser(t *testing.T) {
	r := NewRecommender(
		recUsers{users: map[int64]*model.User{}, liked: map[int64][]int64{}},
		&recSongs{details: map[int64]*model.SongDetail{}},
		recStreams{history: map[int64][]model.PlayedSong{}},
	)
	_, err := r.Recommend(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRecommendSignalsDeduplicated(t *testing.T) {
	// The same genre and artist from likes and history count once.
	users := recUsers{
		users: map[int64]*model.User{1: {ID: 1}},
		liked: map[int64][]int64{1: {10}},
	}
	songs := &recSongs{
		details: map[int64]*model.SongDetail{10: likedSong(10, 5, "jazz")},
	}
	history := []model.PlayedSong{{Genre: "jazz", ArtistID: 5}, {Genre: "jazz", ArtistID: 5}}
	r := NewRecommender(users, songs, recStreams{history: map[int64][]model.PlayedSong{1: history}})

	_, err := r.Recommend(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"jazz"}, songs.gotGenres)
	assert.Equal(t, []int64{5}, songs.gotArtists)
}
