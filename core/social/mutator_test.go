package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonique/core/apperr"
	"sonique/model"
	"sonique/repository"
)

type edge struct{ userID, targetID int64 }

// memorySocial keeps the edge tables and counters in maps. Counter
// adjustments floor at zero the way the SQL does.
type memorySocial struct {
	songLikes  map[edge]bool
	albumLikes map[edge]bool
	follows    map[edge]bool
	songCount  map[int64]int64
	albumCount map[int64]int64
}

func newMemorySocial() *memorySocial {
	return &memorySocial{
		songLikes:  make(map[edge]bool),
		albumLikes: make(map[edge]bool),
		follows:    make(map[edge]bool),
		songCount:  make(map[int64]int64),
		albumCount: make(map[int64]int64),
	}
}

func (m *memorySocial) Transact(ctx context.Context, fn func(tx repository.SocialTx) error) error {
	return fn(m)
}
func (m *memorySocial) RebuildLikeCounters(ctx context.Context) (int64, int64, error) {
	return 0, 0, nil
}

func (m *memorySocial) SongLiked(ctx context.Context, userID, songID int64) (bool, error) {
	return m.songLikes[edge{userID, songID}], nil
}
func (m *memorySocial) AddSongLike(ctx context.Context, userID, songID int64) error {
	m.songLikes[edge{userID, songID}] = true
	return nil
}
func (m *memorySocial) RemoveSongLike(ctx context.Context, userID, songID int64) error {
	delete(m.songLikes, edge{userID, songID})
	return nil
}
func (m *memorySocial) AdjustSongLikes(ctx context.Context, songID int64, delta int64) error {
	m.songCount[songID] += delta
	if m.songCount[songID] < 0 {
		m.songCount[songID] = 0
	}
	return nil
}

func (m *memorySocial) AlbumLiked(ctx context.Context, userID, albumID int64) (bool, error) {
	return m.albumLikes[edge{userID, albumID}], nil
}
func (m *memorySocial) AddAlbumLike(ctx context.Context, userID, albumID int64) error {
	m.albumLikes[edge{userID, albumID}] = true
	return nil
}
func (m *memorySocial) RemoveAlbumLike(ctx context.Context, userID, albumID int64) error {
	delete(m.albumLikes, edge{userID, albumID})
	return nil
}
func (m *memorySocial) AdjustAlbumLikes(ctx context.Context, albumID int64, delta int64) error {
	m.albumCount[albumID] += delta
	if m.albumCount[albumID] < 0 {
		m.albumCount[albumID] = 0
	}
	return nil
}

func (m *memorySocial) Following(ctx context.Context, userID, artistID int64) (bool, error) {
	return m.follows[edge{userID, artistID}], nil
}
func (m *memorySocial) AddFollow(ctx context.Context, userID, artistID int64) error {
	m.follows[edge{userID, artistID}] = true
	return nil
}
func (m *memorySocial) RemoveFollow(ctx context.Context, userID, artistID int64) error {
	delete(m.follows, edge{userID, artistID})
	return nil
}

type fixedUsers struct{ users map[int64]*model.User }

func (f fixedUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return f.users[id], nil
}

type fixedSongs struct{ songs map[int64]*model.Song }

func (f fixedSongs) GetByID(ctx context.Context, id int64) (*model.Song, error) {
	return f.songs[id], nil
}

type fixedAlbums struct{ albums map[int64]*model.Album }

func (f fixedAlbums) GetByID(ctx context.Context, id int64) (*model.Album, error) {
	return f.albums[id], nil
}

type fixedArtists struct{ artists map[int64]*model.Artist }

func (f fixedArtists) GetByID(ctx context.Context, id int64) (*model.Artist, error) {
	return f.artists[id], nil
}

func newTestMutator(store repository.SocialRepository) *Mutator {
	return NewMutator(store,
		fixedUsers{users: map[int64]*model.User{1: {ID: 1}}},
		fixedSongs{songs: map[int64]*model.Song{10: {ID: 10}}},
		fixedAlbums{albums: map[int64]*model.Album{20: {ID: 20}}},
		fixedArtists{artists: map[int64]*model.Artist{30: {ID: 30}}},
	)
}

func TestToggleSongLike(t *testing.T) {
	store := newMemorySocial()
	m := newTestMutator(store)
	ctx := context.Background()

	liked, err := m.ToggleSongLike(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, store.songLikes[edge{1, 10}])
	assert.Equal(t, int64(1), store.songCount[10])

	liked, err = m.ToggleSongLike(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.False(t, store.songLikes[edge{1, 10}])
	assert.Equal(t, int64(0), store.songCount[10])
}

func TestToggleSongLikeOddEvenParity(t *testing.T) {
	store := newMemorySocial()
	m := newTestMutator(store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := m.ToggleSongLike(ctx, 1, 10)
		require.NoError(t, err)
	}
	// Odd number of toggles leaves the like in place, exactly once.
	assert.True(t, store.songLikes[edge{1, 10}])
	assert.Equal(t, int64(1), store.songCount[10])
}

func TestToggleSongLikeUnknownTarget(t *testing.T) {
	m := newTestMutator(newMemorySocial())
	_, err := m.ToggleSongLike(context.Background(), 1, 999)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestToggleSongLikeUnknownUser(t *testing.T) {
	m := newTestMutator(newMemorySocial())
	_, err := m.ToggleSongLike(context.Background(), 999, 10)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestToggleAlbumLike(t *testing.T) {
	store := newMemorySocial()
	m := newTestMutator(store)
	ctx := context.Background()

	liked, err := m.ToggleAlbumLike(ctx, 1, 20)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), store.albumCount[20])

	liked, err = m.ToggleAlbumLike(ctx, 1, 20)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), store.albumCount[20])
}

func TestToggleFollow(t *testing.T) {
	store := newMemorySocial()
	m := newTestMutator(store)
	ctx := context.Background()

	following, err := m.ToggleFollow(ctx, 1, 30)
	require.NoError(t, err)
	assert.True(t, following)
	assert.True(t, store.follows[edge{1, 30}])

	following, err = m.ToggleFollow(ctx, 1, 30)
	require.NoError(t, err)
	assert.False(t, following)
	assert.False(t, store.follows[edge{1, 30}])
}

func TestCounterNeverNegative(t *testing.T) {
	store := newMemorySocial()
	// Simulate drift: edge exists but the counter already reads zero.
	store.songLikes[edge{1, 10}] = true
	store.songCount[10] = 0

	m := newTestMutator(store)
	liked, err := m.ToggleSongLike(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), store.songCount[10], "counter floors at zero")
}
