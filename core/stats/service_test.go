package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonique/core/apperr"
	"sonique/model"
)

var testNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

type fakeUsers struct {
	total   int64
	created map[time.Time]int64 // keyed by window start
}

func (f *fakeUsers) CountAll(ctx context.Context) (int64, error) { return f.total, nil }
func (f *fakeUsers) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return f.created[from], nil
}

type fakeStreams struct {
	countBetween    map[time.Time]int64
	countBySong     map[int64]int64
	countBySongs    int64
	countInWindow   map[time.Time]int64
	distinctSongs   map[time.Time][]int64
	listeners       map[time.Time]int64
	topSongs        []model.PlayCount
	topArtists      []model.PlayCount
}

func (f *fakeStreams) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return f.countBetween[from], nil
}
func (f *fakeStreams) CountBySong(ctx context.Context, songID int64) (int64, error) {
	return f.countBySong[songID], nil
}
func (f *fakeStreams) CountBySongs(ctx context.Context, songIDs []int64) (int64, error) {
	return f.countBySongs, nil
}
func (f *fakeStreams) CountBySongsBetween(ctx context.Context, songIDs []int64, from, to time.Time) (int64, error) {
	return f.countInWindow[from], nil
}
func (f *fakeStreams) DistinctSongIDs(ctx context.Context, from, to time.Time) ([]int64, error) {
	return f.distinctSongs[from], nil
}
func (f *fakeStreams) DistinctListeners(ctx context.Context, songIDs []int64, from, to time.Time) (int64, error) {
	return f.listeners[from], nil
}
func (f *fakeStreams) TopSongs(ctx context.Context, from, to time.Time, limit int) ([]model.PlayCount, error) {
	if len(f.topSongs) > limit {
		return f.topSongs[:limit], nil
	}
	return f.topSongs, nil
}
func (f *fakeStreams) TopArtists(ctx context.Context, from, to time.Time, limit int) ([]model.PlayCount, error) {
	if len(f.topArtists) > limit {
		return f.topArtists[:limit], nil
	}
	return f.topArtists, nil
}

type fakeSongs struct {
	details  map[int64]*model.SongDetail
	byArtist map[int64][]int64
	recent   []*model.Song
}

func (f *fakeSongs) DetailsByIDs(ctx context.Context, ids []int64) ([]*model.SongDetail, error) {
	var out []*model.SongDetail
	for _, id := range ids {
		if d, ok := f.details[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}
func (f *fakeSongs) CountDistinctArtists(ctx context.Context, songIDs []int64) (int64, error) {
	artists := make(map[int64]struct{})
	for _, id := range songIDs {
		if d, ok := f.details[id]; ok {
			artists[d.ArtistID] = struct{}{}
		}
	}
	return int64(len(artists)), nil
}
func (f *fakeSongs) IDsByArtist(ctx context.Context, artistID int64) ([]int64, error) {
	return f.byArtist[artistID], nil
}
func (f *fakeSongs) RecentByArtist(ctx context.Context, artistID int64, limit int) ([]*model.Song, error) {
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

type fakeArtists struct {
	artists   map[int64]*model.Artist
	byUser    map[int64]*model.Artist
	followers int64
	inWindow  map[time.Time]int64
}

func (f *fakeArtists) GetByIDs(ctx context.Context, ids []int64) ([]*model.Artist, error) {
	var out []*model.Artist
	for _, id := range ids {
		if a, ok := f.artists[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}
func (f *fakeArtists) GetByUserID(ctx context.Context, userID int64) (*model.Artist, error) {
	return f.byUser[userID], nil
}
func (f *fakeArtists) FollowerCount(ctx context.Context, artistID int64) (int64, error) {
	return f.followers, nil
}
func (f *fakeArtists) FollowerCountBetween(ctx context.Context, artistID int64, from, to time.Time) (int64, error) {
	return f.inWindow[from], nil
}

func songDetail(id, artistID int64, name string) *model.SongDetail {
	return &model.SongDetail{Song: model.Song{ID: id, ArtistID: artistID, Name: name}}
}

func TestAdminDashboard(t *testing.T) {
	cur, prev := MonthWindows(testNow)

	users := &fakeUsers{
		total:   100,
		created: map[time.Time]int64{cur.From: 30, prev.From: 20},
	}
	streams := &fakeStreams{
		countBetween:  map[time.Time]int64{cur.From: 200, prev.From: 100},
		distinctSongs: map[time.Time][]int64{cur.From: {1, 2}, prev.From: {3}},
		topSongs:      []model.PlayCount{{ID: 1, Count: 50}, {ID: 99, Count: 30}, {ID: 2, Count: 10}},
		topArtists:    []model.PlayCount{{ID: 10, Count: 60}, {ID: 11, Count: 40}},
	}
	songs := &fakeSongs{
		details: map[int64]*model.SongDetail{
			1: songDetail(1, 10, "one"),
			2: songDetail(2, 11, "two"),
			3: songDetail(3, 10, "three"),
		},
	}
	artists := &fakeArtists{
		artists: map[int64]*model.Artist{
			10: {ID: 10, Name: "alpha"},
			11: {ID: 11, Name: "beta"},
		},
	}

	svc := NewService(users, streams, songs, artists, WithClock(func() time.Time { return testNow }))
	dash, err := svc.AdminDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(100), dash.TotalUsers)
	assert.Equal(t, int64(30), dash.CurrentMonthUsers)
	assert.Equal(t, 50.0, dash.UserGrowth)
	assert.Equal(t, int64(200), dash.CurrentMonthStreams)
	assert.Equal(t, 100.0, dash.StreamGrowth)
	assert.Equal(t, int64(2), dash.ActiveArtists)
	assert.Equal(t, 100.0, dash.ArtistGrowth)

	// Song 99 no longer resolves: dropped, count order preserved.
	require.Len(t, dash.TopTracks, 2)
	assert.Equal(t, int64(1), dash.TopTracks[0].Song.ID)
	assert.Equal(t, int64(50), dash.TopTracks[0].Count)
	assert.Equal(t, int64(2), dash.TopTracks[1].Song.ID)
	assert.Equal(t, int64(10), dash.TopTracks[1].Count)

	require.Len(t, dash.TopArtists, 2)
	assert.Equal(t, "alpha", dash.TopArtists[0].Artist.Name)
	assert.Equal(t, int64(60), dash.TopArtists[0].Count)
}

func TestAdminDashboardTopTracksCapped(t *testing.T) {
	cur, prev := MonthWindows(testNow)

	songs := &fakeSongs{details: map[int64]*model.SongDetail{}}
	streams := &fakeStreams{
		countBetween:  map[time.Time]int64{},
		distinctSongs: map[time.Time][]int64{cur.From: nil, prev.From: nil},
	}
	for i := int64(1); i <= 15; i++ {
		songs.details[i] = songDetail(i, 1, "song")
		streams.topSongs = append(streams.topSongs, model.PlayCount{ID: i, Count: 100 - i})
	}

	svc := NewService(&fakeUsers{created: map[time.Time]int64{}}, streams, songs,
		&fakeArtists{artists: map[int64]*model.Artist{}},
		WithClock(func() time.Time { return testNow }))
	dash, err := svc.AdminDashboard(context.Background())
	require.NoError(t, err)
	assert.Len(t, dash.TopTracks, 10)
}

func TestArtistDashboard(t *testing.T) {
	cur, prev := MonthWindows(testNow)

	streams := &fakeStreams{
		countBySongs:  500,
		countInWindow: map[time.Time]int64{cur.From: 80, prev.From: 40},
		listeners:     map[time.Time]int64{cur.From: 25, prev.From: 0},
		countBySong:   map[int64]int64{7: 12},
	}
	songs := &fakeSongs{
		byArtist: map[int64][]int64{3: {7, 8}},
		recent:   []*model.Song{{ID: 7, Name: "latest"}},
	}
	artists := &fakeArtists{
		byUser:    map[int64]*model.Artist{42: {ID: 3, UserID: 42, Name: "gamma"}},
		followers: 90,
		inWindow:  map[time.Time]int64{cur.From: 10, prev.From: 5},
	}

	svc := NewService(&fakeUsers{created: map[time.Time]int64{}}, streams, songs, artists,
		WithClock(func() time.Time { return testNow }))
	dash, err := svc.ArtistDashboard(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(3), dash.ArtistID)
	assert.Equal(t, int64(500), dash.TotalStreams)
	assert.Equal(t, int64(80), dash.CurrentMonthStreams)
	assert.Equal(t, 100.0, dash.StreamGrowth)
	assert.Equal(t, int64(25), dash.MonthlyListeners)
	assert.Equal(t, 100.0, dash.ListenerGrowth, "listeners grew from zero")
	assert.Equal(t, int64(90), dash.TotalFollowers)
	assert.Equal(t, 100.0, dash.FollowerGrowth)

	require.Len(t, dash.RecentSongs, 1)
	assert.Equal(t, "latest", dash.RecentSongs[0].Name)
	assert.Equal(t, int64(12), dash.RecentSongs[0].TotalStreams)
}

func TestArtistDashboardNoProfile(t *testing.T) {
	svc := NewService(&fakeUsers{created: map[time.Time]int64{}}, &fakeStreams{}, &fakeSongs{},
		&fakeArtists{byUser: map[int64]*model.Artist{}},
		WithClock(func() time.Time { return testNow }))
	_, err := svc.ArtistDashboard(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
