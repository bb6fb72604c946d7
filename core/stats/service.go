// Package stats computes period-over-period activity metrics and top-N
// rollups from the stream log. Counting queries run in the store; the
// rollups are two-stage: the store groups and counts, the service joins
// the display records and silently drops references that no longer
// resolve. The dashboards are best-effort aggregates over whatever the
// log currently points at.
package stats

import (
	"context"
	"time"

	"sonique/core/apperr"
	"sonique/model"

	"golang.org/x/sync/errgroup"
)

const (
	topLimit         = 10
	trailingRollup   = 7 * 24 * time.Hour
	recentSongsLimit = 5
)

// UserStore is the slice of the user repository the engine needs.
type UserStore interface {
	CountAll(ctx context.Context) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// StreamStore answers windowed and grouped queries over the play log.
type StreamStore interface {
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountBySong(ctx context.Context, songID int64) (int64, error)
	CountBySongs(ctx context.Context, songIDs []int64) (int64, error)
	CountBySongsBetween(ctx context.Context, songIDs []int64, from, to time.Time) (int64, error)
	DistinctSongIDs(ctx context.Context, from, to time.Time) ([]int64, error)
	DistinctListeners(ctx context.Context, songIDs []int64, from, to time.Time) (int64, error)
	TopSongs(ctx context.Context, from, to time.Time, limit int) ([]model.PlayCount, error)
	TopArtists(ctx context.Context, from, to time.Time, limit int) ([]model.PlayCount, error)
}

// SongStore resolves songs for rollup hydration and per-artist metrics.
type SongStore interface {
	DetailsByIDs(ctx context.Context, ids []int64) ([]*model.SongDetail, error)
	CountDistinctArtists(ctx context.Context, songIDs []int64) (int64, error)
	IDsByArtist(ctx context.Context, artistID int64) ([]int64, error)
	RecentByArtist(ctx context.Context, artistID int64, limit int) ([]*model.Song, error)
}

// ArtistStore resolves artists for rollup hydration and follower metrics.
type ArtistStore interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Artist, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Artist, error)
	FollowerCount(ctx context.Context, artistID int64) (int64, error)
	FollowerCountBetween(ctx context.Context, artistID int64, from, to time.Time) (int64, error)
}

// TrackPlay is one top-tracks entry.
type TrackPlay struct {
	Song  *model.SongDetail `json:"song"`
	Count int64             `json:"count"`
}

// ArtistPlay is one top-artists entry.
type ArtistPlay struct {
	Artist *model.Artist `json:"artist"`
	Count  int64         `json:"count"`
}

// AdminDashboard is the platform-wide activity snapshot.
type AdminDashboard struct {
	TotalUsers          int64        `json:"totalUsers"`
	CurrentMonthUsers   int64        `json:"currentMonthUsers"`
	UserGrowth          float64      `json:"userGrowth"`
	CurrentMonthStreams int64        `json:"currentMonthStreams"`
	StreamGrowth        float64      `json:"streamGrowth"`
	ActiveArtists       int64        `json:"activeArtists"`
	ArtistGrowth        float64      `json:"artistGrowth"`
	TopTracks           []TrackPlay  `json:"topTracks"`
	TopArtists          []ArtistPlay `json:"topArtists"`
}

// RecentSongStats is one of the artist dashboard's latest uploads with its
// lifetime play count.
type RecentSongStats struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	TotalStreams int64     `json:"totalStreams"`
}

// ArtistDashboard is one artist's activity snapshot.
type ArtistDashboard struct {
	ArtistID            int64             `json:"artistId"`
	TotalStreams        int64             `json:"totalStreams"`
	CurrentMonthStreams int64             `json:"currentMonthStreams"`
	StreamGrowth        float64           `json:"streamGrowth"`
	MonthlyListeners    int64             `json:"monthlyListeners"`
	ListenerGrowth      float64           `json:"listenerGrowth"`
	TotalFollowers      int64             `json:"totalFollowers"`
	FollowerGrowth      float64           `json:"followerGrowth"`
	RecentSongs         []RecentSongStats `json:"recentSongs"`
}

// Service is the aggregation engine. It is stateless apart from its clock.
type Service struct {
	users   UserStore
	streams StreamStore
	songs   SongStore
	artists ArtistStore
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects the time source, letting tests pin window boundaries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds the aggregation engine over the given stores.
func NewService(users UserStore, streams StreamStore, songs SongStore, artists ArtistStore, opts ...Option) *Service {
	s := &Service{
		users:   users,
		streams: streams,
		songs:   songs,
		artists: artists,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AdminDashboard computes the platform snapshot. The counting queries are
// read-only and independent, so they fan out concurrently; composition
// waits for all of them.
func (s *Service) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	now := s.now()
	cur, prev := MonthWindows(now)
	week := TrailingWindow(now, trailingRollup)

	var (
		totalUsers, curUsers, prevUsers     int64
		curStreams, prevStreams             int64
		curActiveSongs, prevActiveSongs     []int64
		topSongCounts, topArtistCounts      []model.PlayCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { totalUsers, err = s.users.CountAll(gctx); return })
	g.Go(func() (err error) { curUsers, err = s.users.CountCreatedBetween(gctx, cur.From, cur.To); return })
	g.Go(func() (err error) { prevUsers, err = s.users.CountCreatedBetween(gctx, prev.From, prev.To); return })
	g.Go(func() (err error) { curStreams, err = s.streams.CountBetween(gctx, cur.From, cur.To); return })
	g.Go(func() (err error) { prevStreams, err = s.streams.CountBetween(gctx, prev.From, prev.To); return })
	g.Go(func() (err error) { curActiveSongs, err = s.streams.DistinctSongIDs(gctx, cur.From, cur.To); return })
	g.Go(func() (err error) { prevActiveSongs, err = s.streams.DistinctSongIDs(gctx, prev.From, prev.To); return })
	g.Go(func() (err error) { topSongCounts, err = s.streams.TopSongs(gctx, week.From, week.To, topLimit); return })
	g.Go(func() (err error) { topArtistCounts, err = s.streams.TopArtists(gctx, week.From, week.To, topLimit); return })
	if err := g.Wait(); err != nil {
		return nil, apperr.Unavailable(err)
	}

	curArtists, err := s.songs.CountDistinctArtists(ctx, curActiveSongs)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	prevArtists, err := s.songs.CountDistinctArtists(ctx, prevActiveSongs)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	topTracks, err := s.hydrateTracks(ctx, topSongCounts)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	topArtists, err := s.hydrateArtists(ctx, topArtistCounts)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	return &AdminDashboard{
		TotalUsers:          totalUsers,
		CurrentMonthUsers:   curUsers,
		UserGrowth:          Growth(curUsers, prevUsers),
		CurrentMonthStreams: curStreams,
		StreamGrowth:        Growth(curStreams, prevStreams),
		ActiveArtists:       curArtists,
		ArtistGrowth:        Growth(curArtists, prevArtists),
		TopTracks:           topTracks,
		TopArtists:          topArtists,
	}, nil
}

// ArtistDashboard computes one artist's snapshot, resolved from the owning
// user's id.
func (s *Service) ArtistDashboard(ctx context.Context, userID int64) (*ArtistDashboard, error) {
	artist, err := s.artists.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	if artist == nil {
		return nil, apperr.NotFound("no artist profile for user %d", userID)
	}

	songIDs, err := s.songs.IDsByArtist(ctx, artist.ID)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	now := s.now()
	cur, prev := MonthWindows(now)

	var (
		totalStreams, curStreams, prevStreams int64
		curListeners, prevListeners           int64
		totalFollowers                        int64
		curFollowers, prevFollowers           int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { totalStreams, err = s.streams.CountBySongs(gctx, songIDs); return })
	g.Go(func() (err error) { curStreams, err = s.streams.CountBySongsBetween(gctx, songIDs, cur.From, cur.To); return })
	g.Go(func() (err error) { prevStreams, err = s.streams.CountBySongsBetween(gctx, songIDs, prev.From, prev.To); return })
	g.Go(func() (err error) { curListeners, err = s.streams.DistinctListeners(gctx, songIDs, cur.From, cur.To); return })
	g.Go(func() (err error) { prevListeners, err = s.streams.DistinctListeners(gctx, songIDs, prev.From, prev.To); return })
	g.Go(func() (err error) { totalFollowers, err = s.artists.FollowerCount(gctx, artist.ID); return })
	g.Go(func() (err error) { curFollowers, err = s.artists.FollowerCountBetween(gctx, artist.ID, cur.From, cur.To); return })
	g.Go(func() (err error) { prevFollowers, err = s.artists.FollowerCountBetween(gctx, artist.ID, prev.From, prev.To); return })
	if err := g.Wait(); err != nil {
		return nil, apperr.Unavailable(err)
	}

	recent, err := s.songs.RecentByArtist(ctx, artist.ID, recentSongsLimit)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	recentStats := make([]RecentSongStats, 0, len(recent))
	for _, song := range recent {
		plays, err := s.streams.CountBySong(ctx, song.ID)
		if err != nil {
			return nil, apperr.Unavailable(err)
		}
		recentStats = append(recentStats, RecentSongStats{
			ID:           song.ID,
			Name:         song.Name,
			CreatedAt:    song.CreatedAt,
			TotalStreams: plays,
		})
	}

	return &ArtistDashboard{
		ArtistID:            artist.ID,
		TotalStreams:        totalStreams,
		CurrentMonthStreams: curStreams,
		StreamGrowth:        Growth(curStreams, prevStreams),
		MonthlyListeners:    curListeners,
		ListenerGrowth:      Growth(curListeners, prevListeners),
		TotalFollowers:      totalFollowers,
		FollowerGrowth:      Growth(curFollowers, prevFollowers),
		RecentSongs:         recentStats,
	}, nil
}

// hydrateTracks joins counts with song records, preserving count order and
// dropping ids that no longer resolve.
func (s *Service) hydrateTracks(ctx context.Context, counts []model.PlayCount) ([]TrackPlay, error) {
	ids := make([]int64, 0, len(counts))
	for _, pc := range counts {
		ids = append(ids, pc.ID)
	}
	details, err := s.songs.DetailsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.SongDetail, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	tracks := make([]TrackPlay, 0, len(counts))
	for _, pc := range counts {
		song, ok := byID[pc.ID]
		if !ok {
			continue
		}
		tracks = append(tracks, TrackPlay{Song: song, Count: pc.Count})
	}
	return tracks, nil
}

func (s *Service) hydrateArtists(ctx context.Context, counts []model.PlayCount) ([]ArtistPlay, error) {
	ids := make([]int64, 0, len(counts))
	for _, pc := range counts {
		ids = append(ids, pc.ID)
	}
	artists, err := s.artists.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.Artist, len(artists))
	for _, a := range artists {
		byID[a.ID] = a
	}

	plays := make([]ArtistPlay, 0, len(counts))
	for _, pc := range counts {
		artist, ok := byID[pc.ID]
		if !ok {
			continue
		}
		plays = append(plays, ArtistPlay{Artist: artist, Count: pc.Count})
	}
	return plays, nil
}
