// Package discover holds the listener-facing query features: the
// recommendation scorer and the cross-entity search aggregator.
package discover

import (
	"context"
	"sort"

	"sonique/core/apperr"
	"sonique/model"
)

const (
	topSignals     = 3
	maxRecommended = 12
)

// UserStore resolves the listener and their liked songs.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	LikedSongIDs(ctx context.Context, userID int64) ([]int64, error)
}

// SongStore resolves liked songs and selects candidates.
type SongStore interface {
	DetailsByIDs(ctx context.Context, ids []int64) ([]*model.SongDetail, error)
	FindCandidates(ctx context.Context, genres []string, artistIDs, excludeIDs []int64, limit int) ([]*model.SongDetail, error)
}

// StreamStore supplies the listener's play history for implicit signals.
type StreamStore interface {
	PlayHistory(ctx context.Context, userID int64) ([]model.PlayedSong, error)
}

// Recommendations is the scored result: the genres that drove the
// selection plus up to 12 unseen songs, most viewed and newest first.
type Recommendations struct {
	TopGenres []string            `json:"topGenres"`
	Songs     []*model.SongDetail `json:"songs"`
}

// Recommender derives a listener's preferences from their liked songs
// (explicit signals) and stream history (implicit signals) and selects
// unseen songs matching them.
type Recommender struct {
	users   UserStore
	songs   SongStore
	streams StreamStore
}

// NewRecommender builds a Recommender over the given stores.
func NewRecommender(users UserStore, songs SongStore, streams StreamStore) *Recommender {
	return &Recommender{users: users, songs: songs, streams: streams}
}

// Recommend scores the listener's preferences and returns unseen songs.
// A listener with no likes and no history gets an empty list, not a
// popularity fallback.
func (r *Recommender) Recommend(ctx context.Context, userID int64) (*Recommendations, error) {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user %d not found", userID)
	}

	likedIDs, err := r.users.LikedSongIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	liked, err := r.songs.DetailsByIDs(ctx, likedIDs)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	var likedGenres []string
	var likedArtistIDs []int64
	for _, song := range liked {
		if song.Genre != "" {
			likedGenres = append(likedGenres, song.Genre)
		}
		likedArtistIDs = append(likedArtistIDs, song.ArtistID)
	}

	history, err := r.streams.PlayHistory(ctx, userID)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	genreCount := make(map[string]int)
	artistCount := make(map[int64]int)
	for _, play := range history {
		if play.Genre != "" {
			genreCount[play.Genre]++
		}
		artistCount[play.ArtistID]++
	}

	topGenres := topGenreTally(genreCount, topSignals)
	topArtistIDs := topArtistTally(artistCount, topSignals)

	genres := uniqueStrings(append(likedGenres, topGenres...))
	artistIDs := uniqueInt64s(append(likedArtistIDs, topArtistIDs...))

	result := &Recommendations{TopGenres: genres, Songs: nil}
	if len(genres) == 0 && len(artistIDs) == 0 {
		return result, nil
	}

	songs, err := r.songs.FindCandidates(ctx, genres, artistIDs, likedIDs, maxRecommended)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	result.Songs = songs
	return result, nil
}

// topGenreTally ranks genres by play count descending and keeps the top n.
// Equal counts order lexicographically so the ranking is stable per call.
func topGenreTally(counts map[string]int, n int) []string {
	genres := make([]string, 0, len(counts))
	for g := range counts {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool {
		if counts[genres[i]] != counts[genres[j]] {
			return counts[genres[i]] > counts[genres[j]]
		}
		return genres[i] < genres[j]
	})
	if len(genres) > n {
		genres = genres[:n]
	}
	return genres
}

// topArtistTally ranks artist ids by play count descending, ties ascending
// by id, and keeps the top n.
func topArtistTally(counts map[int64]int, n int) []int64 {
	ids := make([]int64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

func uniqueStrings(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	var out []string
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func uniqueInt64s(vals []int64) []int64 {
	seen := make(map[int64]struct{}, len(vals))
	var out []int64
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
