package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sonique/model"
)

// StreamRepository records play events and answers the grouped and
// windowed queries the analytics layer is built on. All windows are
// half-open: from inclusive, to exclusive.
type StreamRepository interface {
	Create(ctx context.Context, stream *model.Stream) (int64, error)
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountBySong(ctx context.Context, songID int64) (int64, error)
	CountBySongs(ctx context.Context, songIDs []int64) (int64, error)
	CountBySongsBetween(ctx context.Context, songIDs []int64, from, to time.Time) (int64, error)
	// DistinctSongIDs returns the ids of songs played inside the window.
	DistinctSongIDs(ctx context.Context, from, to time.Time) ([]int64, error)
	// DistinctListeners counts distinct known users who played any of the
	// songs inside the window. Anonymous plays are excluded.
	DistinctListeners(ctx context.Context, songIDs []int64, from, to time.Time) (int64, error)
	// TopSongs groups plays by song inside the window: count descending,
	// ties broken ascending by song id, truncated to limit.
	TopSongs(ctx context.Context, from, to time.Time, limit int) ([]model.PlayCount, error)
	// TopArtists groups plays by the played song's artist. Streams whose
	// song no longer resolves are dropped by the join.
	TopArtists(ctx context.Context, from, to time.Time, limit int) ([]model.PlayCount, error)
	// PlayHistory returns one entry per resolvable stream of the user, in
	// no particular order, carrying the tally inputs for the recommender.
	PlayHistory(ctx context.Context, userID int64) ([]model.PlayedSong, error)
	// RecentSongIDs returns the user's distinct played songs, most
	// recently played first.
	RecentSongIDs(ctx context.Context, userID int64, limit int) ([]int64, error)
}

type mysqlStreamRepository struct {
	db *sql.DB
}

// NewMySQLStreamRepository creates a new MySQL-backed StreamRepository.
func NewMySQLStreamRepository(db *sql.DB) StreamRepository {
	return &mysqlStreamRepository{db: db}
}

func (r *mysqlStreamRepository) Create(ctx context.Context, stream *model.Stream) (int64, error) {
	ts := stream.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO streams (user_id, song_id, timestamp) VALUES (?, ?, ?)",
		stream.UserID, stream.SongID, ts)
	if err != nil {
		return 0, fmt.Errorf("failed to create stream: %w", err)
	}
	return res.LastInsertId()
}

func (r *mysqlStreamRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM streams WHERE timestamp >= ? AND timestamp < ?", from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count streams in window: %w", err)
	}
	return n, nil
}

func (r *mysqlStreamRepository) CountBySong(ctx context.Context, songID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM streams WHERE song_id = ?", songID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count streams for song %d: %w", songID, err)
	}
	return n, nil
}

func (r *mysqlStreamRepository) CountBySongs(ctx context.Context, songIDs []int64) (int64, error) {
	if len(songIDs) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM streams WHERE song_id IN (%s)", placeholders(len(songIDs)))
	var n int64
	if err := r.db.QueryRowContext(ctx, query, int64Args(songIDs)...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count streams by songs: %w", err)
	}
	return n, nil
}

func (r *mysqlStreamRepository) CountBySongsBetween(ctx context.Context, songIDs []int64, from, to time.Time) (int64, error) {
	if len(songIDs) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM streams WHERE song_id IN (%s) AND timestamp >= ? AND timestamp < ?",
		placeholders(len(songIDs)))
	args := append(int64Args(songIDs), from, to)
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count streams by songs in window: %w", err)
	}
	return n, nil
}

func (r *mysqlStreamRepository) DistinctSongIDs(ctx context.Context, from, to time.Time) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT song_id FROM streams WHERE timestamp >= ? AND timestamp < ?", from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct songs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan song id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *mysqlStreamRepository) DistinctListeners(ctx context.Context, songIDs []int64, from, to time.Time) (int64, error) {
	if len(songIDs) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf(
		"SELECT COUNT(DISTINCT user_id) FROM streams WHERE user_id IS NOT NULL AND song_id IN (%s) AND timestamp >= ? AND timestamp < ?",
		placeholders(len(songIDs)))
	args := append(int64Args(songIDs), from, to)
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count distinct listeners: %w", err)
	}
	return n, nil
}

func (r *mysqlStreamRepository) TopSongs(ctx context.Context, from, to time.Time, limit int) ([]model.PlayCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT song_id, COUNT(*) AS cnt FROM streams
		WHERE timestamp >= ? AND timestamp < ?
		GROUP BY song_id
		ORDER BY cnt DESC, song_id ASC
		LIMIT ?`, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top songs: %w", err)
	}
	defer rows.Close()
	return collectPlayCounts(rows)
}

func (r *mysqlStreamRepository) TopArtists(ctx context.Context, from, to time.Time, limit int) ([]model.PlayCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.artist_id, COUNT(*) AS cnt FROM streams st
		INNER JOIN songs s ON s.id = st.song_id
		WHERE st.timestamp >= ? AND st.timestamp < ?
		GROUP BY s.artist_id
		ORDER BY cnt DESC, s.artist_id ASC
		LIMIT ?`, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top artists: %w", err)
	}
	defer rows.Close()
	return collectPlayCounts(rows)
}

func (r *mysqlStreamRepository) PlayHistory(ctx context.Context, userID int64) ([]model.PlayedSong, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.genre, s.artist_id FROM streams st
		INNER JOIN songs s ON s.id = st.song_id
		WHERE st.user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query play history for user %d: %w", userID, err)
	}
	defer rows.Close()

	var history []model.PlayedSong
	for rows.Next() {
		var p model.PlayedSong
		if err := rows.Scan(&p.Genre, &p.ArtistID); err != nil {
			return nil, fmt.Errorf("failed to scan play history row: %w", err)
		}
		history = append(history, p)
	}
	return history, rows.Err()
}

func (r *mysqlStreamRepository) RecentSongIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT song_id FROM streams
		WHERE user_id = ?
		GROUP BY song_id
		ORDER BY MAX(timestamp) DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent songs for user %d: %w", userID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan song id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func collectPlayCounts(rows *sql.Rows) ([]model.PlayCount, error) {
	var counts []model.PlayCount
	for rows.Next() {
		var pc model.PlayCount
		if err := rows.Scan(&pc.ID, &pc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan play count row: %w", err)
		}
		counts = append(counts, pc)
	}
	return counts, rows.Err()
}
