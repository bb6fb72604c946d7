package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SocialTx exposes the relationship-edge operations available inside one
// transaction. Counter adjustments floor at zero in SQL so a drifted
// counter can never go negative.
type SocialTx interface {
	SongLiked(ctx context.Context, userID, songID int64) (bool, error)
	AddSongLike(ctx context.Context, userID, songID int64) error
	RemoveSongLike(ctx context.Context, userID, songID int64) error
	AdjustSongLikes(ctx context.Context, songID int64, delta int64) error

	AlbumLiked(ctx context.Context, userID, albumID int64) (bool, error)
	AddAlbumLike(ctx context.Context, userID, albumID int64) error
	RemoveAlbumLike(ctx context.Context, userID, albumID int64) error
	AdjustAlbumLikes(ctx context.Context, albumID int64, delta int64) error

	Following(ctx context.Context, userID, artistID int64) (bool, error)
	AddFollow(ctx context.Context, userID, artistID int64) error
	RemoveFollow(ctx context.Context, userID, artistID int64) error
}

// SocialRepository runs social-graph mutations. Both sides of a
// relationship change inside a single transaction, which is what keeps the
// edge table and the denormalized counter from diverging under failure.
type SocialRepository interface {
	Transact(ctx context.Context, fn func(tx SocialTx) error) error
	// RebuildLikeCounters recomputes songs.likes and albums.likes from the
	// edge tables. The documented recovery path for counter drift.
	RebuildLikeCounters(ctx context.Context) (songsUpdated, albumsUpdated int64, err error)
}

type mysqlSocialRepository struct {
	db *sql.DB
}

// NewMySQLSocialRepository creates a new MySQL-backed SocialRepository.
func NewMySQLSocialRepository(db *sql.DB) SocialRepository {
	return &mysqlSocialRepository{db: db}
}

func (r *mysqlSocialRepository) Transact(ctx context.Context, fn func(tx SocialTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin social tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&mysqlSocialTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *mysqlSocialRepository) RebuildLikeCounters(ctx context.Context) (int64, int64, error) {
	songsRes, err := r.db.ExecContext(ctx,
		`UPDATE songs s SET s.likes = (SELECT COUNT(*) FROM song_likes sl WHERE sl.song_id = s.id)`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to rebuild song like counters: %w", err)
	}
	songsUpdated, _ := songsRes.RowsAffected()

	albumsRes, err := r.db.ExecContext(ctx,
		`UPDATE albums a SET a.likes = (SELECT COUNT(*) FROM album_likes al WHERE al.album_id = a.id)`)
	if err != nil {
		return songsUpdated, 0, fmt.Errorf("failed to rebuild album like counters: %w", err)
	}
	albumsUpdated, _ := albumsRes.RowsAffected()

	return songsUpdated, albumsUpdated, nil
}

type mysqlSocialTx struct {
	tx *sql.Tx
}

func (t *mysqlSocialTx) exists(ctx context.Context, query string, a, b int64) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(ctx, query, a, b).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

func (t *mysqlSocialTx) SongLiked(ctx context.Context, userID, songID int64) (bool, error) {
	return t.exists(ctx, "SELECT 1 FROM song_likes WHERE user_id = ? AND song_id = ?", userID, songID)
}

func (t *mysqlSocialTx) AddSongLike(ctx context.Context, userID, songID int64) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO song_likes (user_id, song_id, created_at) VALUES (?, ?, ?)", userID, songID, time.Now())
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("song already liked: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to add song like: %w", err)
	}
	return nil
}

func (t *mysqlSocialTx) RemoveSongLike(ctx context.Context, userID, songID int64) error {
	_, err := t.tx.ExecContext(ctx,
		"DELETE FROM song_likes WHERE user_id = ? AND song_id = ?", userID, songID)
	if err != nil {
		return fmt.Errorf("failed to remove song like: %w", err)
	}
	return nil
}

func (t *mysqlSocialTx) AdjustSongLikes(ctx context.Context, songID, delta int64) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE songs SET likes = GREATEST(CAST(likes AS SIGNED) + ?, 0) WHERE id = ?", delta, songID)
	if err != nil {
		return fmt.Errorf("failed to adjust song likes: %w", err)
	}
	return nil
}

func (t *mysqlSocialTx) AlbumLiked(ctx context.Context, userID, albumID int64) (bool, error) {
	return t.exists(ctx, "SELECT 1 FROM album_likes WHERE user_id = ? AND album_id = ?", userID, albumID)
}

func (t *mysqlSocialTx) AddAlbumLike(ctx context.Context, userID, albumID int64) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO album_likes (user_id, album_id, created_at) VALUES (?, ?, ?)", userID, albumID, time.Now())
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("album already liked: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to add album like: %w", err)
	}
	return nil
}

func (t *mysqlSocialTx) RemoveAlbumLike(ctx context.Context, userID, albumID int64) error {
	_, err := t.tx.ExecContext(ctx,
		"DELETE FROM album_likes WHERE user_id = ? AND album_id = ?", userID, albumID)
	if err != nil {
		return fmt.Errorf("failed to remove album like: %w", err)
	}
	return nil
}

func (t *mysqlSocialTx) AdjustAlbumLikes(ctx context.Context, albumID, delta int64) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE albums SET likes = GREATEST(CAST(likes AS SIGNED) + ?, 0) WHERE id = ?", delta, albumID)
	if err != nil {
		return fmt.Errorf("failed to adjust album likes: %w", err)
	}
	return nil
}

func (t *mysqlSocialTx) Following(ctx context.Context, userID, artistID int64) (bool, error) {
	return t.exists(ctx, "SELECT 1 FROM artist_follows WHERE user_id = ? AND artist_id = ?", userID, artistID)
}

func (t *mysqlSocialTx) AddFollow(ctx context.Context, userID, artistID int64) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO artist_follows (user_id, artist_id, created_at) VALUES (?, ?, ?)", userID, artistID, time.Now())
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("artist already followed: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to add follow: %w", err)
	}
	return nil
}

func (t *mysqlSocialTx) RemoveFollow(ctx context.Context, userID, artistID int64) error {
	_, err := t.tx.ExecContext(ctx,
		"DELETE FROM artist_follows WHERE user_id = ? AND artist_id = ?", userID, artistID)
	if err != nil {
		return fmt.Errorf("failed to remove follow: %w", err)
	}
	return nil
}
