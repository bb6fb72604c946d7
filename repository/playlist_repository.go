package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sonique/model"
)

// PlaylistRepository defines playlist operations. Ownership checks live in
// the request layer; positions are dense append order.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Playlist, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Playlist, error)
	Update(ctx context.Context, playlist *model.Playlist) error
	Delete(ctx context.Context, id int64) error
	// AddSong appends the song; returns ErrDuplicate when already present.
	AddSong(ctx context.Context, playlistID, songID int64) error
	RemoveSong(ctx context.Context, playlistID, songID int64) error
	// SongIDs returns the playlist's song ids in position order.
	SongIDs(ctx context.Context, playlistID int64) ([]int64, error)
}

type mysqlPlaylistRepository struct {
	db *sql.DB
}

// NewMySQLPlaylistRepository creates a new MySQL-backed PlaylistRepository.
func NewMySQLPlaylistRepository(db *sql.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{db: db}
}

const playlistColumns = "id, title, image, user_id, created_at, updated_at"

func scanPlaylist(row interface{ Scan(...interface{}) error }) (*model.Playlist, error) {
	p := &model.Playlist{}
	err := row.Scan(&p.ID, &p.Title, &p.Image, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *mysqlPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) (int64, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO playlists (title, image, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		playlist.Title, playlist.Image, playlist.UserID, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to create playlist: %w", err)
	}
	return res.LastInsertId()
}

func (r *mysqlPlaylistRepository) GetByID(ctx context.Context, id int64) (*model.Playlist, error) {
	p, err := scanPlaylist(r.db.QueryRowContext(ctx,
		"SELECT "+playlistColumns+" FROM playlists WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan playlist row for ID %d: %w", id, err)
	}
	return p, nil
}

func (r *mysqlPlaylistRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Playlist, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+playlistColumns+" FROM playlists WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists for user %d: %w", userID, err)
	}
	defer rows.Close()

	var playlists []*model.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

func (r *mysqlPlaylistRepository) Update(ctx context.Context, playlist *model.Playlist) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE playlists SET title = ?, image = ?, updated_at = NOW() WHERE id = ?",
		playlist.Title, playlist.Image, playlist.ID)
	if err != nil {
		return fmt.Errorf("failed to update playlist %d: %w", playlist.ID, err)
	}
	return nil
}

func (r *mysqlPlaylistRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete playlist tx: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM playlist_songs WHERE playlist_id = ?",
		"DELETE FROM playlists WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("failed to delete playlist %d: %w", id, err)
		}
	}
	return tx.Commit()
}

func (r *mysqlPlaylistRepository) AddSong(ctx context.Context, playlistID, songID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin add song tx: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM playlist_songs WHERE playlist_id = ?",
		playlistID).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to compute next position: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO playlist_songs (playlist_id, song_id, position, created_at) VALUES (?, ?, ?, ?)",
		playlistID, songID, next, time.Now())
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("song already in playlist: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to add song %d to playlist %d: %w", songID, playlistID, err)
	}
	return tx.Commit()
}

func (r *mysqlPlaylistRepository) RemoveSong(ctx context.Context, playlistID, songID int64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?", playlistID, songID)
	if err != nil {
		return fmt.Errorf("failed to remove song %d from playlist %d: %w", songID, playlistID, err)
	}
	return nil
}

func (r *mysqlPlaylistRepository) SongIDs(ctx context.Context, playlistID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT song_id FROM playlist_songs WHERE playlist_id = ? ORDER BY position ASC", playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist songs: %w", err)
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
