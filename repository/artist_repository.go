package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sonique/model"
)

// ArtistRepository defines artist profile operations.
type ArtistRepository interface {
	Create(ctx context.Context, artist *model.Artist) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Artist, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Artist, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Artist, error)
	List(ctx context.Context) ([]*model.Artist, error)
	Update(ctx context.Context, artist *model.Artist) error
	// DeleteCascade removes the artist with their songs, albums, social
	// edges and the owning user account in one transaction. Stream rows
	// are left behind; rollups drop them once the songs stop resolving.
	DeleteCascade(ctx context.Context, artistID, userID int64) error
	SearchByName(ctx context.Context, q string) ([]*model.Artist, error)
	FollowerCount(ctx context.Context, artistID int64) (int64, error)
	FollowerCountBetween(ctx context.Context, artistID int64, from, to time.Time) (int64, error)
}

type mysqlArtistRepository struct {
	db *sql.DB
}

// NewMySQLArtistRepository creates a new MySQL-backed ArtistRepository.
func NewMySQLArtistRepository(db *sql.DB) ArtistRepository {
	return &mysqlArtistRepository{db: db}
}

const artistColumns = "id, user_id, name, bio, image, created_at, updated_at"

func scanArtist(row interface{ Scan(...interface{}) error }) (*model.Artist, error) {
	a := &model.Artist{}
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Bio, &a.Image, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *mysqlArtistRepository) Create(ctx context.Context, artist *model.Artist) (int64, error) {
	query := `INSERT INTO artists (user_id, name, bio, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, artist.UserID, artist.Name, artist.Bio, artist.Image, now, now)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("artist profile already exists for user %d: %w", artist.UserID, ErrDuplicate)
		}
		return 0, fmt.Errorf("failed to create artist: %w", err)
	}
	return res.LastInsertId()
}

func (r *mysqlArtistRepository) GetByID(ctx context.Context, id int64) (*model.Artist, error) {
	a, err := scanArtist(r.db.QueryRowContext(ctx,
		"SELECT "+artistColumns+" FROM artists WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan artist row for ID %d: %w", id, err)
	}
	return a, nil
}

func (r *mysqlArtistRepository) GetByUserID(ctx context.Context, userID int64) (*model.Artist, error) {
	a, err := scanArtist(r.db.QueryRowContext(ctx,
		"SELECT "+artistColumns+" FROM artists WHERE user_id = ?", userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan artist row for user %d: %w", userID, err)
	}
	return a, nil
}

func (r *mysqlArtistRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.Artist, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM artists WHERE id IN (%s)", artistColumns, placeholders(len(ids)))
	rows, err := r.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists by ids: %w", err)
	}
	defer rows.Close()
	return collectArtists(rows)
}

func (r *mysqlArtistRepository) List(ctx context.Context) ([]*model.Artist, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+artistColumns+" FROM artists ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", err)
	}
	defer rows.Close()
	return collectArtists(rows)
}

func (r *mysqlArtistRepository) Update(ctx context.Context, artist *model.Artist) error {
	query := "UPDATE artists SET name = ?, bio = ?, image = ?, updated_at = NOW() WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, artist.Name, artist.Bio, artist.Image, artist.ID)
	if err != nil {
		return fmt.Errorf("failed to update artist %d: %w", artist.ID, err)
	}
	return nil
}

func (r *mysqlArtistRepository) DeleteCascade(ctx context.Context, artistID, userID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete artist tx: %w", err)
	}
	defer tx.Rollback()

	steps := []struct {
		query string
		arg   int64
	}{
		// The owning account goes too, so its outgoing likes, follows and
		// playlists are cleaned up the same way a user delete does.
		{decrementLikedSongs, userID},
		{decrementLikedAlbums, userID},
		{"DELETE FROM song_likes WHERE user_id = ?", userID},
		{"DELETE FROM album_likes WHERE user_id = ?", userID},
		{"DELETE FROM artist_follows WHERE user_id = ?", userID},
		{"DELETE FROM playlist_songs WHERE playlist_id IN (SELECT id FROM playlists WHERE user_id = ?)", userID},
		{"DELETE FROM playlists WHERE user_id = ?", userID},
		{"DELETE FROM song_likes WHERE song_id IN (SELECT id FROM songs WHERE artist_id = ?)", artistID},
		{"DELETE FROM playlist_songs WHERE song_id IN (SELECT id FROM songs WHERE artist_id = ?)", artistID},
		{"DELETE FROM album_likes WHERE album_id IN (SELECT id FROM albums WHERE artist_id = ?)", artistID},
		{"DELETE FROM artist_follows WHERE artist_id = ?", artistID},
		{"DELETE FROM songs WHERE artist_id = ?", artistID},
		{"DELETE FROM albums WHERE artist_id = ?", artistID},
		{"DELETE FROM artists WHERE id = ?", artistID},
		{"DELETE FROM users WHERE id = ?", userID},
	}
	for _, s := range steps {
		if _, err := tx.ExecContext(ctx, s.query, s.arg); err != nil {
			return fmt.Errorf("failed to cascade delete artist %d: %w", artistID, err)
		}
	}
	return tx.Commit()
}

func (r *mysqlArtistRepository) SearchByName(ctx context.Context, q string) ([]*model.Artist, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+artistColumns+" FROM artists WHERE LOWER(name) LIKE CONCAT('%', LOWER(?), '%') ORDER BY name",
		escapeLike(q))
	if err != nil {
		return nil, fmt.Errorf("failed to search artists: %w", err)
	}
	defer rows.Close()
	return collectArtists(rows)
}

func (r *mysqlArtistRepository) FollowerCount(ctx context.Context, artistID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM artist_follows WHERE artist_id = ?", artistID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count followers for artist %d: %w", artistID, err)
	}
	return n, nil
}

func (r *mysqlArtistRepository) FollowerCountBetween(ctx context.Context, artistID int64, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM artist_follows WHERE artist_id = ? AND created_at >= ? AND created_at < ?",
		artistID, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count followers in window for artist %d: %w", artistID, err)
	}
	return n, nil
}

func collectArtists(rows *sql.Rows) ([]*model.Artist, error) {
	var artists []*model.Artist
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artist row: %w", err)
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}
