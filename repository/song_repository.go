package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sonique/model"
)

// SongRepository defines song operations, including the query-side halves
// of search, recommendations and rollup hydration.
type SongRepository interface {
	Create(ctx context.Context, song *model.Song) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Song, error)
	// DetailsByIDs hydrates songs with album and artist names. Ids that no
	// longer resolve are simply absent from the result.
	DetailsByIDs(ctx context.Context, ids []int64) ([]*model.SongDetail, error)
	// List returns every song with display names, most viewed first.
	List(ctx context.Context) ([]*model.SongDetail, error)
	ListByArtist(ctx context.Context, artistID int64) ([]*model.Song, error)
	ListByAlbum(ctx context.Context, albumID int64) ([]*model.Song, error)
	IDsByArtist(ctx context.Context, artistID int64) ([]int64, error)
	RecentByArtist(ctx context.Context, artistID int64, limit int) ([]*model.Song, error)
	Update(ctx context.Context, song *model.Song) error
	Delete(ctx context.Context, id int64) error
	// IncrementViews bumps the play counter atomically. found is false when
	// the song id does not resolve.
	IncrementViews(ctx context.Context, id int64) (views int64, found bool, err error)
	// CountDistinctArtists counts the artists owning the given songs.
	CountDistinctArtists(ctx context.Context, songIDs []int64) (int64, error)
	// Search matches name/genre substrings or membership in the given
	// artist/album id sets, most viewed first.
	Search(ctx context.Context, q string, artistIDs, albumIDs []int64) ([]*model.SongDetail, error)
	// FindCandidates returns songs outside excludeIDs whose genre or artist
	// matches, ordered views desc then release date desc, capped at limit.
	FindCandidates(ctx context.Context, genres []string, artistIDs, excludeIDs []int64, limit int) ([]*model.SongDetail, error)
}

type mysqlSongRepository struct {
	db *sql.DB
}

// NewMySQLSongRepository creates a new MySQL-backed SongRepository.
func NewMySQLSongRepository(db *sql.DB) SongRepository {
	return &mysqlSongRepository{db: db}
}

const songColumns = "id, name, `desc`, album_id, artist_id, genre, duration, image, audio, likes, views, release_date, created_at, updated_at"

const songDetailSelect = "SELECT s.id, s.name, s.`desc`, s.album_id, s.artist_id, s.genre, s.duration, s.image, s.audio, s.likes, s.views, s.release_date, s.created_at, s.updated_at, COALESCE(al.name, ''), COALESCE(ar.name, '') " +
	"FROM songs s LEFT JOIN albums al ON al.id = s.album_id LEFT JOIN artists ar ON ar.id = s.artist_id"

func scanSong(row interface{ Scan(...interface{}) error }) (*model.Song, error) {
	s := &model.Song{}
	err := row.Scan(&s.ID, &s.Name, &s.Desc, &s.AlbumID, &s.ArtistID, &s.Genre,
		&s.Duration, &s.Image, &s.Audio, &s.Likes, &s.Views, &s.ReleaseDate,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanSongDetail(rows *sql.Rows) (*model.SongDetail, error) {
	d := &model.SongDetail{}
	err := rows.Scan(&d.ID, &d.Name, &d.Desc, &d.AlbumID, &d.ArtistID, &d.Genre,
		&d.Duration, &d.Image, &d.Audio, &d.Likes, &d.Views, &d.ReleaseDate,
		&d.CreatedAt, &d.UpdatedAt, &d.AlbumName, &d.ArtistName)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *mysqlSongRepository) Create(ctx context.Context, song *model.Song) (int64, error) {
	query := "INSERT INTO songs (name, `desc`, album_id, artist_id, genre, duration, image, audio, likes, views, release_date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?)"

	now := time.Now()
	release := song.ReleaseDate
	if release.IsZero() {
		release = now
	}
	res, err := r.db.ExecContext(ctx, query, song.Name, song.Desc, song.AlbumID,
		song.ArtistID, song.Genre, song.Duration, song.Image, song.Audio, release, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to create song: %w", err)
	}
	return res.LastInsertId()
}

func (r *mysqlSongRepository) GetByID(ctx context.Context, id int64) (*model.Song, error) {
	s, err := scanSong(r.db.QueryRowContext(ctx,
		"SELECT "+songColumns+" FROM songs WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan song row for ID %d: %w", id, err)
	}
	return s, nil
}

func (r *mysqlSongRepository) DetailsByIDs(ctx context.Context, ids []int64) ([]*model.SongDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("%s WHERE s.id IN (%s)", songDetailSelect, placeholders(len(ids)))
	rows, err := r.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query song details: %w", err)
	}
	defer rows.Close()
	return collectSongDetails(rows)
}

func (r *mysqlSongRepository) List(ctx context.Context) ([]*model.SongDetail, error) {
	rows, err := r.db.QueryContext(ctx, songDetailSelect+" ORDER BY s.views DESC, s.id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	defer rows.Close()
	return collectSongDetails(rows)
}

func (r *mysqlSongRepository) ListByArtist(ctx context.Context, artistID int64) ([]*model.Song, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+songColumns+" FROM songs WHERE artist_id = ? ORDER BY release_date DESC", artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs for artist %d: %w", artistID, err)
	}
	defer rows.Close()
	return collectSongs(rows)
}

func (r *mysqlSongRepository) ListByAlbum(ctx context.Context, albumID int64) ([]*model.Song, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+songColumns+" FROM songs WHERE album_id = ? ORDER BY id ASC", albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs for album %d: %w", albumID, err)
	}
	defer rows.Close()
	return collectSongs(rows)
}

func (r *mysqlSongRepository) IDsByArtist(ctx context.Context, artistID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM songs WHERE artist_id = ?", artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query song ids for artist %d: %w", artistID, err)
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

func (r *mysqlSongRepository) RecentByArtist(ctx context.Context, artistID int64, limit int) ([]*model.Song, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+songColumns+" FROM songs WHERE artist_id = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		artistID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent songs for artist %d: %w", artistID, err)
	}
	defer rows.Close()
	return collectSongs(rows)
}

func (r *mysqlSongRepository) Update(ctx context.Context, song *model.Song) error {
	query := "UPDATE songs SET name = ?, `desc` = ?, album_id = ?, genre = ?, duration = ?, image = ?, audio = ?, updated_at = NOW() WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, song.Name, song.Desc, song.AlbumID,
		song.Genre, song.Duration, song.Image, song.Audio, song.ID)
	if err != nil {
		return fmt.Errorf("failed to update song %d: %w", song.ID, err)
	}
	return nil
}

func (r *mysqlSongRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete song tx: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM song_likes WHERE song_id = ?",
		"DELETE FROM playlist_songs WHERE song_id = ?",
		"DELETE FROM songs WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("failed to delete song %d: %w", id, err)
		}
	}
	return tx.Commit()
}

func (r *mysqlSongRepository) IncrementViews(ctx context.Context, id int64) (int64, bool, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE songs SET views = views + 1 WHERE id = ?", id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment views for song %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return 0, false, nil
	}

	var views int64
	if err := r.db.QueryRowContext(ctx, "SELECT views FROM songs WHERE id = ?", id).Scan(&views); err != nil {
		return 0, false, fmt.Errorf("failed to read views for song %d: %w", id, err)
	}
	return views, true, nil
}

func (r *mysqlSongRepository) CountDistinctArtists(ctx context.Context, songIDs []int64) (int64, error) {
	if len(songIDs) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf("SELECT COUNT(DISTINCT artist_id) FROM songs WHERE id IN (%s)", placeholders(len(songIDs)))
	var n int64
	if err := r.db.QueryRowContext(ctx, query, int64Args(songIDs)...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count distinct artists: %w", err)
	}
	return n, nil
}

func (r *mysqlSongRepository) Search(ctx context.Context, q string, artistIDs, albumIDs []int64) ([]*model.SongDetail, error) {
	query := songDetailSelect +
		" WHERE LOWER(s.name) LIKE CONCAT('%', LOWER(?), '%') OR LOWER(s.genre) LIKE CONCAT('%', LOWER(?), '%')"
	escaped := escapeLike(q)
	args := []interface{}{escaped, escaped}
	if len(artistIDs) > 0 {
		query += fmt.Sprintf(" OR s.artist_id IN (%s)", placeholders(len(artistIDs)))
		args = append(args, int64Args(artistIDs)...)
	}
	if len(albumIDs) > 0 {
		query += fmt.Sprintf(" OR s.album_id IN (%s)", placeholders(len(albumIDs)))
		args = append(args, int64Args(albumIDs)...)
	}
	query += " ORDER BY s.views DESC, s.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search songs: %w", err)
	}
	defer rows.Close()
	return collectSongDetails(rows)
}

func (r *mysqlSongRepository) FindCandidates(ctx context.Context, genres []string, artistIDs, excludeIDs []int64, limit int) ([]*model.SongDetail, error) {
	if len(genres) == 0 && len(artistIDs) == 0 {
		return nil, nil
	}

	query := songDetailSelect + " WHERE 1=1"
	var args []interface{}
	if len(excludeIDs) > 0 {
		query += fmt.Sprintf(" AND s.id NOT IN (%s)", placeholders(len(excludeIDs)))
		args = append(args, int64Args(excludeIDs)...)
	}

	var match []string
	if len(genres) > 0 {
		match = append(match, fmt.Sprintf("s.genre IN (%s)", placeholders(len(genres))))
	}
	if len(artistIDs) > 0 {
		match = append(match, fmt.Sprintf("s.artist_id IN (%s)", placeholders(len(artistIDs))))
	}
	query += " AND (" + match[0]
	if len(match) > 1 {
		query += " OR " + match[1]
	}
	query += ")"
	if len(genres) > 0 {
		args = append(args, stringArgs(genres)...)
	}
	if len(artistIDs) > 0 {
		args = append(args, int64Args(artistIDs)...)
	}

	query += " ORDER BY s.views DESC, s.release_date DESC, s.id ASC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation candidates: %w", err)
	}
	defer rows.Close()
	return collectSongDetails(rows)
}

func collectSongs(rows *sql.Rows) ([]*model.Song, error) {
	var songs []*model.Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song row: %w", err)
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

func collectSongDetails(rows *sql.Rows) ([]*model.SongDetail, error) {
	var details []*model.SongDetail
	for rows.Next() {
		d, err := scanSongDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song detail row: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
