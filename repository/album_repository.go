package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sonique/model"
)

// AlbumRepository defines album operations.
type AlbumRepository interface {
	Create(ctx context.Context, album *model.Album) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Album, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Album, error)
	// List returns all albums ordered by likes descending.
	List(ctx context.Context) ([]*model.Album, error)
	ListByArtist(ctx context.Context, artistID int64) ([]*model.Album, error)
	Update(ctx context.Context, album *model.Album) error
	Delete(ctx context.Context, id int64) error
	// Search matches by name substring or by owning artist, most liked first.
	Search(ctx context.Context, q string, artistIDs []int64) ([]*model.AlbumDetail, error)
}

type mysqlAlbumRepository struct {
	db *sql.DB
}

// NewMySQLAlbumRepository creates a new MySQL-backed AlbumRepository.
func NewMySQLAlbumRepository(db *sql.DB) AlbumRepository {
	return &mysqlAlbumRepository{db: db}
}

const albumColumns = "id, name, `desc`, artist_id, image, release_date, likes, bg_color, created_at, updated_at"

func scanAlbum(row interface{ Scan(...interface{}) error }) (*model.Album, error) {
	a := &model.Album{}
	err := row.Scan(&a.ID, &a.Name, &a.Desc, &a.ArtistID, &a.Image,
		&a.ReleaseDate, &a.Likes, &a.BgColor, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *mysqlAlbumRepository) Create(ctx context.Context, album *model.Album) (int64, error) {
	query := "INSERT INTO albums (name, `desc`, artist_id, image, release_date, likes, bg_color, created_at, updated_at) VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)"

	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, album.Name, album.Desc, album.ArtistID,
		album.Image, album.ReleaseDate, album.BgColor, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to create album: %w", err)
	}
	return res.LastInsertId()
}

func (r *mysqlAlbumRepository) GetByID(ctx context.Context, id int64) (*model.Album, error) {
	a, err := scanAlbum(r.db.QueryRowContext(ctx,
		"SELECT "+albumColumns+" FROM albums WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan album row for ID %d: %w", id, err)
	}
	return a, nil
}

func (r *mysqlAlbumRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.Album, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM albums WHERE id IN (%s)", albumColumns, placeholders(len(ids)))
	rows, err := r.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums by ids: %w", err)
	}
	defer rows.Close()
	return collectAlbums(rows)
}

func (r *mysqlAlbumRepository) List(ctx context.Context) ([]*model.Album, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+albumColumns+" FROM albums ORDER BY likes DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	defer rows.Close()
	return collectAlbums(rows)
}

func (r *mysqlAlbumRepository) ListByArtist(ctx context.Context, artistID int64) ([]*model.Album, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+albumColumns+" FROM albums WHERE artist_id = ? ORDER BY release_date DESC", artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums for artist %d: %w", artistID, err)
	}
	defer rows.Close()
	return collectAlbums(rows)
}

func (r *mysqlAlbumRepository) Update(ctx context.Context, album *model.Album) error {
	query := "UPDATE albums SET name = ?, `desc` = ?, image = ?, release_date = ?, bg_color = ?, updated_at = NOW() WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, album.Name, album.Desc, album.Image,
		album.ReleaseDate, album.BgColor, album.ID)
	if err != nil {
		return fmt.Errorf("failed to update album %d: %w", album.ID, err)
	}
	return nil
}

func (r *mysqlAlbumRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete album tx: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM album_likes WHERE album_id = ?",
		"DELETE FROM albums WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("failed to delete album %d: %w", id, err)
		}
	}
	return tx.Commit()
}

func (r *mysqlAlbumRepository) Search(ctx context.Context, q string, artistIDs []int64) ([]*model.AlbumDetail, error) {
	query := `SELECT al.id, al.name, al.` + "`desc`" + `, al.artist_id, al.image, al.release_date,
			al.likes, al.bg_color, al.created_at, al.updated_at, COALESCE(ar.name, '')
		FROM albums al
		LEFT JOIN artists ar ON ar.id = al.artist_id
		WHERE LOWER(al.name) LIKE CONCAT('%', LOWER(?), '%')`
	args := []interface{}{escapeLike(q)}
	if len(artistIDs) > 0 {
		query += fmt.Sprintf(" OR al.artist_id IN (%s)", placeholders(len(artistIDs)))
		args = append(args, int64Args(artistIDs)...)
	}
	query += " ORDER BY al.likes DESC, al.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search albums: %w", err)
	}
	defer rows.Close()

	var details []*model.AlbumDetail
	for rows.Next() {
		d := &model.AlbumDetail{}
		err := rows.Scan(&d.ID, &d.Name, &d.Desc, &d.ArtistID, &d.Image, &d.ReleaseDate,
			&d.Likes, &d.BgColor, &d.CreatedAt, &d.UpdatedAt, &d.ArtistName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album detail row: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func collectAlbums(rows *sql.Rows) ([]*model.Album, error) {
	var albums []*model.Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album row: %w", err)
		}
		albums = append(albums, a)
	}
	return albums, rows.Err()
}
