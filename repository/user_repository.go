package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sonique/model"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
	CountAll(ctx context.Context) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	LikedSongIDs(ctx context.Context, userID int64) ([]int64, error)
	LikedAlbumIDs(ctx context.Context, userID int64) ([]int64, error)
	FollowedArtistIDs(ctx context.Context, userID int64) ([]int64, error)
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

const userColumns = "id, username, email, password_hash, role, phone, dob, location, profile_pic, created_at, updated_at"

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Role, &user.Phone, &user.DOB, &user.Location, &user.ProfilePic,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create adds a new user. Returns ErrDuplicate when username or email collide.
func (r *mysqlUserRepository) Create(ctx context.Context, user *model.User) (int64, error) {
	query := `INSERT INTO users (username, email, password_hash, role, phone, dob, location, profile_pic, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash,
		user.Role, user.Phone, user.DOB, user.Location, user.ProfilePic, now, now)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("username or email taken: %w", ErrDuplicate)
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return res.LastInsertId()
}

func (r *mysqlUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user row for ID %d: %w", id, err)
	}
	return user, nil
}

func (r *mysqlUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user row for email %s: %w", email, err)
	}
	return user, nil
}

func (r *mysqlUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user row for username %s: %w", username, err)
	}
	return user, nil
}

func (r *mysqlUserRepository) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *mysqlUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET username = ?, email = ?, password_hash = ?, role = ?,
		phone = ?, dob = ?, location = ?, profile_pic = ?, updated_at = NOW() WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash,
		user.Role, user.Phone, user.DOB, user.Location, user.ProfilePic, user.ID)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("username or email taken: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	return nil
}

// Delete removes the user and their social edges, decrementing the like
// counters on the songs and albums they had liked in the same transaction.
// Stream rows stay: the play log is append-only and analytics drop
// unresolvable references.
func (r *mysqlUserRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete user tx: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		decrementLikedSongs,
		decrementLikedAlbums,
		"DELETE FROM song_likes WHERE user_id = ?",
		"DELETE FROM album_likes WHERE user_id = ?",
		"DELETE FROM artist_follows WHERE user_id = ?",
		"DELETE FROM playlist_songs WHERE playlist_id IN (SELECT id FROM playlists WHERE user_id = ?)",
		"DELETE FROM playlists WHERE user_id = ?",
		"DELETE FROM users WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("failed to delete user %d: %w", id, err)
		}
	}
	return tx.Commit()
}

func (r *mysqlUserRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *mysqlUserRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE created_at >= ? AND created_at < ?", from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count users in window: %w", err)
	}
	return n, nil
}

func (r *mysqlUserRepository) LikedSongIDs(ctx context.Context, userID int64) ([]int64, error) {
	return r.idList(ctx,
		"SELECT song_id FROM song_likes WHERE user_id = ? ORDER BY created_at", userID)
}

func (r *mysqlUserRepository) LikedAlbumIDs(ctx context.Context, userID int64) ([]int64, error) {
	return r.idList(ctx,
		"SELECT album_id FROM album_likes WHERE user_id = ? ORDER BY created_at", userID)
}

func (r *mysqlUserRepository) FollowedArtistIDs(ctx context.Context, userID int64) ([]int64, error) {
	return r.idList(ctx,
		"SELECT artist_id FROM artist_follows WHERE user_id = ? ORDER BY created_at", userID)
}

func (r *mysqlUserRepository) idList(ctx context.Context, query string, userID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query id list: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
