package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Deleting a user removes their like edges, so the denormalized counters on
// songs and albums have to come down inside the same transaction or they
// drift until the next reconcile run.
func TestUserDeleteDecrementsLikeCounters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	const uid = int64(7)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE songs s JOIN song_likes").
		WithArgs(uid).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE albums a JOIN album_likes").
		WithArgs(uid).WillReturnResult(sqlmock.NewResult(0, 1))
	for _, q := range []string{
		"DELETE FROM song_likes WHERE user_id",
		"DELETE FROM album_likes WHERE user_id",
		"DELETE FROM artist_follows WHERE user_id",
		"DELETE FROM playlist_songs WHERE playlist_id IN",
		"DELETE FROM playlists WHERE user_id",
		"DELETE FROM users WHERE id",
	} {
		mock.ExpectExec(q).WithArgs(uid).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	repo := NewMySQLUserRepository(db)
	require.NoError(t, repo.Delete(context.Background(), uid))
	assert.NoError(t, mock.ExpectationsWereMet())
}
