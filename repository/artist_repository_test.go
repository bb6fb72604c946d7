package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Search text goes into a LIKE clause, so wildcard characters typed by the
// user must reach the driver escaped or "%" would match every row.
func TestSearchByNameEscapesWildcards(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "name", "bio", "image", "created_at", "updated_at",
	})
	mock.ExpectQuery("SELECT .+ FROM artists WHERE LOWER\\(name\\) LIKE").
		WithArgs(`50\% off\_tour`).
		WillReturnRows(rows)

	repo := NewMySQLArtistRepository(db)
	_, err = repo.SearchByName(context.Background(), "50% off_tour")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
