// Package repository implements the persistence layer over MySQL. Getters
// return (nil, nil) when a row does not exist; callers decide whether that
// is an error. Duplicate-key violations surface as ErrDuplicate so handlers
// can distinguish conflicts from store failures with errors.Is.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicate indicates a unique constraint violation.
var ErrDuplicate = errors.New("duplicate entry")

// isDuplicate reports whether err is a MySQL duplicate-key error.
func isDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// placeholders returns "?, ?, ..." with n markers for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// int64Args widens an id slice for driver argument lists.
func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// stringArgs widens a string slice for driver argument lists.
func stringArgs(vals []string) []interface{} {
	args := make([]interface{}, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}

// escapeLike escapes LIKE wildcards in user-supplied search text so "%"
// and "_" match literally instead of everything.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// Counter maintenance run when a user's like edges are bulk-removed. The
// decrement and the edge delete must share a transaction; counters floor
// at zero like every other adjustment.
const (
	decrementLikedSongs = `UPDATE songs s JOIN song_likes sl ON sl.song_id = s.id
		SET s.likes = GREATEST(CAST(s.likes AS SIGNED) - 1, 0) WHERE sl.user_id = ?`
	decrementLikedAlbums = `UPDATE albums a JOIN album_likes al ON al.album_id = a.id
		SET a.likes = GREATEST(CAST(a.likes AS SIGNED) - 1, 0) WHERE al.user_id = ?`
)
