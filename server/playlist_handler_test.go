package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"sonique/model"
)

type fakePlaylists struct {
	playlists map[int64]*model.Playlist
	deleted   []int64
	updated   []int64
}

func (f *fakePlaylists) Create(ctx context.Context, p *model.Playlist) (int64, error) {
	return 1, nil
}
func (f *fakePlaylists) GetByID(ctx context.Context, id int64) (*model.Playlist, error) {
	return f.playlists[id], nil
}
func (f *fakePlaylists) ListByUser(ctx context.Context, userID int64) ([]*model.Playlist, error) {
	return nil, nil
}
func (f *fakePlaylists) Update(ctx context.Context, p *model.Playlist) error {
	f.updated = append(f.updated, p.ID)
	return nil
}
func (f *fakePlaylists) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakePlaylists) AddSong(ctx context.Context, playlistID, songID int64) error { return nil }
func (f *fakePlaylists) RemoveSong(ctx context.Context, playlistID, songID int64) error {
	return nil
}
func (f *fakePlaylists) SongIDs(ctx context.Context, playlistID int64) ([]int64, error) {
	return nil, nil
}

func playlistRequest(t *testing.T, method string, userID int64, role string, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(method, "/api/playlists/5", strings.NewReader(body))
	r = mux.SetURLVars(r, map[string]string{"id": "5"})
	ctx := context.WithValue(r.Context(), userIDContextKey, userID)
	ctx = context.WithValue(ctx, roleContextKey, role)
	return r.WithContext(ctx)
}

func TestPlaylistMutationsOwnerOnly(t *testing.T) {
	// Playlists are personal: the admin role grants no access to another
	// user's playlist.
	playlists := &fakePlaylists{
		playlists: map[int64]*model.Playlist{5: {ID: 5, UserID: 1, Title: "mine"}},
	}
	h := &APIHandler{playlists: playlists}

	w := httptest.NewRecorder()
	h.UpdatePlaylistHandler(w, playlistRequest(t, http.MethodPut, 99, model.RoleAdmin, `{"title":"taken"}`))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	h.DeletePlaylistHandler(w, playlistRequest(t, http.MethodDelete, 99, model.RoleAdmin, ""))
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Empty(t, playlists.updated)
	assert.Empty(t, playlists.deleted)
}

func TestPlaylistMutationsOwnerAllowed(t *testing.T) {
	playlists := &fakePlaylists{
		playlists: map[int64]*model.Playlist{5: {ID: 5, UserID: 1, Title: "mine"}},
	}
	h := &APIHandler{playlists: playlists}

	w := httptest.NewRecorder()
	h.UpdatePlaylistHandler(w, playlistRequest(t, http.MethodPut, 1, model.RoleUser, `{"title":"renamed"}`))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{5}, playlists.updated)

	w = httptest.NewRecorder()
	h.DeletePlaylistHandler(w, playlistRequest(t, http.MethodDelete, 1, model.RoleUser, ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{5}, playlists.deleted)
}
