package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/desertthunder/sonata/internal/catalog"
	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/search"
	"github.com/desertthunder/sonata/internal/shared"
)

// SongPage is the response body of GET /api/songs.
type SongPage struct {
	Songs      []models.Song `json:"songs"`
	NextCursor string        `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

// SongList is the response body of endpoints returning a song collection.
type SongList struct {
	Songs []models.Song `json:"songs"`
}

// PlaylistList is the response body of GET /api/playlists.
type PlaylistList struct {
	Playlists []*models.Playlist `json:"playlists"`
}

// LikeStatus is the response body of the like endpoints.
type LikeStatus struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// Credentials is the request body of the sign-up and sign-in endpoints.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// PlaylistRequest is the request body for creating a playlist.
type PlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AddSongRequest is the request body for adding a song to a playlist.
type AddSongRequest struct {
	SongID string `json:"song_id"`
}

func (s *Server) routes() {
	s.router.Group("/api", func(api *RouteGroup) {
		api.Get("/health", s.health)
		api.Get("/featured", s.featured)
		api.Get("/me", s.me)
		api.Get("/likes", s.likedSongs)
	})

	s.router.Group("/api/songs", func(songs *RouteGroup) {
		songs.Get("", s.listSongs)
		songs.Get("/all", s.allSongs)
		songs.Get("/search", s.searchSongs)
		songs.Get("/{id}", s.getSong)
		songs.Post("/{id}/play", s.playSong)
		songs.Post("/{id}/like", s.toggleLike)
		songs.Get("/{id}/likes", s.songLikes)
	})

	s.router.Group("/api/charts", func(charts *RouteGroup) {
		charts.Get("/top", s.chart(s.catalog.TopCharts))
		charts.Get("/new", s.chart(s.catalog.NewReleases))
		charts.Get("/recent", s.chart(s.catalog.RecentlyPlayed))
	})

	s.router.Group("/api/auth", func(session *RouteGroup) {
		session.Post("/signup", s.signUp)
		session.Post("/signin", s.signIn)
		session.Post("/signout", s.signOut)
	})

	s.router.Group("/api/playlists", func(pl *RouteGroup) {
		pl.Get("", s.listPlaylists)
		pl.Post("", s.createPlaylist)
		pl.Get("/{id}", s.getPlaylist)
		pl.Patch("/{id}", s.updatePlaylist)
		pl.Delete("/{id}", s.deletePlaylist)
		pl.Post("/{id}/songs", s.addPlaylistSong)
		pl.Delete("/{id}/songs/{songID}", s.removePlaylistSong)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, shared.ErrInvalidArgument
	}
	return n, nil
}

func (s *Server) listSongs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if limit == 0 {
		limit = search.DefaultPageSize
	}

	songs, err := s.catalog.Page(r.Context(), r.URL.Query().Get("after"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page := SongPage{Songs: songs, HasMore: len(songs) == min(limit, catalog.MaxPageLimit)}
	if len(songs) > 0 {
		page.NextCursor = songs[len(songs)-1].ID
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) allSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.catalog.All(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SongList{Songs: songs})
}

func (s *Server) searchSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SongList{Songs: songs})
}

func (s *Server) getSong(w http.ResponseWriter, r *http.Request) {
	song, err := s.catalog.Song(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) playSong(w http.ResponseWriter, r *http.Request) {
	count, err := s.catalog.Play(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"play_count": count})
}

func (s *Server) chart(fetch func(context.Context, int) ([]models.Song, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			writeError(w, r, err)
			return
		}

		songs, err := fetch(r.Context(), limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, SongList{Songs: songs})
	}
}

func (s *Server) featured(w http.ResponseWriter, r *http.Request) {
	featured, err := s.catalog.Featured(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, featured)
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.identity.SignUp(r.Context(), creds.Email, creds.Password, creds.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.identity.SignIn(r.Context(), creds.Email, creds.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	if err := s.identity.SignOut(r.Context(), TokenFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) listPlaylists(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	playlists, err := s.catalog.Playlists(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PlaylistList{Playlists: playlists})
}

func (s *Server) createPlaylist(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req PlaylistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	playlist, err := s.catalog.CreatePlaylist(r.Context(), user.ID, req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

func (s *Server) getPlaylist(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	playlist, err := s.catalog.Playlist(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) updatePlaylist(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var update catalog.PlaylistUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, r, err)
		return
	}

	playlist, err := s.catalog.UpdatePlaylist(r.Context(), user.ID, r.PathValue("id"), update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.catalog.DeletePlaylist(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addPlaylistSong(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req AddSongRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.SongID == "" {
		writeError(w, r, shared.ErrMissingArgument)
		return
	}

	playlist, err := s.catalog.AddSong(r.Context(), user.ID, r.PathValue("id"), req.SongID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) removePlaylistSong(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	playlist, err := s.catalog.RemoveSong(r.Context(), user.ID, r.PathValue("id"), r.PathValue("songID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	songID := r.PathValue("id")
	liked, err := s.catalog.ToggleLike(r.Context(), user.ID, songID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	count, err := s.catalog.LikeCount(r.Context(), songID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LikeStatus{Liked: liked, Likes: count})
}

func (s *Server) songLikes(w http.ResponseWriter, r *http.Request) {
	songID := r.PathValue("id")
	count, err := s.catalog.LikeCount(r.Context(), songID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := LikeStatus{Likes: count}
	if user, ok := UserFrom(r.Context()); ok {
		if status.Liked, err = s.catalog.IsLiked(r.Context(), user.ID, songID); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) likedSongs(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	songs, err := s.catalog.LikedSongs(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SongList{Songs: songs})
}
