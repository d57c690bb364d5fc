package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/sonata/internal/auth"
	"github.com/desertthunder/sonata/internal/catalog"
	"github.com/desertthunder/sonata/internal/server"
	"github.com/desertthunder/sonata/internal/shared"
	tu "github.com/desertthunder/sonata/internal/testing"
)

// setupRemote starts a real API server over an in-memory database seeded with n songs.
func setupRemote(t *testing.T, n int) *CatalogClient {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	require.NoError(t, err)
	require.NoError(t, shared.RunMigrations(db))
	t.Cleanup(func() { db.Close() })

	logger := log.New(io.Discard)
	identity := auth.NewLocalProvider(db, logger)
	identity.SetCost(bcrypt.MinCost)
	svc := catalog.NewService(db, logger)

	for _, song := range tu.Songs(n) {
		song.ID = ""
		require.NoError(t, svc.Songs().Create(context.Background(), &song))
	}

	srv := httptest.NewServer(server.New(shared.ServerConfig{}, svc, identity, logger).Handler())
	t.Cleanup(srv.Close)
	return NewCatalogClient(srv.URL, srv.Client())
}

func TestNewCatalogClient(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c := NewCatalogClient("", nil)
		assert.Equal(t, defaultBaseURL, c.BaseURL())
		assert.Equal(t, http.DefaultClient, c.httpClient)
	})

	t.Run("Trims Trailing Slash", func(t *testing.T) {
		c := NewCatalogClient("http://example.com/", nil)
		assert.Equal(t, "http://example.com", c.BaseURL())
	})

	t.Run("WithToken Copies", func(t *testing.T) {
		c := NewCatalogClient("http://example.com", nil)
		authed := c.WithToken("abc")
		assert.Equal(t, "abc", authed.Token())
		assert.Empty(t, c.Token())
	})
}

func TestCatalogClient(t *testing.T) {
	ctx := context.Background()
	client := setupRemote(t, 8)

	t.Run("Pages Through Songs", func(t *testing.T) {
		first, err := client.Page(ctx, "", 6)
		require.NoError(t, err)
		require.Len(t, first, 6)
		assert.Equal(t, "Song 1", first[0].Title)

		rest, err := client.Page(ctx, first[5].ID, 6)
		require.NoError(t, err)
		require.Len(t, rest, 2)
		assert.Equal(t, "Song 7", rest[0].Title)
	})

	t.Run("All And Search", func(t *testing.T) {
		all, err := client.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 8)

		found, err := client.Search(ctx, "artist 3")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Song 3", found[0].Title)

		song, err := client.Song(ctx, found[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "Artist 3", song.Artist)

		_, err = client.Song(ctx, "missing")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Session Flow", func(t *testing.T) {
		_, err := client.Me(ctx)
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)

		session, err := client.SignUp(ctx, "fan@example.com", "password1", "Fan")
		require.NoError(t, err)
		require.NotNil(t, session.Session)

		_, err = client.SignUp(ctx, "fan@example.com", "password1", "")
		assert.ErrorIs(t, err, shared.ErrEmailTaken)

		_, err = client.SignIn(ctx, "fan@example.com", "nope-nope")
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)

		signedIn, err := client.SignIn(ctx, "fan@example.com", "password1")
		require.NoError(t, err)
		authed := client.WithToken(signedIn.Session.Token)

		user, err := authed.Me(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Fan", user.Name)

		songs, err := authed.Page(ctx, "", 1)
		require.NoError(t, err)

		liked, err := authed.ToggleLike(ctx, songs[0].ID)
		require.NoError(t, err)
		assert.True(t, liked)

		status, err := authed.Likes(ctx, songs[0].ID)
		require.NoError(t, err)
		assert.Equal(t, LikeStatus{Liked: true, Likes: 1}, *status)

		likedSongs, err := authed.LikedSongs(ctx)
		require.NoError(t, err)
		assert.Len(t, likedSongs, 1)

		playlists, err := authed.Playlists(ctx)
		require.NoError(t, err)
		assert.Empty(t, playlists)

		require.NoError(t, authed.SignOut(ctx))
		_, err = authed.Me(ctx)
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
	})
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, shared.ErrInvalidInput},
		{http.StatusForbidden, shared.ErrForbidden},
		{http.StatusTooManyRequests, shared.ErrServiceUnavailable},
		{http.StatusServiceUnavailable, shared.ErrServiceUnavailable},
		{http.StatusTeapot, shared.ErrAPIRequest},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"boom"}`))
			}))
			defer srv.Close()

			_, err := NewCatalogClient(srv.URL, nil).All(context.Background())
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorContains(t, err, "boom")
		})
	}

	t.Run("Transport Failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

		_, err := NewCatalogClient("http://example.com", client).Page(context.Background(), "", 6)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})

	t.Run("Unreadable Body", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: make(http.Header)}
		client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}

		_, err := NewCatalogClient("http://example.com", client).Song(context.Background(), "song-1")
		assert.ErrorContains(t, err, "read failed")
	})

	t.Run("Malformed Body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		_, err := NewCatalogClient(srv.URL, nil).All(context.Background())
		assert.ErrorContains(t, err, "failed to decode response")
	})
}
