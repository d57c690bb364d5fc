package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/shared"
)

const defaultBaseURL string = "http://127.0.0.1:3000"

type songPage struct {
	Songs      []models.Song `json:"songs"`
	NextCursor string        `json:"next_cursor"`
	HasMore    bool          `json:"has_more"`
}

type songList struct {
	Songs []models.Song `json:"songs"`
}

type playlistList struct {
	Playlists []*models.Playlist `json:"playlists"`
}

// LikeStatus mirrors the like endpoints' response.
type LikeStatus struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// Session is the body returned by the sign-in and sign-up endpoints.
type Session struct {
	User    *models.User    `json:"user"`
	Session *models.Session `json:"session"`
}

// CatalogClient talks to a sonata HTTP API.
type CatalogClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewCatalogClient creates a client for the API at baseURL.
func NewCatalogClient(baseURL string, client *http.Client) *CatalogClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &CatalogClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// WithToken returns a copy of the client that authenticates with token.
func (c *CatalogClient) WithToken(token string) *CatalogClient {
	clone := *c
	clone.token = token
	return &clone
}

// Token returns the bearer token in use, if any.
func (c *CatalogClient) Token() string {
	return c.token
}

// BaseURL returns the API root the client talks to.
func (c *CatalogClient) BaseURL() string {
	return c.baseURL
}

// Page calls GET /api/songs with the cursor and limit.
func (c *CatalogClient) Page(ctx context.Context, after string, limit int) ([]models.Song, error) {
	q := url.Values{}
	if after != "" {
		q.Set("after", after)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var page songPage
	if err := c.do(ctx, http.MethodGet, withQuery("/api/songs", q), nil, &page); err != nil {
		return nil, err
	}
	return page.Songs, nil
}

// All calls GET /api/songs/all.
func (c *CatalogClient) All(ctx context.Context) ([]models.Song, error) {
	var list songList
	if err := c.do(ctx, http.MethodGet, "/api/songs/all", nil, &list); err != nil {
		return nil, err
	}
	return list.Songs, nil
}

// Search calls GET /api/songs/search.
func (c *CatalogClient) Search(ctx context.Context, term string) ([]models.Song, error) {
	var list songList
	path := withQuery("/api/songs/search", url.Values{"q": {term}})
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list.Songs, nil
}

// Song fetches a single song.
func (c *CatalogClient) Song(ctx context.Context, id string) (*models.Song, error) {
	var song models.Song
	if err := c.do(ctx, http.MethodGet, "/api/songs/"+url.PathEscape(id), nil, &song); err != nil {
		return nil, err
	}
	return &song, nil
}

// SignUp registers an account and returns its first session.
func (c *CatalogClient) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	body := map[string]string{"email": email, "password": password, "name": name}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignIn exchanges credentials for a session.
func (c *CatalogClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/signin", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut ends the client's session.
func (c *CatalogClient) SignOut(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/signout", nil, nil)
}

// Me returns the signed-in user.
func (c *CatalogClient) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ToggleLike flips the signed-in user's like on a song and reports the new state.
func (c *CatalogClient) ToggleLike(ctx context.Context, songID string) (bool, error) {
	var status LikeStatus
	if err := c.do(ctx, http.MethodPost, "/api/songs/"+url.PathEscape(songID)+"/like", nil, &status); err != nil {
		return false, err
	}
	return status.Liked, nil
}

// Likes returns the like count of a song and whether the signed-in user likes it.
func (c *CatalogClient) Likes(ctx context.Context, songID string) (*LikeStatus, error) {
	var status LikeStatus
	if err := c.do(ctx, http.MethodGet, "/api/songs/"+url.PathEscape(songID)+"/likes", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// LikedSongs returns the signed-in user's liked songs.
func (c *CatalogClient) LikedSongs(ctx context.Context) ([]models.Song, error) {
	var list songList
	if err := c.do(ctx, http.MethodGet, "/api/likes", nil, &list); err != nil {
		return nil, err
	}
	return list.Songs, nil
}

// Playlists returns the signed-in user's playlists.
func (c *CatalogClient) Playlists(ctx context.Context) ([]*models.Playlist, error) {
	var list playlistList
	if err := c.do(ctx, http.MethodGet, "/api/playlists", nil, &list); err != nil {
		return nil, err
	}
	return list.Playlists, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func (c *CatalogClient) do(ctx context.Context, method, endpoint string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// statusError converts an error response into the matching sentinel.
func statusError(resp *http.Response) error {
	var errResp struct {
		Error string `json:"error"`
	}
	detail := ""
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		detail = errResp.Error
	}
	if detail == "" {
		detail = fmt.Sprintf("status %d", resp.StatusCode)
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		sentinel = shared.ErrInvalidInput
	case http.StatusUnauthorized:
		sentinel = shared.ErrNotAuthenticated
	case http.StatusForbidden:
		sentinel = shared.ErrForbidden
	case http.StatusNotFound:
		sentinel = shared.ErrNotFound
	case http.StatusConflict:
		sentinel = shared.ErrEmailTaken
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		sentinel = shared.ErrServiceUnavailable
	default:
		sentinel = shared.ErrAPIRequest
	}
	return fmt.Errorf("%w (status %d): %s", sentinel, resp.StatusCode, detail)
}
