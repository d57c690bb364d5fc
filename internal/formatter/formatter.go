// package formatter renders playlist exports as CSV, Markdown, plain text or JSON and writes them to disk
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/shared"
)

// Format names an export encoding.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
	JSON     Format = "json"
)

// ParseFormat resolves a user-supplied format name. An empty name selects JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// ExportToCSV converts a PlaylistExport to CSV with columns: Position, ID, Title, Artist, Album, Duration, Genre, Plays
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Title", "Artist", "Album", "Duration", "Genre", "Plays"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, song := range export.Songs {
		record := []string{
			strconv.Itoa(i + 1),
			song.ID,
			song.DisplayTitle(),
			song.DisplayArtist(),
			song.Album,
			song.Duration,
			song.Genre,
			strconv.Itoa(song.Plays()),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a PlaylistExport to Markdown with an optional cover image
func ExportToMarkdown(export *models.PlaylistExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Playlist.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if export.Playlist.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", export.Playlist.Description)
	}

	fmt.Fprintf(&buf, "**Songs**: %d\n\n", len(export.Songs))

	buf.WriteString("## Songs\n\n")
	for i, song := range export.Songs {
		album := ""
		if song.Album != "" {
			album = fmt.Sprintf(" (%s)", song.Album)
		}
		duration := ""
		if song.Duration != "" {
			duration = fmt.Sprintf(" [%s]", song.Duration)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s%s\n", i+1, song.DisplayArtist(), song.DisplayTitle(), album, duration)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Playlist.Name)
	if export.Playlist.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", export.Playlist.Description)
	}
	fmt.Fprintf(&buf, "Songs: %d\n\n", len(export.Songs))

	for i, song := range export.Songs {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, song.DisplayArtist(), song.DisplayTitle())
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the full export, songs included, as indented JSON
func ExportToJSON(export *models.PlaylistExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// Render encodes export in the given format. Markdown is rendered without a cover image.
func Render(export *models.PlaylistExport, format Format) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(export)
	case Markdown:
		return ExportToMarkdown(export, "")
	case Text:
		return ExportToText(export)
	case JSON:
		return ExportToJSON(export)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without songs)
func ToMetadataJSON(playlist models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// WriteResult lists the files produced for one playlist.
type WriteResult struct {
	Files      []string
	CoverImage string
}

// Write exports a playlist into dir using the naming scheme of each format:
//   - csv: {id}_songs.csv and {id}_metadata.json
//   - markdown: {id}/README.md, plus {id}/cover.jpg when the playlist cover is a remote image
//   - txt: {id}_songs.txt
//   - json: {id}.json
func Write(ctx context.Context, export *models.PlaylistExport, format Format, dir string) (*WriteResult, error) {
	base := filepath.Join(dir, export.Playlist.ID)

	switch format {
	case CSV:
		return writeCSV(export, base)
	case Markdown:
		return writeMarkdown(ctx, export, base)
	case Text:
		return writeFile(base+"_songs.txt", export, ExportToText)
	case JSON:
		return writeFile(base+".json", export, ExportToJSON)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

func writeFile(path string, export *models.PlaylistExport, render func(*models.PlaylistExport) ([]byte, error)) (*WriteResult, error) {
	data, err := render(export)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return &WriteResult{Files: []string{path}}, nil
}

func writeCSV(export *models.PlaylistExport, base string) (*WriteResult, error) {
	songs, err := writeFile(base+"_songs.csv", export, ExportToCSV)
	if err != nil {
		return nil, err
	}

	metadata, err := writeFile(base+"_metadata.json", export, func(e *models.PlaylistExport) ([]byte, error) {
		return ToMetadataJSON(e.Playlist)
	})
	if err != nil {
		return nil, err
	}

	return &WriteResult{Files: append(songs.Files, metadata.Files...)}, nil
}

func writeMarkdown(ctx context.Context, export *models.PlaylistExport, dir string) (*WriteResult, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &WriteResult{Files: []string{}}

	var coverFilename string
	if cover := export.Playlist.Cover; strings.HasPrefix(cover, "http://") || strings.HasPrefix(cover, "https://") {
		if imageData, err := DownloadImage(ctx, cover); err != nil {
			log.Warn("failed to download cover image", "playlist", export.Playlist.ID, "err", err)
		} else {
			path := filepath.Join(dir, "cover.jpg")
			if err := os.WriteFile(path, imageData, 0644); err != nil {
				log.Warn("failed to save cover image", "path", path, "err", err)
			} else {
				coverFilename = "cover.jpg"
				result.CoverImage = path
				result.Files = append(result.Files, path)
			}
		}
	}

	data, err := ExportToMarkdown(export, coverFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	readme := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readme, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, readme)
	return result, nil
}
