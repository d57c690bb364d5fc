package formatter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/shared"
	th "github.com/desertthunder/sonata/internal/testing"
)

func testExport() *models.PlaylistExport {
	plays := 42
	return &models.PlaylistExport{
		Playlist: models.Playlist{
			Entity:      models.Entity{ID: "test123"},
			Name:        "For workplace",
			Description: "Rich Brian's collections",
			SongIDs:     []string{"song1", "song2"},
		},
		Songs: []models.Song{
			{
				Entity:    models.Entity{ID: "song1"},
				Title:     "Blinding Lights",
				Artist:    "The Weeknd",
				Album:     "After Hours",
				Duration:  "3:20",
				Genre:     "Synth-pop",
				PlayCount: &plays,
			},
			{
				Entity: models.Entity{ID: "song2"},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": JSON, "json": JSON, "CSV": CSV, "md": Markdown, "markdown": Markdown, "text": Text, "txt": Text}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil {
			t.Fatalf("ParseFormat(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestExporters(t *testing.T) {
	export := testExport()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(export)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
		}
		if lines[0] != "Position,ID,Title,Artist,Album,Duration,Genre,Plays" {
			t.Errorf("unexpected header: %s", lines[0])
		}
		if lines[1] != "1,song1,Blinding Lights,The Weeknd,After Hours,3:20,Synth-pop,42" {
			t.Errorf("unexpected first row: %s", lines[1])
		}
		if lines[2] != "2,song2,Unknown Title,Unknown Artist,,,,0" {
			t.Errorf("absent fields should fall back, got: %s", lines[2])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(export, "cover.jpg")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# For workplace",
			"![Cover](cover.jpg)",
			"**Description**: Rich Brian's collections",
			"**Songs**: 2",
			"1. The Weeknd - Blinding Lights (After Hours) [3:20]",
			"2. Unknown Artist - Unknown Title\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown Without Cover", func(t *testing.T) {
		data, _ := ExportToMarkdown(export, "")
		if strings.Contains(string(data), "![Cover]") {
			t.Error("markdown should not reference a cover")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(export)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		want := "Playlist: For workplace\nDescription: Rich Brian's collections\nSongs: 2\n\n" +
			"1. The Weeknd - Blinding Lights\n2. Unknown Artist - Unknown Title\n"
		if string(data) != want {
			t.Errorf("unexpected text export:\n%s", data)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(export)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded models.PlaylistExport
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Playlist.Name != "For workplace" || len(decoded.Songs) != 2 {
			t.Errorf("unexpected decoded export: %+v", decoded)
		}
	})

	t.Run("Render Unknown Format", func(t *testing.T) {
		if _, err := Render(export, Format("xml")); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		if _, err := DownloadImage(context.Background(), ""); err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("Status Error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		if _, err := DownloadImage(context.Background(), srv.URL); err == nil {
			t.Error("expected error for 404 response")
		}
	})

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("image-bytes"))
		}))
		defer srv.Close()

		data, err := DownloadImage(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("DownloadImage failed: %v", err)
		}
		if string(data) != "image-bytes" {
			t.Errorf("unexpected body %q", data)
		}
	})
}

func TestWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("CSV", func(t *testing.T) {
		dir := t.TempDir()
		result, err := Write(ctx, testExport(), CSV, dir)
		if err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		if len(result.Files) != 2 {
			t.Fatalf("expected 2 files, got %v", result.Files)
		}
		if result.Files[0] != filepath.Join(dir, "test123_songs.csv") {
			t.Errorf("unexpected songs file %s", result.Files[0])
		}
		th.AssertFileExists(t, result.Files[0])
		th.AssertFileExists(t, result.Files[1])

		if metadata := th.MustReadFile(t, result.Files[1]); !strings.Contains(metadata, `"name": "For workplace"`) {
			t.Errorf("metadata missing playlist name: %s", metadata)
		}
	})

	t.Run("Markdown With Cover", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg"))
		}))
		defer srv.Close()

		export := testExport()
		export.Playlist.Cover = srv.URL + "/cover.jpg"

		dir := t.TempDir()
		result, err := Write(ctx, export, Markdown, dir)
		if err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		th.AssertDirExists(t, filepath.Join(dir, "test123"))
		if result.CoverImage != filepath.Join(dir, "test123", "cover.jpg") {
			t.Errorf("unexpected cover path %q", result.CoverImage)
		}
		if readme := th.MustReadFile(t, filepath.Join(dir, "test123", "README.md")); !strings.Contains(readme, "![Cover](cover.jpg)") {
			t.Errorf("README should reference the downloaded cover:\n%s", readme)
		}
	})

	t.Run("Markdown With Broken Cover", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		export := testExport()
		export.Playlist.Cover = srv.URL

		result, err := Write(ctx, export, Markdown, t.TempDir())
		if err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if result.CoverImage != "" || len(result.Files) != 1 {
			t.Errorf("expected only README, got %+v", result)
		}
	})

	t.Run("Text And JSON", func(t *testing.T) {
		dir := t.TempDir()

		txt, err := Write(ctx, testExport(), Text, dir)
		if err != nil {
			t.Fatalf("Write txt failed: %v", err)
		}
		th.AssertFileExists(t, filepath.Join(dir, "test123_songs.txt"))

		js, err := Write(ctx, testExport(), JSON, dir)
		if err != nil {
			t.Fatalf("Write json failed: %v", err)
		}
		th.AssertFileExists(t, filepath.Join(dir, "test123.json"))

		if len(txt.Files) != 1 || len(js.Files) != 1 {
			t.Errorf("expected one file per export, got %v and %v", txt.Files, js.Files)
		}
	})

	t.Run("Missing Directory", func(t *testing.T) {
		if _, err := Write(ctx, testExport(), Text, filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export_manifest.json")
	manifest := &Manifest{
		Format:            CSV,
		TotalPlaylists:    2,
		SuccessfulExports: 1,
		FailedExports:     1,
		Results: []ManifestEntry{
			{PlaylistID: "p1", PlaylistName: "One", Success: true, Files: []string{"p1_songs.csv"}},
			{PlaylistID: "p2", PlaylistName: "Two", Error: "forbidden"},
		},
	}

	if err := WriteManifest(manifest, path); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	content := th.MustReadFile(t, path)
	for _, want := range []string{`"format": "csv"`, `"total_playlists": 2`, `"successful_exports": 1`, `"error": "forbidden"`} {
		if !strings.Contains(content, want) {
			t.Errorf("manifest missing %s", want)
		}
	}
}
