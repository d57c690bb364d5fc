package tasks

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/shared"
)

//go:embed seed.yaml
var defaultSeed []byte

// DefaultSeed returns the embedded sample catalog.
func DefaultSeed() []byte {
	return defaultSeed
}

// Seed is the YAML document accepted by [SeedEngine.Import].
type Seed struct {
	Songs    []models.Song  `yaml:"songs"`
	Featured []SeedFeatured `yaml:"featured"`
}

// SeedFeatured is a featured entry; its song is imported like any other seed song.
type SeedFeatured struct {
	Song            models.Song `yaml:"song"`
	BackgroundImage string      `yaml:"background_image"`
	Lyrics          []string    `yaml:"lyrics"`
}

// ParseSeed decodes a seed document, rejecting unknown keys.
func ParseSeed(r io.Reader) (*Seed, error) {
	var seed Seed

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: invalid seed file: %v", shared.ErrInvalidInput, err)
	}
	return &seed, nil
}

// SeedResult counts what an import changed.
type SeedResult struct {
	Imported int
	Skipped  int
	Featured int
}

// SongStore is the persistence used by [SeedEngine].
type SongStore interface {
	Create(ctx context.Context, song *models.Song) error
	Get(ctx context.Context, id string) (*models.Song, error)
}

// FeaturedStore persists featured entries.
type FeaturedStore interface {
	Create(ctx context.Context, featured *models.Featured) error
}

// SeedEngine loads seed documents into the catalog.
type SeedEngine struct {
	songs    SongStore
	featured FeaturedStore
	logger   *log.Logger
}

// NewSeedEngine creates a seed importer over the given stores.
func NewSeedEngine(songs SongStore, featured FeaturedStore, logger *log.Logger) *SeedEngine {
	return &SeedEngine{songs: songs, featured: featured, logger: logger}
}

// Import parses r and stores its songs and featured entries, reporting each step on progress.
//
// Songs carrying an id that already exists are skipped, so importing the same document twice is a no-op.
func (e *SeedEngine) Import(ctx context.Context, progress chan<- ProgressUpdate, r io.Reader) (*SeedResult, error) {
	seed, err := ParseSeed(r)
	if err != nil {
		return nil, err
	}
	sendProgress(progress, parseSeedUpdate(len(seed.Songs), len(seed.Featured)))

	result := &SeedResult{}
	for i := range seed.Songs {
		song := &seed.Songs[i]

		created, err := e.ensureSong(ctx, song)
		if err != nil {
			return result, fmt.Errorf("failed to import song %q: %w", song.DisplayTitle(), err)
		}
		if created {
			result.Imported++
		} else {
			result.Skipped++
		}
		sendProgress(progress, importSongUpdate(i+1, len(seed.Songs), song, !created))
	}

	for i, entry := range seed.Featured {
		song := entry.Song
		created, err := e.ensureSong(ctx, &song)
		if err != nil {
			return result, fmt.Errorf("failed to import featured song %q: %w", song.DisplayTitle(), err)
		}
		if !created {
			result.Skipped++
			continue
		}

		featured := &models.Featured{Song: song, BackgroundImage: entry.BackgroundImage, Lyrics: entry.Lyrics}
		if err := e.featured.Create(ctx, featured); err != nil {
			return result, fmt.Errorf("failed to import featured entry: %w", err)
		}
		result.Featured++
		sendProgress(progress, importFeaturedUpdate(i+1, len(seed.Featured), featured))
	}

	e.logger.Info("seed imported", "imported", result.Imported, "skipped", result.Skipped, "featured", result.Featured)
	return result, nil
}

// ensureSong creates song unless its id is already taken. It reports whether a row was inserted.
func (e *SeedEngine) ensureSong(ctx context.Context, song *models.Song) (bool, error) {
	if song.ID != "" {
		existing, err := e.songs.Get(ctx, song.ID)
		if err == nil {
			*song = *existing
			return false, nil
		}
		if !shared.IsNotFound(err) {
			return false, err
		}
	}

	if err := e.songs.Create(ctx, song); err != nil {
		return false, err
	}
	return true, nil
}
