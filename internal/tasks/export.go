package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/sonata/internal/formatter"
	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/shared"
)

const (
	DefaultExportWorkers = 4
	MaxExportWorkers     = 10
	DefaultExportRate    = 10.0
)

// PlaylistSource resolves a playlist owned by userID together with its songs.
type PlaylistSource interface {
	ExportPlaylist(ctx context.Context, userID, id string) (*models.PlaylistExport, error)
}

// ExportOpts contains configuration for bulk playlist exports.
type ExportOpts struct {
	Format     formatter.Format // Export format
	OutputDir  string           // Base output directory (default: sonata_export_{epoch})
	NumWorkers int              // Concurrent writers (default: 4, max: 10)
	RateLimit  float64          // Playlist fetches per second (default: 10)
}

// ExportResult summarizes a bulk export; it is also written to disk as the manifest.
type ExportResult struct {
	formatter.Manifest
	ManifestPath string
}

type exportJob struct {
	playlistID string
	export     *models.PlaylistExport
}

// ExportEngine writes playlists to disk with a pool of workers.
type ExportEngine struct {
	source PlaylistSource
	logger *log.Logger
}

// NewExportEngine creates an export engine reading playlists from source.
func NewExportEngine(source PlaylistSource, logger *log.Logger) *ExportEngine {
	return &ExportEngine{source: source, logger: logger}
}

// BulkExport exports the given playlists of userID concurrently with rate-limited fetches and progress tracking.
//
// A playlist that cannot be fetched or written is recorded as failed; the rest of the batch continues.
// A manifest summarizing every result is written to the output directory.
func (e *ExportEngine) BulkExport(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	userID string,
	ids []string,
	opts ExportOpts,
) (*ExportResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: playlist source not initialized", shared.ErrServiceUnavailable)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no playlists to export", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = formatter.JSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("sonata_export_%d", time.Now().Unix())
	}
	opts.NumWorkers = min(max(opts.NumWorkers, 0), MaxExportWorkers)
	if opts.NumWorkers == 0 {
		opts.NumWorkers = DefaultExportWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultExportRate
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{Manifest: formatter.Manifest{
		Format:          opts.Format,
		GeneratedAt:     time.Now().UTC(),
		OutputDirectory: opts.OutputDir,
		TotalPlaylists:  len(ids),
		Results:         make([]formatter.ManifestEntry, 0, len(ids)),
	}}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, len(ids))
	results := make(chan formatter.ManifestEntry, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)

		sendProgress(progress, fetchPlaylistUpdate(0, len(ids)))
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			export, err := e.source.ExportPlaylist(ctx, userID, id)
			if err != nil {
				results <- formatter.ManifestEntry{
					PlaylistID:   id,
					PlaylistName: fmt.Sprintf("Unknown (%s)", id),
					Error:        fmt.Sprintf("failed to fetch playlist: %v", err),
				}
				continue
			}

			jobs <- exportJob{playlistID: id, export: export}
			sendProgress(progress, exportingPlaylistUpdate(i+1, len(ids), export.Playlist.Name))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(progress, exportCompletedUpdate(completed, len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(progress, exportFailedUpdate(completed, len(ids), res.PlaylistName, fmt.Errorf("%s", res.Error)))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export interrupted: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(&result.Manifest, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	e.logger.Info("bulk export finished",
		"dir", opts.OutputDir,
		"succeeded", result.SuccessfulExports,
		"failed", result.FailedExports,
	)
	return result, nil
}

// exportWorker writes playlists from the jobs channel until it is drained.
func (e *ExportEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- formatter.ManifestEntry,
	opts ExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		entry := formatter.ManifestEntry{
			PlaylistID:   job.playlistID,
			PlaylistName: job.export.Playlist.Name,
		}

		written, err := formatter.Write(ctx, job.export, opts.Format, opts.OutputDir)
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Success = true
			entry.Files = written.Files
		}
		results <- entry
	}
}
