// Package tasks runs long catalog operations with real-time progress reporting.
//
// # Seeding
//
// [SeedEngine.Import] loads a YAML document of songs and featured entries into the catalog. The sample catalog
// shipped with the binary is available from [DefaultSeed]. Songs with an id that is already stored are skipped.
//
// # Bulk Export
//
// [ExportEngine.BulkExport] fetches playlists through a [PlaylistSource] at a limited rate and hands them to a
// pool of workers that write them with package formatter. Failures are recorded per playlist and summarized in
// export_manifest.json.
//
// # Progress Reporting
//
// All operations accept an optional channel of [ProgressUpdate]. Sends never block: when the channel is full
// the update is dropped.
package tasks
