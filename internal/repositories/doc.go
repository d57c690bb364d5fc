// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for stable ordering.
// Repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [SongRepository] : Song catalog with cursor pagination, full scans and chart queries
//   - [PlaylistRepository] : User-owned playlists and their ordered song membership
//   - [UserRepository] : Accounts with email lookups and password hashes
//   - [SessionRepository] : Bearer tokens issued at sign-in
//   - [LikeRepository] : Per-user song likes with toggle semantics
//   - [FeaturedRepository] : The highlighted song and its lyrics
//
// Sequence numbers provide stable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
// [SongRepository.Page] uses the song sequence as its pagination order, with the last seen song ID as cursor.
package repositories
