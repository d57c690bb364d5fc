// Package models defines domain entities and persistence interfaces for the sonata music catalog.
//
// The package contains two categories of types:
//
// 1. Catalog entities: songs and the curated featured entry
//   - [Song] : Catalog entry with optional genre, release date and play count
//   - [Featured] : Highlighted song with background artwork and lyrics
//
// 2. Library entities: data owned by a signed-in user
//   - [User] : Account created by email sign-up or an OAuth provider
//   - [Session] : Opaque bearer token resolving to a user
//   - [Playlist] : Named, user-owned set of songs
//   - [Like] : A user's like of a single song
//
// Persistent entities embed [Entity] for identity, ordering, timestamps and soft delete support,
// and implement [Model] so repositories can validate them before writing.
package models
