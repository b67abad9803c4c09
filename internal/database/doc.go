// Package database provides SQLite-based storage for wikiwalk.
//
// This package implements the LinkDB, which stores:
//   - The first-link cache: one row per article with its resolved first
//     link, so repeat visits across walks and runs skip the network
//   - Experiment reports for historical comparison
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of
// other databases because:
//  1. No external dependencies - the database is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. A few hundred thousand cached links is well within its comfort zone
//  4. WAL mode provides good concurrent read performance
package database
