// Package database provides SQLite-based storage for privacyguard.
//
// This package implements the HistoryDB, which keeps the most recent
// detection runs so they can be listed, labeled, compared and exported
// again later.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of a JSON
// file because:
// 1. Trimming, labeling and deleting single entries are plain SQL statements
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode lets "history list" run while a detection is saving
//
// Each run is stored as one row: a few summary columns for listing plus the
// full snapshot as JSON.
package database
