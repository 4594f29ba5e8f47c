// Package sqlite implements the ledger storage interfaces on SQLite.
//
// The store opens a single database file, applies embedded migrations on
// startup, and persists timestamps as UTC millisecond integers. Enum values
// cross the SQL boundary as lowercase labels, never as raw ordinals.
package sqlite
