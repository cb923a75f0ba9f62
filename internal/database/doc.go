// Package database records backup run history in a bbolt file.
//
// Runs are keyed by a big-endian sequence number so a reverse cursor walk
// returns them newest first.
package database
