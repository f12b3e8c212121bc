//go:build !sqlite_cgo
// +build !sqlite_cgo

package storage

// Compiled by default:
//
//	CGO_ENABLED=0 go build ./...
//
// Uses the pure Go SQLite port modernc.org/sqlite, so no C compiler is needed.

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
