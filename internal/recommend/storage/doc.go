// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

// Package storage persists model bundles on the local filesystem.
//
// # Storage Format
//
// Every artifact is a file named {name}_v{version}.gob.gz holding a
// gob-encoded header (metadata plus SHA-256 checksum of the payload) and the
// gzip-compressed gob payload. A bundle version N is made of:
//
//	factors_vN.gob.gz   user and item factor matrices with training info
//	mappings_vN.gob.gz  the four id/index lookup tables
//	books_vN.gob.gz     metadata of the mapped books
//	manifest_vN.gob.gz  checksums and shapes of the three above
//
// The manifest is written last, so a crash mid-save leaves the previous
// version as the latest complete bundle. Files are written to a temporary
// name and renamed into place.
package storage
