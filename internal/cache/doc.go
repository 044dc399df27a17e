// Package cache implements the file-backed estimate cache: a Store that loads
// and rewrites one JSON array on disk, the gap analysis that reports which
// periods of a request are not cached yet, and the session-scoped Manager that
// ties both together. A missing or unreadable cache file never fails a read;
// it degrades to "everything is missing" and a full recompute upstream.
package cache
