// Package settings implements the persistent key/value store behind the
// editor: a single JSON document in the storage directory holding user
// preferences, the active project pointer, and the recent-projects cache.
//
// Every non-silent Set rewrites the whole file and reloads it. A missing or
// unparsable file is never fatal; the store falls back to the compiled-in
// defaults and records that outcome so callers can tell "loaded" from
// "defaulted".
package settings
