// Package session owns the single active project of the process.
//
// A Manager is the explicit context every project operation goes through: it
// loads, creates, saves and backs up the active project, keeps the active
// project pointer in the settings store, and registers every successful load
// in the recent-projects cache. Nothing here is safe for concurrent use; the
// process is the only writer of the files it touches.
package session
