// Package config manages process-level configuration stored at
// ~/.patchdesk/config.yaml: where the per-user storage directory lives, where
// the shared op tree and asset library are installed, and how logs are
// written. Values can be overridden with PATCHDESK_* environment variables.
package config
