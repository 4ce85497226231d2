// Package cli implements the patchdesk command tree. Every command runs
// headless against the same settings store, session and command registry
// the editor host uses.
package cli
