// Package buildinfo reads the buildinfo.json files shipped with the editor
// bundles and compares the core version a project was saved with against the
// running one.
package buildinfo
