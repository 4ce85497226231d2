// Package userdata manages the ~/.patchdesk/ directory structure: the
// settings storage directory, the shared op tree and the asset library. It
// resolves their locations, creates them with the right permissions and
// checks their health.
package userdata
