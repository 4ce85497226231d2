// Package api is the command surface the editor host talks to. Every
// command name maps to exactly one handler in an explicit table that is
// checked when the API is built; calling a name that is not in the table is
// an error result, never a panic.
//
// Handlers return structured results: {success: true, data} or
// {error: true, msg, data}. File pickers and save dialogs belong to the
// host and are reached through the Dialogs interface.
package api
