// Package project holds the project ("patch") document model and its file
// codec. A project file is a single JSON document named <name>.cables; fields
// this package does not model are carried through a load/save cycle untouched.
//
// Reading validates the document against an embedded JSON schema before it is
// decoded. Anything that fails to parse or validate is reported as
// ErrParseFailure so callers can degrade to "no project" instead of failing.
package project
