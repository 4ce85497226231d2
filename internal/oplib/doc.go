// Package oplib knows how ops are named, where their definitions live on
// disk, and what renaming one would break.
//
// An op name is a dotted path starting with "Ops.", optionally followed by a
// version suffix "_v<N>" (no suffix is version 1). Everything up to and
// including the last dot is the op's namespace. The second path element
// decides the kind of op: Patch, User, Team, Extension and Standalone are
// special namespaces, anything else is core.
//
// A Registry is an immutable snapshot of the op definitions found in a list
// of op directories.
package oplib
