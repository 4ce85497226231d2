package oplib

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Namespace prefixes.
const (
	Prefix           = "Ops."
	PrefixPatch      = "Ops.Patch."
	PrefixUser       = "Ops.User."
	PrefixTeam       = "Ops.Team."
	PrefixExtension  = "Ops.Extension."
	PrefixStandalone = "Ops.Standalone."
)

const versionSeparator = "_v"

// FallbackNamespaces are always offered as targets for a new op.
var FallbackNamespaces = []string{PrefixStandalone, Prefix}

var (
	legalName     = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)
	versionSuffix = regexp.MustCompile(`_v([0-9]+)$`)
)

// Kind is the category of an op, derived from its namespace.
type Kind int

const (
	KindCore Kind = iota
	KindExtension
	KindTeam
	KindUser
	KindPatch
	KindStandalone
)

func (k Kind) String() string {
	switch k {
	case KindExtension:
		return "extension"
	case KindTeam:
		return "team"
	case KindUser:
		return "user"
	case KindPatch:
		return "patch"
	case KindStandalone:
		return "standalone"
	}
	return "core"
}

// KindOf returns the kind of the op or namespace name.
func KindOf(name string) Kind {
	switch {
	case strings.HasPrefix(name, PrefixExtension):
		return KindExtension
	case strings.HasPrefix(name, PrefixTeam):
		return KindTeam
	case strings.HasPrefix(name, PrefixUser):
		return KindUser
	case strings.HasPrefix(name, PrefixPatch):
		return KindPatch
	case strings.HasPrefix(name, PrefixStandalone):
		return KindStandalone
	}
	return KindCore
}

// IsOpName reports whether name is in the op namespace at all.
func IsOpName(name string) bool {
	return strings.HasPrefix(name, Prefix) && len(name) > len(Prefix)
}

// IsCoreOp reports whether name belongs to the shared library: every op
// outside the user, team, patch and standalone namespaces, extensions
// included.
func IsCoreOp(name string) bool {
	if !strings.HasPrefix(name, Prefix) {
		return false
	}
	switch KindOf(name) {
	case KindUser, KindTeam, KindPatch, KindStandalone:
		return false
	}
	return true
}

// IsExtensionOp reports whether name is in the extension namespace.
func IsExtensionOp(name string) bool { return KindOf(name) == KindExtension }

// IsPatchOp reports whether name is in the per-project namespace.
func IsPatchOp(name string) bool { return KindOf(name) == KindPatch }

// IsUserOp reports whether name is in the user namespace.
func IsUserOp(name string) bool { return KindOf(name) == KindUser }

// IsTeamOp reports whether name is in the team namespace.
func IsTeamOp(name string) bool { return KindOf(name) == KindTeam }

// IsProtected reports whether overwriting the op would destroy a shipped
// definition: it is both a core op and an extension op.
func IsProtected(name string) bool {
	return IsCoreOp(name) && IsExtensionOp(name)
}

// Namespace returns name up to and including its last dot.
func Namespace(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return name[:i+1]
}

// ShortName returns the part of name after its last dot.
func ShortName(name string) string {
	return name[strings.LastIndex(name, ".")+1:]
}

// Version returns the version encoded in name; names without a suffix are
// version 1.
func Version(name string) int {
	m := versionSuffix.FindStringSubmatch(name)
	if m == nil {
		return 1
	}
	v, err := strconv.Atoi(m[1])
	if err != nil || v < 1 {
		return 1
	}
	return v
}

// BaseName returns name without its version suffix.
func BaseName(name string) string {
	return versionSuffix.ReplaceAllString(name, "")
}

// VersionedName returns the name of version v of the op base. Version 1 has
// no suffix.
func VersionedName(base string, v int) string {
	if v <= 1 {
		return base
	}
	return base + versionSeparator + strconv.Itoa(v)
}

// CollectionNamespace returns the namespace that groups the ops of one
// user, team, extension or patch ("Ops.User.alice."), or "" for core ops.
func CollectionNamespace(name string) string {
	switch KindOf(name) {
	case KindUser, KindTeam, KindExtension, KindPatch:
	default:
		return ""
	}
	parts := strings.SplitN(name, ".", 4)
	if len(parts) < 4 {
		return ""
	}
	return strings.Join(parts[:3], ".") + "."
}

// collectionID returns the third name element: the user, team, extension or
// patch id of a collection op.
func collectionID(name string) string {
	parts := strings.SplitN(name, ".", 4)
	if len(parts) < 4 {
		return ""
	}
	return parts[2]
}

func startsLowercase(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}

func endsWithDigit(s string) bool {
	if s == "" {
		return false
	}
	return unicode.IsDigit(rune(s[len(s)-1]))
}
