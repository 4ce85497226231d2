package oplib

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Rename problem keys.
const (
	ProblemNotOpNamespace    = "name_not_op_namespace"
	ProblemIllegalCharacters = "illegal_characters"
	ProblemNameOnRoot        = "name_on_root"
	ProblemEndingDigit       = "name_ending_digit"
	ProblemStartsLowercase   = "name_starts_lowercase"
	ProblemTargetExists      = "target_exists"
	ProblemIllegalOps        = "illegal_ops"
	ProblemIllegalReferences = "illegal_references"
)

// Rename consequence keys.
const (
	ConsequenceNamespaceChange = "namespace_change"
	ConsequenceReferences      = "references"
	ConsequenceTargetDir       = "target_dir"
)

// CanUse reports whether an op named user may use the op named used.
// Core ops only use core ops; collection ops may also use ops of their own
// collection, and patch ops may use everything but other patches' ops.
func CanUse(user, used string) bool {
	if IsCoreOp(used) {
		return true
	}
	switch KindOf(user) {
	case KindTeam:
		return IsTeamOp(used) && CollectionNamespace(used) == CollectionNamespace(user)
	case KindUser:
		if IsTeamOp(used) {
			return true
		}
		return IsUserOp(used) && CollectionNamespace(used) == CollectionNamespace(user)
	case KindPatch:
		if IsTeamOp(used) || IsUserOp(used) {
			return true
		}
		return IsPatchOp(used) && CollectionNamespace(used) == CollectionNamespace(user)
	case KindStandalone:
		return KindOf(used) == KindStandalone
	}
	return false
}

// RenameProblems lists what prevents creating newName, optionally as the
// new name of oldName. targetDir, when set, is the op directory the op would
// be written to.
func (r *Registry) RenameProblems(newName, oldName, targetDir string) Findings {
	var p Findings

	if !strings.HasPrefix(newName, Prefix) {
		p.Add(ProblemNotOpNamespace, "Op name does not start with "+Prefix)
	}
	if !legalName.MatchString(newName) {
		p.Add(ProblemIllegalCharacters, "Op name contains illegal characters, only letters, numbers, underscores and dots are allowed")
	}
	if Namespace(newName) == Prefix {
		p.Add(ProblemNameOnRoot, "Op can not be placed in the root namespace "+Prefix)
	}
	short := ShortName(BaseName(newName))
	if endsWithDigit(short) {
		p.Add(ProblemEndingDigit, "Op name can not end with a number")
	}
	if startsLowercase(short) {
		p.Add(ProblemStartsLowercase, "Op name must start with an uppercase letter")
	}
	if r.Exists(newName) || existsInDir(targetDir, newName) {
		p.Add(ProblemTargetExists, "Op "+newName+" already exists")
	}

	if oldName == "" {
		return p
	}
	if old, ok := r.ByName(oldName); ok {
		var illegal []string
		for _, used := range old.UsedOps {
			if !CanUse(newName, used) {
				illegal = append(illegal, used)
			}
		}
		if len(illegal) > 0 {
			p.Add(ProblemIllegalOps, fmt.Sprintf("Op uses ops that can not be used in %s: %s",
				Namespace(newName), strings.Join(illegal, ", ")))
		}
	}
	var blocked []string
	for _, user := range r.UsersOf(oldName) {
		if !CanUse(user, newName) {
			blocked = append(blocked, user)
		}
	}
	if len(blocked) > 0 {
		p.Add(ProblemIllegalReferences, fmt.Sprintf("Op is used by ops that could not use %s: %s",
			newName, strings.Join(blocked, ", ")))
	}
	return p
}

// RenameConsequences lists the side effects of going ahead.
func (r *Registry) RenameConsequences(newName, oldName, targetDir string) Findings {
	var c Findings
	if oldName != "" && Namespace(oldName) != Namespace(newName) {
		c.Add(ConsequenceNamespaceChange, fmt.Sprintf("Op will move from namespace %s to %s",
			Namespace(oldName), Namespace(newName)))
	}
	if oldName != "" {
		if users := r.UsersOf(oldName); len(users) > 0 {
			c.Add(ConsequenceReferences, fmt.Sprintf("%d ops reference %s and keep using it: %s",
				len(users), oldName, strings.Join(users, ", ")))
		}
	}
	if targetDir != "" {
		c.Add(ConsequenceTargetDir, "Op will be written to "+filepath.Join(targetDir, newName))
	}
	return c
}

// HierarchyProblem describes why oldName can not become newName in the
// namespace tree, or returns "". Versions of the same op never conflict.
func HierarchyProblem(oldName, newName string) string {
	if oldName == "" || newName == "" || BaseName(oldName) == BaseName(newName) {
		return ""
	}
	if strings.HasPrefix(Namespace(newName), BaseName(oldName)+".") {
		return fmt.Sprintf("Op can not be moved into its own namespace %s", BaseName(oldName)+".")
	}
	if strings.HasPrefix(oldName, BaseName(newName)+".") {
		return fmt.Sprintf("%s is a parent namespace of %s", newName, oldName)
	}
	return ""
}

// TargetSubPath returns where an op lives relative to the root of an op
// tree.
func TargetSubPath(name string) string {
	switch KindOf(name) {
	case KindPatch:
		return filepath.Join("patches", collectionID(name), name)
	case KindUser:
		return filepath.Join("users", collectionID(name), name)
	case KindTeam:
		return filepath.Join("teams", collectionID(name), name)
	case KindExtension:
		return filepath.Join("extensions", collectionID(name), name)
	}
	return filepath.Join("base", name)
}

func existsInDir(dir, name string) bool {
	if dir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(dir, name, name+".json"))
	return err == nil
}
