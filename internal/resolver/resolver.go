// Package resolver decides whether an op can be created, renamed or cloned
// under a proposed name and what the caller should do otherwise.
//
// Check is a pure function of its request and the registry snapshot: the
// same inputs always produce the same Result.
package resolver

import (
	"github.com/patchdesk/patchdesk/internal/oplib"
)

// Actions.
const (
	ActionRename = "Rename"
	ActionCopy   = "Copy"
)

// Problem and hint keys added on top of the registry's rename problems.
const (
	ProblemNoName        = "no_name"
	ProblemBadHierarchy  = "bad_op_hierarchy"
	KeyVersionSuggestion = "version_suggestion"
	HintNewNamespace     = "new_namespace"
	HintVersionGap       = "version_gap"
)

const (
	noNameText             = "No name for new op given."
	versionGapText         = "Gap in version numbers!"
	newNamespaceTextPrefix = "Renaming will create a new namespace "
)

// Request is a proposed op name change.
type Request struct {
	NewName string
	// OldName is the op being renamed or cloned; empty for a new op.
	OldName string
	// IgnoreVersionGap skips the version gap check.
	IgnoreVersionGap bool
	// FromRename marks a request coming from an in-place rename; the
	// namespace hierarchy check only runs when it is false.
	FromRename bool
	// TargetDir is the op directory the op would be written to, if chosen.
	TargetDir string
}

// NextVersion describes a suggested alternative name.
type NextVersion struct {
	FullName  string `json:"fullName"`
	Namespace string `json:"namespace"`
	ShortName string `json:"shortName"`
}

// Result is the verdict on a Request. Problems block the change, hints are
// informational, consequences describe side effects of going ahead.
type Result struct {
	Namespaces   []string     `json:"namespaces"`
	Action       string       `json:"action"`
	Problems     []string     `json:"problems"`
	Hints        []string     `json:"hints"`
	Consequences []string     `json:"consequences"`
	NextVersion  *NextVersion `json:"nextVersion,omitempty"`

	// ProblemKeys and HintKeys name the entries of Problems and Hints.
	ProblemKeys []string `json:"-"`
	HintKeys    []string `json:"-"`
}

// Ok reports whether nothing blocks the change.
func (r *Result) Ok() bool { return len(r.Problems) == 0 }

// Check evaluates req against the op definitions in reg.
func Check(reg *oplib.Registry, req Request) *Result {
	res := &Result{
		Namespaces:   Namespaces(req.NewName),
		Action:       Action(req.NewName, req.OldName),
		Problems:     []string{},
		Hints:        []string{},
		Consequences: []string{},
	}

	if req.NewName == "" {
		res.Problems = append(res.Problems, noNameText)
		res.ProblemKeys = []string{ProblemNoName}
		return res
	}

	problems := reg.RenameProblems(req.NewName, req.OldName, req.TargetDir)
	consequences := reg.RenameConsequences(req.NewName, req.OldName, req.TargetDir)
	var hints oplib.Findings

	newNamespace := oplib.Namespace(req.NewName)
	if !reg.NamespaceExists(newNamespace) {
		hints.Add(HintNewNamespace, newNamespaceTextPrefix+newNamespace)
	}

	view := reg.View(req.NewName)
	nextName := view.NextVersionName(req.NewName)

	suggest := problems.Has(oplib.ProblemTargetExists)
	if !req.IgnoreVersionGap && HasVersionGap(oplib.Version(req.NewName), view.HighestVersion(req.NewName)) {
		hints.Add(HintVersionGap, versionGapText)
		suggest = true
	}
	if problems.Has(oplib.ProblemIllegalOps) || problems.Has(oplib.ProblemIllegalReferences) {
		suggest = false
	}
	if !req.FromRename && req.OldName != "" {
		if p := oplib.HierarchyProblem(req.OldName, req.NewName); p != "" {
			problems.Add(ProblemBadHierarchy, p)
			suggest = false
		}
	}

	if suggest {
		text := "Try creating a new version " + nextName
		res.NextVersion = &NextVersion{
			FullName:  nextName,
			Namespace: oplib.Namespace(nextName),
			ShortName: oplib.ShortName(nextName),
		}
		if problems.Has(oplib.ProblemTargetExists) {
			problems.Add(KeyVersionSuggestion, text)
		} else {
			hints.Add(KeyVersionSuggestion, text)
		}
	}

	res.Problems = problems.Texts()
	res.Hints = hints.Texts()
	res.Consequences = consequences.Texts()
	res.ProblemKeys = keys(problems)
	res.HintKeys = keys(hints)
	return res
}

// Namespaces returns the namespaces offered for an op named newName: the
// fallbacks, preceded by the op's own namespace when that is not already one
// of them and not a per-project one.
func Namespaces(newName string) []string {
	out := append([]string(nil), oplib.FallbackNamespaces...)
	ns := oplib.Namespace(newName)
	if ns == "" || oplib.IsPatchOp(ns) {
		return out
	}
	for _, f := range out {
		if f == ns {
			return out
		}
	}
	return append([]string{ns}, out...)
}

// Action returns Copy when the source op is protected, otherwise Rename.
// The source is oldName, or newName when there is none: renaming a core or
// extension op always leaves the old op in place, whatever the new name.
// This differs from deciding on newName alone, which would let a rename move
// an extension op into a user namespace. An empty newName is always a Copy.
func Action(newName, oldName string) string {
	if newName == "" {
		return ActionCopy
	}
	source := oldName
	if source == "" {
		source = newName
	}
	if oplib.IsProtected(source) {
		return ActionCopy
	}
	return ActionRename
}

// HasVersionGap reports whether wanted skips versions past highest. A name
// with no versions yet may start at 1 or 2; otherwise only highest+1 is
// gap free.
func HasVersionGap(wanted, highest int) bool {
	tolerance := 2
	if highest > 0 {
		tolerance = 1
	}
	return wanted-tolerance > highest
}

func keys(f oplib.Findings) []string {
	out := make([]string, len(f))
	for i, x := range f {
		out[i] = x.Key
	}
	return out
}
