package oplib

import (
	"path/filepath"
	"testing"
)

func TestNameParts(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		short     string
		base      string
		version   int
	}{
		{"Ops.Gl.MainLoop", "Ops.Gl.", "MainLoop", "Ops.Gl.MainLoop", 1},
		{"Ops.Gl.MainLoop_v2", "Ops.Gl.", "MainLoop_v2", "Ops.Gl.MainLoop", 2},
		{"Ops.User.alice.Thing_v12", "Ops.User.alice.", "Thing_v12", "Ops.User.alice.Thing", 12},
		{"Ops.Math.Sum_v", "Ops.Math.", "Sum_v", "Ops.Math.Sum_v", 1},
		{"NoDots", "", "NoDots", "NoDots", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Namespace(tt.name); got != tt.namespace {
				t.Errorf("Namespace = %q, want %q", got, tt.namespace)
			}
			if got := ShortName(tt.name); got != tt.short {
				t.Errorf("ShortName = %q, want %q", got, tt.short)
			}
			if got := BaseName(tt.name); got != tt.base {
				t.Errorf("BaseName = %q, want %q", got, tt.base)
			}
			if got := Version(tt.name); got != tt.version {
				t.Errorf("Version = %d, want %d", got, tt.version)
			}
		})
	}
}

func TestVersionedName(t *testing.T) {
	if got := VersionedName("Ops.A.B", 1); got != "Ops.A.B" {
		t.Errorf("v1 = %q", got)
	}
	if got := VersionedName("Ops.A.B", 3); got != "Ops.A.B_v3" {
		t.Errorf("v3 = %q", got)
	}
}

func TestKinds(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		core      bool
		protected bool
	}{
		{"Ops.Gl.MainLoop", KindCore, true, false},
		{"Ops.Extension.Deprecated.Old", KindExtension, true, true},
		{"Ops.Team.crew.Tool", KindTeam, false, false},
		{"Ops.User.alice.Tool", KindUser, false, false},
		{"Ops.Patch.P1a2b.Tool", KindPatch, false, false},
		{"Ops.Standalone.Tool", KindStandalone, false, false},
		{"Foo.Bar", KindCore, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.name); got != tt.kind {
				t.Errorf("KindOf = %v, want %v", got, tt.kind)
			}
			if got := IsCoreOp(tt.name); got != tt.core {
				t.Errorf("IsCoreOp = %v, want %v", got, tt.core)
			}
			if got := IsProtected(tt.name); got != tt.protected {
				t.Errorf("IsProtected = %v, want %v", got, tt.protected)
			}
		})
	}
}

func TestCollectionNamespace(t *testing.T) {
	tests := map[string]string{
		"Ops.User.alice.Tool":     "Ops.User.alice.",
		"Ops.Patch.P1.Sub.Tool":   "Ops.Patch.P1.",
		"Ops.Extension.Ext.Thing": "Ops.Extension.Ext.",
		"Ops.Gl.MainLoop":         "",
		"Ops.User.Tool":           "",
	}
	for name, want := range tests {
		if got := CollectionNamespace(name); got != want {
			t.Errorf("CollectionNamespace(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestTargetSubPath(t *testing.T) {
	tests := map[string]string{
		"Ops.Patch.P1.Tool":       filepath.Join("patches", "P1", "Ops.Patch.P1.Tool"),
		"Ops.User.alice.Tool":     filepath.Join("users", "alice", "Ops.User.alice.Tool"),
		"Ops.Team.crew.Tool":      filepath.Join("teams", "crew", "Ops.Team.crew.Tool"),
		"Ops.Extension.Ext.Thing": filepath.Join("extensions", "Ext", "Ops.Extension.Ext.Thing"),
		"Ops.Gl.MainLoop":         filepath.Join("base", "Ops.Gl.MainLoop"),
	}
	for name, want := range tests {
		if got := TargetSubPath(name); got != want {
			t.Errorf("TargetSubPath(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestCanUse(t *testing.T) {
	tests := []struct {
		user, used string
		want       bool
	}{
		{"Ops.Gl.A", "Ops.Gl.B", true},
		{"Ops.Gl.A", "Ops.User.alice.B", false},
		{"Ops.User.alice.A", "Ops.User.alice.B", true},
		{"Ops.User.alice.A", "Ops.User.bob.B", false},
		{"Ops.User.alice.A", "Ops.Team.crew.B", true},
		{"Ops.Team.crew.A", "Ops.User.alice.B", false},
		{"Ops.Patch.P1.A", "Ops.User.alice.B", true},
		{"Ops.Patch.P1.A", "Ops.Patch.P2.B", false},
		{"Ops.Patch.P1.A", "Ops.Patch.P1.B", true},
	}
	for _, tt := range tests {
		if got := CanUse(tt.user, tt.used); got != tt.want {
			t.Errorf("CanUse(%q, %q) = %v, want %v", tt.user, tt.used, got, tt.want)
		}
	}
}
