package oplib

import (
	"os"
	"path/filepath"
	"testing"
)

// writeOp creates <dir>/<sub>/<name>/<name>.json.
func writeOp(t *testing.T, dir, sub, name, content string) string {
	t.Helper()
	opDir := filepath.Join(dir, sub, name)
	if err := os.MkdirAll(opDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(opDir, name+".json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return opDir
}

func TestScan_PriorityAndNesting(t *testing.T) {
	project := t.TempDir()
	shared := t.TempDir()

	local := writeOp(t, project, "users/alice", "Ops.User.alice.Tool", `{"id": "local-tool"}`)
	writeOp(t, shared, "users/alice", "Ops.User.alice.Tool", `{"id": "shared-tool"}`)
	writeOp(t, shared, "base", "Ops.Gl.MainLoop", `{"id": "main", "usedOps": ["Ops.Gl.Timer"]}`)
	writeOp(t, shared, "base", "Ops.Gl.Broken", `{oops`)
	if err := os.MkdirAll(filepath.Join(shared, "base", "Ops.Gl.NoDoc"), 0755); err != nil {
		t.Fatal(err)
	}

	r := Scan([]Source{
		{Name: "project", Dir: project},
		{Name: "missing", Dir: filepath.Join(project, "nope")},
		{Name: "shared", Dir: shared},
	}, nil)

	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3: %+v", r.Len(), r.Docs())
	}
	tool, ok := r.ByName("Ops.User.alice.Tool")
	if !ok || tool.ID != "local-tool" || tool.Dir != local || tool.Source != "project" {
		t.Errorf("Tool = %+v, want the project copy", tool)
	}
	if _, ok := r.ByID("shared-tool"); ok {
		t.Error("shadowed doc should not be reachable by id")
	}
	main, ok := r.ByID("main")
	if !ok || main.Name != "Ops.Gl.MainLoop" || len(main.UsedOps) != 1 {
		t.Errorf("MainLoop = %+v", main)
	}
	if broken, ok := r.ByName("Ops.Gl.Broken"); !ok || broken.ID != "" {
		t.Errorf("unparsable doc should still be listed without id: %+v", broken)
	}
	if r.Exists("Ops.Gl.NoDoc") {
		t.Error("directory without a doc file should be ignored")
	}
}

func TestRegistry_Versions(t *testing.T) {
	r := NewRegistry([]Doc{
		{Name: "Ops.Math.Sum"},
		{Name: "Ops.Math.Sum_v2"},
		{Name: "Ops.Math.SumAll_v5"},
		{Name: "Ops.User.alice.Tool_v3"},
	})

	tests := []struct {
		name    string
		highest int
		next    string
	}{
		{"Ops.Math.Sum", 2, "Ops.Math.Sum_v3"},
		{"Ops.Math.Sum_v7", 2, "Ops.Math.Sum_v3"},
		{"Ops.Math.New", 0, "Ops.Math.New"},
		{"Ops.User.alice.Tool", 3, "Ops.User.alice.Tool_v4"},
	}
	for _, tt := range tests {
		if got := r.HighestVersion(tt.name); got != tt.highest {
			t.Errorf("HighestVersion(%q) = %d, want %d", tt.name, got, tt.highest)
		}
		if got := r.NextVersionName(tt.name); got != tt.next {
			t.Errorf("NextVersionName(%q) = %q, want %q", tt.name, got, tt.next)
		}
	}
}

func TestRegistry_View(t *testing.T) {
	r := NewRegistry([]Doc{
		{Name: "Ops.Gl.MainLoop"},
		{Name: "Ops.User.alice.Tool"},
		{Name: "Ops.User.bob.Tool_v4"},
	})

	if v := r.View("Ops.Gl.Other"); v.Len() != 3 {
		t.Errorf("core view has %d docs, want all 3", v.Len())
	}
	alice := r.View("Ops.User.alice.Tool_v2")
	if alice.Len() != 1 || !alice.Exists("Ops.User.alice.Tool") {
		t.Errorf("alice view = %+v", alice.Docs())
	}
	if got := alice.HighestVersion("Ops.User.alice.Tool"); got != 1 {
		t.Errorf("highest in alice view = %d, want 1", got)
	}
}

func TestRegistry_NamespaceExistsAndUsers(t *testing.T) {
	r := NewRegistry([]Doc{
		{Name: "Ops.Gl.MainLoop", UsedOps: []string{"Ops.Gl.Timer"}},
		{Name: "Ops.Gl.Timer"},
		{Name: "Ops.Anim.Tween", UsedOps: []string{"Ops.Gl.Timer"}},
	})
	if !r.NamespaceExists("Ops.Gl.") || r.NamespaceExists("Ops.Audio.") {
		t.Error("NamespaceExists mismatch")
	}
	users := r.UsersOf("Ops.Gl.Timer")
	if len(users) != 2 || users[0] != "Ops.Anim.Tween" || users[1] != "Ops.Gl.MainLoop" {
		t.Errorf("UsersOf = %v", users)
	}
}

func TestNewRegistry_FirstWins(t *testing.T) {
	r := NewRegistry([]Doc{
		{Name: "Ops.A.B", ID: "1", Source: "first"},
		{Name: "Ops.A.B", ID: "2", Source: "second"},
		{Name: ""},
	})
	if r.Len() != 1 {
		t.Fatalf("Len = %d", r.Len())
	}
	if d, _ := r.ByName("Ops.A.B"); d.Source != "first" {
		t.Errorf("source = %q", d.Source)
	}
}
