package recent

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/patchdesk/patchdesk/internal/logging"
	"github.com/patchdesk/patchdesk/internal/project"
	"github.com/patchdesk/patchdesk/internal/settings"
)

func newCache(t *testing.T) *Cache {
	t.Helper()
	store, err := settings.Open(t.TempDir(), "prefs", nil)
	if err != nil {
		t.Fatalf("settings.Open: %v", err)
	}
	return New(store, nil)
}

// writeProject saves a project with the given name and updated stamp.
func writeProject(t *testing.T, dir, name string, updated int64) (string, *project.Project) {
	t.Helper()
	p := project.Generate(project.NewLocalUser(time.Now()), time.UnixMilli(1))
	p.SetName(name)
	p.Updated = updated
	path := filepath.Join(dir, project.FileName(name))
	if err := project.WriteFile(path, p, nil); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path, p
}

func TestAdd_BoundedAndSorted(t *testing.T) {
	c := newCache(t)
	dir := t.TempDir()

	for i := 1; i <= 14; i++ {
		path, p := writeProject(t, dir, fmt.Sprintf("p%02d", i), int64(i*100))
		if err := c.Add(path, p); err != nil {
			t.Fatalf("Add #%d: %v", i, err)
		}

		items := c.List()
		if len(items) > MaxEntries {
			t.Fatalf("after %d adds: %d entries, want <= %d", i, len(items), MaxEntries)
		}
		for j := 1; j < len(items); j++ {
			if items[j-1].Updated < items[j].Updated {
				t.Fatalf("after %d adds: not sorted by updated: %d before %d", i, items[j-1].Updated, items[j].Updated)
			}
		}
	}

	items := c.List()
	if len(items) != MaxEntries {
		t.Fatalf("got %d entries, want %d", len(items), MaxEntries)
	}
	if items[0].Name != "p14" || items[MaxEntries-1].Name != "p05" {
		t.Errorf("kept %s..%s, want p14..p05", items[0].Name, items[MaxEntries-1].Name)
	}
}

func TestAdd_DeduplicatesByPath(t *testing.T) {
	c := newCache(t)
	path, p := writeProject(t, t.TempDir(), "same", 10)

	for i := 0; i < 3; i++ {
		if err := c.Add(path, p); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(c.List()); n != 1 {
		t.Errorf("got %d entries, want 1", n)
	}
}

func TestRefresh_PrunesDeletedFiles(t *testing.T) {
	c := newCache(t)
	dir := t.TempDir()
	keep, pk := writeProject(t, dir, "keep", 10)
	gone, pg := writeProject(t, dir, "gone", 20)
	if err := c.Add(keep, pk); err != nil {
		t.Fatal(err)
	}
	if err := c.Add(gone, pg); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}
	if err := c.Refresh(); err != nil {
		t.Fatal(err)
	}

	items := c.List()
	if len(items) != 1 || items[0].Path != keep {
		t.Errorf("items = %+v, want only %s", items, keep)
	}
}

func TestRefresh_RereadsProjectFile(t *testing.T) {
	c := newCache(t)
	path, p := writeProject(t, t.TempDir(), "before", 10)
	if err := c.Add(path, p); err != nil {
		t.Fatal(err)
	}

	p.SetName("after")
	p.Updated = 999
	if err := project.WriteFile(path, p, nil); err != nil {
		t.Fatal(err)
	}
	if err := c.Refresh(); err != nil {
		t.Fatal(err)
	}

	items := c.List()
	if len(items) != 1 {
		t.Fatalf("got %d entries", len(items))
	}
	if items[0].Name != "after" || items[0].Updated != 999 {
		t.Errorf("entry = %+v, want refreshed name/updated", items[0].Entry)
	}
}

func TestRefresh_DropsUnparsableFiles(t *testing.T) {
	store, err := settings.Open(t.TempDir(), "prefs", nil)
	if err != nil {
		t.Fatal(err)
	}
	log, logs := logging.NewObserved()
	c := New(store, log)

	path, p := writeProject(t, t.TempDir(), "broken", 10)
	if err := c.Add(path, p); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := c.Refresh(); err != nil {
		t.Fatalf("Refresh should not fail on a bad file: %v", err)
	}

	if n := len(c.List()); n != 0 {
		t.Errorf("got %d entries, want 0", n)
	}
	if logs.FilterMessage("failed to parse project file for recent projects, ignoring").Len() != 1 {
		t.Error("expected the dropped entry to be logged")
	}
}

func TestList_MissingUpdatedSortsLast(t *testing.T) {
	c := newCache(t)
	dir := t.TempDir()
	noStamp, p0 := writeProject(t, dir, "nostamp", 0)
	old, p1 := writeProject(t, dir, "old", 5)
	newer, p2 := writeProject(t, dir, "newer", 50)
	for path, p := range map[string]*project.Project{noStamp: p0, old: p1, newer: p2} {
		if err := c.Add(path, p); err != nil {
			t.Fatal(err)
		}
	}

	items := c.List()
	want := []string{"newer", "old", "nostamp"}
	if len(items) != len(want) {
		t.Fatalf("got %d entries", len(items))
	}
	for i, name := range want {
		if items[i].Name != name {
			t.Errorf("items[%d] = %s, want %s", i, items[i].Name, name)
		}
	}
}

func TestReplace(t *testing.T) {
	c := newCache(t)
	dir := t.TempDir()
	oldPath, p := writeProject(t, dir, "old-name", 10)
	if err := c.Add(oldPath, p); err != nil {
		t.Fatal(err)
	}

	newPath := filepath.Join(dir, project.FileName("new-name"))
	if err := os.Rename(oldPath, newPath); err != nil {
		t.Fatal(err)
	}
	p.SetName("new-name")
	if err := project.WriteFile(newPath, p, nil); err != nil {
		t.Fatal(err)
	}
	if err := c.Replace(oldPath, newPath, nil); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	items := c.List()
	if len(items) != 1 || items[0].Path != newPath || items[0].Name != "new-name" {
		t.Errorf("items = %+v", items)
	}
}

func TestProjectFile(t *testing.T) {
	c := newCache(t)
	path, p := writeProject(t, t.TempDir(), "lookup", 10)
	if err := c.Add(path, p); err != nil {
		t.Fatal(err)
	}

	if got := c.ProjectFile(p.ID); got != path {
		t.Errorf("by id: %q, want %q", got, path)
	}
	if got := c.ProjectFile(p.ShortID); got != path {
		t.Errorf("by short id: %q, want %q", got, path)
	}
	if got := c.ProjectFile("unknown"); got != "" {
		t.Errorf("unknown id: %q, want empty", got)
	}
}
