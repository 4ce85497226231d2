// Package recent keeps the bounded index of recently opened project files.
// The index lives in the settings store under "recentProjects" as a map from
// absolute file path to a summary of the project stored there.
package recent

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/patchdesk/patchdesk/internal/logging"
	"github.com/patchdesk/patchdesk/internal/project"
	"github.com/patchdesk/patchdesk/internal/settings"
	"go.uber.org/zap"
)

// MaxEntries is the most entries kept after a refresh.
const MaxEntries = 10

// Entry is the denormalized summary of a project.
type Entry struct {
	ID         string `json:"_id"`
	ShortID    string `json:"shortId"`
	Name       string `json:"name"`
	Screenshot string `json:"screenshot,omitempty"`
	Created    int64  `json:"created"`
	Updated    int64  `json:"updated,omitempty"`
}

// Item is an entry together with the file it describes.
type Item struct {
	Path string `json:"path"`
	Entry
}

// EntryFor summarizes p.
func EntryFor(p *project.Project) Entry {
	return Entry{
		ID:         p.ID,
		ShortID:    p.ShortID,
		Name:       p.Name,
		Screenshot: p.Screenshot,
		Created:    p.Created,
		Updated:    p.Updated,
	}
}

// Cache reads and writes the recent-projects index of a settings store.
type Cache struct {
	store *settings.Store
	log   *zap.Logger
}

// New returns a cache backed by store.
func New(store *settings.Store, log *zap.Logger) *Cache {
	return &Cache{store: store, log: logging.OrNop(log).Named("recent")}
}

// Add records p under path and refreshes the index.
func (c *Cache) Add(path string, p *project.Project) error {
	if path == "" || p == nil {
		return nil
	}
	key, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	entries := c.entries()
	entries[key] = EntryFor(p)
	return c.refresh(entries)
}

// Replace moves the entry for oldPath to newPath, used after a project file
// was renamed. When p is nil the previous entry is carried over.
func (c *Cache) Replace(oldPath, newPath string, p *project.Project) error {
	oldKey, err := filepath.Abs(oldPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", oldPath, err)
	}
	newKey, err := filepath.Abs(newPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", newPath, err)
	}

	entries := c.entries()
	entry, had := entries[oldKey]
	if p != nil {
		entry, had = EntryFor(p), true
	}
	if had {
		entries[newKey] = entry
	}
	if oldKey != newKey {
		delete(entries, oldKey)
	}
	return c.refresh(entries)
}

// Refresh prunes and rebuilds the stored index from the project files.
func (c *Cache) Refresh() error {
	return c.refresh(c.entries())
}

// refresh drops entries whose file is gone, keeps the MaxEntries most
// recently updated, re-reads each survivor from disk and writes the result.
func (c *Cache) refresh(entries map[string]Entry) error {
	paths := make([]string, 0, len(entries))
	for path := range entries {
		if _, err := os.Stat(path); err != nil {
			c.log.Debug("dropping recent project, file is gone", zap.String("path", path))
			continue
		}
		paths = append(paths, path)
	}
	sortPaths(paths, entries)
	if len(paths) > MaxEntries {
		paths = paths[:MaxEntries]
	}

	fresh := make(map[string]Entry, len(paths))
	for _, path := range paths {
		p, err := project.ReadFile(path)
		if err != nil {
			c.log.Info("failed to parse project file for recent projects, ignoring",
				zap.String("path", path), zap.Error(err))
			continue
		}
		fresh[path] = EntryFor(p)
	}

	if err := c.store.Set(settings.KeyRecentProjects, fresh, false); err != nil {
		return fmt.Errorf("saving recent projects: %w", err)
	}
	return nil
}

// List returns the entries, most recently updated first.
func (c *Cache) List() []Item {
	entries := c.entries()
	paths := make([]string, 0, len(entries))
	for path := range entries {
		paths = append(paths, path)
	}
	sortPaths(paths, entries)

	items := make([]Item, len(paths))
	for i, path := range paths {
		items[i] = Item{Path: path, Entry: entries[path]}
	}
	return items
}

// ProjectFile returns the path of the entry whose id or short id matches and
// whose file still exists, or "".
func (c *Cache) ProjectFile(idOrShortID string) string {
	if idOrShortID == "" {
		return ""
	}
	for _, item := range c.List() {
		if item.ID != idOrShortID && item.ShortID != idOrShortID {
			continue
		}
		if _, err := os.Stat(item.Path); err == nil {
			return item.Path
		}
	}
	return ""
}

func (c *Cache) entries() map[string]Entry {
	entries := make(map[string]Entry)
	if err := c.store.Decode(settings.KeyRecentProjects, &entries); err != nil {
		c.log.Warn("recent projects setting is malformed, starting empty", zap.Error(err))
		return make(map[string]Entry)
	}
	return entries
}

// sortPaths orders by updated descending. Entries without updated go last.
// The stored index is a JSON object with no insertion order to fall back
// on, so ties are broken by path instead.
func sortPaths(paths []string, entries map[string]Entry) {
	sort.SliceStable(paths, func(i, j int) bool {
		ui, uj := entries[paths[i]].Updated, entries[paths[j]].Updated
		switch {
		case ui == 0 && uj != 0:
			return false
		case uj == 0 && ui != 0:
			return true
		case ui != uj:
			return ui > uj
		}
		return paths[i] < paths[j]
	})
}
