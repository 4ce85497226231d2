package oplib

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/patchdesk/patchdesk/internal/logging"
	"go.uber.org/zap"
)

// Source is one op directory to scan.
type Source struct {
	Name string // e.g. "project", "shared"
	Dir  string
}

// Doc is an op definition found on disk at <Dir>/<Name>/<Name>.json.
type Doc struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	UsedOps []string `json:"usedOps,omitempty"`
	// Dir is the op's directory.
	Dir string `json:"-"`
	// Source names the op directory the op was found in.
	Source string `json:"-"`
}

// Registry is an immutable snapshot of op definitions.
type Registry struct {
	docs   []Doc
	byName map[string]int
	byID   map[string]int
}

// NewRegistry builds a snapshot from docs. When two docs share a name or id
// the first one wins.
func NewRegistry(docs []Doc) *Registry {
	r := &Registry{
		byName: make(map[string]int, len(docs)),
		byID:   make(map[string]int, len(docs)),
	}
	for _, d := range docs {
		if d.Name == "" {
			continue
		}
		if _, dup := r.byName[d.Name]; dup {
			continue
		}
		d.UsedOps = append([]string(nil), d.UsedOps...)
		r.byName[d.Name] = len(r.docs)
		if d.ID != "" {
			if _, dup := r.byID[d.ID]; !dup {
				r.byID[d.ID] = len(r.docs)
			}
		}
		r.docs = append(r.docs, d)
	}
	return r
}

// Scan walks the sources in priority order and returns the snapshot of all
// op definitions found. Ops found in earlier sources take priority; missing
// or unreadable sources are skipped.
func Scan(sources []Source, log *zap.Logger) *Registry {
	log = logging.OrNop(log).Named("oplib")
	var docs []Doc
	for _, src := range sources {
		found, err := walkSource(src, log)
		if err != nil {
			log.Debug("skipping op directory", zap.String("dir", src.Dir), zap.Error(err))
			continue
		}
		docs = append(docs, found...)
	}
	return NewRegistry(docs)
}

// walkSource finds op directories at any depth below src.Dir. Results are
// in lexical path order.
func walkSource(src Source, log *zap.Logger) ([]Doc, error) {
	if _, err := os.Stat(src.Dir); err != nil {
		return nil, err
	}

	var docs []Doc
	err := filepath.WalkDir(src.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() || !IsOpName(d.Name()) {
			return nil
		}
		name := d.Name()
		docFile := filepath.Join(path, name+".json")
		if _, err := os.Stat(docFile); err != nil {
			return nil
		}

		doc := Doc{Name: name, Dir: path, Source: src.Name}
		if data, err := os.ReadFile(docFile); err == nil {
			var parsed Doc
			if err := json.Unmarshal(data, &parsed); err != nil {
				log.Info("failed to parse op doc", zap.String("file", docFile), zap.Error(err))
			} else {
				doc.ID = parsed.ID
				doc.UsedOps = parsed.UsedOps
			}
		}
		docs = append(docs, doc)
		return filepath.SkipDir
	})
	return docs, err
}

// Docs returns all definitions in scan order.
func (r *Registry) Docs() []Doc {
	return append([]Doc(nil), r.docs...)
}

// Len returns the number of definitions.
func (r *Registry) Len() int { return len(r.docs) }

// ByName returns the definition of the named op.
func (r *Registry) ByName(name string) (Doc, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Doc{}, false
	}
	return r.docs[i], true
}

// ByID returns the definition with the given op id.
func (r *Registry) ByID(id string) (Doc, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Doc{}, false
	}
	return r.docs[i], true
}

// Exists reports whether an op with this exact name is known.
func (r *Registry) Exists(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// NamespaceExists reports whether any known op lives in ns or below it.
func (r *Registry) NamespaceExists(ns string) bool {
	for _, d := range r.docs {
		if strings.HasPrefix(d.Name, ns) {
			return true
		}
	}
	return false
}

// View returns the snapshot version numbers are computed against for name:
// the whole registry for core ops, otherwise only the ops of name's
// collection.
func (r *Registry) View(name string) *Registry {
	if IsCoreOp(name) {
		return r
	}
	ns := CollectionNamespace(name)
	if ns == "" {
		ns = Namespace(name)
	}
	var docs []Doc
	for _, d := range r.docs {
		if strings.HasPrefix(d.Name, ns) {
			docs = append(docs, d)
		}
	}
	return NewRegistry(docs)
}

// HighestVersion returns the highest existing version of name's base name,
// or 0 when no version exists.
func (r *Registry) HighestVersion(name string) int {
	base := BaseName(name)
	highest := 0
	for _, d := range r.docs {
		if BaseName(d.Name) != base {
			continue
		}
		if v := Version(d.Name); v > highest {
			highest = v
		}
	}
	return highest
}

// NextVersionName returns the name the next version of name's base name
// would get.
func (r *Registry) NextVersionName(name string) string {
	base := BaseName(name)
	highest := r.HighestVersion(name)
	if highest == 0 {
		return base
	}
	return VersionedName(base, highest+1)
}

// UsersOf returns the names of the ops whose definitions use name, sorted.
func (r *Registry) UsersOf(name string) []string {
	var users []string
	for _, d := range r.docs {
		for _, used := range d.UsedOps {
			if used == name {
				users = append(users, d.Name)
				break
			}
		}
	}
	sort.Strings(users)
	return users
}
