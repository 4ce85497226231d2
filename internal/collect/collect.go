// Package collect copies the files a project references from elsewhere into
// the project's own directory tree.
//
// Collection is idempotent for items already collected but not
// transactional: when a copy fails, earlier copies of the same run stay in
// place and the error is returned.
package collect

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/patchdesk/patchdesk/internal/logging"
	"github.com/patchdesk/patchdesk/internal/oplib"
	"github.com/patchdesk/patchdesk/internal/project"
	"go.uber.org/zap"
)

// Collector copies assets and ops into a project directory.
type Collector struct {
	log *zap.Logger
}

// New returns a Collector.
func New(log *zap.Logger) *Collector {
	return &Collector{log: logging.OrNop(log).Named("collect")}
}

// Assets copies every existing file referenced by p from outside
// <projectDir>/assets into that directory and returns the moves as file URL
// of the source to project-relative URL of the copy. Name collisions in the
// asset directory are resolved with a numeric suffix. p is not modified.
func (c *Collector) Assets(p *project.Project, projectDir string) (map[string]string, error) {
	moved := make(map[string]string)
	if p == nil {
		return moved, nil
	}
	if projectDir == "" {
		return moved, fmt.Errorf("project has no directory to collect assets into")
	}
	assetDir := project.AssetDir(projectDir)

	for _, ref := range p.AssetRefs(projectDir) {
		src, ok := project.AssetPath(projectDir, ref)
		if !ok || project.IsLocalAsset(projectDir, src) {
			continue
		}
		oldURL := project.FileURL(src)
		if _, done := moved[oldURL]; done {
			continue
		}
		info, err := os.Stat(src)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		if err := os.MkdirAll(assetDir, 0755); err != nil {
			return moved, fmt.Errorf("creating asset directory: %w", err)
		}
		name, err := freeName(assetDir, filepath.Base(src))
		if err != nil {
			return moved, err
		}
		dst := filepath.Join(assetDir, name)
		if err := copyFile(src, dst); err != nil {
			return moved, fmt.Errorf("copying %s to %s: %w", src, dst, err)
		}
		moved[oldURL] = project.AssetURL(name)
		c.log.Debug("collected asset", zap.String("from", src), zap.String("to", dst))
	}
	return moved, nil
}

// Ops copies the directory of every op used by p that lives outside both the
// shared op tree and the project's op tree into the project's op tree, at the op's target sub-path.
// reg must be a fresh scan that includes the project's op tree. The result
// maps op name to its new directory.
func (c *Collector) Ops(p *project.Project, projectDir string, reg *oplib.Registry, sharedOpsPath string) (map[string]string, error) {
	moved := make(map[string]string)
	if p == nil {
		return moved, nil
	}
	if projectDir == "" {
		return moved, fmt.Errorf("project has no directory to collect ops into")
	}
	opsDir := project.OpsDir(projectDir)
	seen := make(map[string]bool)

	for _, inst := range p.Ops {
		doc, ok := reg.ByID(inst.OpID)
		if !ok && inst.ObjName != "" {
			doc, ok = reg.ByName(inst.ObjName)
		}
		if !ok {
			c.log.Debug("op not found, not collecting", zap.String("opId", inst.OpID), zap.String("objName", inst.ObjName))
			continue
		}
		if seen[doc.Name] {
			continue
		}
		seen[doc.Name] = true

		if sharedOpsPath != "" && within(sharedOpsPath, doc.Dir) {
			continue
		}
		// Anything already in the project's op tree stays where it is,
		// whatever sub-path it was created under.
		if within(opsDir, doc.Dir) {
			continue
		}
		target := filepath.Join(opsDir, oplib.TargetSubPath(doc.Name))
		if err := copyDir(doc.Dir, target); err != nil {
			return moved, fmt.Errorf("copying op %s to %s: %w", doc.Name, target, err)
		}
		moved[doc.Name] = target
		c.log.Debug("collected op", zap.String("op", doc.Name), zap.String("to", target))
	}
	return moved, nil
}
