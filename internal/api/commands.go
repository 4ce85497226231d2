package api

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/patchdesk/patchdesk/internal/buildinfo"
	"github.com/patchdesk/patchdesk/internal/oplib"
	"github.com/patchdesk/patchdesk/internal/project"
	"github.com/patchdesk/patchdesk/internal/recent"
	"github.com/patchdesk/patchdesk/internal/resolver"
	"github.com/patchdesk/patchdesk/internal/session"
	"github.com/patchdesk/patchdesk/internal/settings"
	"go.uber.org/zap"
)

// placeholderImage is the thumbnail for projects without a screenshot,
// relative to the ui dist directory.
var placeholderImage = filepath.Join("img", "placeholder_dark.png")

func (a *API) commandList() []Command {
	return []Command{
		{Name: CmdSettings, Handler: a.settings},
		{Name: CmdGetPatch, Handler: a.getPatch},
		{Name: CmdSavePatch, Topic: Topic{NeedsProjectFile: true}, Handler: a.savePatch},
		{Name: CmdPatchCreateBackup, Handler: a.patchCreateBackup},
		{Name: CmdSaveProjectAs, Handler: a.saveProjectAs},
		{Name: CmdSetProjectName, Topic: Topic{NeedsProjectFile: true}, Handler: a.setProjectName},
		{Name: CmdSetProjectUpdated, Handler: a.setProjectUpdated},
		{Name: CmdSaveScreenshot, Handler: a.saveScreenshot},
		{Name: CmdSaveUserSettings, Handler: a.saveUserSettings},
		{Name: CmdGetRecentPatches, Handler: a.getRecentPatches},
		{Name: CmdGotoPatch, Handler: a.gotoPatch},
		{Name: CmdCheckOpName, Handler: a.checkOpName},
		{Name: CmdGetOpTargetDirs, Handler: a.getOpTargetDirs},
		{Name: CmdAddProjectOpDir, Handler: a.addProjectOpDir},
		{Name: CmdCollectAssets, Topic: Topic{NeedsProjectFile: true}, Handler: a.collectAssets},
		{Name: CmdCollectOps, Topic: Topic{NeedsProjectFile: true}, Handler: a.collectOps},
		{Name: CmdGetBuildInfo, Handler: a.getBuildInfo},
		{Name: CmdCheckProjectUpdated, Handler: a.checkProjectUpdated},
	}
}

func (a *API) settings(context.Context, json.RawMessage) (any, error) {
	store := a.deps.Session.Settings()
	snap := store.Snapshot()
	snap[settings.KeyOpenDevTools] = store.OpenDevTools()
	snap[settings.KeyWindowZoomFactor] = store.WindowZoomFactor()
	snap["buildInfo"] = buildinfo.Read(a.deps.BuildPaths, a.log)
	return snap, nil
}

func (a *API) getPatch(context.Context, json.RawMessage) (any, error) {
	return a.deps.Session.GetPatch()
}

func (a *API) savePatch(_ context.Context, data json.RawMessage) (any, error) {
	var payload project.Payload
	if err := decode(data, &payload); err != nil {
		return nil, err
	}
	var pl *project.Payload
	if len(payload.Data) > 0 || payload.DataB64 != "" {
		pl = &payload
	}
	return a.deps.Session.SavePatch(pl)
}

func (a *API) patchCreateBackup(ctx context.Context, _ json.RawMessage) (any, error) {
	if a.deps.Session.Project() == nil {
		return nil, session.ErrUnknownProject
	}
	file, err := a.deps.Dialogs.SaveProjectFile(ctx, DialogExport)
	if err != nil {
		return nil, err
	}
	if err := a.deps.Session.WriteBackup(file); err != nil {
		return nil, err
	}
	return map[string]string{"msg": "BACKUP_CREATED", "file": file}, nil
}

func (a *API) saveProjectAs(ctx context.Context, _ json.RawMessage) (any, error) {
	if a.deps.Session.Project() == nil {
		return nil, session.ErrUnknownProject
	}
	file, err := a.deps.Dialogs.SaveProjectFile(ctx, DialogSave)
	if err != nil {
		return nil, err
	}
	return a.deps.Session.SaveProjectAs(file)
}

func (a *API) setProjectName(_ context.Context, data json.RawMessage) (any, error) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", errBadRequest)
	}
	name, err := a.deps.Session.SetProjectName(req.Name)
	if err != nil {
		return nil, err
	}
	return map[string]string{"name": name}, nil
}

func (a *API) setProjectUpdated(context.Context, json.RawMessage) (any, error) {
	return a.deps.Session.SetProjectUpdated()
}

func (a *API) saveScreenshot(_ context.Context, data json.RawMessage) (any, error) {
	var req struct {
		Screenshot string `json:"screenshot"`
	}
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if err := a.deps.Session.SaveScreenshot(req.Screenshot); err != nil {
		return nil, err
	}
	return map[string]string{"msg": "OK"}, nil
}

func (a *API) saveUserSettings(_ context.Context, data json.RawMessage) (any, error) {
	var req struct {
		Settings map[string]any `json:"settings"`
	}
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if req.Settings == nil {
		return nil, fmt.Errorf("%w: settings are required", errBadRequest)
	}
	if err := a.deps.Session.Settings().SetUserSettings(req.Settings); err != nil {
		return nil, err
	}
	return map[string]string{"msg": "OK"}, nil
}

// RecentPatch is a recent project as listed to the host.
type RecentPatch struct {
	recent.Item
	Thumbnail string `json:"thumbnail"`
}

func (a *API) getRecentPatches(context.Context, json.RawMessage) (any, error) {
	items := a.deps.Session.Recent().List()
	out := make([]RecentPatch, len(items))
	for i, item := range items {
		out[i] = RecentPatch{Item: item, Thumbnail: a.thumbnail(item)}
	}
	return out, nil
}

// thumbnail prefers the stored screenshot, then a generated one next to the
// project file, then the placeholder image.
func (a *API) thumbnail(item recent.Item) string {
	if item.Screenshot != "" {
		return item.Screenshot
	}
	if item.ShortID != "" {
		shot := project.ScreenshotFile(filepath.Dir(item.Path), item.ShortID)
		if _, err := os.Stat(shot); err == nil {
			return shot
		}
	}
	if a.deps.BuildPaths.UI == "" {
		return ""
	}
	return filepath.Join(a.deps.BuildPaths.UI, placeholderImage)
}

func (a *API) gotoPatch(ctx context.Context, data json.RawMessage) (any, error) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	s := a.deps.Session
	if file := s.Recent().ProjectFile(req.ID); file != "" {
		if p := s.LoadProject(file, nil); p != nil {
			return map[string]string{"projectFile": file}, nil
		}
	}

	file, err := a.deps.Dialogs.PickProjectFile(ctx)
	if err != nil {
		return nil, err
	}
	if file == "" {
		return nil, session.ErrNoProjectChosen
	}
	if s.LoadProject(file, nil) == nil {
		return nil, fmt.Errorf("%w: %s", project.ErrParseFailure, file)
	}
	return map[string]string{"projectFile": file}, nil
}

// CheckOpNameRequest asks whether Namespace+V is a usable op name.
type CheckOpNameRequest struct {
	Namespace  string `json:"namespace"`
	V          string `json:"v"`
	SourceName string `json:"sourceName,omitempty"`
	// OpTargetDir is the op directory the op would be written to.
	OpTargetDir string `json:"opTargetDir,omitempty"`
	// IgnoreVersionGap defaults to true.
	IgnoreVersionGap *bool `json:"ignoreVersionGap,omitempty"`
	FromRename       bool  `json:"fromRename,omitempty"`
}

// CheckOpNameResponse is the resolver verdict plus the name that was checked.
type CheckOpNameResponse struct {
	*resolver.Result
	CheckedName string `json:"checkedName"`
}

func (a *API) checkOpName(_ context.Context, data json.RawMessage) (any, error) {
	var req CheckOpNameRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	ignoreGap := true
	if req.IgnoreVersionGap != nil {
		ignoreGap = *req.IgnoreVersionGap
	}
	newName := req.Namespace + req.V
	res := resolver.Check(a.Registry(), resolver.Request{
		NewName:          newName,
		OldName:          req.SourceName,
		IgnoreVersionGap: ignoreGap,
		FromRename:       req.FromRename,
		TargetDir:        req.OpTargetDir,
	})
	return CheckOpNameResponse{Result: res, CheckedName: newName}, nil
}

// Registry scans the op directories of the active project and the shared
// op library.
func (a *API) Registry() *oplib.Registry {
	var sources []oplib.Source
	for _, dir := range a.deps.Session.OpTargetDirs() {
		sources = append(sources, oplib.Source{Name: "project", Dir: dir})
	}
	if a.deps.SharedOpsPath != "" {
		sources = append(sources, oplib.Source{Name: "shared", Dir: a.deps.SharedOpsPath})
	}
	return oplib.Scan(sources, a.log)
}

// OpTargetDir is one entry of getOpTargetDirs.
type OpTargetDir struct {
	Dir string `json:"dir"`
}

func (a *API) getOpTargetDirs(context.Context, json.RawMessage) (any, error) {
	dirs := a.deps.Session.OpTargetDirs()
	out := make([]OpTargetDir, len(dirs))
	for i, d := range dirs {
		out[i] = OpTargetDir{Dir: d}
	}
	return out, nil
}

func (a *API) addProjectOpDir(ctx context.Context, _ json.RawMessage) (any, error) {
	if a.deps.Session.Project() == nil {
		return nil, session.ErrUnknownProject
	}
	dir, err := a.deps.Dialogs.PickOpDir(ctx)
	if err != nil {
		return nil, err
	}
	return a.deps.Session.AddProjectOpDir(dir)
}

// collectAssets copies external assets into the project and points the
// project's references at the copies, saving the project when anything
// moved.
func (a *API) collectAssets(context.Context, json.RawMessage) (any, error) {
	s := a.deps.Session
	p := s.Project()
	if p == nil {
		return nil, session.ErrUnknownProject
	}
	moved, err := a.deps.Collector.Assets(p, s.ProjectDir())
	if err != nil {
		return moved, err
	}
	if len(moved) > 0 && p.ReplaceAssetURLs(moved) > 0 {
		if err := s.WriteProjectToFile(s.ProjectFile(), p, nil); err != nil {
			return moved, err
		}
	}
	a.log.Debug("collectAssets", zap.Any("moved", moved))
	return moved, nil
}

func (a *API) collectOps(context.Context, json.RawMessage) (any, error) {
	s := a.deps.Session
	p := s.Project()
	if p == nil {
		return nil, session.ErrUnknownProject
	}
	return a.deps.Collector.Ops(p, s.ProjectDir(), a.Registry(), a.deps.SharedOpsPath)
}

func (a *API) getBuildInfo(context.Context, json.RawMessage) (any, error) {
	return buildinfo.Read(a.deps.BuildPaths, a.log), nil
}

func (a *API) checkProjectUpdated(context.Context, json.RawMessage) (any, error) {
	p := a.deps.Session.Project()
	if p == nil {
		return nil, session.ErrUnknownProject
	}
	info := buildinfo.Read(a.deps.BuildPaths, a.log)
	info.UpdateWarning = buildinfo.SavedWithNewerCore(info, p.BuildInfo)
	return info, nil
}
