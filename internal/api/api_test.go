package api

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/patchdesk/patchdesk/internal/oplib"
	"github.com/patchdesk/patchdesk/internal/project"
	"github.com/patchdesk/patchdesk/internal/recent"
	"github.com/patchdesk/patchdesk/internal/session"
	"github.com/patchdesk/patchdesk/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T, dialogs Dialogs, sharedOps string) *API {
	t.Helper()
	store, err := settings.Open(t.TempDir(), "prefs", nil)
	require.NoError(t, err)
	now := func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	s := session.New(store, recent.New(store, nil), session.Options{Now: now})
	a, err := New(Deps{Session: s, Dialogs: dialogs, SharedOpsPath: sharedOps})
	require.NoError(t, err)
	return a
}

func call(t *testing.T, a *API, name string, data any) Result {
	t.Helper()
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		require.NoError(t, err)
		raw = b
	}
	return a.Call(context.Background(), name, raw)
}

func writeOp(t *testing.T, root, name string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(`{"id":"`+name+`-id"}`), 0644))
}

func TestBuildTable_RejectsMalformedTables(t *testing.T) {
	noop := func(context.Context, json.RawMessage) (any, error) { return nil, nil }
	full := func() []Command {
		var cmds []Command
		for _, name := range AllCommands() {
			cmds = append(cmds, Command{Name: name, Handler: noop})
		}
		return cmds
	}

	_, err := buildTable(full())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func([]Command) []Command
		want   string
	}{
		{"missing handler", func(c []Command) []Command { return c[1:] }, "has no handler"},
		{"nil handler", func(c []Command) []Command { c[0].Handler = nil; return c }, "has no handler"},
		{"empty name", func(c []Command) []Command { return append(c, Command{Handler: noop}) }, "empty name"},
		{"duplicate", func(c []Command) []Command { return append(c, c[0]) }, "registered twice"},
		{"unknown", func(c []Command) []Command {
			return append(c, Command{Name: "launchRockets", Handler: noop})
		}, "not a known command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildTable(tt.mutate(full()))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNew_ServesEveryCommand(t *testing.T) {
	a := newAPI(t, nil, "")
	assert.ElementsMatch(t, AllCommands(), a.Commands())
}

func TestCall_UnknownCommand(t *testing.T) {
	a := newAPI(t, nil, "")

	res := call(t, a, "nope", nil)
	assert.True(t, res.Error)
	assert.Equal(t, MsgUnknownCommand, res.Msg)

	res = call(t, a, "", nil)
	assert.Equal(t, MsgUnknownCommand, res.Msg)
}

func TestCall_BadPayload(t *testing.T) {
	a := newAPI(t, nil, "")
	res := a.Call(context.Background(), string(CmdCheckOpName), json.RawMessage(`{"namespace":`))
	assert.True(t, res.Error)
	assert.Equal(t, MsgBadRequest, res.Msg)
}

func TestSavePatch_CancelledDialog(t *testing.T) {
	a := newAPI(t, StaticDialogs{}, "")

	res := call(t, a, string(CmdSavePatch), nil)
	assert.True(t, res.Error)
	assert.Equal(t, MsgNoProjectChosen, res.Msg)
}

func TestSavePatch_AsksForFileThenSaves(t *testing.T) {
	file := filepath.Join(t.TempDir(), "first.cables")
	a := newAPI(t, StaticDialogs{SaveFile: file}, "")

	res := call(t, a, string(CmdGetPatch), nil)
	require.True(t, res.Success, res.Msg)

	res = call(t, a, string(CmdSavePatch), map[string]any{
		"data": map[string]any{"ops": []any{map[string]any{"opId": "o1", "objName": "Ops.Math.Sum"}}},
	})
	require.True(t, res.Success, res.Msg)
	saved, ok := res.Data.(*session.SaveResult)
	require.True(t, ok)
	assert.Equal(t, "PROJECT_SAVED", saved.Msg)
	assert.Equal(t, int64(1_700_000_000_000), saved.Updated)

	p, err := project.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "first", p.Name)
	require.Len(t, p.Ops, 1)
	assert.Equal(t, "Ops.Math.Sum", p.Ops[0].ObjName)

	res = call(t, a, string(CmdGetRecentPatches), nil)
	require.True(t, res.Success)
	patches := res.Data.([]RecentPatch)
	require.Len(t, patches, 1)
	assert.Equal(t, file, patches[0].Path)
}

func TestSetProjectName_RenamesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "before.cables")
	a := newAPI(t, StaticDialogs{SaveFile: file}, "")

	res := call(t, a, string(CmdSetProjectName), map[string]string{"name": "after"})
	require.True(t, res.Success, res.Msg)
	assert.Equal(t, map[string]string{"name": "after"}, res.Data)

	_, err := os.Stat(filepath.Join(dir, "after.cables"))
	assert.NoError(t, err)
	_, err = os.Stat(file)
	assert.True(t, os.IsNotExist(err))
}

func TestGotoPatch_ByRecentID(t *testing.T) {
	file := filepath.Join(t.TempDir(), "recent.cables")
	a := newAPI(t, StaticDialogs{SaveFile: file}, "")
	require.True(t, call(t, a, string(CmdSavePatch), nil).Success)
	id := a.deps.Session.Project().ID

	a.deps.Session.LoadProject("", nil)
	res := call(t, a, string(CmdGotoPatch), map[string]string{"id": id})
	require.True(t, res.Success, res.Msg)
	assert.Equal(t, map[string]string{"projectFile": file}, res.Data)
	assert.Equal(t, id, a.deps.Session.Project().ID)
}

func TestGotoPatch_UnknownIDAndNoFile(t *testing.T) {
	a := newAPI(t, StaticDialogs{}, "")
	res := call(t, a, string(CmdGotoPatch), map[string]string{"id": "missing"})
	assert.Equal(t, MsgNoProjectChosen, res.Msg)
}

func TestCheckOpName(t *testing.T) {
	shared := t.TempDir()
	writeOp(t, shared, "Ops.Math.Sum")
	a := newAPI(t, nil, shared)

	res := call(t, a, string(CmdCheckOpName), CheckOpNameRequest{Namespace: "Ops.Math.", V: "Sum"})
	require.True(t, res.Success)
	out := res.Data.(CheckOpNameResponse)
	assert.Equal(t, "Ops.Math.Sum", out.CheckedName)
	assert.Contains(t, out.ProblemKeys, oplib.ProblemTargetExists)
	require.NotNil(t, out.NextVersion)
	assert.Equal(t, "Ops.Math.Sum_v2", out.NextVersion.FullName)

	res = call(t, a, string(CmdCheckOpName), CheckOpNameRequest{Namespace: "Ops.Math.", V: "Product"})
	out = res.Data.(CheckOpNameResponse)
	assert.True(t, out.Ok())
}

func TestCheckOpName_VersionGapOnlyWhenAsked(t *testing.T) {
	shared := t.TempDir()
	writeOp(t, shared, "Ops.Math.Sum")
	a := newAPI(t, nil, shared)

	res := call(t, a, string(CmdCheckOpName), CheckOpNameRequest{Namespace: "Ops.Math.", V: "Sum_v3"})
	out := res.Data.(CheckOpNameResponse)
	assert.NotContains(t, out.HintKeys, "version_gap")

	no := false
	res = call(t, a, string(CmdCheckOpName), CheckOpNameRequest{Namespace: "Ops.Math.", V: "Sum_v3", IgnoreVersionGap: &no})
	out = res.Data.(CheckOpNameResponse)
	assert.Contains(t, out.HintKeys, "version_gap")
}

func TestCollectAssets_RewritesAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "assets.cables")
	lib := t.TempDir()
	asset := filepath.Join(lib, "tex.png")
	require.NoError(t, os.WriteFile(asset, []byte("png"), 0644))

	a := newAPI(t, StaticDialogs{SaveFile: file}, "")
	require.True(t, call(t, a, string(CmdGetPatch), nil).Success)
	value, err := json.Marshal(project.FileURL(asset))
	require.NoError(t, err)
	p := a.deps.Session.Project()
	p.Ops = []project.OpInstance{{OpID: "o1", PortsIn: []project.PortValue{{Name: "file", Value: value}}}}

	res := call(t, a, string(CmdCollectAssets), nil)
	require.True(t, res.Success, res.Msg)
	assert.Equal(t, map[string]string{project.FileURL(asset): "./assets/tex.png"}, res.Data)

	onDisk, err := project.ReadFile(file)
	require.NoError(t, err)
	assert.JSONEq(t, `"./assets/tex.png"`, string(onDisk.Ops[0].PortsIn[0].Value))

	res = call(t, a, string(CmdCollectAssets), nil)
	require.True(t, res.Success)
	assert.Empty(t, res.Data)
}

func TestOpTargetDirs_IncludeAddedDir(t *testing.T) {
	dir := t.TempDir()
	extra := t.TempDir()
	a := newAPI(t, StaticDialogs{SaveFile: filepath.Join(dir, "p.cables"), OpDir: extra}, "")
	require.True(t, call(t, a, string(CmdSavePatch), nil).Success)

	res := call(t, a, string(CmdAddProjectOpDir), nil)
	require.True(t, res.Success, res.Msg)

	res = call(t, a, string(CmdGetOpTargetDirs), nil)
	assert.Equal(t, []OpTargetDir{
		{Dir: filepath.Join(dir, "ops")},
		{Dir: extra},
	}, res.Data)
}

func TestRequiresActiveProject(t *testing.T) {
	a := newAPI(t, StaticDialogs{}, "")
	for _, cmd := range []CommandName{CmdSetProjectUpdated, CmdSaveProjectAs, CmdPatchCreateBackup, CmdCheckProjectUpdated} {
		res := call(t, a, string(cmd), nil)
		assert.Equal(t, MsgUnknownProject, res.Msg, cmd)
	}
}

func TestSettings_NormalizesWindowZoom(t *testing.T) {
	a := newAPI(t, nil, "")
	require.NoError(t, a.deps.Session.Settings().Set(settings.KeyWindowZoomFactor, "huge", true))

	res := call(t, a, string(CmdSettings), nil)
	require.True(t, res.Success)
	snap := res.Data.(map[string]any)
	assert.Equal(t, 1.0, snap[settings.KeyWindowZoomFactor])
	assert.Equal(t, false, snap[settings.KeyOpenDevTools])
	assert.Contains(t, snap, "buildInfo")
}
