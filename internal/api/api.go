package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/patchdesk/patchdesk/internal/buildinfo"
	"github.com/patchdesk/patchdesk/internal/collect"
	"github.com/patchdesk/patchdesk/internal/logging"
	"github.com/patchdesk/patchdesk/internal/project"
	"github.com/patchdesk/patchdesk/internal/session"
	"go.uber.org/zap"
)

// CommandName identifies a command.
type CommandName string

const (
	CmdSettings            CommandName = "settings"
	CmdGetPatch            CommandName = "getPatch"
	CmdSavePatch           CommandName = "savePatch"
	CmdPatchCreateBackup   CommandName = "patchCreateBackup"
	CmdSaveProjectAs       CommandName = "saveProjectAs"
	CmdSetProjectName      CommandName = "setProjectName"
	CmdSetProjectUpdated   CommandName = "setProjectUpdated"
	CmdSaveScreenshot      CommandName = "saveScreenshot"
	CmdSaveUserSettings    CommandName = "saveUserSettings"
	CmdGetRecentPatches    CommandName = "getRecentPatches"
	CmdGotoPatch           CommandName = "gotoPatch"
	CmdCheckOpName         CommandName = "checkOpName"
	CmdGetOpTargetDirs     CommandName = "getOpTargetDirs"
	CmdAddProjectOpDir     CommandName = "addProjectOpDir"
	CmdCollectAssets       CommandName = "collectAssets"
	CmdCollectOps          CommandName = "collectOps"
	CmdGetBuildInfo        CommandName = "getBuildInfo"
	CmdCheckProjectUpdated CommandName = "checkProjectUpdated"
)

// AllCommands returns every command the API must serve.
func AllCommands() []CommandName {
	return []CommandName{
		CmdSettings, CmdGetPatch, CmdSavePatch, CmdPatchCreateBackup,
		CmdSaveProjectAs, CmdSetProjectName, CmdSetProjectUpdated,
		CmdSaveScreenshot, CmdSaveUserSettings, CmdGetRecentPatches,
		CmdGotoPatch, CmdCheckOpName, CmdGetOpTargetDirs, CmdAddProjectOpDir,
		CmdCollectAssets, CmdCollectOps, CmdGetBuildInfo, CmdCheckProjectUpdated,
	}
}

// Error messages of failed results.
const (
	MsgUnknownCommand  = "UNKNOWN_COMMAND"
	MsgUnknownProject  = "UNKNOWN_PROJECT"
	MsgNoProjectChosen = "NO_PROJECT_CHOSEN"
	MsgParseFailure    = "PARSE_FAILURE"
	MsgBadRequest      = "BAD_REQUEST"
)

// Topic carries per-command dispatch options.
type Topic struct {
	// NeedsProjectFile makes sure the active project is backed by a
	// project file before the handler runs, asking the host for one if not.
	NeedsProjectFile bool
}

// Handler runs one command. data is the raw request payload, possibly empty.
type Handler func(ctx context.Context, data json.RawMessage) (any, error)

// Command is one entry of the command table.
type Command struct {
	Name    CommandName
	Topic   Topic
	Handler Handler
}

// Result is what every call returns.
type Result struct {
	Success bool   `json:"success,omitempty"`
	Error   bool   `json:"error,omitempty"`
	Msg     string `json:"msg,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func success(data any) Result { return Result{Success: true, Data: data} }

func failure(msg string, data any) Result { return Result{Error: true, Msg: msg, Data: data} }

// errBadRequest marks a payload that could not be decoded.
var errBadRequest = errors.New("bad request")

// Deps are the collaborators of the API.
type Deps struct {
	Session   *session.Manager
	Dialogs   Dialogs
	Collector *collect.Collector
	// SharedOpsPath is the root of the installed op library.
	SharedOpsPath string
	BuildPaths    buildinfo.Paths
	Log           *zap.Logger
}

// API dispatches commands to their handlers.
type API struct {
	deps     Deps
	log      *zap.Logger
	commands map[CommandName]Command
}

// New builds the command table and checks it: every command of
// AllCommands must have exactly one handler and no other names may appear.
func New(deps Deps) (*API, error) {
	if deps.Session == nil {
		return nil, fmt.Errorf("api needs a session")
	}
	if deps.Dialogs == nil {
		deps.Dialogs = StaticDialogs{}
	}
	if deps.Collector == nil {
		deps.Collector = collect.New(deps.Log)
	}
	a := &API{deps: deps, log: logging.OrNop(deps.Log).Named("api")}

	commands, err := buildTable(a.commandList())
	if err != nil {
		return nil, err
	}
	a.commands = commands
	return a, nil
}

// buildTable indexes cmds by name and fails fast on a malformed table.
func buildTable(cmds []Command) (map[CommandName]Command, error) {
	table := make(map[CommandName]Command, len(cmds))
	for _, c := range cmds {
		if c.Name == "" {
			return nil, fmt.Errorf("command with empty name")
		}
		if c.Handler == nil {
			return nil, fmt.Errorf("command %s has no handler", c.Name)
		}
		if _, dup := table[c.Name]; dup {
			return nil, fmt.Errorf("command %s registered twice", c.Name)
		}
		table[c.Name] = c
	}

	known := make(map[CommandName]bool)
	for _, name := range AllCommands() {
		known[name] = true
		if _, ok := table[name]; !ok {
			return nil, fmt.Errorf("command %s has no handler", name)
		}
	}
	for name := range table {
		if !known[name] {
			return nil, fmt.Errorf("command %s is not a known command", name)
		}
	}
	return table, nil
}

// Commands returns the served command names, sorted.
func (a *API) Commands() []CommandName {
	names := make([]CommandName, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Call runs the named command.
func (a *API) Call(ctx context.Context, name string, data json.RawMessage) Result {
	if name == "" {
		return failure(MsgUnknownCommand, nil)
	}
	cmd, ok := a.commands[CommandName(name)]
	if !ok {
		a.log.Warn("no handler for command", zap.String("cmd", name))
		return failure(MsgUnknownCommand, name)
	}

	if cmd.Topic.NeedsProjectFile {
		if err := a.ensureProjectFile(ctx); err != nil {
			return a.errorResult(cmd.Name, err)
		}
	}
	out, err := cmd.Handler(ctx, data)
	if err != nil {
		return a.errorResult(cmd.Name, err)
	}
	return success(out)
}

// ensureProjectFile asks the host for a file when the active project has
// none, then writes the project there and loads it.
func (a *API) ensureProjectFile(ctx context.Context) error {
	s := a.deps.Session
	if project.IsProjectFile(s.ProjectFile()) {
		return nil
	}
	file, err := a.deps.Dialogs.SaveProjectFile(ctx, DialogSave)
	if err != nil {
		return err
	}
	if file == "" {
		return session.ErrNoProjectChosen
	}
	current := s.Project()
	if current == nil {
		current = s.GenerateNewProject()
	}
	if err := s.WriteProjectToFile(file, current, nil); err != nil {
		return err
	}
	if s.LoadProject(file, nil) == nil {
		return fmt.Errorf("loading %s failed", file)
	}
	return nil
}

func (a *API) errorResult(name CommandName, err error) Result {
	a.log.Info("command failed", zap.String("cmd", string(name)), zap.Error(err))
	switch {
	case errors.Is(err, session.ErrUnknownProject):
		return failure(MsgUnknownProject, err.Error())
	case errors.Is(err, session.ErrNoProjectChosen):
		return failure(MsgNoProjectChosen, err.Error())
	case errors.Is(err, project.ErrParseFailure):
		return failure(MsgParseFailure, err.Error())
	case errors.Is(err, errBadRequest):
		return failure(MsgBadRequest, err.Error())
	}
	return failure(err.Error(), nil)
}

// decode unmarshals a request payload. An empty payload leaves out as is.
func decode(data json.RawMessage, out any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
