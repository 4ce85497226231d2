package project

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultName is the name of a freshly generated project.
const DefaultName = "new project"

// VisibilityPrivate is the visibility of new and re-identified projects.
const VisibilityPrivate = "private"

// Project is a saved patch: the graph of op instances plus metadata.
type Project struct {
	ID             string          `json:"_id"`
	ShortID        string          `json:"shortId"`
	Name           string          `json:"name"`
	Summary        *Summary        `json:"summary,omitempty"`
	Created        int64           `json:"created"`
	Updated        int64           `json:"updated,omitempty"`
	UpdatedByUser  string          `json:"updatedByUser,omitempty"`
	UserID         string          `json:"userId,omitempty"`
	CachedUsername string          `json:"cachedUsername,omitempty"`
	Visibility     string          `json:"visibility,omitempty"`
	Ops            []OpInstance    `json:"ops"`
	Dirs           *Dirs           `json:"dirs,omitempty"`
	Screenshot     string          `json:"screenshot,omitempty"`
	UserList       json.RawMessage `json:"userList,omitempty"`
	Teams          json.RawMessage `json:"teams,omitempty"`
	Users          json.RawMessage `json:"users,omitempty"`
	UsersReadOnly  json.RawMessage `json:"usersReadOnly,omitempty"`
	CloneOf        string          `json:"cloneOf,omitempty"`
	BuildInfo      json.RawMessage `json:"buildInfo,omitempty"`
	UI             json.RawMessage `json:"ui,omitempty"`

	// Extra holds top-level fields not modeled above.
	Extra map[string]json.RawMessage `json:"-"`
}

// Summary is the listing block of a project. Title mirrors Project.Name.
type Summary struct {
	Title     string `json:"title"`
	AllowEdit bool   `json:"allowEdit"`

	Extra map[string]json.RawMessage `json:"-"`
}

// OpInstance is one op placed in the patch.
type OpInstance struct {
	OpID    string      `json:"opId"`
	ObjName string      `json:"objName,omitempty"`
	PortsIn []PortValue `json:"portsIn,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// PortValue is the stored value of one input port.
type PortValue struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Dirs lists the per-project search path overrides.
type Dirs struct {
	Ops []string `json:"ops,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type (
	plainProject    Project
	plainSummary    Summary
	plainOpInstance OpInstance
	plainPortValue  PortValue
	plainDirs       Dirs
)

var (
	projectKeys    = jsonKeys(plainProject{})
	summaryKeys    = jsonKeys(plainSummary{})
	opInstanceKeys = jsonKeys(plainOpInstance{})
	portValueKeys  = jsonKeys(plainPortValue{})
	dirsKeys       = jsonKeys(plainDirs{})
)

func (p Project) MarshalJSON() ([]byte, error) {
	if p.Ops == nil {
		p.Ops = []OpInstance{}
	}
	return joinExtra(plainProject(p), p.Extra)
}

func (p *Project) UnmarshalJSON(data []byte) error {
	var plain plainProject
	if err := json.Unmarshal(data, &plain); err != nil {
		return err
	}
	extra, err := splitExtra(data, projectKeys)
	if err != nil {
		return err
	}
	*p = Project(plain)
	p.Extra = extra
	return nil
}

func (s Summary) MarshalJSON() ([]byte, error) {
	return joinExtra(plainSummary(s), s.Extra)
}

func (s *Summary) UnmarshalJSON(data []byte) error {
	var plain plainSummary
	if err := json.Unmarshal(data, &plain); err != nil {
		return err
	}
	extra, err := splitExtra(data, summaryKeys)
	if err != nil {
		return err
	}
	*s = Summary(plain)
	s.Extra = extra
	return nil
}

func (o OpInstance) MarshalJSON() ([]byte, error) {
	return joinExtra(plainOpInstance(o), o.Extra)
}

func (o *OpInstance) UnmarshalJSON(data []byte) error {
	var plain plainOpInstance
	if err := json.Unmarshal(data, &plain); err != nil {
		return err
	}
	extra, err := splitExtra(data, opInstanceKeys)
	if err != nil {
		return err
	}
	*o = OpInstance(plain)
	o.Extra = extra
	return nil
}

func (v PortValue) MarshalJSON() ([]byte, error) {
	return joinExtra(plainPortValue(v), v.Extra)
}

func (v *PortValue) UnmarshalJSON(data []byte) error {
	var plain plainPortValue
	if err := json.Unmarshal(data, &plain); err != nil {
		return err
	}
	extra, err := splitExtra(data, portValueKeys)
	if err != nil {
		return err
	}
	*v = PortValue(plain)
	v.Extra = extra
	return nil
}

func (d Dirs) MarshalJSON() ([]byte, error) {
	return joinExtra(plainDirs(d), d.Extra)
}

func (d *Dirs) UnmarshalJSON(data []byte) error {
	var plain plainDirs
	if err := json.Unmarshal(data, &plain); err != nil {
		return err
	}
	extra, err := splitExtra(data, dirsKeys)
	if err != nil {
		return err
	}
	*d = Dirs(plain)
	d.Extra = extra
	return nil
}

// Generate returns a new in-memory project owned by user.
func Generate(user User, now time.Time) *Project {
	id := uuid.NewString()
	created := now.UnixMilli()
	return &Project{
		ID:             id,
		ShortID:        ShortID(id, created),
		Name:           DefaultName,
		Summary:        &Summary{Title: DefaultName, AllowEdit: true},
		Created:        created,
		Updated:        created,
		UpdatedByUser:  user.Username,
		UserID:         user.ID,
		CachedUsername: user.Username,
		Visibility:     VisibilityPrivate,
		Ops:            []OpInstance{},
		Users:          json.RawMessage("[]"),
		UsersReadOnly:  json.RawMessage("[]"),
		UserList:       json.RawMessage("[]"),
		Teams:          json.RawMessage("[]"),
	}
}

const base62 = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ShortID derives the short identifier of a project from its identifier and
// a millisecond timestamp. Equal inputs always give the same result.
func ShortID(id string, millis int64) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	h.Write([]byte{':'})
	h.Write([]byte(strconv.FormatInt(millis, 10)))
	n := h.Sum64()

	buf := make([]byte, 0, 11)
	for n > 0 {
		buf = append(buf, base62[n%62])
		n /= 62
	}
	if len(buf) == 0 {
		buf = append(buf, base62[0])
	}
	return string(buf)
}

// SetName sets the name and keeps summary.title in step with it.
func (p *Project) SetName(name string) {
	p.Name = name
	if p.Summary == nil {
		p.Summary = &Summary{}
	}
	p.Summary.Title = name
}

// OpDirs returns the project's op directory overrides.
func (p *Project) OpDirs() []string {
	if p.Dirs == nil {
		return nil
	}
	return p.Dirs.Ops
}

// AddOpDir puts dir at the front of the op directory overrides. A dir that
// is already listed is moved to the front.
func (p *Project) AddOpDir(dir string) {
	if p.Dirs == nil {
		p.Dirs = &Dirs{}
	}
	ops := []string{dir}
	for _, d := range p.Dirs.Ops {
		if d != dir {
			ops = append(ops, d)
		}
	}
	p.Dirs.Ops = ops
}

// Clone returns a structurally independent copy.
func (p *Project) Clone() (*Project, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding project: %w", err)
	}
	var out Project
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding project copy: %w", err)
	}
	return &out, nil
}

// Backup returns a copy of p for export. The active project is not touched.
func Backup(p *Project) (*Project, error) {
	if p == nil {
		return nil, fmt.Errorf("no project to back up")
	}
	return p.Clone()
}
