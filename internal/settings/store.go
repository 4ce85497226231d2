package settings

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/patchdesk/patchdesk/internal/logging"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
)

//go:embed defaults.yaml
var rawDefaults []byte

// Well-known keys.
const (
	KeyPatchID           = "patchId"
	KeyProjectFile       = "patchFile"
	KeyCurrentProjectDir = "currentPatchDir"
	KeyStorageDir        = "storageDir"
	KeyUserSettings      = "userSettings"
	KeyRecentProjects    = "recentProjects"
	KeyOpenDevTools      = "openDevTools"
	KeyWindowZoomFactor  = "windowZoomFactor"
	KeyCurrentUser       = "currentUser"
)

// ErrParseFailure reports a settings file that exists but is not valid JSON.
var ErrParseFailure = errors.New("settings file could not be parsed")

// Outcome tells whether the last load read the file or fell back to defaults.
type Outcome int

const (
	// Loaded means the settings file was read and parsed.
	Loaded Outcome = iota
	// Defaulted means the file was missing or unparsable and defaults were used.
	Defaulted
)

func (o Outcome) String() string {
	if o == Loaded {
		return "loaded"
	}
	return "defaulted"
}

// LoadResult is the outcome of the most recent load. Err is set when the
// outcome is Defaulted.
type LoadResult struct {
	Outcome Outcome
	Err     error
}

// Store is the JSON-file-backed settings store. It assumes a single writer.
type Store struct {
	path     string
	defaults map[string]any
	data     map[string]any
	last     LoadResult
	log      *zap.Logger
}

// Open creates the storage directory if needed and loads the settings file
// <storageDir>/<name>.json, merging it over the compiled-in defaults.
func Open(storageDir, name string, log *zap.Logger) (*Store, error) {
	if storageDir == "" {
		return nil, fmt.Errorf("storage directory must not be empty")
	}
	if err := os.MkdirAll(storageDir, 0700); err != nil {
		return nil, fmt.Errorf("creating storage directory %s: %w", storageDir, err)
	}

	defaults, err := compiledDefaults()
	if err != nil {
		return nil, err
	}
	defaults[KeyStorageDir] = storageDir

	s := &Store{
		path:     filepath.Join(storageDir, name+".json"),
		defaults: defaults,
		log:      logging.OrNop(log).Named("settings"),
	}
	s.Refresh()
	return s, nil
}

// compiledDefaults decodes the embedded YAML into JSON-shaped values.
func compiledDefaults() (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(rawDefaults, &raw); err != nil {
		return nil, fmt.Errorf("parsing compiled defaults: %w", err)
	}
	normalized, err := normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing compiled defaults: %w", err)
	}
	m, _ := normalized.(map[string]any)
	if m == nil {
		m = make(map[string]any)
	}
	return m, nil
}

// Path returns the settings file location.
func (s *Store) Path() string { return s.path }

// LastLoad reports the outcome of the most recent load from disk.
func (s *Store) LastLoad() LoadResult { return s.last }

// Refresh reloads the store from disk. Keys present in the defaults but
// absent from the file are back-filled; unknown keys are kept as-is.
func (s *Store) Refresh() LoadResult {
	stored, res := s.readFile()
	for key, val := range s.defaults {
		if _, ok := stored[key]; !ok {
			stored[key] = clone(val)
		}
	}
	s.data = stored
	s.last = res
	return res
}

func (s *Store) readFile() (map[string]any, LoadResult) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("reading settings file, using defaults", zap.String("path", s.path), zap.Error(err))
		}
		return make(map[string]any), LoadResult{Outcome: Defaulted, Err: fmt.Errorf("reading %s: %w", s.path, err)}
	}

	var stored map[string]any
	if err := json.Unmarshal(data, &stored); err != nil || stored == nil {
		s.log.Warn("settings file is not valid JSON, using defaults", zap.String("path", s.path), zap.Error(err))
		return make(map[string]any), LoadResult{Outcome: Defaulted, Err: fmt.Errorf("%w: %s", ErrParseFailure, s.path)}
	}
	return stored, LoadResult{Outcome: Loaded}
}

// Get returns the value stored under key, or nil.
func (s *Store) Get(key string) any {
	if s.data == nil {
		return nil
	}
	return s.data[key]
}

// GetString returns the string stored under key, or "" if absent or not a string.
func (s *Store) GetString(key string) string {
	v, _ := s.Get(key).(string)
	return v
}

// GetBool returns the bool stored under key, or false.
func (s *Store) GetBool(key string) bool {
	v, _ := s.Get(key).(bool)
	return v
}

// Decode unmarshals the value stored under key into out. A missing key
// leaves out untouched.
func (s *Store) Decode(key string, out any) error {
	v, ok := s.data[key]
	if !ok || v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding setting %q: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding setting %q: %w", key, err)
	}
	return nil
}

// Set stores value under key. Unless silent, the full store is written to
// disk and then reloaded from it.
func (s *Store) Set(key string, value any, silent bool) error {
	normalized, err := normalize(value)
	if err != nil {
		return fmt.Errorf("encoding setting %q: %w", key, err)
	}
	s.data[key] = normalized
	if silent {
		return nil
	}
	if err := s.write(); err != nil {
		return err
	}
	s.Refresh()
	return nil
}

// Snapshot returns a deep copy of every key and value.
func (s *Store) Snapshot() map[string]any {
	out, _ := clone(s.data).(map[string]any)
	return out
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// write overwrites the settings file with the whole store.
func (s *Store) write() error {
	data, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing settings file: %w", err)
	}
	return nil
}

// normalize converts v into the plain JSON value space (maps, slices,
// float64, string, bool, nil) so that Get returns the same shape before
// and after a reload.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func clone(v any) any {
	out, err := normalize(v)
	if err != nil {
		return v
	}
	return out
}
