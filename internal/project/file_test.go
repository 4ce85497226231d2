package project

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.cables"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestReadFile_ParseFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{oops"},
		{"not an object", `[1, 2]`},
		{"ops not a list", `{"_id": "x", "ops": {}}`},
		{"bad op dir", `{"_id": "x", "dirs": {"ops": [1]}}`},
		{"bad name type", `{"_id": "x", "name": 3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "p.cables")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := ReadFile(path)
			if !errors.Is(err, ErrParseFailure) {
				t.Errorf("err = %v, want ErrParseFailure", err)
			}
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.cables")
	p := Generate(NewLocalUser(time.Now()), time.UnixMilli(42))
	p.SetName("demo")
	p.Extra = map[string]json.RawMessage{"custom": json.RawMessage(`{"k":1}`)}

	if err := WriteFile(path, p, nil); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.ID != p.ID || got.ShortID != p.ShortID || got.Name != "demo" {
		t.Errorf("got %+v", got)
	}
	if string(got.Extra["custom"]) != `{"k":1}` {
		t.Errorf("custom field = %s", got.Extra["custom"])
	}
}

func TestWriteFile_AppliesPayload(t *testing.T) {
	dir := t.TempDir()
	pd := &PatchData{
		Ops: []OpInstance{{OpID: "op-1", ObjName: "Ops.Gl.MainLoop"}},
		UI:  json.RawMessage(`{"zoom":2}`),
	}
	b64, err := EncodeB64(pd)
	if err != nil {
		t.Fatalf("EncodeB64: %v", err)
	}

	payloads := map[string]*Payload{
		"data":        {Data: json.RawMessage(`{"ops":[{"opId":"op-1","objName":"Ops.Gl.MainLoop"}],"ui":{"zoom":2}}`)},
		"data string": {Data: json.RawMessage(`"{\"ops\":[{\"opId\":\"op-1\"}],\"ui\":{\"zoom\":2}}"`)},
		"dataB64":     {DataB64: b64},
	}
	for name, pl := range payloads {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".cables")
			p := Generate(NewLocalUser(time.Now()), time.Now())
			if err := WriteFile(path, p, pl); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if len(got.Ops) != 1 || got.Ops[0].OpID != "op-1" {
				t.Errorf("ops = %+v", got.Ops)
			}
			if string(got.UI) != `{"zoom":2}` {
				t.Errorf("ui = %s", got.UI)
			}
		})
	}
}

func TestWriteFile_EmptyPayload(t *testing.T) {
	p := Generate(NewLocalUser(time.Now()), time.Now())
	err := WriteFile(filepath.Join(t.TempDir(), "x.cables"), p, &Payload{})
	if err == nil {
		t.Error("expected error for empty payload")
	}
}

func TestNameFromFile(t *testing.T) {
	if got := NameFromFile("/a/b/my patch.cables"); got != "my patch" {
		t.Errorf("NameFromFile = %q", got)
	}
	if got := FileName("my/patch"); got != "my_patch.cables" {
		t.Errorf("FileName = %q", got)
	}
	if got := FileName("  "); got != DefaultName+".cables" {
		t.Errorf("FileName(blank) = %q", got)
	}
	if !IsProjectFile("x.cables") || IsProjectFile("x.json") || IsProjectFile("") {
		t.Error("IsProjectFile mismatch")
	}
}
