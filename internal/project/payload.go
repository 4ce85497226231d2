package project

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
)

// Payload is the editor's serialized patch as sent on save. Exactly one of
// Data (plain JSON, or a JSON string holding it) and DataB64 (base64 of the
// zlib-compressed JSON) is expected to be set.
type Payload struct {
	Data    json.RawMessage `json:"data,omitempty"`
	DataB64 string          `json:"dataB64,omitempty"`
}

// PatchData is the content of a payload.
type PatchData struct {
	Ops []OpInstance    `json:"ops"`
	UI  json.RawMessage `json:"ui,omitempty"`
}

// Decode unpacks the payload.
func (pl *Payload) Decode() (*PatchData, error) {
	var raw []byte
	switch {
	case pl.DataB64 != "":
		compressed, err := base64.StdEncoding.DecodeString(pl.DataB64)
		if err != nil {
			return nil, fmt.Errorf("decoding dataB64: %w", err)
		}
		zr, err := zlib.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, fmt.Errorf("opening dataB64 stream: %w", err)
		}
		defer zr.Close()
		raw, err = io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("inflating dataB64: %w", err)
		}
	case len(pl.Data) > 0:
		raw = pl.Data
		var s string
		if json.Unmarshal(raw, &s) == nil {
			raw = []byte(s)
		}
	default:
		return nil, fmt.Errorf("payload carries no patch data")
	}

	var pd PatchData
	if err := json.Unmarshal(raw, &pd); err != nil {
		return nil, fmt.Errorf("decoding patch data: %w", err)
	}
	if pd.Ops == nil {
		pd.Ops = []OpInstance{}
	}
	return &pd, nil
}

// EncodeB64 packs pd the way DataB64 expects it.
func EncodeB64(pd *PatchData) (string, error) {
	data, err := json.Marshal(pd)
	if err != nil {
		return "", fmt.Errorf("encoding patch data: %w", err)
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return "", fmt.Errorf("compressing patch data: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compressing patch data: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
