package userdata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetRoot_EnvOverride(t *testing.T) {
	t.Setenv("PATCHDESK_HOME", "/tmp/test-patchdesk")
	root, err := GetRoot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root != "/tmp/test-patchdesk" {
		t.Errorf("expected /tmp/test-patchdesk, got %s", root)
	}
}

func TestGetRoot_Default(t *testing.T) {
	t.Setenv("PATCHDESK_HOME", "")
	root, err := GetRoot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if expected := filepath.Join(home, ".patchdesk"); root != expected {
		t.Errorf("expected %s, got %s", expected, root)
	}
}

func TestDirsBelowRoot(t *testing.T) {
	t.Setenv("PATCHDESK_HOME", "/tmp/pd")

	tests := []struct {
		name string
		get  func() (string, error)
		want string
	}{
		{"storage", GetStorageDir, "/tmp/pd/settings"},
		{"ops", GetOpsRoot, "/tmp/pd/ops"},
		{"assets", GetAssetLibraryRoot, "/tmp/pd/assets"},
		{"settings file", GetSettingsPath, "/tmp/pd/settings/patchdesk-preferences.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.get()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
