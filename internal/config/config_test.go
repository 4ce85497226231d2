package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestSetAndGet(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PATCHDESK_HOME", "")
	viper.Reset()
	Load()

	if err := Set(KeyOpsPath, "/opt/ops"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := OpsPath(); got != "/opt/ops" {
		t.Errorf("OpsPath() = %q, want /opt/ops", got)
	}
	if _, err := os.Stat(filepath.Join(home, ".patchdesk", "config.yaml")); err != nil {
		t.Errorf("config file not written: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PATCHDESK_HOME", "")
	viper.Reset()
	Load()

	want := filepath.Join(home, ".patchdesk", "settings")
	if got := StorageDir(); got != want {
		t.Errorf("StorageDir() = %q, want %q", got, want)
	}
	if got := Get(KeyLogLevel); got != "info" {
		t.Errorf("log.level = %q, want info", got)
	}
}

func TestEnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PATCHDESK_HOME", "")
	t.Setenv("PATCHDESK_LOG_LEVEL", "debug")
	viper.Reset()
	Load()

	if got := Get(KeyLogLevel); got != "debug" {
		t.Errorf("log.level = %q, want debug", got)
	}
}

func TestDirHonorsHomeOverride(t *testing.T) {
	root := t.TempDir()
	t.Setenv("PATCHDESK_HOME", root)
	viper.Reset()
	Load()

	if got := Dir(); got != root {
		t.Errorf("Dir() = %q, want %q", got, root)
	}
	if got := OpsPath(); got != filepath.Join(root, "ops") {
		t.Errorf("OpsPath() = %q", got)
	}
}
