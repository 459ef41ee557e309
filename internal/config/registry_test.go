package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS != "windows" && runtime.GOOS != "darwin" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	}

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "streammagic") {
		t.Errorf("GetConfigDir() = %v, should contain 'streammagic'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	default:
		if configDir != filepath.Join("/tmp/xdg", "streammagic") {
			t.Errorf("GetConfigDir() = %v, want XDG_CONFIG_HOME based path", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != CurrentVersion {
		t.Errorf("NewRegistry().Version = %v, want %v", reg.Version, CurrentVersion)
	}
	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.TimeoutSeconds != 100 {
		t.Errorf("TimeoutSeconds = %v, want 100", reg.Preferences.TimeoutSeconds)
	}
	if reg.Preferences.RetryAttempts != 1 {
		t.Errorf("RetryAttempts = %v, want 1", reg.Preferences.RetryAttempts)
	}
}

func TestRegistryAddAndRemoveDevice(t *testing.T) {
	reg := NewRegistry()

	if _, err := reg.AddDevice("lounge", " 192.168.1.20 "); err != nil {
		t.Fatalf("AddDevice() error = %v", err)
	}
	if got := reg.GetDevice("lounge"); got == nil || got.Host != "192.168.1.20" {
		t.Fatalf("GetDevice(lounge) = %+v", got)
	}

	reg.Preferences.DefaultDevice = "lounge"
	if !reg.RemoveDevice("lounge") {
		t.Error("RemoveDevice(lounge) should report true")
	}
	if reg.Preferences.DefaultDevice != "" {
		t.Error("removing the default device should clear DefaultDevice")
	}
	if reg.RemoveDevice("lounge") {
		t.Error("RemoveDevice on a missing device should report false")
	}
}

func TestRegistryAddDeviceValidation(t *testing.T) {
	reg := NewRegistry()

	if _, err := reg.AddDevice("", "192.168.1.20"); err == nil {
		t.Error("AddDevice with empty name should fail")
	}
	if _, err := reg.AddDevice("lounge", "  "); err == nil {
		t.Error("AddDevice with empty host should fail")
	}
}

func TestRegistryUpdateDeviceSeen(t *testing.T) {
	reg := NewRegistry()
	reg.AddDevice("lounge", "192.168.1.20")

	reg.UpdateDeviceSeen("lounge", "CXN (v2)", "uuid:1234")
	reg.UpdateDeviceSeen("missing", "CXN", "uuid:0")

	d := reg.GetDevice("lounge")
	if d.Model != "CXN (v2)" || d.UDN != "uuid:1234" {
		t.Errorf("device identity not recorded: %+v", d)
	}
	if d.LastSeen.IsZero() {
		t.Error("LastSeen should be set")
	}
	if reg.GetDevice("missing") != nil {
		t.Error("UpdateDeviceSeen must not create devices")
	}
}

func TestRegistryResolveHost(t *testing.T) {
	reg := NewRegistry()
	reg.AddDevice("lounge", "192.168.1.20")
	reg.AddDevice("study", "192.168.1.21:8080")

	tests := []struct {
		in   string
		want string
	}{
		{"lounge", "192.168.1.20"},
		{"study", "192.168.1.21:8080"},
		{"10.0.0.5", "10.0.0.5"},
	}
	for _, tt := range tests {
		got, err := reg.ResolveHost(tt.in)
		if err != nil {
			t.Errorf("ResolveHost(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveHost(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := reg.ResolveHost(""); err == nil {
		t.Error("ResolveHost(\"\") without a default device should fail")
	}

	reg.Preferences.DefaultDevice = "study"
	if got, _ := reg.ResolveHost(""); got != "192.168.1.21:8080" {
		t.Errorf("ResolveHost(\"\") = %q, want default device host", got)
	}
}

func TestRegistryDeviceNames(t *testing.T) {
	reg := NewRegistry()
	reg.AddDevice("study", "b")
	reg.AddDevice("lounge", "a")

	names := reg.DeviceNames()
	if len(names) != 2 || names[0] != "lounge" || names[1] != "study" {
		t.Errorf("DeviceNames() = %v, want sorted", names)
	}

	if name, ok := reg.NameForHost("b"); !ok || name != "study" {
		t.Errorf("NameForHost(b) = %q, %v", name, ok)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	for _, file := range []string{"config.yaml", "config.toml"} {
		t.Run(file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", file)

			reg := NewRegistry()
			reg.AddDevice("lounge", "192.168.1.20")
			reg.UpdateDeviceSeen("lounge", "CXN (v2)", "uuid:1234")
			reg.Preferences.DefaultDevice = "lounge"
			reg.Preferences.RetryAttempts = 5

			if err := reg.SaveFile(path); err != nil {
				t.Fatalf("SaveFile() error = %v", err)
			}
			if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
				t.Error("temporary file should not remain after save")
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}

			d := loaded.GetDevice("lounge")
			if d == nil || d.Host != "192.168.1.20" || d.Model != "CXN (v2)" {
				t.Errorf("loaded device = %+v", d)
			}
			want := reg.GetDevice("lounge").LastSeen.Truncate(time.Second)
			if !d.LastSeen.Truncate(time.Second).Equal(want) {
				t.Errorf("LastSeen = %v, want %v", d.LastSeen, want)
			}
			if loaded.Preferences.DefaultDevice != "lounge" || loaded.Preferences.RetryAttempts != 5 {
				t.Errorf("loaded preferences = %+v", loaded.Preferences)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	reg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if reg.Version != CurrentVersion || reg.Preferences == nil {
		t.Errorf("missing file should give a default registry, got %+v", reg)
	}
}

func TestLoadDefaultPath(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	reg := NewRegistry()
	reg.AddDevice("lounge", "192.168.1.20")
	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.GetDevice("lounge") == nil {
		t.Error("device should be loaded from the default path")
	}
}

func TestParseRejectsVersion(t *testing.T) {
	_, err := Parse([]byte("version: 2\n"), FormatYAML)
	if err == nil || !strings.Contains(err.Error(), "unsupported config version") {
		t.Errorf("Parse() error = %v, want unsupported version", err)
	}
}

func TestParseFillsDefaults(t *testing.T) {
	reg, err := Parse([]byte("version = 1\n"), FormatTOML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if reg.Devices == nil || reg.Preferences == nil {
		t.Error("Parse() should initialise devices and preferences")
	}
}

func TestFormatForPath(t *testing.T) {
	if FormatForPath("a/b.TOML") != FormatTOML {
		t.Error(".TOML should select TOML")
	}
	if FormatForPath("a/b.yml") != FormatYAML {
		t.Error(".yml should select YAML")
	}
}

func BenchmarkResolveHost(b *testing.B) {
	reg := NewRegistry()
	reg.AddDevice("lounge", "192.168.1.20")
	for i := 0; i < b.N; i++ {
		_, _ = reg.ResolveHost("lounge")
	}
}
