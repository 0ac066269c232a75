package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGlobalPath(t *testing.T) {
	tests := []struct {
		name      string
		xdgConfig string
		want      string
	}{
		{
			name:      "with XDG_CONFIG_HOME set",
			xdgConfig: "/custom/config",
			want:      "/custom/config/botstudio/botstudio.yml",
		},
		{
			name:      "without XDG_CONFIG_HOME",
			xdgConfig: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save original
			origXDG := os.Getenv("XDG_CONFIG_HOME")
			defer func() {
				if origXDG != "" {
					_ = os.Setenv("XDG_CONFIG_HOME", origXDG)
				} else {
					_ = os.Unsetenv("XDG_CONFIG_HOME")
				}
			}()

			if tt.xdgConfig != "" {
				_ = os.Setenv("XDG_CONFIG_HOME", tt.xdgConfig)
			} else {
				_ = os.Unsetenv("XDG_CONFIG_HOME")
			}

			got := GlobalPath()
			if tt.xdgConfig != "" {
				if got != tt.want {
					t.Errorf("GlobalPath() = %v, want %v", got, tt.want)
				}
			} else {
				if !filepath.IsAbs(got) {
					t.Errorf("GlobalPath() should return absolute path, got %v", got)
				}
				if filepath.Base(got) != "botstudio.yml" {
					t.Errorf("GlobalPath() should end with botstudio.yml, got %v", got)
				}
			}
		})
	}
}

func TestProjectPath(t *testing.T) {
	got := ProjectPath()
	want := "botstudio.yml"
	if got != want {
		t.Errorf("ProjectPath() = %v, want %v", got, want)
	}
}

func TestLoadDefaults(t *testing.T) {
	// Run from an empty directory so no project config or .env leaks in
	tmp := t.TempDir()
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer func() { _ = os.Chdir(origWD) }()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.APIBaseURL == "" {
		t.Error("expected default api_base_url to be set")
	}
	if cfg.Tone != "amigable" {
		t.Errorf("expected default tone 'amigable', got %q", cfg.Tone)
	}
	if cfg.UploadMaxMB != 5 {
		t.Errorf("expected default upload_max_mb 5, got %d", cfg.UploadMaxMB)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log_level 'info', got %q", cfg.LogLevel)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	tmp := t.TempDir()
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer func() { _ = os.Chdir(origWD) }()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg"))
	t.Setenv("BOTSTUDIO_API_BASE_URL", "http://localhost:5000")
	t.Setenv("BOTSTUDIO_SESSION_TOKEN", "tok-123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.APIBaseURL != "http://localhost:5000" {
		t.Errorf("env override not applied, got %q", cfg.APIBaseURL)
	}
	if cfg.SessionToken != "tok-123" {
		t.Errorf("session token not read from env, got %q", cfg.SessionToken)
	}
}

func TestWriteAndReadProject(t *testing.T) {
	tmp := t.TempDir()
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer func() { _ = os.Chdir(origWD) }()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg"))

	want := &Config{
		APIBaseURL:  "http://localhost:5000",
		Tone:        "profesional",
		UploadMaxMB: 5,
		LogLevel:    "debug",
	}
	if err := WriteProject(want); err != nil {
		t.Fatalf("WriteProject failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() after write failed: %v", err)
	}
	if cfg.APIBaseURL != want.APIBaseURL || cfg.Tone != want.Tone || cfg.LogLevel != want.LogLevel {
		t.Errorf("Load() = %+v, want fields from %+v", cfg, want)
	}
}
