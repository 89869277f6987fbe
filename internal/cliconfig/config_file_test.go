package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	zero := 0
	fifty := 50

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				StoreURL:        "http://es:9200",
				Username:        "elastic",
				Password:        "secret",
				IndexPrefix:     "app-",
				Interval:        int64(10),
				MaxQueueLength:  &fifty,
				FallbackLogFile: "/var/log/fallback.log",
				ExceptionLimit:  &fifty,
				HTTPTimeout:     "5s",
				ListenAddr:      ":8080",
				LogLevel:        "debug",
				TypeTag:         "event",
				SuffixLayout:    "2006.01",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				StoreURL:        "http://es:9200",
				Username:        "elastic",
				Password:        "secret",
				IndexPrefix:     "app-",
				Interval:        10 * time.Second,
				MaxQueueLength:  50,
				FallbackLogFile: "/var/log/fallback.log",
				ExceptionLimit:  50,
				HTTPTimeout:     5 * time.Second,
				ListenAddr:      ":8080",
				LogLevel:        "debug",
				TypeTag:         "event",
				SuffixLayout:    "2006.01",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				StoreURL:    "http://file:9200",
				IndexPrefix: "file-",
				Interval:    "1m",
			},
			changed: map[string]bool{"store-url": true, "interval": true},
			initial: Config{
				StoreURL: "http://flag:9200",
				Interval: time.Second,
			},
			expected: Config{
				StoreURL:    "http://flag:9200", // unchanged because flag was set
				IndexPrefix: "file-",
				Interval:    time.Second,
			},
		},
		{
			name:       "explicit zero disables max queue length",
			fileConfig: FileConfig{MaxQueueLength: &zero},
			changed:    map[string]bool{},
			initial:    Config{MaxQueueLength: 100},
			expected:   Config{MaxQueueLength: 0},
		},
		{
			name:       "float interval",
			fileConfig: FileConfig{Interval: 1.5},
			changed:    map[string]bool{},
			expected:   Config{Interval: 1500 * time.Millisecond},
		},
		{
			name:       "invalid interval",
			fileConfig: FileConfig{Interval: "whenever"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
		{
			name:       "invalid http timeout",
			fileConfig: FileConfig{HTTPTimeout: "fast"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
store_url = "http://localhost:9200"
index_prefix = "logs-"
interval = 15
max_queue_length = 500
fallback_log_file = "/tmp/fallback.log"
http_timeout = "10s"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.StoreURL != "http://localhost:9200" {
		t.Errorf("StoreURL = %v, want http://localhost:9200", fc.StoreURL)
	}
	if fc.IndexPrefix != "logs-" {
		t.Errorf("IndexPrefix = %v, want logs-", fc.IndexPrefix)
	}
	if fc.MaxQueueLength == nil || *fc.MaxQueueLength != 500 {
		t.Errorf("MaxQueueLength = %v, want 500", fc.MaxQueueLength)
	}
	if fc.HTTPTimeout != "10s" {
		t.Errorf("HTTPTimeout = %v, want 10s", fc.HTTPTimeout)
	}

	interval, err := ParseInterval(fc.Interval)
	if err != nil || interval != 15*time.Second {
		t.Errorf("Interval = %v (%v), want 15s", interval, err)
	}
}

func TestLoadFileConfig_IntervalForms(t *testing.T) {
	tests := []struct {
		line string
		want time.Duration
	}{
		{`interval = 2`, 2 * time.Second},
		{`interval = 0.25`, 250 * time.Millisecond},
		{`interval = "45s"`, 45 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.line+"\n"), 0644); err != nil {
				t.Fatal(err)
			}
			fc, err := LoadFileConfig(path)
			if err != nil {
				t.Fatalf("LoadFileConfig() error = %v", err)
			}
			got, err := ParseInterval(fc.Interval)
			if err != nil || got != tt.want {
				t.Errorf("interval = %v (%v), want %v", got, err, tt.want)
			}
		})
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
store_url = "http://localhost:9200"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".lumberjack") {
		t.Errorf("DefaultConfigPath() = %v, should contain .lumberjack", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
