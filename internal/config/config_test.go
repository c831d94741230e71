package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	if err := c.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if c.Simulation.DrawCount != 5 || c.Simulation.Runs != 1000 || c.Simulation.MaxRuns != 10000 {
		t.Errorf("simulation defaults = %+v", c.Simulation)
	}
	if c.Tips.MinStarters != 1.8 {
		t.Errorf("Tips.MinStarters = %v, want 1.8", c.Tips.MinStarters)
	}
	if len(c.Roles.Rules) != 3 || c.Roles.Rules[0].Role != deck.RoleHandTrap {
		t.Errorf("role rules = %+v", c.Roles.Rules)
	}
	if c.StaleThreshold() != 7*24*time.Hour {
		t.Errorf("StaleThreshold() = %v, want 168h", c.StaleThreshold())
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.API.Port != 8080 {
		t.Errorf("API.Port = %d, want 8080", c.API.Port)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[simulation]
runs = 500
seed = 42

[tips]
min_starters = 2.0

[[roles.rules]]
role = "handTrap"
name_any = ["maxx"]

[api]
port = 9000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Simulation.Runs != 500 || c.Simulation.Seed != 42 {
		t.Errorf("simulation = %+v", c.Simulation)
	}
	if c.Simulation.DrawCount != 5 {
		t.Errorf("DrawCount = %d, want default 5", c.Simulation.DrawCount)
	}
	if c.Tips.MinStarters != 2.0 || c.Tips.MaxStarters != 2.5 {
		t.Errorf("tips = %+v", c.Tips)
	}
	if len(c.Roles.Rules) != 1 || c.Roles.Rules[0].NameAny[0] != "maxx" {
		t.Errorf("role rules = %+v, want the single configured rule", c.Roles.Rules)
	}
	if c.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", c.API.Port)
	}
	if c.Lookup.BaseURL == "" {
		t.Error("Lookup.BaseURL should keep its default")
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad toml", content: "[simulation\nruns = ", wantErr: "parse config file"},
		{name: "runs above max", content: "[simulation]\nruns = 20000\n", wantErr: "runs must be between"},
		{name: "bad duration", content: "[lookup]\ntimeout = \"soon\"\n", wantErr: "invalid lookup timeout"},
		{name: "unknown role", content: "[[roles.rules]]\nrole = \"combo\"\n", wantErr: "unknown role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	c := DefaultConfig()
	c.Simulation.Runs = 250
	c.App.DebugMode = true
	if err := c.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Simulation.Runs != 250 || !loaded.App.DebugMode {
		t.Errorf("loaded = %+v", loaded)
	}
	if len(loaded.Roles.Categories) != 2 {
		t.Errorf("categories = %+v", loaded.Roles.Categories)
	}
}

func TestDatabasePath(t *testing.T) {
	c := DefaultConfig()
	c.Storage.Path = "/tmp/x.db"

	path, err := c.DatabasePath()
	if err != nil || path != "/tmp/x.db" {
		t.Errorf("DatabasePath() = %q, %v", path, err)
	}
}
