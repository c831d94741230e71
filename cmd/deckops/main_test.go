package main

import (
	"reflect"
	"testing"
)

func TestGlobalFlags(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantConfig string
		wantDebug  bool
		wantRest   []string
	}{
		{
			name:     "no globals",
			args:     []string{"-file", "deck.ydk"},
			wantRest: []string{"-file", "deck.ydk"},
		},
		{
			name:       "config with value",
			args:       []string{"-config", "c.toml", "-runs", "10"},
			wantConfig: "c.toml",
			wantRest:   []string{"-runs", "10"},
		},
		{
			name:       "double dash and equals",
			args:       []string{"--config=c.toml", "--debug", "up"},
			wantConfig: "c.toml",
			wantDebug:  true,
			wantRest:   []string{"up"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, debug, rest := globalFlags(tt.args)
			if config != tt.wantConfig || debug != tt.wantDebug {
				t.Errorf("globalFlags() = %q, %v; want %q, %v", config, debug, tt.wantConfig, tt.wantDebug)
			}
			if !reflect.DeepEqual(rest, tt.wantRest) {
				t.Errorf("rest = %v, want %v", rest, tt.wantRest)
			}
		})
	}
}

func TestDeckName(t *testing.T) {
	tests := map[string]string{
		"deck.ydk":               "deck",
		"/home/me/Snake-Eye.ydk": "Snake-Eye",
		"decks/Branded.v2.YDK":   "Branded.v2",
		"noext":                  "noext",
	}
	for path, want := range tests {
		if got := deckName(path); got != want {
			t.Errorf("deckName(%q) = %q, want %q", path, got, want)
		}
	}
}
