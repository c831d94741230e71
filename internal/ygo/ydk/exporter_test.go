package ydk

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
)

func TestExport_Format(t *testing.T) {
	got := Export([]Entry{{ID: 89631139, Count: 2}, {ID: 46986414, Count: 1}})

	want := "#created by DeckOps\n#main\n89631139\n89631139\n46986414\n#extra\n!side\n"
	if got != want {
		t.Errorf("Export() =\n%q\nwant\n%q", got, want)
	}
}

func TestExport_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for trial := 0; trial < 50; trial++ {
		target := MinMainDeck + rng.IntN(MaxMainDeck-MinMainDeck+1)

		var entries []Entry
		total := 0
		for id := 1; total < target; id++ {
			count := min(1+rng.IntN(MaxCopies), target-total)
			entries = append(entries, Entry{ID: 1000 + id, Count: count})
			total += count
		}

		parsed, err := Parse(Export(entries))
		if err != nil {
			t.Fatalf("trial %d: Parse(Export()) error = %v", trial, err)
		}
		if parsed.Total != total {
			t.Errorf("trial %d: Total = %d, want %d", trial, parsed.Total, total)
		}
		if len(parsed.Entries) != len(entries) {
			t.Fatalf("trial %d: %d entries, want %d", trial, len(parsed.Entries), len(entries))
		}
		for i := range entries {
			if parsed.Entries[i] != entries[i] {
				t.Errorf("trial %d: entry %d = %+v, want %+v", trial, i, parsed.Entries[i], entries[i])
			}
		}
	}
}

func TestExportDeck(t *testing.T) {
	d := deck.New("Snake-Eye: Fire/King", []deck.Card{
		{YugiohID: 1, Quantity: 3},
		{YugiohID: 2, Quantity: 1},
	})

	export := ExportDeck(d)

	if export.Filename != "Snake-Eye_ Fire_King.ydk" {
		t.Errorf("Filename = %q", export.Filename)
	}
	if export.MIMEType != "text/plain" {
		t.Errorf("MIMEType = %q, want text/plain", export.MIMEType)
	}
	want := "#created by DeckOps\n#main\n1\n1\n1\n2\n#extra\n!side\n"
	if export.Content != want {
		t.Errorf("Content =\n%q\nwant\n%q", export.Content, want)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple name", input: "My Deck", expected: "My Deck"},
		{name: "with invalid characters", input: "My/Deck\\Name:Test", expected: "My_Deck_Name_Test"},
		{name: "empty name", input: "", expected: "deck"},
		{name: "very long name", input: strings.Repeat("A", 150), expected: strings.Repeat("A", 100)},
		{name: "with trailing spaces", input: "  My Deck  ", expected: "My Deck"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
