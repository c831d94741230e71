package ydk

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// buildYDK builds a YDK document whose main section lists ids in order.
func buildYDK(ids ...int) string {
	var sb strings.Builder
	sb.WriteString("#created by test\n#main\n")
	for _, id := range ids {
		fmt.Fprintf(&sb, "%d\n", id)
	}
	sb.WriteString("#extra\n1111\n2222\n!side\n3333\n")
	return sb.String()
}

// distinctIDs returns n ids with each id repeated copies times.
func distinctIDs(n, copies int) []int {
	ids := make([]int, 0, n*copies)
	for i := 0; i < n; i++ {
		for c := 0; c < copies; c++ {
			ids = append(ids, 10000+i)
		}
	}
	return ids
}

func TestParse_DeckSizeBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		wantErr bool
	}{
		{name: "39 cards", count: 39, wantErr: true},
		{name: "40 cards", count: 40, wantErr: false},
		{name: "60 cards", count: 60, wantErr: false},
		{name: "61 cards", count: 61, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(buildYDK(distinctIDs(tt.count, 1)...))

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Parse() error = %v", err)
				}
				if result.Total != tt.count {
					t.Errorf("Total = %d, want %d", result.Total, tt.count)
				}
				return
			}

			var sizeErr *DeckSizeError
			if !errors.As(err, &sizeErr) {
				t.Fatalf("Parse() error = %v, want DeckSizeError", err)
			}
			if sizeErr.Count != tt.count {
				t.Errorf("DeckSizeError.Count = %d, want %d", sizeErr.Count, tt.count)
			}
			if result != nil {
				t.Error("Parse() returned a partial result alongside an error")
			}
		})
	}
}

func TestParse_CopyLimit(t *testing.T) {
	// 37 singles + one card three times = 40
	ids := append(distinctIDs(37, 1), 555, 555, 555)
	result, err := Parse(buildYDK(ids...))
	if err != nil {
		t.Fatalf("Parse() with 3 copies error = %v", err)
	}
	last := result.Entries[len(result.Entries)-1]
	if last.ID != 555 || last.Count != 3 {
		t.Errorf("last entry = %+v, want {555 3}", last)
	}

	// 36 singles + one card four times = 40
	ids = append(distinctIDs(36, 1), 555, 555, 555, 555)
	_, err = Parse(buildYDK(ids...))

	var copyErr *CopyLimitError
	if !errors.As(err, &copyErr) {
		t.Fatalf("Parse() error = %v, want CopyLimitError", err)
	}
	if copyErr.ID != 555 || copyErr.Count != 4 {
		t.Errorf("CopyLimitError = %+v, want ID 555 count 4", copyErr)
	}
	if !strings.Contains(copyErr.Error(), "555") || !strings.Contains(copyErr.Error(), "4 copies") {
		t.Errorf("message %q should name the id and count", copyErr.Error())
	}
}

func TestParse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(error) bool
	}{
		{
			name:  "missing main",
			input: "#created by test\n#extra\n!side\n",
			check: func(err error) bool { var e *MissingSectionError; return errors.As(err, &e) },
		},
		{
			name:  "main with no ids",
			input: "#main\n\nnot-a-card\n#extra\n",
			check: func(err error) bool { var e *EmptyDeckError; return errors.As(err, &e) },
		},
		{
			name:  "ids only after extra",
			input: "#main\n#extra\n12345\n",
			check: func(err error) bool { var e *EmptyDeckError; return errors.As(err, &e) },
		},
		{
			name:  "empty input",
			input: "",
			check: func(err error) bool { var e *MissingSectionError; return errors.As(err, &e) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if !tt.check(err) {
				t.Errorf("Parse() error = %v (%T)", err, err)
			}
			if !errors.Is(err, ErrInvalidDeckFile) {
				t.Errorf("error %v should wrap ErrInvalidDeckFile", err)
			}
		})
	}
}

func TestParse_IgnoresNoiseAndStopsAtSide(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("#created by someone\r\n#main\r\n")
	for i, id := range distinctIDs(20, 2) {
		if i%7 == 0 {
			sb.WriteString("# a comment\r\n\r\n  abc  \r\n12a\r\n")
		}
		fmt.Fprintf(&sb, "  %d  \r\n", id)
	}
	// Side starts without an extra section; these must not be counted.
	sb.WriteString("!side\r\n999\r\n999\r\n999\r\n999\r\n")

	result, err := Parse(sb.String())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if result.Total != 40 {
		t.Errorf("Total = %d, want 40", result.Total)
	}
	if len(result.Entries) != 20 {
		t.Errorf("len(Entries) = %d, want 20", len(result.Entries))
	}
	for _, e := range result.Entries {
		if e.ID == 999 {
			t.Error("side deck id leaked into main deck")
		}
	}
}

func TestParse_MainRunsToEndOfFile(t *testing.T) {
	input := "#main\n" + strings.Repeat("46986414\n", 2) + strings.Join(intsToLines(distinctIDs(38, 1)), "\n")

	result, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if result.Entries[0].ID != 46986414 || result.Entries[0].Count != 2 {
		t.Errorf("first entry = %+v, want {46986414 2}", result.Entries[0])
	}
}

func TestParse_PreservesFirstSeenOrder(t *testing.T) {
	ids := append([]int{3, 1, 3, 2, 1}, distinctIDs(35, 1)...)

	result, err := Parse(buildYDK(ids...))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []Entry{{ID: 3, Count: 2}, {ID: 1, Count: 2}, {ID: 2, Count: 1}}
	for i, w := range want {
		if result.Entries[i] != w {
			t.Errorf("Entries[%d] = %+v, want %+v", i, result.Entries[i], w)
		}
	}
}

func TestParseReader(t *testing.T) {
	result, err := ParseReader(strings.NewReader(buildYDK(distinctIDs(20, 2)...)))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	if result.Total != 40 {
		t.Errorf("Total = %d, want 40", result.Total)
	}
}

func intsToLines(ids []int) []string {
	lines := make([]string, len(ids))
	for i, id := range ids {
		lines[i] = fmt.Sprint(id)
	}
	return lines
}
