// Package ydk reads and writes YDK deck files.
//
// A YDK file lists one card id per physical copy:
//
//	#created by ...
//	#main
//	89631139
//	89631139
//	#extra
//	!side
//
// Only the main deck is read; the extra and side sections end it.
package ydk

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const (
	MarkerMain  = "#main"
	MarkerExtra = "#extra"
	MarkerSide  = "!side"

	MinMainDeck = 40
	MaxMainDeck = 60
	MaxCopies   = 3
)

var cardIDLine = regexp.MustCompile(`^\d+$`)

// Entry is a distinct card id and the number of copies listed for it.
type Entry struct {
	ID    int `json:"id"`
	Count int `json:"count"`
}

// ParsedDeck is the compressed main deck of a YDK file.
type ParsedDeck struct {
	Entries []Entry `json:"entries"` // first-seen order
	Total   int     `json:"total"`
}

// ParseReader reads a YDK document from r and parses it.
func ParseReader(r io.Reader) (*ParsedDeck, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read deck file: %w", err)
	}
	return Parse(string(data))
}

// Parse extracts and validates the main deck of a YDK document.
// Any structural or cardinality violation fails the whole parse.
func Parse(content string) (*ParsedDeck, error) {
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	mainStart := -1
	for i, line := range lines {
		if line == MarkerMain {
			mainStart = i
			break
		}
	}
	if mainStart == -1 {
		return nil, &MissingSectionError{Section: MarkerMain}
	}

	mainEnd := len(lines)
	for i := mainStart + 1; i < len(lines); i++ {
		if lines[i] == MarkerExtra || lines[i] == MarkerSide {
			mainEnd = i
			break
		}
	}

	ids := make([]int, 0, MaxMainDeck)
	for _, line := range lines[mainStart+1 : mainEnd] {
		if !cardIDLine.MatchString(line) {
			continue
		}
		id, err := strconv.Atoi(line)
		if err != nil {
			// Only reachable for ids that overflow int.
			return nil, fmt.Errorf("%w: card id %q out of range", ErrInvalidDeckFile, line)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, &EmptyDeckError{}
	}
	if len(ids) < MinMainDeck || len(ids) > MaxMainDeck {
		return nil, &DeckSizeError{Count: len(ids), Min: MinMainDeck, Max: MaxMainDeck}
	}

	index := make(map[int]int, len(ids))
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		if i, ok := index[id]; ok {
			entries[i].Count++
			continue
		}
		index[id] = len(entries)
		entries = append(entries, Entry{ID: id, Count: 1})
	}

	for _, e := range entries {
		if e.Count > MaxCopies {
			return nil, &CopyLimitError{ID: e.ID, Count: e.Count, Max: MaxCopies}
		}
	}

	return &ParsedDeck{Entries: entries, Total: len(ids)}, nil
}
