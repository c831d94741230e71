package ydk

import (
	"strconv"
	"strings"

	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
)

const (
	// Header is the comment line written at the top of exported files.
	Header = "#created by DeckOps"

	// FileExtension and MIMEType describe exported files.
	FileExtension = ".ydk"
	MIMEType      = "text/plain"
)

// DeckExport represents an exported deck.
type DeckExport struct {
	Content  string // The exported deck text
	Filename string // Suggested filename for download
	MIMEType string
}

// Export writes entries as a YDK document. Each id is repeated once per copy,
// and the extra and side sections are always empty.
func Export(entries []Entry) string {
	var sb strings.Builder

	sb.WriteString(Header)
	sb.WriteString("\n")
	sb.WriteString(MarkerMain)
	sb.WriteString("\n")

	for _, e := range entries {
		line := strconv.Itoa(e.ID) + "\n"
		for i := 0; i < e.Count; i++ {
			sb.WriteString(line)
		}
	}

	sb.WriteString(MarkerExtra)
	sb.WriteString("\n")
	sb.WriteString(MarkerSide)
	sb.WriteString("\n")

	return sb.String()
}

// EntriesFromDeck converts a compressed deck into YDK entries.
func EntriesFromDeck(d *deck.Deck) []Entry {
	entries := make([]Entry, len(d.Cards))
	for i, c := range d.Cards {
		entries[i] = Entry{ID: c.YugiohID, Count: c.Quantity}
	}
	return entries
}

// ExportDeck exports a deck along with a download filename.
func ExportDeck(d *deck.Deck) *DeckExport {
	return &DeckExport{
		Content:  Export(EntriesFromDeck(d)),
		Filename: Filename(d.Name),
		MIMEType: MIMEType,
	}
}

// Filename returns the download filename for a deck name.
func Filename(deckName string) string {
	return sanitizeFilename(deckName) + FileExtension
}

// sanitizeFilename removes invalid characters from filename.
func sanitizeFilename(name string) string {
	// Replace invalid filename characters with underscore
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if len(result) > 100 {
		result = result[:100]
	}
	if result == "" {
		result = "deck"
	}
	return result
}
