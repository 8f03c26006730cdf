// package formatter provides functions to export playlist listings to various formats (CSV, Markdown, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/porter/internal/models"
	"github.com/desertthunder/porter/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// Formats lists every supported [Format], in the order they are documented.
var Formats = []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// ParseFormat resolves a format name. An empty name is [FormatText].
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// Listing is a titled set of playlists. EmbedURL, when set, adds each playlist's embed player URL.
type Listing struct {
	Title     string
	Playlists []models.Playlist
	EmbedURL  func(id string) string
}

func (l Listing) embed(id string) string {
	if l.EmbedURL == nil {
		return ""
	}
	return l.EmbedURL(id)
}

// ExportToCSV converts a Listing to CSV format with columns: ID, Name and, when available, Embed
func ExportToCSV(l Listing) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name"}
	if l.EmbedURL != nil {
		headers = append(headers, "Embed")
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range l.Playlists {
		record := []string{p.ID, p.Name}
		if l.EmbedURL != nil {
			record = append(record, l.embed(p.ID))
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Listing to a Markdown document with one bullet per playlist
func ExportToMarkdown(l Listing) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", l.Title))
	buf.WriteString(fmt.Sprintf("**Playlists**: %d\n\n", len(l.Playlists)))

	if len(l.Playlists) == 0 {
		buf.WriteString("_No playlists found._\n")
		return buf.Bytes(), nil
	}

	for _, p := range l.Playlists {
		if src := l.embed(p.ID); src != "" {
			buf.WriteString(fmt.Sprintf("- [%s](%s) `%s`\n", escapeMarkdown(p.Name), src, p.ID))
		} else {
			buf.WriteString(fmt.Sprintf("- %s `%s`\n", escapeMarkdown(p.Name), p.ID))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Listing to plain text format
func ExportToText(l Listing) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s: %d\n\n", l.Title, len(l.Playlists)))
	if len(l.Playlists) == 0 {
		buf.WriteString("No playlists found.\n")
		return buf.Bytes(), nil
	}

	for i, p := range l.Playlists {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, p.Name, p.ID))
	}

	return buf.Bytes(), nil
}

// ExportToJSON writes the playlists as an indented JSON array of {id, name} objects
func ExportToJSON(l Listing) ([]byte, error) {
	playlists := l.Playlists
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	data, err := json.MarshalIndent(playlists, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal playlists: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders a Listing in the given format.
func Export(l Listing, f Format) ([]byte, error) {
	switch f {
	case FormatText, "":
		return ExportToText(l)
	case FormatMarkdown:
		return ExportToMarkdown(l)
	case FormatCSV:
		return ExportToCSV(l)
	case FormatJSON:
		return ExportToJSON(l)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// Write renders a Listing to w.
func Write(w io.Writer, l Listing, f Format) error {
	data, err := Export(l, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s output: %w", f, err)
	}
	return nil
}

var markdownEscaper = strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`, "*", `\*`, "_", `\_`, "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
