// package formatter renders a page of saved videos as CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"

	"github.com/desertthunder/compilations/internal/models"
	"github.com/desertthunder/compilations/internal/shared"
)

// Exporter renders a page into a document.
type Exporter func(page *models.Page) ([]byte, error)

// Format pairs an [Exporter] with the content type of its output.
type Format struct {
	ContentType string
	Export      Exporter
}

// Formats maps the names accepted by the listing endpoint to their exporters.
var Formats = map[string]Format{
	"csv":  {ContentType: "text/csv; charset=utf-8", Export: ExportToCSV},
	"md":   {ContentType: "text/markdown; charset=utf-8", Export: ExportToMarkdown},
	"text": {ContentType: "text/plain; charset=utf-8", Export: ExportToText},
}

// Lookup returns the named format or [shared.ErrInvalidArgument].
func Lookup(name string) (Format, error) {
	f, ok := Formats[name]
	if !ok {
		return Format{}, fmt.Errorf("%w: unknown format %q, expected one of %v", shared.ErrInvalidArgument, name, Names())
	}
	return f, nil
}

// Names returns the registered format names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Formats))
	for name := range Formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExportToCSV converts a Page to CSV format with columns: Name, URL, GUID
func ExportToCSV(page *models.Page) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Name", "URL", "GUID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, video := range page.Videos {
		if err := writer.Write([]string{video.Name, video.URL, video.GUID}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Page to a Markdown list of links followed by the pagination cursor
func ExportToMarkdown(page *models.Page) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Saved videos\n\n")
	buf.WriteString(fmt.Sprintf("**Videos**: %d\n", len(page.Videos)))
	buf.WriteString(fmt.Sprintf("**Count**: %d\n\n", page.Count))

	for i, video := range page.Videos {
		buf.WriteString(fmt.Sprintf("%d. [%s](%s) `%s`\n", i+1, video.Name, video.URL, video.GUID))
	}

	if page.After != nil {
		buf.WriteString(fmt.Sprintf("\nNext page: `?count=%d&after=%s`\n", page.Count, *page.After))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Page to plain text format, one video per line
func ExportToText(page *models.Page) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Videos: %d\n\n", len(page.Videos)))
	for i, video := range page.Videos {
		buf.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, video.Name, video.URL))
	}

	if page.After != nil {
		buf.WriteString(fmt.Sprintf("\nNext: count=%d after=%s\n", page.Count, *page.After))
	}

	return buf.Bytes(), nil
}
