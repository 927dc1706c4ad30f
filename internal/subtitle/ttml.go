package subtitle

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/asticode/go-astisub"
)

// TTML/DFXP file backed by astisub, which keeps regions and styles intact
type TTMLFile struct {
	subs *astisub.Subtitles
	enc  Encoding
}

func parseTTMLFile(content string, enc Encoding) (*TTMLFile, error) {
	subs, err := astisub.ReadFromTTML(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTML file: %w", err)
	}
	return &TTMLFile{subs: subs, enc: enc}, nil
}

func (f *TTMLFile) Format() Format {
	return FormatTTML
}

func (f *TTMLFile) Subtitle() *Subtitle {
	cues := make([]Cue, len(f.subs.Items))
	for i, item := range f.subs.Items {
		cues[i] = Cue{
			Index:     i + 1,
			StartTime: item.StartAt,
			EndTime:   item.EndAt,
			Text:      itemText(item),
		}
	}
	return &Subtitle{
		Cues:   cues,
		Format: string(FormatTTML),
	}
}

func (f *TTMLFile) Len() int {
	return len(f.subs.Items)
}

func (f *TTMLFile) Text(index int) string {
	if index < 0 || index >= len(f.subs.Items) {
		return ""
	}
	return itemText(f.subs.Items[index])
}

func (f *TTMLFile) SetText(index int, text string) error {
	if index < 0 || index >= len(f.subs.Items) {
		return outOfRange(index, len(f.subs.Items))
	}
	setItemText(f.subs.Items[index], text)
	return nil
}

func (f *TTMLFile) Write(path string) error {
	var buf bytes.Buffer
	if err := f.subs.WriteToTTML(&buf); err != nil {
		return fmt.Errorf("failed to encode TTML: %w", err)
	}
	return writeEncoded(path, buf.String(), f.enc)
}

func itemText(item *astisub.Item) string {
	lines := make([]string, len(item.Lines))
	for i, line := range item.Lines {
		lines[i] = line.String()
	}
	return strings.Join(lines, "\n")
}

// replaces the item's lines with one plain line item per text line; the
// style of the first original line item carries over
func setItemText(item *astisub.Item, text string) {
	var first astisub.LineItem
	voice := ""
	if len(item.Lines) > 0 {
		voice = item.Lines[0].VoiceName
		if len(item.Lines[0].Items) > 0 {
			first = item.Lines[0].Items[0]
		}
	}

	parts := strings.Split(text, "\n")
	lines := make([]astisub.Line, len(parts))
	for i, part := range parts {
		lines[i] = astisub.Line{
			VoiceName: voice,
			Items: []astisub.LineItem{{
				InlineStyle: first.InlineStyle,
				Style:       first.Style,
				Text:        part,
			}},
		}
	}
	item.Lines = lines
}

// TTML output for cues coming from another format
type TTMLWriter struct {
	Encoding Encoding
}

func (w *TTMLWriter) Write(sub *Subtitle, path string) error {
	subs := astisub.NewSubtitles()
	for _, cue := range sub.Cues {
		item := &astisub.Item{StartAt: cue.StartTime, EndAt: cue.EndTime}
		setItemText(item, cue.Text)
		subs.Items = append(subs.Items, item)
	}
	f := &TTMLFile{subs: subs, enc: w.Encoding}
	return f.Write(path)
}
