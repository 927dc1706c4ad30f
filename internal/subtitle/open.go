package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// parsed subtitle file that preserves format specific metadata
type File interface {
	Format() Format
	Subtitle() *Subtitle
	Len() int
	Text(index int) string
	SetText(index int, text string) error
	Write(path string) error
}

// Open loads a subtitle file, decoding it with enc. The parser is picked from
// the file extension.
func Open(path string, enc Encoding) (File, error) {
	format, ok := formatFromExtension(path)
	if !ok {
		return nil, fmt.Errorf(
			"unsupported subtitle format: %s",
			strings.ToLower(filepath.Ext(path)),
		)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}

	content, err := enc.decode(data)
	if err != nil {
		return nil, err
	}
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	switch format {
	case FormatSRT:
		return parseSRTFile(content, enc)
	case FormatVTT:
		return parseVTTFile(content, enc)
	case FormatASS:
		return parseASSFile(content, enc)
	case FormatTTML:
		return parseTTMLFile(content, enc)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", format)
	}
}

// WriteAs saves f to path. When the extension of path names a different
// format than f, the cues are converted with the generic writer for that
// format; otherwise f writes itself and keeps everything it parsed.
func WriteAs(f File, path string, enc Encoding) error {
	target, ok := formatFromExtension(path)
	if !ok || target == f.Format() {
		return f.Write(path)
	}

	writer, err := NewWriter(target, enc)
	if err != nil {
		return err
	}
	return writer.Write(f.Subtitle(), path)
}

func formatFromExtension(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return FormatSRT, true
	case ".vtt":
		return FormatVTT, true
	case ".ass", ".ssa":
		return FormatASS, true
	case ".ttml", ".dfxp":
		return FormatTTML, true
	default:
		return "", false
	}
}

// true when Open understands the extension of path
func IsSubtitleFile(path string) bool {
	_, ok := formatFromExtension(path)
	return ok
}

func outOfRange(index, length int) error {
	return fmt.Errorf("index %d out of range (0-%d)", index, length-1)
}
