package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var vttTimingRegex = regexp.MustCompile(
	`^\s*((?:\d+:)?\d{2}:\d{2}\.\d{3})\s+-->\s+((?:\d+:)?\d{2}:\d{2}\.\d{3})(.*)$`,
)

type VTTFile struct {
	header []string // WEBVTT line plus any header metadata lines
	blocks []string // STYLE and REGION blocks, written back before the cues
	cues   []Cue
	enc    Encoding
}

func parseVTTFile(content string, enc Encoding) (*VTTFile, error) {
	lines := strings.Split(content, "\n")
	f := &VTTFile{enc: enc}

	i := 0
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "WEBVTT") {
		for ; i < len(lines) && strings.TrimSpace(lines[i]) != ""; i++ {
			f.header = append(f.header, lines[i])
		}
	}

	var current *Cue
	var textLines []string
	pendingID := ""

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.Join(textLines, "\n")
		f.cues = append(f.cues, *current)
		current = nil
		textLines = nil
	}

	for ; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			flush()
			pendingID = ""
			continue
		}

		if current == nil && pendingID == "" && isVTTBlockStart(trimmed) {
			block := []string{line}
			for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
				i++
				block = append(block, lines[i])
			}
			if !strings.HasPrefix(trimmed, "NOTE") {
				f.blocks = append(f.blocks, strings.Join(block, "\n"))
			}
			continue
		}

		if m := vttTimingRegex.FindStringSubmatch(line); m != nil && len(textLines) == 0 {
			flush()
			start, err := parseVTTTime(m[1])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", i+1, err)
			}
			end, err := parseVTTTime(m[2])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", i+1, err)
			}
			current = &Cue{
				ID:        pendingID,
				StartTime: start,
				EndTime:   end,
				Settings:  m[3],
			}
			pendingID = ""
			continue
		}

		if current == nil {
			pendingID = line
			continue
		}
		textLines = append(textLines, line)
	}
	flush()

	return f, nil
}

func isVTTBlockStart(line string) bool {
	for _, prefix := range []string{"NOTE", "STYLE", "REGION"} {
		if line == prefix || strings.HasPrefix(line, prefix+" ") ||
			strings.HasPrefix(line, prefix+"\t") {
			return true
		}
	}
	return false
}

// accepts both hh:mm:ss.ttt and mm:ss.ttt
func parseVTTTime(ts string) (time.Duration, error) {
	parts := strings.Split(ts, ":")
	hours := "0"
	if len(parts) == 3 {
		hours = parts[0]
		parts = parts[1:]
	}
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}
	sec := strings.SplitN(parts[1], ".", 2)
	if len(sec) != 2 {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}
	if _, err := strconv.Atoi(hours); err != nil {
		return 0, err
	}
	return parseTimestamp(hours, parts[0], sec[0], sec[1])
}

func encodeVTT(header, blocks []string, cues []Cue) string {
	var sb strings.Builder

	if len(header) == 0 {
		header = []string{"WEBVTT"}
	}
	sb.WriteString(strings.Join(header, "\n"))
	sb.WriteString("\n\n")

	for _, block := range blocks {
		sb.WriteString(block)
		sb.WriteString("\n\n")
	}

	for _, cue := range cues {
		switch {
		case cue.ID != "":
			sb.WriteString(cue.ID + "\n")
		case cue.Index > 0:
			sb.WriteString(fmt.Sprintf("%d\n", cue.Index))
		}

		// timestamps: 00:00:00.000 --> 00:00:00.000
		sb.WriteString(fmt.Sprintf("%s --> %s%s\n",
			formatVTTTime(cue.StartTime),
			formatVTTTime(cue.EndTime),
			cue.Settings))

		// a blank cue is just its timing line
		if cue.Text != "" {
			sb.WriteString(cue.Text + "\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (f *VTTFile) Format() Format {
	return FormatVTT
}

func (f *VTTFile) Subtitle() *Subtitle {
	return &Subtitle{
		Cues:   f.cues,
		Format: string(FormatVTT),
	}
}

func (f *VTTFile) Len() int {
	return len(f.cues)
}

func (f *VTTFile) Text(index int) string {
	if index < 0 || index >= len(f.cues) {
		return ""
	}
	return f.cues[index].Text
}

func (f *VTTFile) SetText(index int, text string) error {
	if index < 0 || index >= len(f.cues) {
		return outOfRange(index, len(f.cues))
	}
	f.cues[index].Text = text
	return nil
}

func (f *VTTFile) Write(path string) error {
	return writeEncoded(path, encodeVTT(f.header, f.blocks, f.cues), f.enc)
}
