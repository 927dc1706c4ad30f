package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var srtTimingRegex = regexp.MustCompile(
	`^\s*(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})(.*)$`,
)

type SRTFile struct {
	cues []Cue
	enc  Encoding
}

// A cue starts at a numeric line followed by a timing line, or at a bare
// timing line. Cues with no text are kept so they survive a round trip.
func parseSRTFile(content string, enc Encoding) (*SRTFile, error) {
	lines := strings.Split(content, "\n")

	var cues []Cue
	var current *Cue
	var textLines []string

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.Join(trimTrailingEmpty(textLines), "\n")
		cues = append(cues, *current)
		current = nil
		textLines = nil
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if index, err := strconv.Atoi(strings.TrimSpace(line)); err == nil &&
			i+1 < len(lines) && srtTimingRegex.MatchString(lines[i+1]) {
			flush()
			cue, err := parseSRTTiming(lines[i+1])
			if err != nil {
				return nil, fmt.Errorf("invalid timing at line %d: %w", i+2, err)
			}
			cue.Index = index
			current = &cue
			i++
			continue
		}

		if srtTimingRegex.MatchString(line) && (current == nil || len(textLines) > 0) {
			flush()
			cue, err := parseSRTTiming(line)
			if err != nil {
				return nil, fmt.Errorf("invalid timing at line %d: %w", i+1, err)
			}
			current = &cue
			continue
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	return &SRTFile{cues: cues, enc: enc}, nil
}

func parseSRTTiming(line string) (Cue, error) {
	m := srtTimingRegex.FindStringSubmatch(line)
	if len(m) != 10 {
		return Cue{}, fmt.Errorf("not a timing line: %q", line)
	}
	start, err := parseTimestamp(m[1], m[2], m[3], m[4])
	if err != nil {
		return Cue{}, fmt.Errorf("start: %w", err)
	}
	end, err := parseTimestamp(m[5], m[6], m[7], m[8])
	if err != nil {
		return Cue{}, fmt.Errorf("end: %w", err)
	}
	return Cue{StartTime: start, EndTime: end, Settings: m[9]}, nil
}

// fraction is the digits after the separator, so "5" means 500ms
func parseTimestamp(hours, minutes, seconds, fraction string) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	for len(fraction) < 3 {
		fraction += "0"
	}
	ms, err := strconv.Atoi(fraction[:3])
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

func trimTrailingEmpty(lines []string) []string {
	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}
	return lines[:end]
}

func encodeSRT(cues []Cue) string {
	var sb strings.Builder
	for i, cue := range cues {
		index := cue.Index
		if index <= 0 {
			index = i + 1
		}
		sb.WriteString(fmt.Sprintf("%d\n", index))
		sb.WriteString(fmt.Sprintf("%s --> %s%s\n",
			formatSRTTime(cue.StartTime),
			formatSRTTime(cue.EndTime),
			cue.Settings))
		if cue.Text != "" {
			sb.WriteString(cue.Text + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (f *SRTFile) Format() Format {
	return FormatSRT
}

func (f *SRTFile) Subtitle() *Subtitle {
	return &Subtitle{
		Cues:   f.cues,
		Format: string(FormatSRT),
	}
}

func (f *SRTFile) Len() int {
	return len(f.cues)
}

func (f *SRTFile) Text(index int) string {
	if index < 0 || index >= len(f.cues) {
		return ""
	}
	return f.cues[index].Text
}

func (f *SRTFile) SetText(index int, text string) error {
	if index < 0 || index >= len(f.cues) {
		return outOfRange(index, len(f.cues))
	}
	f.cues[index].Text = text
	return nil
}

func (f *SRTFile) Write(path string) error {
	return writeEncoded(path, encodeSRT(f.cues), f.enc)
}
