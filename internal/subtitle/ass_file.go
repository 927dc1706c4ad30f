package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var assLeadingTagsRegex = regexp.MustCompile(`^(\{[^}]*\})+`)

// parsed Dialogue line with all fields
type ASSDialogue struct {
	FieldsBefore    []string
	Text            string
	LeadingTags     string
	TextWithoutTags string
	OriginalLine    string
}

// parsed ASS/SSA subtitle file that preserves all metadata
type ASSFile struct {
	preEventsLines   []string
	formatLine       string
	formatColumns    []string
	textColumnIndex  int
	startColumnIndex int
	endColumnIndex   int
	dialogues        []ASSDialogue
	events           []assEvent
	enc              Encoding
}

// one line of the [Events] section after Format; dialogue is -1 for lines
// that are kept verbatim (comments, pictures, blank lines)
type assEvent struct {
	raw      string
	dialogue int
}

func parseASSFile(content string, enc Encoding) (*ASSFile, error) {
	assFile := &ASSFile{
		preEventsLines:   make([]string, 0),
		dialogues:        make([]ASSDialogue, 0),
		textColumnIndex:  -1,
		startColumnIndex: -1,
		endColumnIndex:   -1,
		enc:              enc,
	}

	inEventsSection := false
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")

	for i, line := range lines {
		lineNum := i + 1
		trimmedLine := strings.TrimSpace(line)

		if strings.HasPrefix(trimmedLine, "[") &&
			strings.HasSuffix(trimmedLine, "]") {
			sectionName := strings.ToLower(
				strings.TrimSuffix(strings.TrimPrefix(trimmedLine, "["), "]"),
			)
			inEventsSection = sectionName == "events"
			assFile.appendRaw(line)
			continue
		}

		if !inEventsSection {
			assFile.appendRaw(line)
			continue
		}

		if strings.HasPrefix(trimmedLine, "Format:") {
			assFile.formatLine = line
			formatPart := strings.TrimPrefix(trimmedLine, "Format:")
			columns := strings.Split(formatPart, ",")
			for i, col := range columns {
				columns[i] = strings.TrimSpace(col)
				switch strings.ToLower(columns[i]) {
				case "text":
					assFile.textColumnIndex = i
				case "start":
					assFile.startColumnIndex = i
				case "end":
					assFile.endColumnIndex = i
				}
			}
			assFile.formatColumns = columns
			if assFile.textColumnIndex == -1 {
				return nil, fmt.Errorf(
					"ASS file missing Text column in Format line",
				)
			}
			continue
		}

		if strings.HasPrefix(trimmedLine, "Dialogue:") {
			dialogue, err := assFile.parseDialogueLine(line)
			if err != nil {
				return nil, fmt.Errorf(
					"failed to parse Dialogue at line %d: %w",
					lineNum,
					err,
				)
			}
			assFile.events = append(assFile.events, assEvent{
				dialogue: len(assFile.dialogues),
			})
			assFile.dialogues = append(assFile.dialogues, dialogue)
			continue
		}

		assFile.appendRaw(line)
	}

	if assFile.formatLine == "" {
		return nil, fmt.Errorf(
			"ASS file missing Format line in [Events] section",
		)
	}

	return assFile, nil
}

// lines before the events Format line are header; everything after keeps its
// position relative to the dialogues
func (f *ASSFile) appendRaw(line string) {
	if f.formatLine == "" {
		f.preEventsLines = append(f.preEventsLines, line)
		return
	}
	f.events = append(f.events, assEvent{raw: line, dialogue: -1})
}

func (f *ASSFile) parseDialogueLine(line string) (ASSDialogue, error) {
	dialogue := ASSDialogue{OriginalLine: line}

	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "Dialogue:") {
		return dialogue, fmt.Errorf("not a Dialogue line")
	}
	content := strings.TrimPrefix(trimmed, "Dialogue:")
	content = strings.TrimSpace(content)

	numColumns := len(f.formatColumns)
	if numColumns == 0 {
		return dialogue, fmt.Errorf("format columns not parsed yet")
	}

	parts := splitASSFields(content, numColumns)
	if len(parts) < numColumns {
		return dialogue, fmt.Errorf(
			"expected %d fields, got %d",
			numColumns,
			len(parts),
		)
	}

	dialogue.FieldsBefore = parts[:f.textColumnIndex]
	dialogue.Text = parts[f.textColumnIndex]

	leadingTags, textWithoutTags := extractLeadingTags(dialogue.Text)
	dialogue.LeadingTags = leadingTags
	dialogue.TextWithoutTags = textWithoutTags

	return dialogue, nil
}

func splitASSFields(content string, numFields int) []string {
	if numFields <= 0 {
		return nil
	}

	parts := make([]string, 0, numFields)
	remaining := content

	for i := 0; i < numFields-1; i++ {
		idx := strings.Index(remaining, ",")
		if idx == -1 {
			parts = append(parts, remaining)
			remaining = ""
			break
		}
		parts = append(parts, remaining[:idx])
		remaining = remaining[idx+1:]
	}

	parts = append(parts, remaining)

	return parts
}

func extractLeadingTags(text string) (string, string) {
	match := assLeadingTagsRegex.FindString(text)
	if match == "" {
		return "", text
	}
	return match, text[len(match):]
}

func (f *ASSFile) Format() Format {
	return FormatASS
}

func (f *ASSFile) Subtitle() *Subtitle {
	cues := make([]Cue, len(f.dialogues))

	for i, d := range f.dialogues {
		startTime, endTime := f.parseDialogueTimes(d)

		cues[i] = Cue{
			Index:     i + 1,
			StartTime: startTime,
			EndTime:   endTime,
			Text:      assToPlain(d.Text),
		}
	}

	return &Subtitle{
		Cues:   cues,
		Format: string(FormatASS),
	}
}

func (f *ASSFile) Len() int {
	return len(f.dialogues)
}

// text behind the leading override tags, with \N turned into newlines
func (f *ASSFile) Text(index int) string {
	if index < 0 || index >= len(f.dialogues) {
		return ""
	}
	return assToPlain(f.dialogues[index].TextWithoutTags)
}

func assToPlain(text string) string {
	text = strings.ReplaceAll(text, "\\N", "\n")
	return strings.ReplaceAll(text, "\\n", "\n")
}

func (f *ASSFile) parseDialogueTimes(
	d ASSDialogue,
) (time.Duration, time.Duration) {
	var startTime, endTime time.Duration

	if f.startColumnIndex >= 0 && f.startColumnIndex < len(d.FieldsBefore) {
		startTime = parseASSTimestamp(d.FieldsBefore[f.startColumnIndex])
	}

	if f.endColumnIndex >= 0 && f.endColumnIndex < len(d.FieldsBefore) {
		endTime = parseASSTimestamp(d.FieldsBefore[f.endColumnIndex])
	}

	return startTime, endTime
}

func parseASSTimestamp(ts string) time.Duration {
	ts = strings.TrimSpace(ts)
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}

	// split seconds and centiseconds
	secParts := strings.Split(parts[2], ".")
	if len(secParts) != 2 {
		return 0
	}

	seconds, err := strconv.Atoi(secParts[0])
	if err != nil {
		return 0
	}

	centis, err := strconv.Atoi(secParts[1])
	if err != nil {
		return 0
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(centis)*10*time.Millisecond
}

func (f *ASSFile) SetText(index int, text string) error {
	if index < 0 || index >= len(f.dialogues) {
		return outOfRange(index, len(f.dialogues))
	}

	assText := strings.ReplaceAll(text, "\n", "\\N")
	f.dialogues[index].Text = f.dialogues[index].LeadingTags + assText
	f.dialogues[index].TextWithoutTags = assText

	return nil
}

// keeps the leading tags, then translated text, a hard break, and the original
func (f *ASSFile) SetTextWithOverlay(index int, translatedText string) error {
	if index < 0 || index >= len(f.dialogues) {
		return outOfRange(index, len(f.dialogues))
	}

	assTranslated := strings.ReplaceAll(translatedText, "\n", "\\N")
	originalText := f.dialogues[index].TextWithoutTags
	newText := f.dialogues[index].LeadingTags + assTranslated + "\\N" + originalText

	f.dialogues[index].Text = newText

	return nil
}

func (f *ASSFile) Write(path string) error {
	var sb strings.Builder

	for _, line := range f.preEventsLines {
		sb.WriteString(line + "\n")
	}

	sb.WriteString(f.formatLine + "\n")

	for _, ev := range f.events {
		if ev.dialogue >= 0 {
			sb.WriteString(f.buildDialogueLine(f.dialogues[ev.dialogue]) + "\n")
			continue
		}
		sb.WriteString(ev.raw + "\n")
	}

	return writeEncoded(path, sb.String(), f.enc)
}

func (f *ASSFile) buildDialogueLine(d ASSDialogue) string {
	allFields := make([]string, len(f.formatColumns))
	for i, field := range d.FieldsBefore {
		if i < len(allFields) {
			allFields[i] = field
		}
	}

	allFields[f.textColumnIndex] = d.Text

	return "Dialogue: " + strings.Join(allFields, ",")
}

