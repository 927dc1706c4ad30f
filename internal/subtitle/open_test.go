package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/asticode/go-astisub"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return string(data)
}

func TestParseSRTFile(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:04,000
Hello, world!

2
00:00:05,500 --> 00:00:08,200
This is a test.
With multiple lines.

3
00:00:09,000 --> 00:00:09,500

4
00:00:10,000 --> 00:00:12,500
Final subtitle.
`
	file, err := Open(writeFile(t, "test.srt", content), DefaultFileEncoding())
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}

	if file.Format() != FormatSRT {
		t.Errorf("expected format SRT, got %s", file.Format())
	}
	if file.Len() != 4 {
		t.Fatalf("expected 4 cues, got %d", file.Len())
	}

	tests := []struct {
		index int
		start time.Duration
		end   time.Duration
		text  string
	}{
		{0, 1 * time.Second, 4 * time.Second, "Hello, world!"},
		{1, 5500 * time.Millisecond, 8200 * time.Millisecond, "This is a test.\nWith multiple lines."},
		{2, 9 * time.Second, 9500 * time.Millisecond, ""},
		{3, 10 * time.Second, 12500 * time.Millisecond, "Final subtitle."},
	}

	sub := file.Subtitle()
	for _, tt := range tests {
		cue := sub.Cues[tt.index]
		if cue.StartTime != tt.start || cue.EndTime != tt.end {
			t.Errorf("cue %d: got %v --> %v, want %v --> %v",
				tt.index, cue.StartTime, cue.EndTime, tt.start, tt.end)
		}
		if file.Text(tt.index) != tt.text {
			t.Errorf("cue %d: expected %q, got %q", tt.index, tt.text, file.Text(tt.index))
		}
	}

	if err := file.SetText(0, "Modified text"); err != nil {
		t.Errorf("SetText failed: %v", err)
	}
	if file.Subtitle().Cues[0].Text != "Modified text" {
		t.Errorf("SetText did not update text")
	}
	if err := file.SetText(4, "nope"); err == nil {
		t.Error("expected out of range error")
	}
}

func TestSRTRoundTripKeepsBlankCues(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:02,000
Hello

2
00:00:03,000 --> 00:00:04,000

3
00:00:05,000 --> 00:00:06,000
World

`
	file, err := Open(writeFile(t, "in.srt", content), DefaultFileEncoding())
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "nested", "out.srt")
	if err := file.Write(outPath); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	reopened, err := Open(outPath, DefaultFileEncoding())
	if err != nil {
		t.Fatalf("failed to reopen output: %v", err)
	}
	if reopened.Len() != 3 {
		t.Fatalf("expected 3 cues after round trip, got %d", reopened.Len())
	}
	want := []string{"Hello", "", "World"}
	for i, w := range want {
		if reopened.Text(i) != w {
			t.Errorf("cue %d: expected %q, got %q", i, w, reopened.Text(i))
		}
	}
	if reopened.Subtitle().Cues[2].StartTime != 5*time.Second {
		t.Errorf("timestamps changed: %v", reopened.Subtitle().Cues[2].StartTime)
	}

	written, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(written) != content {
		t.Errorf("round trip changed the file:\n got %q\nwant %q", written, content)
	}
}

func TestEncodeVTTBlankCue(t *testing.T) {
	cues := []Cue{
		{StartTime: time.Second, EndTime: 2 * time.Second, Text: "Hello"},
		{StartTime: 3 * time.Second, EndTime: 4 * time.Second},
	}
	want := "WEBVTT\n\n" +
		"00:00:01.000 --> 00:00:02.000\nHello\n\n" +
		"00:00:03.000 --> 00:00:04.000\n\n"
	if got := encodeVTT(nil, nil, cues); got != want {
		t.Errorf("encodeVTT:\n got %q\nwant %q", got, want)
	}
}

func TestParseSRTWithCRLFAndBOM(t *testing.T) {
	content := "\ufeff1\r\n00:00:01,000 --> 00:00:02,000\r\nHi\r\n\r\n"
	file, err := Open(writeFile(t, "crlf.srt", content), DefaultFileEncoding())
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}
	if file.Len() != 1 || file.Text(0) != "Hi" {
		t.Errorf("expected one cue 'Hi', got %d cues", file.Len())
	}
}

func TestParseVTTFile(t *testing.T) {
	content := `WEBVTT
Kind: captions

STYLE
::cue { color: yellow }

NOTE this comment is dropped

intro
00:00:01.000 --> 00:00:04.000 align:start
Hello, world!

2
00:00:05.500 --> 00:00:08.200
This is a test.
With multiple lines.

00:10.000 --> 00:12.500
No cue identifier.
`
	file, err := Open(writeFile(t, "test.vtt", content), DefaultFileEncoding())
	if err != nil {
		t.Fatalf("failed to open VTT file: %v", err)
	}

	if file.Format() != FormatVTT {
		t.Errorf("expected format VTT, got %s", file.Format())
	}

	sub := file.Subtitle()
	if len(sub.Cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(sub.Cues))
	}
	if sub.Cues[0].ID != "intro" {
		t.Errorf("cue 0: expected id 'intro', got %q", sub.Cues[0].ID)
	}
	if sub.Cues[0].StartTime != 1*time.Second {
		t.Errorf("cue 0: expected start 1s, got %v", sub.Cues[0].StartTime)
	}
	if sub.Cues[1].Text != "This is a test.\nWith multiple lines." {
		t.Errorf("cue 1: got %q", sub.Cues[1].Text)
	}
	if sub.Cues[2].StartTime != 10*time.Second {
		t.Errorf("cue 2: expected start 10s, got %v", sub.Cues[2].StartTime)
	}
	if sub.Cues[2].Text != "No cue identifier." {
		t.Errorf("cue 2: expected 'No cue identifier.', got %q", sub.Cues[2].Text)
	}

	if err := file.SetText(0, "Hola"); err != nil {
		t.Fatalf("SetText failed: %v", err)
	}
	outPath := filepath.Join(t.TempDir(), "out.vtt")
	if err := file.Write(outPath); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	out := readFile(t, outPath)
	if !strings.HasPrefix(out, "WEBVTT\nKind: captions\n\n") {
		t.Errorf("header not preserved: %q", out)
	}
	for _, want := range []string{
		"STYLE\n::cue { color: yellow }",
		"intro\n00:00:01.000 --> 00:00:04.000 align:start\nHola\n",
		"2\n00:00:05.500 --> 00:00:08.200\n",
		"00:00:10.000 --> 00:00:12.500\nNo cue identifier.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "NOTE") {
		t.Error("NOTE block should not be written back")
	}
}

func TestParseASSFile(t *testing.T) {
	content := `[Script Info]
Title: Test Subtitles
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Hello, world!
Dialogue: 0,0:00:05.50,0:00:08.20,Default,,0,0,0,,{\pos(100,200)}This has positioning.
Dialogue: 0,0:00:10.00,0:00:12.50,Default,,0,0,0,,Line with\Nnewline.
`
	tmpDir := t.TempDir()
	assPath := filepath.Join(tmpDir, "test.ass")
	if err := os.WriteFile(assPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	file, err := Open(assPath, DefaultFileEncoding())
	if err != nil {
		t.Fatalf("failed to open ASS file: %v", err)
	}

	if file.Format() != FormatASS {
		t.Errorf("expected format ASS, got %s", file.Format())
	}

	sub := file.Subtitle()
	if len(sub.Cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(sub.Cues))
	}

	// Check first entry
	if sub.Cues[0].StartTime != 1*time.Second {
		t.Errorf(
			"entry 0: expected start 1s, got %v",
			sub.Cues[0].StartTime,
		)
	}
	if sub.Cues[0].Text != "Hello, world!" {
		t.Errorf(
			"entry 0: expected 'Hello, world!', got %q",
			sub.Cues[0].Text,
		)
	}

	// check second entry (has positioning tags - should be in subtitle but text still readable)
	// generic Subtitle() returns text with \N converted to \n
	if !strings.Contains(sub.Cues[1].Text, "This has positioning") {
		t.Errorf(
			"entry 1: expected text containing 'This has positioning', got %q",
			sub.Cues[1].Text,
		)
	}

	// check third entry (has \N which should be converted to newline)
	if sub.Cues[2].Text != "Line with\nnewline." {
		t.Errorf(
			"entry 2: expected 'Line with\\nnewline.', got %q",
			sub.Cues[2].Text,
		)
	}
}

func TestASSFilePreservesStyles(t *testing.T) {
	content := `[Script Info]
Title: Test Subtitles
ScriptType: v4.00+
PlayDepth: 0

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1
Style: Italic,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,1,0,0,100,100,0,0,1,2,2,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Original text
Dialogue: 0,0:00:05.00,0:00:08.00,Italic,,0,0,0,,{\pos(100,200)}Tagged text
`
	tmpDir := t.TempDir()
	assPath := filepath.Join(tmpDir, "test.ass")
	if err := os.WriteFile(assPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	file, err := Open(assPath, DefaultFileEncoding())
	if err != nil {
		t.Fatalf("failed to open ASS file: %v", err)
	}

	assFile, ok := file.(*ASSFile)
	if !ok {
		t.Fatalf("expected *ASSFile, got %T", file)
	}

	if err := assFile.SetText(0, "Translated text"); err != nil {
		t.Fatalf("SetText failed: %v", err)
	}

	// set overlay on second entry
	if err := assFile.SetTextWithOverlay(1, "翻訳されたテキスト"); err != nil {
		t.Fatalf("SetTextWithOverlay failed: %v", err)
	}

	outPath := filepath.Join(tmpDir, "output.ass")
	if err := assFile.Write(outPath); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	outContent, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	outStr := string(outContent)

	// check that styles are preserved
	if !strings.Contains(outStr, "Style: Default,Arial,20") {
		t.Error("Default style not preserved")
	}
	if !strings.Contains(outStr, "Style: Italic,Arial,20") {
		t.Error("Italic style not preserved")
	}

	// check that first entry was modified
	if !strings.Contains(outStr, "Translated text") {
		t.Error("First entry text not updated")
	}

	// check that second entry has overlay with preserved positioning
	if !strings.Contains(outStr, "{\\pos(100,200)}翻訳されたテキスト\\NTagged text") {
		t.Errorf("Second entry overlay not correct, got: %s", outStr)
	}

	// check that Italic style is still used for second entry
	if !strings.Contains(outStr, "Dialogue: 0,0:00:05.00,0:00:08.00,Italic") {
		t.Error("Second entry style not preserved")
	}
}

func TestExtractLeadingTags(t *testing.T) {
	tests := []struct {
		input       string
		wantTags    string
		wantContent string
	}{
		{
			input:       "Hello world",
			wantTags:    "",
			wantContent: "Hello world",
		},
		{
			input:       "{\\pos(100,200)}Hello world",
			wantTags:    "{\\pos(100,200)}",
			wantContent: "Hello world",
		},
		{
			input:       "{\\an8}{\\fs24}Hello world",
			wantTags:    "{\\an8}{\\fs24}",
			wantContent: "Hello world",
		},
		{
			input:       "{\\pos(100,200)}{\\c&HFFFFFF&}Hello {\\i1}world{\\i0}",
			wantTags:    "{\\pos(100,200)}{\\c&HFFFFFF&}",
			wantContent: "Hello {\\i1}world{\\i0}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			gotTags, gotContent := extractLeadingTags(tt.input)
			if gotTags != tt.wantTags {
				t.Errorf("tags: got %q, want %q", gotTags, tt.wantTags)
			}
			if gotContent != tt.wantContent {
				t.Errorf("content: got %q, want %q", gotContent, tt.wantContent)
			}
		})
	}
}

func TestOpenUnsupportedFormat(t *testing.T) {
	tmpDir := t.TempDir()
	txtPath := filepath.Join(tmpDir, "test.txt")
	if err := os.WriteFile(txtPath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err := Open(txtPath, DefaultFileEncoding())
	if err == nil {
		t.Error("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected 'unsupported' in error, got: %v", err)
	}
}

func TestLookupEncoding(t *testing.T) {
	tests := []struct {
		label   string
		wantErr bool
	}{
		{"utf8", false},
		{"UTF-8", false},
		{"", false},
		{"latin-1", false},
		{"iso-8859-1", false},
		{"cp1252", false},
		{"shift_jis", false},
		{"klingon", true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			_, err := LookupEncoding(tt.label)
			if (err != nil) != tt.wantErr {
				t.Errorf("LookupEncoding(%q) error = %v, wantErr %v", tt.label, err, tt.wantErr)
			}
		})
	}
}

func TestOpenWithLatin1(t *testing.T) {
	enc, err := LookupEncoding("latin-1")
	if err != nil {
		t.Fatalf("LookupEncoding failed: %v", err)
	}

	content := "1\n00:00:01,000 --> 00:00:02,000\ncaf\xe9\n"
	file, err := Open(writeFile(t, "latin.srt", content), enc)
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}
	if file.Text(0) != "café" {
		t.Fatalf("expected 'café', got %q", file.Text(0))
	}

	if err := file.SetText(0, "thé"); err != nil {
		t.Fatalf("SetText failed: %v", err)
	}
	outPath := filepath.Join(t.TempDir(), "out.srt")
	if err := file.Write(outPath); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if out := readFile(t, outPath); !strings.Contains(out, "th\xe9") {
		t.Errorf("expected latin-1 encoded output, got %q", out)
	}
}

func TestWriteAsConvertsFormat(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:02,000
First line
Second line
`
	file, err := Open(writeFile(t, "in.srt", content), DefaultFileEncoding())
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}

	dir := t.TempDir()
	tests := []struct {
		name string
		want []string
	}{
		{"out.srt", []string{"1\n00:00:01,000 --> 00:00:02,000\nFirst line\nSecond line"}},
		{"out.vtt", []string{"WEBVTT\n\n", "00:00:01.000 --> 00:00:02.000\nFirst line\nSecond line"}},
		{"out.ass", []string{"[Events]", "Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,First line\\NSecond line"}},
		{"out.ttml", []string{"<tt", "First line"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := WriteAs(file, path, DefaultFileEncoding()); err != nil {
				t.Fatalf("WriteAs failed: %v", err)
			}
			out := readFile(t, path)
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestTTMLItemText(t *testing.T) {
	style := &astisub.Style{ID: "s1"}
	item := &astisub.Item{
		Lines: []astisub.Line{
			{VoiceName: "narrator", Items: []astisub.LineItem{{Style: style, Text: "Hello"}}},
			{Items: []astisub.LineItem{{Text: "there"}}},
		},
	}

	if got := itemText(item); got != "Hello\nthere" {
		t.Errorf("expected 'Hello\\nthere', got %q", got)
	}

	setItemText(item, "Hola\nallí")
	if len(item.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(item.Lines))
	}
	if got := itemText(item); got != "Hola\nallí" {
		t.Errorf("expected translated text, got %q", got)
	}
	if item.Lines[1].VoiceName != "narrator" || item.Lines[1].Items[0].Style != style {
		t.Error("voice and style of the first line should carry over")
	}

	f := &TTMLFile{subs: &astisub.Subtitles{Items: []*astisub.Item{item}}}
	if f.Len() != 1 || f.Text(0) != "Hola\nallí" {
		t.Errorf("unexpected TTMLFile view: len=%d text=%q", f.Len(), f.Text(0))
	}
	if err := f.SetText(1, "x"); err == nil {
		t.Error("expected out of range error")
	}
}

func TestOverlay(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:02,000
Hello

2
00:00:03,000 --> 00:00:04,000

`
	file, err := Open(writeFile(t, "in.srt", content), DefaultFileEncoding())
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}

	overlay := Overlay(file)
	if err := overlay.SetText(0, "Hola"); err != nil {
		t.Fatalf("SetText failed: %v", err)
	}
	if err := overlay.SetText(1, "vacío"); err != nil {
		t.Fatalf("SetText failed: %v", err)
	}

	if got := file.Text(0); got != "Hola\nHello" {
		t.Errorf("expected translation above original, got %q", got)
	}
	if got := file.Text(1); got != "vacío" {
		t.Errorf("expected plain translation for empty original, got %q", got)
	}
}
