package subtitle

import (
	"time"
)

// single timed subtitle entry; only Text is ever rewritten by translation
type Cue struct {
	Index     int
	ID        string // WebVTT cue identifier, empty when absent
	StartTime time.Duration
	EndTime   time.Duration
	Settings  string // anything after the end timestamp on the timing line
	Text      string
}

// represents complete subtitle track
type Subtitle struct {
	Cues     []Cue
	Language string
	Format   string
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatASS  Format = "ass"
	FormatTTML Format = "ttml"
)

// interface for writing subtitles to files
type Writer interface {
	Write(subtitle *Subtitle, path string) error
}
