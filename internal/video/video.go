package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/subtran/internal/subtitle"
)

// SubtitleStream describes one subtitle track inside a container.
type SubtitleStream struct {
	// position among the subtitle streams, as used by -map 0:s:N
	Position int
	// absolute stream index in the container
	Index    int
	Codec    string
	Language string
	Title    string
}

// defines interface for video processing operations
type Processor interface {
	// lists the subtitle streams of a container
	SubtitleStreams(ctx context.Context, videoPath string) ([]SubtitleStream, error)

	// copies one subtitle stream into a text subtitle file
	ExtractSubtitle(ctx context.Context, videoPath, outputPath string, stream int) error
}

// default implementation using ffmpeg
type DefaultProcessor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewProcessor uses the given binaries; empty paths fall back to PATH.
func NewProcessor(ffmpegPath, ffprobePath string) *DefaultProcessor {
	return &DefaultProcessor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

// extracts a subtitle stream; the output extension picks the subtitle codec
func (p *DefaultProcessor) ExtractSubtitle(
	ctx context.Context,
	videoPath, outputPath string,
	stream int,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}

	args, err := extractArgs(videoPath, outputPath, stream)
	if err != nil {
		return err
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	binary := p.ffmpegPath
	if binary == "" {
		binary = "ffmpeg"
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w: %s", err, lastLine(stderr.String()))
	}

	return nil
}

// extractArgs builds the ffmpeg command line for one subtitle stream.
func extractArgs(videoPath, outputPath string, stream int) ([]string, error) {
	if stream < 0 {
		return nil, fmt.Errorf("subtitle stream must not be negative, got %d", stream)
	}

	codec, err := codecForOutput(outputPath)
	if err != nil {
		return nil, err
	}

	kwargs := ffmpeg.KwArgs{
		"map": fmt.Sprintf("0:s:%d", stream),
		"c:s": codec,
	}

	return ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		GetArgs(), nil
}

func codecForOutput(outputPath string) (string, error) {
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".srt":
		return "srt", nil
	case ".vtt":
		return "webvtt", nil
	case ".ass", ".ssa":
		return "ass", nil
	case ".ttml":
		return "ttml", nil
	default:
		return "", fmt.Errorf(
			"unsupported output format %q: use .srt, .vtt, .ass, .ssa or .ttml",
			filepath.Ext(outputPath),
		)
	}
}

// lists subtitle streams with ffprobe
func (p *DefaultProcessor) SubtitleStreams(
	ctx context.Context,
	videoPath string,
) ([]SubtitleStream, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	var out []byte
	if p.ffprobePath != "" {
		cmd := exec.CommandContext(ctx, p.ffprobePath,
			"-v", "error",
			"-select_streams", "s",
			"-show_streams",
			"-of", "json",
			videoPath,
		)
		data, err := cmd.Output()
		if err != nil {
			return nil, fmt.Errorf("ffprobe failed: %w", err)
		}
		out = data
	} else {
		data, err := ffmpeg.Probe(videoPath, ffmpeg.KwArgs{"select_streams": "s"})
		if err != nil {
			return nil, fmt.Errorf("ffprobe failed: %w", err)
		}
		out = []byte(data)
	}

	return parseStreams(out)
}

type probeOutput struct {
	Streams []struct {
		Index     int               `json:"index"`
		CodecName string            `json:"codec_name"`
		CodecType string            `json:"codec_type"`
		Tags      map[string]string `json:"tags"`
	} `json:"streams"`
}

func parseStreams(data []byte) ([]SubtitleStream, error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var streams []SubtitleStream
	for _, s := range probe.Streams {
		if s.CodecType != "subtitle" {
			continue
		}
		streams = append(streams, SubtitleStream{
			Position: len(streams),
			Index:    s.Index,
			Codec:    s.CodecName,
			Language: s.Tags["language"],
			Title:    s.Tags["title"],
		})
	}
	return streams, nil
}

// DefaultOutputPath places the extracted track next to the video.
func DefaultOutputPath(videoPath string, format subtitle.Format) string {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	return base + subtitle.GetExtensionForFormat(format)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
