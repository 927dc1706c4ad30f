package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subtran/internal/ffmpeg"
	"github.com/mgpai22/subtran/internal/subtitle"
	"github.com/mgpai22/subtran/internal/video"
)

func (a *app) extractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [video_file]",
		Short: "Extract a subtitle track from a video file",
		Long: `Extract a text subtitle track from a video container (mkv, mp4, ...)
so it can be translated.

The output extension selects the subtitle format: .srt, .vtt, .ass or .ttml.
Use --list to see the subtitle streams of a file first.

Examples:
  subtran extract movie.mkv
  subtran extract movie.mkv --list
  subtran extract movie.mkv --stream 1 -o movie.en.srt`,
		Args: cobra.ExactArgs(1),
		RunE: a.runExtract,
	}

	cmd.Flags().StringP("output", "o", "", "Output subtitle file (default: video name with .srt)")
	cmd.Flags().Int("stream", 0, "Subtitle stream to extract, counted among subtitle streams only")
	cmd.Flags().Bool("list", false, "List subtitle streams instead of extracting")

	return cmd
}

func (a *app) runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	out := cmd.OutOrStdout()

	stream, _ := cmd.Flags().GetInt("stream")
	list, _ := cmd.Flags().GetBool("list")
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = video.DefaultOutputPath(videoPath, subtitle.FormatSRT)
	}

	ctx := cmd.Context()
	resolver := ffmpeg.NewResolver(a.config.FFmpeg.Path, a.config.FFmpeg.ProbePath, a.logger)
	binaries, err := resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("locate ffmpeg: %w", err)
	}
	a.logger.Debugw("Using ffmpeg", "ffmpeg", binaries.FFmpeg, "ffprobe", binaries.FFprobe)

	processor := video.NewProcessor(binaries.FFmpeg, binaries.FFprobe)

	if list {
		streams, err := processor.SubtitleStreams(ctx, videoPath)
		if err != nil {
			return err
		}
		if len(streams) == 0 {
			fmt.Fprintln(out, "No subtitle streams found")
			return nil
		}
		fmt.Fprintln(out, renderStreams(streams))
		return nil
	}

	a.logger.Infow("Extracting subtitles",
		"video", videoPath,
		"output", outputPath,
		"stream", stream,
	)

	if err := processor.ExtractSubtitle(ctx, videoPath, outputPath, stream); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(out, "Subtitles extracted successfully: %s\n", absOutput)
	return nil
}

func renderStreams(streams []video.SubtitleStream) string {
	rows := make([][]string, 0, len(streams))
	for _, s := range streams {
		rows = append(rows, []string{
			strconv.Itoa(s.Position),
			strconv.Itoa(s.Index),
			s.Codec,
			s.Language,
			s.Title,
		})
	}
	return renderTable(
		[]string{"Stream", "Index", "Codec", "Language", "Title"},
		rows,
		[]columnAlignment{alignRight, alignRight},
	)
}
