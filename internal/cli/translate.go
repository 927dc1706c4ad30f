package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subtran/internal/batch"
	"github.com/mgpai22/subtran/internal/config"
	"github.com/mgpai22/subtran/internal/subtitle"
	"github.com/mgpai22/subtran/internal/translate"
)

func (a *app) translateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate a subtitle file",
		Long: `Translate the text of every non-blank cue in a subtitle file and write
the result to a new file. Timings, styling and blank cues are kept as they are.

Supports SRT, VTT, ASS/SSA and TTML. The output extension selects the output
format, so translating movie.srt to movie.vtt also converts it.

The --overlay flag creates bilingual subtitles with the translated text
first, followed by the original text on the next line.

Examples:
  subtran translate -i movie.srt -o movie.de.srt -l DE
  subtran translate -i movie.srt -o movie.es.srt -p google -l es
  subtran translate -i show.ass -o show.ja.ass -p gemini -l japanese --overlay
  subtran translate -i old.srt -o new.srt -e latin-1 -p deepl -l EN-GB`,
		Args: cobra.NoArgs,
		// -i and -o are checked before any configuration is read
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE:        a.runTranslate,
	}

	cmd.Flags().StringP("input", "i", "", "Input subtitle file (required)")
	cmd.Flags().StringP("output", "o", "", "Output subtitle file (required)")
	cmd.Flags().
		StringP("language", "l", "", "Target language code (default depends on provider: EN-US for deepl, en otherwise)")
	cmd.Flags().
		StringP("encoding", "e", "", "Text encoding of input and output files (default utf8)")
	cmd.Flags().
		StringP("provider", "p", "", "Translation provider (deepl, google, gcloud, gemini, openai, anthropic, ollama)")
	cmd.Flags().
		StringP("source-language", "s", "", "Source language code (default: detected by the provider)")
	cmd.Flags().
		StringP("api-key", "k", "", "API key (or set the provider's environment variable)")
	cmd.Flags().
		String("model", "", "Model to use for LLM providers (provider-specific, uses sensible defaults)")
	cmd.Flags().
		Int("batch-size", 0, "Number of subtitle lines per API request (default depends on provider)")
	cmd.Flags().
		Bool("overlay", false, "Overlay translated text with original (bilingual subtitles)")
	cmd.Flags().Bool("no-progress", false, "Disable the progress bar")

	return cmd
}

func (a *app) runTranslate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	if strings.TrimSpace(inputPath) == "" {
		printError(out, "Input SRT file not specified.")
		return nil
	}
	if strings.TrimSpace(outputPath) == "" {
		printError(out, "Output SRT file not specified.")
		return nil
	}

	if err := a.loadConfig(); err != nil {
		return err
	}

	settings, err := a.translateSettings(cmd)
	if err != nil {
		return err
	}

	if settings.SourceLanguage != "" &&
		strings.EqualFold(settings.SourceLanguage, settings.Language) {
		return fmt.Errorf(
			"source language %q and target language %q cannot be the same",
			settings.SourceLanguage,
			settings.Language,
		)
	}

	enc, err := subtitle.LookupEncoding(settings.Encoding)
	if err != nil {
		return err
	}

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", inputPath)
	}
	if !subtitle.IsSubtitleFile(inputPath) {
		return fmt.Errorf(
			"unsupported subtitle format %q: use .srt, .vtt, .ass, .ssa or .ttml",
			filepath.Ext(inputPath),
		)
	}
	if !subtitle.IsSubtitleFile(outputPath) {
		return fmt.Errorf(
			"unsupported output format %q: use .srt, .vtt, .ass, .ssa or .ttml",
			filepath.Ext(outputPath),
		)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the lock file lives next to the output, so its directory must exist first
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// two runs writing the same output would silently overwrite each other
	lockPath := outputPath + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock output file: %w", err)
	}
	if !locked {
		return fmt.Errorf("another subtran run is writing %s", outputPath)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}()

	log := a.logger.With("provider", settings.Provider)
	overlay, _ := cmd.Flags().GetBool("overlay")

	log.Infow("Starting subtitle translation",
		"input", inputPath,
		"output", outputPath,
		"target_language", settings.Language,
		"source_language", settings.SourceLanguage,
		"encoding", enc.String(),
		"overlay", overlay,
		"model", settings.Model,
	)

	file, err := subtitle.Open(inputPath, enc)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	log.Infow("Parsed subtitle file",
		"cues", file.Len(),
		"format", file.Format(),
	)

	translator, err := a.newTranslator(ctx, settings.Provider, settings.APIKey, translate.Options{
		SourceLanguage: settings.SourceLanguage,
		TargetLanguage: settings.Language,
		Model:          settings.Model,
		Prompt:         settings.Prompt,
		BaseURL:        settings.BaseURL,
		Timeout:        settings.Timeout,
		Pace: func(ctx context.Context) error {
			return a.sleep(ctx, settings.Pace)
		},
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}
	if closer, ok := translator.(io.Closer); ok {
		defer closer.Close()
	}

	var track batch.Track = file
	if overlay {
		track = subtitle.Overlay(file)
	}

	noProgress, _ := cmd.Flags().GetBool("no-progress")
	runner := batch.NewRunner(translator, batch.Options{
		BatchSize: settings.BatchSize,
		Backoff:   settings.Backoff,
		Delay:     settings.Delay,
		Sleep:     a.sleep,
		Progress:  progressFor(cmd.ErrOrStderr(), noProgress),
		Logger:    log,
	})

	summary, err := runner.Run(ctx, track)
	if err != nil {
		return fmt.Errorf("translation aborted, %s was not written: %w", outputPath, err)
	}

	log.Infow("Writing output file")
	if err := subtitle.WriteAs(file, outputPath, enc); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	printSummary(out, outputPath, settings, summary)
	return nil
}

// translateSettings layers command line flags over the loaded configuration.
func (a *app) translateSettings(cmd *cobra.Command) (config.Settings, error) {
	provider, _ := cmd.Flags().GetString("provider")
	settings, err := a.config.Settings(provider)
	if err != nil {
		return config.Settings{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("language") {
		settings.Language, _ = flags.GetString("language")
	}
	if flags.Changed("source-language") {
		settings.SourceLanguage, _ = flags.GetString("source-language")
	}
	if flags.Changed("encoding") {
		settings.Encoding, _ = flags.GetString("encoding")
	}
	if flags.Changed("api-key") {
		settings.APIKey, _ = flags.GetString("api-key")
	}
	if flags.Changed("model") {
		settings.Model, _ = flags.GetString("model")
	}
	if flags.Changed("batch-size") {
		size, _ := flags.GetInt("batch-size")
		if size <= 0 {
			return config.Settings{}, fmt.Errorf("batch-size must be positive, got %d", size)
		}
		settings.BatchSize = size
	}

	settings.Language = strings.TrimSpace(settings.Language)
	settings.SourceLanguage = strings.TrimSpace(settings.SourceLanguage)
	return settings, nil
}

func printError(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", color.RedString("[ERROR]"), msg)
}

func printSummary(w io.Writer, outputPath string, s config.Settings, summary batch.Summary) {
	absOutput, _ := filepath.Abs(outputPath)
	size := "unknown size"
	if info, err := os.Stat(outputPath); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}

	fmt.Fprintf(w, "Subtitles translated successfully: %s (%s)\n", absOutput, size)
	fmt.Fprintf(w, "  Cues: %d (%d with text)\n", summary.Cues, summary.Valid)
	fmt.Fprintf(w, "  Provider: %s\n", s.Provider)
	fmt.Fprintf(w, "  Target language: %s\n", s.Language)
	fmt.Fprintf(w, "  Batches: %d\n", summary.Batches)
	if summary.Failed > 0 {
		fmt.Fprintf(w, "  %s %d of %d batches failed and kept their original text\n",
			color.YellowString("Warning:"), summary.Failed, summary.Batches)
	}
}
