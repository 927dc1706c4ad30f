package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/mgpai22/subtran/internal/translate"
)

//go:embed sample_config.toml
var sampleConfig string

const defaultConfigPath = "~/.config/subtran/config.toml"

// Translate holds run wide defaults for `subtran translate`.
type Translate struct {
	Provider       string `toml:"provider"`
	Language       string `toml:"language"`
	SourceLanguage string `toml:"source_language"`
	Encoding       string `toml:"encoding"`
	BatchSize      int    `toml:"batch_size"`
	// pause after a failed batch, as a Go duration string ("10s")
	Backoff string `toml:"backoff"`
	// pause after each individual request of a joined fallback
	Pace           string `toml:"pace"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Provider holds per provider overrides under [providers.<name>].
type Provider struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	BaseURL   string `toml:"base_url"`
	Language  string `toml:"language"`
	BatchSize int    `toml:"batch_size"`
	// pause after each successful batch, as a Go duration string
	Delay string `toml:"delay"`
	// extra instructions appended to LLM prompts
	Prompt string `toml:"prompt"`
}

// FFmpeg configures the binaries used by `subtran extract`.
type FFmpeg struct {
	Path string `toml:"path"`
	// ffprobe for --list, defaults to the one next to Path
	ProbePath string `toml:"ffprobe_path"`
}

// Config encapsulates all configuration values for subtran.
type Config struct {
	Translate Translate           `toml:"translate"`
	Providers map[string]Provider `toml:"providers"`
	FFmpeg    FFmpeg              `toml:"ffmpeg"`

	// environment overrides win over every file section, provider sections included
	env envOverrides
}

type envOverrides struct {
	language  string
	batchSize int
}

// Default returns the built in configuration.
func Default() Config {
	return Config{
		Translate: Translate{
			Provider:       string(translate.ProviderDeepL),
			Encoding:       "utf8",
			Backoff:        "10s",
			Pace:           "1s",
			TimeoutSeconds: 60,
		},
		Providers: map[string]Provider{},
	}
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the TOML file at path (or the default location when empty),
// then applies environment overrides. A missing file is not an error; the
// returned bool reports whether one was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}
	if cfg.Providers == nil {
		cfg.Providers = map[string]Provider{}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. An empty path means
// ".env" in the working directory, which may be absent.
func LoadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("SUBTRAN_PROVIDER")); v != "" {
		c.Translate.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv("SUBTRAN_LANGUAGE")); v != "" {
		c.env.language = v
	}
	if v := strings.TrimSpace(os.Getenv("SUBTRAN_ENCODING")); v != "" {
		c.Translate.Encoding = v
	}
	if v := strings.TrimSpace(os.Getenv("SUBTRAN_BATCH_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SUBTRAN_BATCH_SIZE: %w", err)
		}
		if n <= 0 {
			return fmt.Errorf("SUBTRAN_BATCH_SIZE must be positive, got %d", n)
		}
		c.env.batchSize = n
	}
	if v := strings.TrimSpace(os.Getenv("SUBTRAN_FFMPEG_PATH")); v != "" {
		c.FFmpeg.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("SUBTRAN_FFPROBE_PATH")); v != "" {
		c.FFmpeg.ProbePath = v
	}
	return nil
}

// Settings is everything needed to build and drive one provider.
type Settings struct {
	Provider       translate.Provider
	APIKey         string
	Model          string
	BaseURL        string
	Prompt         string
	Language       string
	SourceLanguage string
	Encoding       string
	BatchSize      int
	Delay          time.Duration
	Backoff        time.Duration
	Pace           time.Duration
	Timeout        time.Duration
}

// Settings merges provider defaults, the [translate] section, the
// [providers.<name>] section and then the SUBTRAN_* environment. The API key
// comes from the provider's environment variable first, then the config file.
func (c *Config) Settings(provider string) (Settings, error) {
	if provider == "" {
		provider = c.Translate.Provider
	}
	name := translate.Provider(strings.ToLower(strings.TrimSpace(provider)))
	info, ok := translate.Lookup(name)
	if !ok {
		return Settings{}, fmt.Errorf("unsupported translation provider: %s", provider)
	}
	p := c.Providers[string(name)]

	s := Settings{
		Provider:       name,
		Model:          p.Model,
		BaseURL:        p.BaseURL,
		Prompt:         p.Prompt,
		Language:       firstNonEmpty(c.env.language, p.Language, c.Translate.Language, info.DefaultLanguage),
		SourceLanguage: c.Translate.SourceLanguage,
		Encoding:       firstNonEmpty(c.Translate.Encoding, "utf8"),
		BatchSize:      info.BatchSize,
		Delay:          info.Delay,
		Timeout:        time.Duration(c.Translate.TimeoutSeconds) * time.Second,
	}

	if info.KeyEnv != "" {
		s.APIKey = strings.TrimSpace(os.Getenv(info.KeyEnv))
	}
	if s.APIKey == "" {
		s.APIKey = strings.TrimSpace(p.APIKey)
	}

	if c.Translate.BatchSize > 0 {
		s.BatchSize = c.Translate.BatchSize
	}
	if p.BatchSize > 0 {
		s.BatchSize = p.BatchSize
	}
	if c.env.batchSize > 0 {
		s.BatchSize = c.env.batchSize
	}

	var err error
	if p.Delay != "" {
		if s.Delay, err = time.ParseDuration(p.Delay); err != nil {
			return Settings{}, fmt.Errorf("providers.%s.delay: %w", name, err)
		}
	}
	if s.Backoff, err = parseDuration(c.Translate.Backoff, 10*time.Second); err != nil {
		return Settings{}, fmt.Errorf("translate.backoff: %w", err)
	}
	if s.Pace, err = parseDuration(c.Translate.Pace, time.Second); err != nil {
		return Settings{}, fmt.Errorf("translate.pace: %w", err)
	}

	return s, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(strings.TrimSpace(value))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
