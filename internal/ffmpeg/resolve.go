package ffmpeg

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mgpai22/subtran/internal/logging"
)

const (
	releaseVersion = "6.1"
	releaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"
)

// BinaryPaths locates the tools used by `subtran extract`. FFprobe may be
// empty, in which case stream listing relies on ffprobe from PATH.
type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// Resolver finds ffmpeg in this order: the configured path, PATH, the
// download cache, and finally a fresh ffbinaries download into the cache.
type Resolver struct {
	// [ffmpeg] path / SUBTRAN_FFMPEG_PATH
	FFmpegPath string
	// [ffmpeg] ffprobe_path / SUBTRAN_FFPROBE_PATH
	FFprobePath string
	// defaults to the user cache directory
	CacheDir string
	BaseURL  string
	Client   *http.Client
	Logger   *logging.Logger

	lookPath func(string) (string, error)
	goos     string
	goarch   string
}

func NewResolver(ffmpegPath, ffprobePath string, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		FFmpegPath:  strings.TrimSpace(ffmpegPath),
		FFprobePath: strings.TrimSpace(ffprobePath),
		BaseURL:     releaseBaseURL,
		Client:      &http.Client{Timeout: 5 * time.Minute},
		Logger:      logger,
		lookPath:    exec.LookPath,
		goos:        runtime.GOOS,
		goarch:      runtime.GOARCH,
	}
}

func (r *Resolver) Resolve(ctx context.Context) (BinaryPaths, error) {
	if r.FFmpegPath != "" {
		if !isFile(r.FFmpegPath) {
			return BinaryPaths{}, fmt.Errorf("configured ffmpeg not found: %s", r.FFmpegPath)
		}
		return BinaryPaths{FFmpeg: r.FFmpegPath, FFprobe: r.probeNear(r.FFmpegPath)}, nil
	}

	if found, err := r.lookPath("ffmpeg"); err == nil {
		return BinaryPaths{FFmpeg: found, FFprobe: r.probeNear(found)}, nil
	}

	dir, err := r.installDir()
	if err != nil {
		return BinaryPaths{}, err
	}
	cached := BinaryPaths{
		FFmpeg:  filepath.Join(dir, r.exe("ffmpeg")),
		FFprobe: filepath.Join(dir, r.exe("ffprobe")),
	}
	if isFile(cached.FFmpeg) && isFile(cached.FFprobe) {
		r.Logger.Debugw("Using cached ffmpeg", "dir", dir)
		return cached, nil
	}

	asset, err := assetName(r.goos, r.goarch)
	if err != nil {
		return BinaryPaths{}, err
	}
	r.Logger.Infow("ffmpeg not found, downloading", "asset", asset, "dir", dir)
	if err := r.download(ctx, asset, dir); err != nil {
		return BinaryPaths{}, err
	}
	return cached, nil
}

// probeNear picks ffprobe for a known ffmpeg: configured, sibling, then PATH.
func (r *Resolver) probeNear(ffmpegPath string) string {
	if r.FFprobePath != "" {
		return r.FFprobePath
	}
	sibling := filepath.Join(filepath.Dir(ffmpegPath), r.exe("ffprobe"))
	if isFile(sibling) {
		return sibling
	}
	if found, err := r.lookPath("ffprobe"); err == nil {
		return found
	}
	return ""
}

func (r *Resolver) installDir() (string, error) {
	base := r.CacheDir
	if base == "" {
		dir, err := os.UserCacheDir()
		if err != nil || dir == "" {
			dir = os.TempDir()
		}
		base = dir
	}
	dir := filepath.Join(base, "subtran", "ffmpeg", releaseVersion, r.goos+"-"+r.goarch)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create ffmpeg cache dir: %w", err)
	}
	return dir, nil
}

func (r *Resolver) download(ctx context.Context, asset, dir string) error {
	url := fmt.Sprintf("%s/v%s/%s", strings.TrimRight(r.BaseURL, "/"), releaseVersion, asset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("download ffmpeg: %w", err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("download ffmpeg: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download ffmpeg: unexpected status %s", resp.Status)
	}

	// zip needs random access, so the bundle goes through a temp file
	tmp, err := os.CreateTemp("", "subtran-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err := unpack(tmp.Name(), dir, r.exe); err != nil {
		return fmt.Errorf("unpack %s: %w", asset, err)
	}
	return nil
}

// unpack copies the ffmpeg and ffprobe entries of a bundle into dir as
// executables, ignoring everything else in the archive.
func unpack(archivePath, dir string, exe func(string) string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer zr.Close()

	want := map[string]bool{"ffmpeg": false, "ffprobe": false}
	for _, entry := range zr.File {
		name := strings.TrimSuffix(strings.ToLower(filepath.Base(entry.Name)), ".exe")
		done, ok := want[name]
		if !ok || done || entry.FileInfo().IsDir() {
			continue
		}
		if err := copyEntry(entry, filepath.Join(dir, exe(name))); err != nil {
			return err
		}
		want[name] = true
	}

	for name, found := range want {
		if !found {
			return fmt.Errorf("archive has no %s binary", name)
		}
	}
	return nil
}

func copyEntry(entry *zip.File, dest string) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

var assets = map[string]string{
	"linux/amd64":   "linux-64",
	"linux/arm64":   "linux-arm-64",
	"darwin/amd64":  "macos-64",
	"windows/amd64": "win-64",
}

func assetName(goos, goarch string) (string, error) {
	suffix, ok := assets[goos+"/"+goarch]
	if !ok {
		return "", fmt.Errorf("no ffmpeg download for %s/%s: install ffmpeg or set [ffmpeg] path", goos, goarch)
	}
	return "ffmpeg-" + releaseVersion + "-" + suffix + ".zip", nil
}

func (r *Resolver) exe(name string) string {
	if r.goos == "windows" {
		return name + ".exe"
	}
	return name
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
