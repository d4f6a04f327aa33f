package ffmpeg

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	ffmpegReleaseVersion = "6.1"
	ffmpegReleaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths

	ffplayOnce sync.Once
	ffplayErr  error
	ffplayPath string
)

func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = ensure()
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

// FFplayPath resolves the ffplay binary used for best-effort cue playback.
func FFplayPath() (string, error) {
	ffplayOnce.Do(func() {
		ffplayPath, ffplayErr = ensureFFplay()
	})
	return ffplayPath, ffplayErr
}

func ensure() (BinaryPaths, error) {
	paths := BinaryPaths{}
	ffmpegPath := os.Getenv("VEILCUT_FFMPEG_PATH")
	ffprobePath := os.Getenv("VEILCUT_FFPROBE_PATH")
	if ffmpegPath != "" && ffprobePath != "" {
		return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
	}

	if ffmpegPath == "" {
		if found, err := exec.LookPath("ffmpeg"); err == nil {
			ffmpegPath = found
		}
	}
	if ffprobePath == "" {
		if found, err := exec.LookPath("ffprobe"); err == nil {
			ffprobePath = found
		}
	}

	if ffmpegPath != "" && ffprobePath != "" {
		paths.FFmpeg = ffmpegPath
		paths.FFprobe = ffprobePath
		return paths, nil
	}

	assetName, err := assetForPlatform("ffmpeg", runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return BinaryPaths{}, err
	}

	installDir := installDirFor()
	exeSuffix := executableSuffix()
	ffmpegPath = filepath.Join(installDir, "ffmpeg"+exeSuffix)
	ffprobePath = filepath.Join(installDir, "ffprobe"+exeSuffix)

	if fileExists(ffmpegPath) && fileExists(ffprobePath) {
		return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
	}

	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return BinaryPaths{}, fmt.Errorf("create ffmpeg cache dir: %w", err)
	}

	embeddedUsed, err := extractEmbedded(assetName, installDir, "ffmpeg", "ffprobe")
	if err != nil {
		return BinaryPaths{}, err
	}
	if !embeddedUsed {
		if err := downloadAndExtract(assetName, installDir, "ffmpeg", "ffprobe"); err != nil {
			return BinaryPaths{}, err
		}
	}

	if !fileExists(ffmpegPath) || !fileExists(ffprobePath) {
		return BinaryPaths{}, errors.New("ffmpeg binaries not found after extraction")
	}

	if err := markExecutable(ffmpegPath, ffprobePath); err != nil {
		return BinaryPaths{}, err
	}

	return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}

func ensureFFplay() (string, error) {
	if path := os.Getenv("VEILCUT_FFPLAY_PATH"); path != "" {
		return path, nil
	}
	if found, err := exec.LookPath("ffplay"); err == nil {
		return found, nil
	}

	assetName, err := assetForPlatform("ffplay", runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return "", err
	}

	installDir := installDirFor()
	path := filepath.Join(installDir, "ffplay"+executableSuffix())
	if fileExists(path) {
		return path, nil
	}

	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return "", fmt.Errorf("create ffmpeg cache dir: %w", err)
	}
	if err := downloadAndExtract(assetName, installDir, "ffplay"); err != nil {
		return "", err
	}
	if !fileExists(path) {
		return "", errors.New("ffplay binary not found after extraction")
	}
	if err := markExecutable(path); err != nil {
		return "", err
	}
	return path, nil
}

func installDirFor() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil || cacheDir == "" {
		cacheDir = os.TempDir()
	}
	return filepath.Join(
		cacheDir,
		"veilcut",
		"ffmpeg",
		ffmpegReleaseVersion,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

func markExecutable(paths ...string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	for _, p := range paths {
		if err := os.Chmod(p, 0o755); err != nil {
			return fmt.Errorf("chmod %s: %w", filepath.Base(p), err)
		}
	}
	return nil
}

func assetForPlatform(tool, goos, goarch string) (string, error) {
	switch {
	case goos == "linux" && goarch == "amd64":
		return tool + "-" + ffmpegReleaseVersion + "-linux-64.zip", nil
	case goos == "linux" && goarch == "arm64":
		return tool + "-" + ffmpegReleaseVersion + "-linux-arm-64.zip", nil
	case goos == "darwin" && goarch == "amd64":
		return tool + "-" + ffmpegReleaseVersion + "-macos-64.zip", nil
	case goos == "windows" && goarch == "amd64":
		return tool + "-" + ffmpegReleaseVersion + "-win-64.zip", nil
	default:
		return "", fmt.Errorf("unsupported platform for bundled %s: %s/%s", tool, goos, goarch)
	}
}

func downloadAndExtract(assetName, installDir string, tools ...string) error {
	url := fmt.Sprintf("%s/v%s/%s", ffmpegReleaseBaseURL, ffmpegReleaseVersion, assetName)
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	if resp == nil {
		return errors.New("download ffmpeg bundle: nil response")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download ffmpeg bundle: unexpected status %s", resp.Status)
	}

	return extractArchiveFromReader(assetName, resp.Body, installDir, tools)
}

func extractEmbedded(assetName, installDir string, tools ...string) (bool, error) {
	reader, ok, err := openEmbeddedAsset(assetName)
	if err != nil || !ok {
		return ok, err
	}
	defer func() { _ = reader.Close() }()

	if err := extractArchiveFromReader(assetName, reader, installDir, tools); err != nil {
		return true, err
	}
	return true, nil
}

func extractArchiveFromReader(assetName string, reader io.Reader, installDir string, tools []string) error {
	tmpFile, err := os.CreateTemp("", "veilcut-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	archivePath := tmpFile.Name()
	if _, err := io.Copy(tmpFile, reader); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(archivePath)
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(archivePath)
		return fmt.Errorf("close archive: %w", err)
	}
	defer func() { _ = os.Remove(archivePath) }()

	if err := extractArchive(archivePath, installDir, tools); err != nil {
		return fmt.Errorf("extract %s: %w", assetName, err)
	}
	return nil
}

func extractArchive(archivePath, installDir string, tools []string) error {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open ffmpeg archive: %w", err)
	}
	defer func() { _ = zipReader.Close() }()

	found := make(map[string]bool, len(tools))
	for _, file := range zipReader.File {
		name := strings.ToLower(filepath.Base(file.Name))
		for _, tool := range tools {
			if name != tool && name != tool+".exe" {
				continue
			}
			dest := filepath.Join(installDir, tool+executableSuffix())
			if err := extractZipFile(file, dest); err != nil {
				return err
			}
			found[tool] = true
		}
	}

	for _, tool := range tools {
		if !found[tool] {
			return fmt.Errorf("ffmpeg archive missing required binary %s", tool)
		}
	}

	return nil
}

func extractZipFile(file *zip.File, dest string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("open ffmpeg archive entry: %w", err)
	}
	defer func() { _ = reader.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create ffmpeg output dir: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create ffmpeg binary: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("write ffmpeg binary: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
