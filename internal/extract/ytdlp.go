package extract

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/raewoo0908/mp3Extractor/pkg/log"
)

// progressTemplate makes yt-dlp print one machine-readable line per
// progress tick: "<downloaded>/<total>/<total_estimate>".
const progressTemplate = "download:%(progress.downloaded_bytes)s/%(progress.total_bytes)s/%(progress.total_bytes_estimate)s"

// YtDlp drives the local yt-dlp binary.
type YtDlp struct {
	binaryPath string
	cookieFile string
}

func NewYtDlp(binaryPath, cookieFile string) *YtDlp {
	if binaryPath == "" {
		binaryPath = "yt-dlp"
	}
	return &YtDlp{
		binaryPath: binaryPath,
		cookieFile: cookieFile,
	}
}

func (d *YtDlp) Extract(ctx context.Context, url, workDir string, profile Profile, onProgress ProgressFunc) (*Result, error) {
	title, err := d.fetchTitle(ctx, url)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, d.binaryPath, d.downloadArgs(url, workDir, profile)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("yt-dlp start failed: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if downloaded, total, ok := parseProgress(scanner.Text()); ok && onProgress != nil {
			onProgress(downloaded, total)
		}
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	files, err := listFiles(workDir)
	if err != nil {
		return nil, err
	}

	log.Debug("yt-dlp produced %d file(s) for %s", len(files), url)
	return &Result{Files: files, Title: title}, nil
}

// fetchTitle runs a metadata-only pass before the download, mirroring
// the lookup the download itself will perform.
func (d *YtDlp) fetchTitle(ctx context.Context, url string) (string, error) {
	args := []string{"--get-title", "--no-warnings", "--no-playlist"}
	if d.cookieFile != "" {
		args = append(args, "--cookies", d.cookieFile)
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, d.binaryPath, args...)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp title probe failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	title := strings.TrimSpace(out.String())
	if title == "" {
		title = "unknown_title"
	}
	// Playlists would still print one title per line; keep the first.
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	return title, nil
}

func (d *YtDlp) downloadArgs(url, workDir string, profile Profile) []string {
	args := []string{
		"--newline",
		"--no-warnings",
		"--no-playlist",
		"--progress-template", progressTemplate,
		"-f", profile.Format,
		"-o", filepath.Join(workDir, "%(title)s.%(ext)s"),
	}
	if profile.AudioFormat != "" {
		args = append(args,
			"-x",
			"--audio-format", profile.AudioFormat,
			"--audio-quality", profile.AudioQuality,
		)
	}
	if d.cookieFile != "" {
		args = append(args, "--cookies", d.cookieFile)
	}
	return append(args, url)
}

// parseProgress decodes a progressTemplate line. The total falls back
// to yt-dlp's estimate when the exact size is unknown ("NA").
func parseProgress(line string) (downloaded, total int64, ok bool) {
	parts := strings.Split(strings.TrimSpace(line), "/")
	if len(parts) != 3 {
		return 0, 0, false
	}

	downloaded, ok = parseByteCount(parts[0])
	if !ok {
		return 0, 0, false
	}
	if total, ok = parseByteCount(parts[1]); !ok {
		total, ok = parseByteCount(parts[2])
	}
	if !ok {
		return 0, 0, false
	}
	return downloaded, total, true
}

func parseByteCount(s string) (int64, bool) {
	// yt-dlp renders byte counts as integers or floats, and "NA" when
	// the value is unavailable.
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return int64(f), true
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
