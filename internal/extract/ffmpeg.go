package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// FFmpeg converts fallback downloads into the target audio format.
type FFmpeg struct {
	binaryPath string
}

func NewFFmpeg(binaryPath string) *FFmpeg {
	if binaryPath == "" {
		binaryPath = "ffmpeg"
	}
	return &FFmpeg{binaryPath: binaryPath}
}

func (f *FFmpeg) Transcode(ctx context.Context, inputPath, outputPath, codec, bitrate string) error {
	cmdPath, err := exec.LookPath(f.binaryPath)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, cmdPath, f.transcodeArgs(inputPath, outputPath, codec, bitrate)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (FFmpeg) transcodeArgs(inputPath, outputPath, codec, bitrate string) []string {
	return []string{
		"-i", inputPath,
		"-acodec", codec,
		"-ab", bitrate,
		"-y",
		outputPath,
	}
}
