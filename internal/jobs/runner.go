package jobs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/raewoo0908/mp3Extractor/internal/extract"
	"github.com/raewoo0908/mp3Extractor/pkg/file"
	"github.com/raewoo0908/mp3Extractor/pkg/log"
)

// maxInFlightProgress caps progress reports while a download is still
// running; 100 is reserved for the terminal completion write.
const maxInFlightProgress = 99

// Runner drives exactly one job to a terminal state. One Runner is
// shared across jobs; Run is called once per job, concurrently.
type Runner struct {
	store      *Store
	engine     extract.Engine
	transcoder extract.Transcoder
	outputDir  string
	codec      string
	bitrate    string
}

func NewRunner(store *Store, engine extract.Engine, transcoder extract.Transcoder, outputDir string) *Runner {
	return &Runner{
		store:      store,
		engine:     engine,
		transcoder: transcoder,
		outputDir:  outputDir,
		codec:      "libmp3lame",
		bitrate:    "128k",
	}
}

// attempt is one tier of the extraction protocol.
type attempt struct {
	name        string
	profile     extract.Profile
	convert     bool // transcode non-MP3 output to MP3
	qualifyName bool // prefix the persisted filename with the job id
}

// attempts is the full retry policy: the primary profile, then exactly
// one degraded fallback. There is no further tier.
func attempts() []attempt {
	return []attempt{
		{name: "primary", profile: extract.PrimaryProfile()},
		{name: "fallback", profile: extract.FallbackProfile(), convert: true, qualifyName: true},
	}
}

// Run executes the two-phase extraction protocol for one job. On
// double failure the record is failed and then deleted immediately;
// failed jobs are not retained.
func (r *Runner) Run(ctx context.Context, jobID, url string) {
	log.Info("Task %s: starting extraction for %s", jobID, url)
	r.store.MarkProcessing(jobID)

	var lastErr error
	for _, a := range attempts() {
		artifactPath, title, err := r.runAttempt(ctx, jobID, url, a)
		if err != nil {
			lastErr = err
			log.Warn("Task %s: %s attempt failed: %v", jobID, a.name, err)
			continue
		}

		r.store.Complete(jobID, artifactPath, title)
		if info, statErr := os.Stat(artifactPath); statErr == nil {
			log.Info("Task %s: stored %s (%s)", jobID, filepath.Base(artifactPath), humanize.Bytes(uint64(info.Size())))
		}
		return
	}

	failure := NewErrorWithCause(KindExtractionFailed, "all extraction attempts failed", lastErr)
	r.store.Fail(jobID, failure)
	r.store.Delete(jobID)
}

// runAttempt performs one extraction tier inside a job-private working
// directory that is removed on every exit path.
func (r *Runner) runAttempt(ctx context.Context, jobID, url string, a attempt) (string, string, error) {
	workDir, err := os.MkdirTemp("", "extract-"+jobID+"-")
	if err != nil {
		return "", "", err
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("Task %s: failed to remove working dir %s: %v", jobID, workDir, err)
		}
	}()

	result, err := r.engine.Extract(ctx, url, workDir, a.profile, r.progressFunc(jobID))
	if err != nil {
		return "", "", err
	}
	if len(result.Files) == 0 {
		return "", "", errors.New("extraction produced no files")
	}

	produced, err := r.selectOutput(ctx, workDir, a)
	if err != nil {
		return "", "", err
	}

	finalPath, err := r.persist(produced, jobID, a.qualifyName)
	if err != nil {
		return "", "", err
	}
	return finalPath, result.Title, nil
}

// selectOutput picks the artifact among the files an attempt produced.
// The primary path takes the largest MP3 (the main asset is presumed
// largest; ancillary files are smaller). The fallback path takes the
// first audio file and converts it to MP3 when needed.
func (r *Runner) selectOutput(ctx context.Context, workDir string, a attempt) (string, error) {
	if !a.convert {
		return file.LargestWithExt(workDir, ".mp3")
	}

	src, err := file.FirstWithExts(workDir, ".mp3", ".m4a", ".webm", ".ogg")
	if err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(src), ".mp3") {
		return src, nil
	}

	dst := file.ReplaceExt(src, ".mp3")
	if err := r.transcoder.Transcode(ctx, src, dst, r.codec, r.bitrate); err != nil {
		return "", NewErrorWithCause(KindTranscodeFailed, "conversion to mp3 failed", err)
	}
	return dst, nil
}

// persist copies the selected file out of the scoped working area into
// durable storage under a sanitized name.
func (r *Runner) persist(srcPath, jobID string, qualify bool) (string, error) {
	name := file.SanitizeName(filepath.Base(srcPath))
	if qualify {
		// Avoids colliding with a concurrently completing primary-path
		// job that chose an identically named source title.
		name = jobID + "_" + name
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dstPath := filepath.Join(r.outputDir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", err
	}
	return dstPath, nil
}

func (r *Runner) progressFunc(jobID string) extract.ProgressFunc {
	return func(downloaded, total int64) {
		if total <= 0 {
			return
		}
		progress := float64(downloaded) / float64(total) * 100
		if progress > maxInFlightProgress {
			progress = maxInFlightProgress
		}
		r.store.UpdateProgress(jobID, progress)
	}
}
