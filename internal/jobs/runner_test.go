package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raewoo0908/mp3Extractor/internal/extract"
)

type stubEngine struct {
	extractFn func(ctx context.Context, url, workDir string, profile extract.Profile, onProgress extract.ProgressFunc) (*extract.Result, error)
}

func (s *stubEngine) Extract(ctx context.Context, url, workDir string, profile extract.Profile, onProgress extract.ProgressFunc) (*extract.Result, error) {
	return s.extractFn(ctx, url, workDir, profile, onProgress)
}

type stubTranscoder struct {
	calls int
	fail  bool
}

func (s *stubTranscoder) Transcode(_ context.Context, inputPath, outputPath, _, _ string) error {
	s.calls++
	if s.fail {
		return errors.New("codec not supported")
	}
	src, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, src, 0o644)
}

// isPrimary distinguishes the attempt tiers inside engine stubs.
func isPrimary(profile extract.Profile) bool {
	return profile.AudioFormat != ""
}

func produce(t *testing.T, workDir, name string, size int) string {
	t.Helper()
	path := filepath.Join(workDir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644))
	return path
}

func TestRunner_PrimarySuccess_PicksLargestMP3(t *testing.T) {
	store := NewStore(0)
	outputDir := t.TempDir()

	engine := &stubEngine{extractFn: func(_ context.Context, _, workDir string, profile extract.Profile, _ extract.ProgressFunc) (*extract.Result, error) {
		require.True(t, isPrimary(profile))
		ad := produce(t, workDir, "ad spot.mp3", 10)
		track := produce(t, workDir, "main track.mp3", 500)
		return &extract.Result{Files: []string{ad, track}, Title: "Main Track"}, nil
	}}

	job, err := store.Create("https://example.com/v")
	require.NoError(t, err)

	NewRunner(store, engine, &stubTranscoder{}, outputDir).Run(context.Background(), job.ID, job.URL)

	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 100.0, got.Progress)
	assert.Equal(t, "Main Track", got.Title)
	assert.Equal(t, filepath.Join(outputDir, "main_track.mp3"), got.ArtifactPath)

	info, err := os.Stat(got.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, int64(500), info.Size())
}

func TestRunner_FallbackActivation(t *testing.T) {
	store := NewStore(0)
	outputDir := t.TempDir()
	transcoder := &stubTranscoder{}

	engine := &stubEngine{extractFn: func(_ context.Context, _, workDir string, profile extract.Profile, _ extract.ProgressFunc) (*extract.Result, error) {
		if isPrimary(profile) {
			return nil, errors.New("requested format is not available")
		}
		path := produce(t, workDir, "low quality.webm", 50)
		return &extract.Result{Files: []string{path}, Title: "Low Quality"}, nil
	}}

	job, err := store.Create("https://example.com/v")
	require.NoError(t, err)

	NewRunner(store, engine, transcoder, outputDir).Run(context.Background(), job.ID, job.URL)

	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 1, transcoder.calls)

	// Fallback artifacts carry the job id to dodge title collisions.
	assert.Equal(t, filepath.Join(outputDir, job.ID+"_low_quality.mp3"), got.ArtifactPath)
	assert.FileExists(t, got.ArtifactPath)
}

func TestRunner_FallbackMP3SkipsTranscode(t *testing.T) {
	store := NewStore(0)
	transcoder := &stubTranscoder{}

	engine := &stubEngine{extractFn: func(_ context.Context, _, workDir string, profile extract.Profile, _ extract.ProgressFunc) (*extract.Result, error) {
		if isPrimary(profile) {
			return nil, errors.New("boom")
		}
		path := produce(t, workDir, "already.mp3", 40)
		return &extract.Result{Files: []string{path}, Title: "Already"}, nil
	}}

	job, _ := store.Create("https://example.com/v")
	NewRunner(store, engine, transcoder, t.TempDir()).Run(context.Background(), job.ID, job.URL)

	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 0, transcoder.calls)
}

func TestRunner_DoubleFailure_DeletesRecord(t *testing.T) {
	store := NewStore(0)

	engine := &stubEngine{extractFn: func(context.Context, string, string, extract.Profile, extract.ProgressFunc) (*extract.Result, error) {
		return nil, errors.New("unreachable source")
	}}

	job, err := store.Create("https://example.com/v")
	require.NoError(t, err)

	NewRunner(store, engine, &stubTranscoder{}, t.TempDir()).Run(context.Background(), job.ID, job.URL)

	// Failed jobs are not retained for later inspection.
	_, ok := store.Get(job.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Count())
}

func TestRunner_TranscodeFailure_IsTerminal(t *testing.T) {
	store := NewStore(0)

	engine := &stubEngine{extractFn: func(_ context.Context, _, workDir string, profile extract.Profile, _ extract.ProgressFunc) (*extract.Result, error) {
		if isPrimary(profile) {
			return nil, errors.New("boom")
		}
		path := produce(t, workDir, "clip.ogg", 30)
		return &extract.Result{Files: []string{path}, Title: "Clip"}, nil
	}}

	job, _ := store.Create("https://example.com/v")
	NewRunner(store, engine, &stubTranscoder{fail: true}, t.TempDir()).Run(context.Background(), job.ID, job.URL)

	_, ok := store.Get(job.ID)
	assert.False(t, ok)
}

func TestRunner_ProgressCappedAt99(t *testing.T) {
	store := NewStore(0)

	var observed []float64
	var jobID string

	engine := &stubEngine{extractFn: func(_ context.Context, _, _ string, profile extract.Profile, onProgress extract.ProgressFunc) (*extract.Result, error) {
		if !isPrimary(profile) {
			return nil, errors.New("stop after primary")
		}
		onProgress(50, 100)
		if got, ok := store.Get(jobID); ok {
			observed = append(observed, got.Progress)
		}
		// Engine overshoot and an out-of-order late callback.
		onProgress(100, 100)
		onProgress(10, 100)
		if got, ok := store.Get(jobID); ok {
			observed = append(observed, got.Progress)
		}
		// Unknown total must be ignored entirely.
		onProgress(10, 0)
		return nil, errors.New("fail primary too")
	}}

	job, err := store.Create("https://example.com/v")
	require.NoError(t, err)
	jobID = job.ID

	NewRunner(store, engine, &stubTranscoder{}, t.TempDir()).Run(context.Background(), job.ID, job.URL)

	assert.Equal(t, []float64{50, 99}, observed)
}

func TestRunner_WorkingDirRemoved(t *testing.T) {
	store := NewStore(0)

	var workDirs []string
	engine := &stubEngine{extractFn: func(_ context.Context, _, workDir string, profile extract.Profile, _ extract.ProgressFunc) (*extract.Result, error) {
		workDirs = append(workDirs, workDir)
		if !isPrimary(profile) {
			return nil, errors.New("fallback fails too")
		}
		path := produce(t, workDir, "track.mp3", 20)
		return &extract.Result{Files: []string{path}, Title: "Track"}, nil
	}}

	job, _ := store.Create("https://example.com/v")
	NewRunner(store, engine, &stubTranscoder{}, t.TempDir()).Run(context.Background(), job.ID, job.URL)

	require.NotEmpty(t, workDirs)
	for _, dir := range workDirs {
		_, err := os.Stat(dir)
		assert.True(t, os.IsNotExist(err), "working dir %s should be removed", dir)
	}
}

func TestRunner_AbandonedJobWritesAreNoOps(t *testing.T) {
	store := NewStore(0)
	outputDir := t.TempDir()

	engine := &stubEngine{extractFn: func(_ context.Context, _, workDir string, profile extract.Profile, onProgress extract.ProgressFunc) (*extract.Result, error) {
		require.True(t, isPrimary(profile))
		// The reaper got here first: the record is already gone.
		onProgress(50, 100)
		path := produce(t, workDir, "orphan.mp3", 20)
		return &extract.Result{Files: []string{path}, Title: "Orphan"}, nil
	}}

	job, _ := store.Create("https://example.com/v")
	store.Delete(job.ID)

	runner := NewRunner(store, engine, &stubTranscoder{}, outputDir)
	assert.NotPanics(t, func() { runner.Run(context.Background(), job.ID, job.URL) })

	_, ok := store.Get(job.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Count())
}
