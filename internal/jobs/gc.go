package jobs

import (
	"os"
	"time"

	"github.com/raewoo0908/mp3Extractor/pkg/log"
)

const DefaultTTL = 5 * time.Minute

// Reaper reclaims jobs past their time-to-live: the safety net for
// artifacts the caller never retrieved. Deleting a pending or
// processing job is valid; the abandoned runner's later writes become
// no-ops under the store's update contract.
type Reaper struct {
	store *Store
	ttl   time.Duration
}

func NewReaper(store *Store, ttl time.Duration) *Reaper {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Reaper{store: store, ttl: ttl}
}

// Sweep deletes every job older than the TTL, removing its artifact
// file first, and returns the number of jobs reclaimed.
func (r *Reaper) Sweep() int {
	cutoff := time.Now().Add(-r.ttl)

	reclaimed := 0
	for _, job := range r.store.List() {
		if job.CreatedAt.After(cutoff) {
			continue
		}
		// Re-read: the job may have completed (gaining an artifact) or
		// been retrieved since the snapshot.
		current, ok := r.store.Get(job.ID)
		if !ok {
			continue
		}
		r.removeArtifact(current)
		r.store.Delete(current.ID)
		reclaimed++
	}
	return reclaimed
}

func (r *Reaper) removeArtifact(job *Job) {
	if job.ArtifactPath == "" {
		return
	}
	err := os.Remove(job.ArtifactPath)
	switch {
	case err == nil:
		log.Info("Removed artifact: %s", job.ArtifactPath)
	case os.IsNotExist(err):
		log.Warn("Artifact already gone: %s", job.ArtifactPath)
	default:
		log.Warn("Failed to remove artifact %s: %v", job.ArtifactPath, err)
	}
}
