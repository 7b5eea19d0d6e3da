package extract

import "context"

// Profile is one extraction strategy: the yt-dlp format selector plus
// the optional on-the-fly audio conversion settings.
type Profile struct {
	Format       string // yt-dlp format selector, e.g. "bestaudio/best"
	AudioFormat  string // target container for -x extraction; empty keeps the source container
	AudioQuality string // preferred bitrate for -x extraction
}

// PrimaryProfile is the preferred strategy: best available audio,
// extracted straight to MP3.
func PrimaryProfile() Profile {
	return Profile{
		Format:       "bestaudio/best",
		AudioFormat:  "mp3",
		AudioQuality: "192K",
	}
}

// FallbackProfile is the degraded strategy used after a primary
// failure: the most compatible low-quality stream, downloaded in its
// native container and converted separately.
func FallbackProfile() Profile {
	return Profile{Format: "worstaudio/worst"}
}

// ProgressFunc receives incremental byte counts while a download is
// running. total may be an estimate, or zero when unknown.
type ProgressFunc func(downloaded, total int64)

// Result is the outcome of a successful extraction.
type Result struct {
	Files []string // every file produced in the working directory
	Title string
}

// Engine fetches a remote media URL into a working directory using the
// given strategy profile.
type Engine interface {
	Extract(ctx context.Context, url, workDir string, profile Profile, onProgress ProgressFunc) (*Result, error)
}

// Transcoder converts a downloaded file into the target audio format.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath, codec, bitrate string) error
}
