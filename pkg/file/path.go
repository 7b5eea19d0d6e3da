package file

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SanitizeName reduces an arbitrary title or filename to a safe ASCII
// base name usable inside the artifact directory. Path separators,
// relative components and shell-hostile characters are all collapsed
// to underscores.
func SanitizeName(name string) string {
	name = filepath.Base(name)

	// Decompose accented characters, then keep only the ASCII part.
	name = norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range name {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}

	cleaned := unsafeChars.ReplaceAllString(b.String(), "_")
	cleaned = strings.Trim(cleaned, "._-")
	if cleaned == "" {
		return "file"
	}
	return cleaned
}

func ReplaceExt(path, ext string) string {
	if path == "" {
		return path
	}

	dir := filepath.Dir(path)
	filename := filepath.Base(path)

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	lastDot := strings.LastIndex(filename, ".")
	if lastDot <= 0 {
		return filepath.Join(dir, filename+ext)
	}

	return filepath.Join(dir, filename[:lastDot]+ext)
}
