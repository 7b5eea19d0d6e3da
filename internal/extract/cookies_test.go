package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCookieFile_FirstHitWins(t *testing.T) {
	dir := t.TempDir()
	second := filepath.Join(dir, "second.txt")
	require.NoError(t, os.WriteFile(second, []byte("# Netscape HTTP Cookie File\n"), 0o644))
	third := filepath.Join(dir, "third.txt")
	require.NoError(t, os.WriteFile(third, []byte("# Netscape HTTP Cookie File\n"), 0o644))

	got := FindCookieFile(filepath.Join(dir, "missing.txt"), second, third)
	assert.Equal(t, second, got)
}

func TestFindCookieFile_NoneFound(t *testing.T) {
	dir := t.TempDir()
	got := FindCookieFile(filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt"), "")
	assert.Empty(t, got)
}

func TestLogCookieSummary_MissingFileDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		LogCookieSummary(filepath.Join(t.TempDir(), "nope.txt"))
	})
}

func TestLogCookieSummary_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	content := "# Netscape HTTP Cookie File\n" +
		".youtube.com\tTRUE\t/\tTRUE\t0\tLOGIN_INFO\tvalue\n" +
		".google.com\tTRUE\t/\tTRUE\t0\tNID\tvalue\n" +
		".example.com\tTRUE\t/\tTRUE\t0\tother\tvalue\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	assert.NotPanics(t, func() { LogCookieSummary(path) })
}
