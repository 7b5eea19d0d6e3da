package extract

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/raewoo0908/mp3Extractor/pkg/log"
)

// FindCookieFile returns the first existing path from candidates, or
// the default search locations (container path, working directory,
// home directory) when none are given. Empty result means guest mode.
func FindCookieFile(candidates ...string) string {
	if len(candidates) == 0 {
		candidates = defaultCookiePaths()
	}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func defaultCookiePaths() []string {
	paths := []string{
		"/app/cookies.txt",
		"./cookies.txt",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "cookies.txt"))
	}
	return paths
}

// LogCookieSummary reports what a Netscape-format cookie file carries,
// without logging any cookie values.
func LogCookieSummary(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Could not analyze cookie file %s: %v", path, err)
		return
	}

	var siteCookies int
	var hasLogin bool
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "youtube.com") && !strings.Contains(line, "google.com") {
			continue
		}
		siteCookies++
		if strings.Contains(line, "LOGIN_INFO") {
			hasLogin = true
		}
	}

	session := "guest session"
	if hasLogin {
		session = "logged-in account"
	}
	log.Info("Cookie file loaded: %s (%d YouTube/Google cookies, %s)", path, siteCookies, session)
}
