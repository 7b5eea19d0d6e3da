package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "song.mp3", want: "song.mp3"},
		{name: "spaces", input: "my favorite song.mp3", want: "my_favorite_song.mp3"},
		{name: "path traversal", input: "../../etc/passwd", want: "passwd"},
		{name: "accents stripped", input: "Beyoncé – Halo.mp3", want: "Beyonce_Halo.mp3"},
		{name: "shell hostile", input: "a;rm -rf$(x).mp3", want: "a_rm_-rf_x_.mp3"},
		{name: "hidden file", input: ".hidden", want: "hidden"},
		{name: "all stripped", input: "한국어", want: "file"},
		{name: "empty", input: "", want: "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.input))
		})
	}
}

func TestReplaceExt(t *testing.T) {
	assert.Equal(t, "dir/a.mp3", ReplaceExt("dir/a.webm", ".mp3"))
	assert.Equal(t, "a.mp3", ReplaceExt("a", "mp3"))
	assert.Equal(t, "", ReplaceExt("", ".mp3"))
	assert.Equal(t, "dir/archive.tar.mp3", ReplaceExt("dir/archive.tar.gz", ".mp3"))
}
