package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFileURI(t *testing.T) {
	got, err := ParseFileURI("file:///home/me/Pictures/reddit_wallpapers/a.jpg")
	assert.NoError(t, err)
	assert.Equal(t, "/home/me/Pictures/reddit_wallpapers/a.jpg", got)

	_, err = ParseFileURI("/home/me/a.jpg")
	assert.ErrorIs(t, err, ErrUnexpectedSetting)

	_, err = ParseFileURI("")
	assert.ErrorIs(t, err, ErrUnexpectedSetting)
}

func TestFileURI(t *testing.T) {
	assert.Equal(t, "file:///tmp/b.jpg", FileURI("/tmp/b.jpg"))
}

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://i.redd.it/abc123.jpg", "abc123.jpg"},
		{"https://i.imgur.com/xyz.png?1", "xyz.png"},
		{"https://i.redd.it/abc123.jpg#frag", "abc123.jpg"},
		{"https://i.imgur.com/My%20Photo.jpg", "My Photo.jpg"},
		{"https://www.reddit.com/gallery/", ""},
		{"https://i.redd.it", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, FilenameFromURL(tt.url))
		})
	}
}
