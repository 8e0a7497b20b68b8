package domain

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// FileURIPrefix is the scheme prefix desktop settings use for local files.
const FileURIPrefix = "file://"

// FileURI returns the setting value referencing a local file.
func FileURI(p string) string {
	return FileURIPrefix + p
}

// ParseFileURI strips the file:// prefix from a desktop setting value.
func ParseFileURI(value string) (string, error) {
	if !strings.HasPrefix(value, FileURIPrefix) {
		return "", fmt.Errorf("%w: %q", ErrUnexpectedSetting, value)
	}
	return strings.TrimPrefix(value, FileURIPrefix), nil
}

// FilenameFromURL returns the last path segment of an image URL, or ""
// when the URL has none.
func FilenameFromURL(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	name := path.Base(p)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
