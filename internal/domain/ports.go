package domain

import (
	"context"
	"io"
)

// Post is one entry of a remote image board listing.
type Post struct {
	Title string
	URL   string
}

// PostSource is the driven port for the remote image board.
type PostSource interface {
	TopPosts(ctx context.Context) ([]Post, error)
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// ScreenProbe reports the resolution of the primary display.
type ScreenProbe interface {
	PrimaryScreenSize(ctx context.Context) (ImageSize, error)
}

// BackgroundSetting reads and writes the desktop background setting.
// Values are file:// URIs.
type BackgroundSetting interface {
	Current(ctx context.Context) (string, error)
	Set(ctx context.Context, uri string) error
}

// WallpaperStore is the driven port for the flat wallpaper directory.
type WallpaperStore interface {
	Dir() string
	List() ([]string, error)
	Has(name string) bool
	Save(name string, r io.Reader) (string, error)
}
