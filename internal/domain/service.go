package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var (
	ErrNoScreen          = errors.New("no screen information")
	ErrUnexpectedSetting = errors.New("unexpected background setting")
)

// FetchReport counts what happened to each listed post.
type FetchReport struct {
	Listed        int
	NotApplicable int
	Dissimilar    int
	AlreadyStored int
	Downloaded    int
}

// FetchService downloads posts whose title size matches a target size.
type FetchService struct {
	source PostSource
	store  WallpaperStore
}

// NewFetchService creates a new FetchService.
func NewFetchService(source PostSource, store WallpaperStore) *FetchService {
	return &FetchService{source: source, store: store}
}

// Fetch lists posts and stores every image similar to target that is not
// stored yet. Posts are handled in listing order; the first download error
// aborts the run.
func (s *FetchService) Fetch(ctx context.Context, target ImageSize) (FetchReport, error) {
	var report FetchReport

	posts, err := s.source.TopPosts(ctx)
	if err != nil {
		return report, fmt.Errorf("list posts: %w", err)
	}
	report.Listed = len(posts)

	for _, post := range posts {
		size, ok := ParseTitleSize(post.Title)
		if !ok {
			log.Debug().Str("title", post.Title).Msg("can't parse size from title")
			report.NotApplicable++
			continue
		}
		if !size.IsSimilar(target) {
			log.Debug().Stringer("size", size).Stringer("target", target).Msg("aspect ratio too different")
			report.Dissimilar++
			continue
		}

		name := FilenameFromURL(post.URL)
		if name == "" {
			log.Debug().Str("url", post.URL).Msg("no file name in url")
			report.NotApplicable++
			continue
		}
		if s.store.Has(name) {
			log.Info().Str("file", name).Msg("already exists, not downloading again")
			report.AlreadyStored++
			continue
		}

		log.Info().Str("url", post.URL).Msg("downloading")
		if err := s.download(ctx, post.URL, name); err != nil {
			return report, fmt.Errorf("download %s: %w", post.URL, err)
		}
		report.Downloaded++
	}
	return report, nil
}

func (s *FetchService) download(ctx context.Context, url, name string) error {
	body, err := s.source.Open(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	_, err = s.store.Save(name, body)
	return err
}
