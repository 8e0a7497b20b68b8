package domain

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/rs/zerolog/log"
)

// ApplyResult describes the outcome of ApplyService.Apply.
type ApplyResult struct {
	Applied string
	OK      bool
}

// ApplyService activates a random stored wallpaper.
type ApplyService struct {
	setting BackgroundSetting
	store   WallpaperStore
	pick    func(n int) int
}

// ApplyOption configures an ApplyService.
type ApplyOption func(*ApplyService)

// WithPicker replaces the random index picker.
func WithPicker(pick func(n int) int) ApplyOption {
	return func(s *ApplyService) { s.pick = pick }
}

// NewApplyService creates a new ApplyService.
func NewApplyService(setting BackgroundSetting, store WallpaperStore, opts ...ApplyOption) *ApplyService {
	s := &ApplyService{setting: setting, store: store, pick: rand.IntN}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply replaces the current wallpaper with a different stored file.
// A malformed current setting is returned as an error. An empty candidate
// set or a setting that does not stick yields OK == false without error.
func (s *ApplyService) Apply(ctx context.Context) (ApplyResult, error) {
	current, err := s.current(ctx)
	if err != nil {
		return ApplyResult{}, err
	}

	files, err := s.store.List()
	if err != nil {
		return ApplyResult{}, fmt.Errorf("list wallpapers: %w", err)
	}

	if i := slices.Index(files, current); i >= 0 {
		files = slices.Delete(files, i, i+1)
	} else {
		log.Info().Str("current", current).Str("dir", s.store.Dir()).
			Msg("current wallpaper is not in the wallpaper directory")
	}

	if len(files) == 0 {
		log.Warn().Str("dir", s.store.Dir()).Msg("found no new images, can't update wallpaper")
		return ApplyResult{}, nil
	}

	chosen := files[s.pick(len(files))]
	if err := s.setting.Set(ctx, FileURI(chosen)); err != nil {
		return ApplyResult{}, fmt.Errorf("set wallpaper %s: %w", chosen, err)
	}

	after, err := s.current(ctx)
	if err != nil || after != chosen {
		log.Error().Err(err).Str("file", chosen).Str("current", after).
			Msg("could not activate new wallpaper")
		return ApplyResult{Applied: chosen}, nil
	}

	log.Info().Str("file", chosen).Msg("new wallpaper")
	return ApplyResult{Applied: chosen, OK: true}, nil
}

func (s *ApplyService) current(ctx context.Context) (string, error) {
	value, err := s.setting.Current(ctx)
	if err != nil {
		return "", fmt.Errorf("read background setting: %w", err)
	}
	return ParseFileURI(value)
}
