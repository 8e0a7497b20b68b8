package worker

import (
	"context"
	"errors"
	"time"

	"github.com/cwygoda/redditwall/internal/domain"
	"github.com/rs/zerolog/log"
)

// Applier switches the wallpaper once.
type Applier interface {
	Apply(ctx context.Context) (domain.ApplyResult, error)
}

// Rotator applies a new wallpaper at a fixed interval.
type Rotator struct {
	applier  Applier
	interval time.Duration
}

// New creates a new rotator.
func New(applier Applier, interval time.Duration) *Rotator {
	return &Rotator{
		applier:  applier,
		interval: interval,
	}
}

// Run applies a wallpaper right away and then on every tick until ctx is
// cancelled. Failed rounds are logged and the loop keeps going, except for a
// malformed background setting, which is returned.
func (r *Rotator) Run(ctx context.Context) error {
	log.Info().Dur("every", r.interval).Msg("rotator started")
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if err := r.rotate(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("rotator shutting down")
			return nil
		case <-ticker.C:
			if err := r.rotate(ctx); err != nil {
				return err
			}
		}
	}
}

func (r *Rotator) rotate(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}
	res, err := r.applier.Apply(ctx)
	if errors.Is(err, domain.ErrUnexpectedSetting) {
		return err
	}
	if err != nil {
		log.Error().Err(err).Msg("rotate failed")
		return nil
	}
	if res.Applied == "" {
		log.Debug().Msg("nothing to rotate to")
	}
	return nil
}
