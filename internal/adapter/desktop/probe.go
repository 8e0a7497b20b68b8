package desktop

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cwygoda/redditwall/internal/domain"
	"github.com/rs/zerolog/log"
)

// XrandrProbe reads the active mode of the first connected output from xrandr.
type XrandrProbe struct {
	Runner Runner
}

// PrimaryScreenSize implements domain.ScreenProbe.
func (p XrandrProbe) PrimaryScreenSize(ctx context.Context) (domain.ImageSize, error) {
	out, err := p.Runner.Output(ctx, "xrandr")
	if err != nil {
		return domain.ImageSize{}, fmt.Errorf("%w: %w", domain.ErrNoScreen, err)
	}
	return parseXrandr(out)
}

// parseXrandr picks the first mode line marked current with "*", e.g.
// "   1920x1080     60.00*+  59.94".
func parseXrandr(out []byte) (domain.ImageSize, error) {
	var modes int
	var size domain.ImageSize
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		s, err := parseDimensions(fields[0])
		if err != nil {
			continue
		}
		if modes == 0 {
			size = s
		}
		modes++
	}
	if modes == 0 {
		return domain.ImageSize{}, fmt.Errorf("%w: no active mode in xrandr output", domain.ErrNoScreen)
	}
	if modes > 1 {
		log.Debug().Int("screens", modes).Stringer("size", size).Msg("multiple screens detected, using first one")
	}
	return size, nil
}

// XdpyinfoProbe reads the X screen dimensions from xdpyinfo.
type XdpyinfoProbe struct {
	Runner Runner
}

// PrimaryScreenSize implements domain.ScreenProbe.
func (p XdpyinfoProbe) PrimaryScreenSize(ctx context.Context) (domain.ImageSize, error) {
	out, err := p.Runner.Output(ctx, "xdpyinfo")
	if err != nil {
		return domain.ImageSize{}, fmt.Errorf("%w: %w", domain.ErrNoScreen, err)
	}

	// "  dimensions:    1920x1080 pixels (508x285 millimeters)"
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 2 && fields[0] == "dimensions:" {
			if s, err := parseDimensions(fields[1]); err == nil {
				return s, nil
			}
		}
	}
	return domain.ImageSize{}, fmt.Errorf("%w: no dimensions in xdpyinfo output", domain.ErrNoScreen)
}

// FirstProbe tries each probe in order and returns the first success.
type FirstProbe []domain.ScreenProbe

// PrimaryScreenSize implements domain.ScreenProbe.
func (probes FirstProbe) PrimaryScreenSize(ctx context.Context) (domain.ImageSize, error) {
	var errs []error
	for _, p := range probes {
		s, err := p.PrimaryScreenSize(ctx)
		if err == nil {
			return s, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return domain.ImageSize{}, domain.ErrNoScreen
	}
	return domain.ImageSize{}, errors.Join(errs...)
}

func parseDimensions(token string) (domain.ImageSize, error) {
	w, h, ok := strings.Cut(token, "x")
	if !ok {
		return domain.ImageSize{}, fmt.Errorf("not a resolution: %q", token)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return domain.ImageSize{}, fmt.Errorf("not a resolution: %q", token)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return domain.ImageSize{}, fmt.Errorf("not a resolution: %q", token)
	}
	return domain.ImageSize{Width: width, Height: height}, nil
}
