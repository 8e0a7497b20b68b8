package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// SimilarityTolerance is the maximum relative aspect ratio deviation
// accepted by IsSimilar.
const SimilarityTolerance = 0.1

// sizeSeparator is the canonical separator titles are normalized to.
const sizeSeparator = "x"

var (
	sizePattern   = regexp.MustCompile(`\d+` + sizeSeparator + `\d+`)
	separatorSubs = strings.NewReplacer("X", sizeSeparator, "×", sizeSeparator, "*", sizeSeparator)
)

// ImageSize is a width/height pair in pixels.
type ImageSize struct {
	Width  int
	Height int
}

// Ratio returns width divided by height.
func (s ImageSize) Ratio() float64 {
	return float64(s.Width) / float64(s.Height)
}

func (s ImageSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// IsSimilar reports whether s has roughly the aspect ratio of target.
// The comparison is s.Ratio()/target.Ratio(), so it is not symmetric.
func (s ImageSize) IsSimilar(target ImageSize) bool {
	return math.Abs(1-s.Ratio()/target.Ratio()) < SimilarityTolerance
}

// ParseTitleSize extracts the first "WIDTHxHEIGHT" token from a post title.
// "X", "×" and "*" are accepted as separators and whitespace is ignored.
// It returns false when the title carries no usable size.
func ParseTitleSize(title string) (ImageSize, bool) {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, separatorSubs.Replace(title))

	token := sizePattern.FindString(normalized)
	if token == "" {
		return ImageSize{}, false
	}

	w, h, ok := strings.Cut(token, sizeSeparator)
	if !ok {
		return ImageSize{}, false
	}
	width, err := strconv.Atoi(w)
	if err != nil || width == 0 {
		return ImageSize{}, false
	}
	height, err := strconv.Atoi(h)
	if err != nil || height == 0 {
		return ImageSize{}, false
	}
	return ImageSize{Width: width, Height: height}, true
}
