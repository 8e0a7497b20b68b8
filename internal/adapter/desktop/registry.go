package desktop

import (
	"os"
	"strings"

	"github.com/cwygoda/redditwall/internal/domain"
)

// Backend is a named background setting for a family of desktops.
type Backend struct {
	Name    string
	Matches []string
	Setting domain.BackgroundSetting
}

// Match reports whether desktopEnv names one of the backend's desktops.
func (b Backend) Match(desktopEnv string) bool {
	env := strings.ToLower(desktopEnv)
	for _, m := range b.Matches {
		if strings.Contains(env, m) {
			return true
		}
	}
	return false
}

// Registry holds the known desktop backends.
type Registry struct {
	backends []Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a registry with the GNOME and Cinnamon backends.
func DefaultRegistry(r Runner) *Registry {
	reg := NewRegistry()
	reg.Register(Backend{
		Name:    "gnome",
		Matches: []string{"gnome", "unity", "ubuntu", "pop", "budgie"},
		Setting: GSettings{Runner: r, Schema: "org.gnome.desktop.background", Key: "picture-uri"},
	})
	reg.Register(Backend{
		Name:    "cinnamon",
		Matches: []string{"cinnamon"},
		Setting: GSettings{Runner: r, Schema: "org.cinnamon.desktop.background", Key: "picture-uri"},
	})
	return reg
}

// Register adds a backend. The first registered backend is the fallback.
func (r *Registry) Register(b Backend) {
	r.backends = append(r.backends, b)
}

// Match returns the first backend matching desktopEnv, falling back to the
// first registered one. It returns false only when the registry is empty.
func (r *Registry) Match(desktopEnv string) (Backend, bool) {
	for _, b := range r.backends {
		if b.Match(desktopEnv) {
			return b, true
		}
	}
	if len(r.backends) == 0 {
		return Backend{}, false
	}
	return r.backends[0], true
}

// CurrentDesktop returns the desktop name from XDG_CURRENT_DESKTOP or
// DESKTOP_SESSION.
func CurrentDesktop() string {
	if env := os.Getenv("XDG_CURRENT_DESKTOP"); env != "" {
		return env
	}
	return os.Getenv("DESKTOP_SESSION")
}
