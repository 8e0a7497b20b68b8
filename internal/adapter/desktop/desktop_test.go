package desktop

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cwygoda/redditwall/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner answers commands from a table and records every call.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	call := strings.TrimSpace(name + " " + strings.Join(args, " "))
	f.calls = append(f.calls, call)
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	return []byte(f.outputs[name]), nil
}

const xrandrTwoScreens = `Screen 0: minimum 320 x 200, current 4480 x 1440, maximum 16384 x 16384
eDP-1 connected primary 1920x1080+0+0 (normal left inverted right x axis y axis) 344mm x 193mm
   1920x1080     60.02*+  59.93    48.02
   1680x1050     59.95    59.88
HDMI-1 connected 2560x1440+1920+0 (normal left inverted right x axis y axis) 597mm x 336mm
   2560x1440     59.95*+
   1920x1080     60.00    50.00
DP-1 disconnected (normal left inverted right x axis y axis)
`

func TestXrandrProbe(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"xrandr": xrandrTwoScreens}}

	size, err := XrandrProbe{Runner: r}.PrimaryScreenSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ImageSize{Width: 1920, Height: 1080}, size)
	assert.Equal(t, []string{"xrandr"}, r.calls)
}

func TestXrandrProbe_NoActiveMode(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"xrandr": "Screen 0: minimum 8 x 8\nVirtual-1 disconnected\n"}}

	_, err := XrandrProbe{Runner: r}.PrimaryScreenSize(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoScreen)
}

func TestXrandrProbe_CommandFails(t *testing.T) {
	r := &fakeRunner{errs: map[string]error{"xrandr": errors.New("Can't open display")}}

	_, err := XrandrProbe{Runner: r}.PrimaryScreenSize(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoScreen)
}

func TestXdpyinfoProbe(t *testing.T) {
	out := "name of display:    :0\nscreen #0:\n  dimensions:    2560x1440 pixels (677x381 millimeters)\n  resolution:    96x96 dots per inch\n"
	r := &fakeRunner{outputs: map[string]string{"xdpyinfo": out}}

	size, err := XdpyinfoProbe{Runner: r}.PrimaryScreenSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ImageSize{Width: 2560, Height: 1440}, size)
}

func TestFirstProbe(t *testing.T) {
	r := &fakeRunner{
		outputs: map[string]string{"xdpyinfo": "  dimensions:    1280x1024 pixels (338x270 millimeters)\n"},
		errs:    map[string]error{"xrandr": errors.New("not installed")},
	}
	probe := FirstProbe{XrandrProbe{Runner: r}, XdpyinfoProbe{Runner: r}}

	size, err := probe.PrimaryScreenSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ImageSize{Width: 1280, Height: 1024}, size)
	assert.Equal(t, []string{"xrandr", "xdpyinfo"}, r.calls)
}

func TestFirstProbe_AllFail(t *testing.T) {
	r := &fakeRunner{errs: map[string]error{
		"xrandr":   errors.New("not installed"),
		"xdpyinfo": errors.New("not installed"),
	}}
	probe := FirstProbe{XrandrProbe{Runner: r}, XdpyinfoProbe{Runner: r}}

	_, err := probe.PrimaryScreenSize(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoScreen)

	_, err = FirstProbe{}.PrimaryScreenSize(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoScreen)
}

func TestGSettings_Current(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"gsettings": "'file:///home/me/Pictures/reddit_wallpapers/a.jpg'\n"}}
	g := GSettings{Runner: r, Schema: "org.gnome.desktop.background", Key: "picture-uri"}

	got, err := g.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "file:///home/me/Pictures/reddit_wallpapers/a.jpg", got)
	assert.Equal(t, []string{"gsettings get org.gnome.desktop.background picture-uri"}, r.calls)
}

func TestGSettings_CurrentQuoting(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want string
	}{
		{"single quotes", "'file:///walls/a.jpg'\n", "file:///walls/a.jpg"},
		{"double quotes around apostrophe", "\"file:///home/u/it's.jpg\"\n", "file:///home/u/it's.jpg"},
		{"escaped double quote", `"file:///walls/say \"hi\".jpg"`, `file:///walls/say "hi".jpg`},
		{"escaped single quote", `'file:///walls/it\'s.jpg'`, "file:///walls/it's.jpg"},
		{"unquoted", "file:///walls/a.jpg", "file:///walls/a.jpg"},
		{"mismatched", `'file:///walls/a.jpg"`, `'file:///walls/a.jpg"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{outputs: map[string]string{"gsettings": tt.out}}
			got, err := GSettings{Runner: r, Schema: "org.gnome.desktop.background", Key: "picture-uri"}.Current(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGSettings_ApostropheWithApplyService(t *testing.T) {
	r := &statefulGSettings{value: "\"file:///walls/it's.jpg\""}
	store := &listStore{dir: "/walls", files: []string{"/walls/it's.jpg", "/walls/b.jpg"}}
	svc := domain.NewApplyService(GSettings{Runner: r, Schema: "org.gnome.desktop.background", Key: "picture-uri"}, store)

	result, err := svc.Apply(context.Background())
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "/walls/b.jpg", result.Applied)
}

func TestGSettings_Set(t *testing.T) {
	r := &fakeRunner{}
	g := GSettings{Runner: r, Schema: "org.gnome.desktop.background", Key: "picture-uri"}

	require.NoError(t, g.Set(context.Background(), "file:///walls/b.jpg"))
	assert.Equal(t, []string{"gsettings set org.gnome.desktop.background picture-uri file:///walls/b.jpg"}, r.calls)
}

func TestGSettings_Error(t *testing.T) {
	r := &fakeRunner{errs: map[string]error{"gsettings": errors.New("No such schema")}}
	g := GSettings{Runner: r, Schema: "org.example", Key: "picture-uri"}

	_, err := g.Current(context.Background())
	assert.Error(t, err)
	assert.Error(t, g.Set(context.Background(), "file:///x.jpg"))
}

func TestGSettings_WithApplyService(t *testing.T) {
	// gsettings stub that remembers the last value set.
	r := &statefulGSettings{value: "'file:///usr/share/backgrounds/warty.png'"}
	store := &listStore{dir: "/walls", files: []string{"/walls/only.jpg"}}
	svc := domain.NewApplyService(GSettings{Runner: r, Schema: "org.gnome.desktop.background", Key: "picture-uri"}, store)

	result, err := svc.Apply(context.Background())
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "/walls/only.jpg", result.Applied)
	assert.Equal(t, "'file:///walls/only.jpg'", r.value)
}

func TestRegistry_Match(t *testing.T) {
	reg := DefaultRegistry(&fakeRunner{})

	tests := []struct {
		env  string
		want string
	}{
		{"ubuntu:GNOME", "gnome"},
		{"GNOME", "gnome"},
		{"X-Cinnamon", "cinnamon"},
		{"Budgie:GNOME", "gnome"},
		{"KDE", "gnome"},
		{"", "gnome"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			b, ok := reg.Match(tt.env)
			require.True(t, ok)
			assert.Equal(t, tt.want, b.Name)
		})
	}
}

func TestRegistry_Empty(t *testing.T) {
	reg := NewRegistry()

	_, ok := reg.Match("GNOME")
	assert.False(t, ok)
}

func TestRegistry_CinnamonSchema(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"gsettings": "'file:///a.jpg'"}}
	b, _ := DefaultRegistry(r).Match("X-Cinnamon")

	_, err := b.Setting.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gsettings get org.cinnamon.desktop.background picture-uri"}, r.calls)
}

func TestCurrentDesktop(t *testing.T) {
	t.Setenv("XDG_CURRENT_DESKTOP", "")
	t.Setenv("DESKTOP_SESSION", "cinnamon")
	assert.Equal(t, "cinnamon", CurrentDesktop())

	t.Setenv("XDG_CURRENT_DESKTOP", "ubuntu:GNOME")
	assert.Equal(t, "ubuntu:GNOME", CurrentDesktop())
}

type statefulGSettings struct {
	value string
}

func (s *statefulGSettings) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	if len(args) == 4 && args[0] == "set" {
		s.value = "'" + args[3] + "'"
		return nil, nil
	}
	return []byte(s.value + "\n"), nil
}

type listStore struct {
	dir   string
	files []string
}

func (l *listStore) Dir() string             { return l.dir }
func (l *listStore) List() ([]string, error) { return append([]string(nil), l.files...), nil }
func (l *listStore) Has(name string) bool    { return false }
func (l *listStore) Save(name string, r io.Reader) (string, error) {
	return "", errors.New("read only")
}

func TestExecRunner(t *testing.T) {
	out, err := ExecRunner{}.Output(context.Background(), "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))

	_, err = ExecRunner{}.Output(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
