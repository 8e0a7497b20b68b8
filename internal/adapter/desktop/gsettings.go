package desktop

import (
	"context"
	"strings"
)

// GSettings reads and writes a background key through the gsettings CLI.
type GSettings struct {
	Runner Runner
	Schema string
	Key    string
}

// Current returns the setting value with gsettings' quoting removed.
// gsettings prints strings in single quotes, or in double quotes when the
// value itself contains a single quote.
func (g GSettings) Current(ctx context.Context) (string, error) {
	out, err := g.Runner.Output(ctx, "gsettings", "get", g.Schema, g.Key)
	if err != nil {
		return "", err
	}
	return unquote(strings.TrimSpace(string(out))), nil
}

// Set writes uri to the setting.
func (g GSettings) Set(ctx context.Context, uri string) error {
	_, err := g.Runner.Output(ctx, "gsettings", "set", g.Schema, g.Key, uri)
	return err
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '\'' || v[0] == '"') && v[len(v)-1] == v[0] {
		inner := v[1 : len(v)-1]
		if v[0] == '\'' {
			return strings.ReplaceAll(inner, `\'`, "'")
		}
		return strings.ReplaceAll(inner, `\"`, `"`)
	}
	return v
}
