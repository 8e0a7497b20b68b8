package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "redditwall"

// Credentials are the four Reddit script-app secrets.
type Credentials struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Username     string `toml:"username"`
	Password     string `toml:"password"`
}

// Config holds application configuration.
type Config struct {
	// Actions, evaluated in this order.
	Info         bool
	Download     bool
	NewWallpaper bool

	RotateEvery  time.Duration
	ConfigPath   string
	WallpaperDir string
	Subreddit    string
	TimeFilter   string
	Limit        int
	UserAgent    string
	Debug        bool
	LogFile      string
	Credentials  Credentials
}

// fileConfig is the layout of the TOML config file.
type fileConfig struct {
	WallpaperDir string      `toml:"wallpaper_dir"`
	Subreddit    string      `toml:"subreddit"`
	TimeFilter   string      `toml:"time_filter"`
	Limit        int         `toml:"limit"`
	UserAgent    string      `toml:"user_agent"`
	LogFile      string      `toml:"log_file"`
	Reddit       Credentials `toml:"reddit"`
}

// HasAction reports whether any of the action flags is set.
func (c *Config) HasAction() bool {
	return c.Info || c.Download || c.NewWallpaper
}

// DefaultConfigPath returns the config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, appName, "config.toml")
}

// DefaultWallpaperDir returns the default wallpaper directory.
func DefaultWallpaperDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Pictures", "reddit_wallpapers")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}

// NewFlagSet declares all command line flags on a new FlagSet bound to cfg.
func NewFlagSet(cfg *Config, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [--info] [--download] [--new-wallpaper] [options]\n\n", appName)
		fmt.Fprintln(fs.Output(), "Download landscape wallpapers from Reddit that fit the main screen and rotate them.")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}

	fs.BoolVar(&cfg.Info, "info", false, "Print information about stored images")
	fs.BoolVar(&cfg.Download, "download", false, "Download new images from Reddit that fit to the main screen")
	fs.BoolVar(&cfg.NewWallpaper, "new-wallpaper", false, "Randomly choose one of the downloaded images and use it as wallpaper")
	fs.DurationVar(&cfg.RotateEvery, "every", 0, "With --new-wallpaper, keep changing the wallpaper at this interval")
	fs.StringVar(&cfg.ConfigPath, "config", "", "Config file path (default "+DefaultConfigPath()+")")
	fs.StringVar(&cfg.WallpaperDir, "dir", "", "Wallpaper directory (default "+DefaultWallpaperDir()+")")
	fs.StringVar(&cfg.Subreddit, "subreddit", "", "Subreddit to download from (default EarthPorn)")
	fs.IntVar(&cfg.Limit, "limit", 0, "Maximum number of posts to look at (default 100)")
	fs.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Also write logs to this file, rotated by size")
	return fs
}

// Load parses args, then fills unset values from the environment, the TOML
// config file and defaults, in that order of precedence.
func Load(args []string, output io.Writer) (*Config, *flag.FlagSet, error) {
	cfg := &Config{}
	fs := NewFlagSet(cfg, output)
	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}

	// Env overrides
	envDefault(&cfg.ConfigPath, "REDDITWALL_CONFIG")
	envDefault(&cfg.WallpaperDir, "REDDITWALL_DIR")
	envDefault(&cfg.Subreddit, "REDDITWALL_SUBREDDIT")
	envDefault(&cfg.LogFile, "REDDITWALL_LOG_FILE")
	if cfg.Limit == 0 {
		if limit := os.Getenv("REDDITWALL_LIMIT"); limit != "" {
			if n, err := strconv.Atoi(limit); err == nil {
				cfg.Limit = n
			}
		}
	}
	envDefault(&cfg.Credentials.ClientID, "REDDIT_CLIENT_ID")
	envDefault(&cfg.Credentials.ClientSecret, "REDDIT_CLIENT_SECRET")
	envDefault(&cfg.Credentials.Username, "REDDIT_USERNAME")
	envDefault(&cfg.Credentials.Password, "REDDIT_PASSWORD")

	explicit := cfg.ConfigPath != ""
	if !explicit {
		cfg.ConfigPath = DefaultConfigPath()
	}
	cfg.ConfigPath = ExpandPath(cfg.ConfigPath)

	fc, err := readFile(cfg.ConfigPath, explicit)
	if err != nil {
		return nil, fs, err
	}
	cfg.merge(fc)

	if cfg.WallpaperDir == "" {
		cfg.WallpaperDir = DefaultWallpaperDir()
	}
	cfg.WallpaperDir = ExpandPath(cfg.WallpaperDir)
	if cfg.Subreddit == "" {
		cfg.Subreddit = "EarthPorn"
	}
	if cfg.TimeFilter == "" {
		cfg.TimeFilter = "all"
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Wallpaper downloader"
	}
	if cfg.LogFile != "" {
		cfg.LogFile = ExpandPath(cfg.LogFile)
	}

	return cfg, fs, nil
}

// readFile decodes the TOML config file. A missing file is only an error
// when its path was given explicitly.
func readFile(path string, mustExist bool) (fileConfig, error) {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return fc, nil
		}
		return fc, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fc, fmt.Errorf("read config %s: unknown keys %v", path, undecoded)
	}
	return fc, nil
}

func (c *Config) merge(fc fileConfig) {
	setDefault(&c.WallpaperDir, fc.WallpaperDir)
	setDefault(&c.Subreddit, fc.Subreddit)
	setDefault(&c.TimeFilter, fc.TimeFilter)
	setDefault(&c.UserAgent, fc.UserAgent)
	setDefault(&c.LogFile, fc.LogFile)
	if c.Limit == 0 {
		c.Limit = fc.Limit
	}
	setDefault(&c.Credentials.ClientID, fc.Reddit.ClientID)
	setDefault(&c.Credentials.ClientSecret, fc.Reddit.ClientSecret)
	setDefault(&c.Credentials.Username, fc.Reddit.Username)
	setDefault(&c.Credentials.Password, fc.Reddit.Password)
}

func envDefault(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

func setDefault(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
