package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwygoda/redditwall/internal/adapter/desktop"
	"github.com/cwygoda/redditwall/internal/adapter/filestore"
	"github.com/cwygoda/redditwall/internal/adapter/reddit"
	"github.com/cwygoda/redditwall/internal/config"
	"github.com/cwygoda/redditwall/internal/domain"
	"github.com/cwygoda/redditwall/internal/logging"
	"github.com/cwygoda/redditwall/internal/worker"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, fs, err := config.Load(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		logging.SetupConsole(false)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := logging.Setup(cfg.Debug, cfg.LogFile); err != nil {
		log.Fatal().Err(err).Str("file", cfg.LogFile).Msg("failed to open log file")
	}

	if !cfg.HasAction() {
		fs.Usage()
		return
	}

	store, err := filestore.New(cfg.WallpaperDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open wallpaper directory")
	}
	log.Debug().Str("dir", store.Dir()).Str("config", cfg.ConfigPath).Msg("configured")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Info {
		info(store)
	}
	if cfg.Download {
		download(ctx, cfg, store)
	}
	if cfg.NewWallpaper {
		newWallpaper(ctx, cfg, store)
	}
}

func info(store *filestore.Store) {
	count, size, err := store.Usage()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read wallpaper directory")
	}
	fmt.Printf("Images stored in %s: %d (%s)\n", store.Dir(), count, humanize.Bytes(uint64(size)))
}

func download(ctx context.Context, cfg *config.Config, store *filestore.Store) {
	config.ResolveSecrets(&cfg.Credentials)
	if err := cfg.Credentials.Validate(); err != nil {
		log.Fatal().Err(err).Str("config", cfg.ConfigPath).Msg("cannot download")
	}

	runner := desktop.ExecRunner{}
	probe := desktop.FirstProbe{
		desktop.XrandrProbe{Runner: runner},
		desktop.XdpyinfoProbe{Runner: runner},
	}
	screen, err := probe.PrimaryScreenSize(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get screen size")
	}
	log.Info().Stringer("screen", screen).Msg("screen size")

	creds := cfg.Credentials
	client, err := reddit.New(ctx, reddit.Credentials{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Username:     creds.Username,
		Password:     creds.Password,
	}, reddit.Options{
		Subreddit:  cfg.Subreddit,
		TimeFilter: cfg.TimeFilter,
		Limit:      cfg.Limit,
		UserAgent:  cfg.UserAgent,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to reddit")
	}

	report, err := domain.NewFetchService(client, store).Fetch(ctx, screen)
	ev := log.Info()
	if err != nil {
		ev = log.Fatal().Err(err)
	}
	ev.Int("listed", report.Listed).
		Int("not_applicable", report.NotApplicable).
		Int("dissimilar", report.Dissimilar).
		Int("already_stored", report.AlreadyStored).
		Int("downloaded", report.Downloaded).
		Msg("download finished")
}

func newWallpaper(ctx context.Context, cfg *config.Config, store *filestore.Store) {
	env := desktop.CurrentDesktop()
	backend, ok := desktop.DefaultRegistry(desktop.ExecRunner{}).Match(env)
	if !ok {
		log.Fatal().Str("desktop", env).Msg("no desktop backend")
	}
	log.Debug().Str("desktop", env).Str("backend", backend.Name).Msg("desktop backend")

	svc := domain.NewApplyService(backend.Setting, store)

	if cfg.RotateEvery > 0 {
		if err := worker.New(svc, cfg.RotateEvery).Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to change wallpaper")
		}
		return
	}
	if _, err := svc.Apply(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to change wallpaper")
	}
}
