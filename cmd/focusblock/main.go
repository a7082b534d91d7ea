package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"focusblock/internal/blocker"
	"focusblock/internal/config"
	"focusblock/internal/ics"
	appLog "focusblock/internal/log"
	"focusblock/internal/registry"
	"focusblock/internal/scheduler"
)

type flagConfig struct {
	configPath string
	feedURL    string
	dryRun     bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.Level(conf.LogLevel))

	// CLI -url overrides the config feed if provided.
	if flags.feedURL != "" {
		conf.ICSURL = flags.feedURL
	}
	if conf.ICSURL == "" {
		appLog.Error("no calendar feed configured", fmt.Errorf("set ics_url in %s or pass -url", flags.configPath))
		os.Exit(1)
	}

	loc := time.Local
	if conf.Timezone != "" {
		loc, err = time.LoadLocation(conf.Timezone)
		if err != nil {
			appLog.Error("invalid timezone in config", err, "timezone", conf.Timezone)
			os.Exit(1)
		}
	}

	hostsPath := conf.HostsPath
	if hostsPath == "" {
		hostsPath = blocker.DefaultHostsPath(runtime.GOOS)
	}

	blk, err := blocker.New(blocker.Config{
		HostsPath:  hostsPath,
		RedirectIP: conf.RedirectIP,
		DryRun:     flags.dryRun,
	})
	if err != nil {
		appLog.Error("failed to initialize enforcement", err, "platform", runtime.GOOS)
		os.Exit(1)
	}

	// Refuse to start blocking anything we could not later undo.
	if !flags.dryRun {
		if err := blocker.Preflight(hostsPath); err != nil {
			appLog.Error("enforcement preflight failed", err, "hosts_path", hostsPath)
			os.Exit(1)
		}
	}

	appLog.Info("focusblock starting",
		"feed", ics.RedactURL(conf.ICSURL),
		"timezone", loc.String(),
		"tick_seconds", conf.TickSeconds,
		"refresh", conf.RefreshCron,
		"hosts_path", hostsPath,
		"dry_run", flags.dryRun,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, conf, blk, loc); err != nil {
		appLog.Error("focusblock exited with error", err)
		os.Exit(1)
	}
	appLog.Info("focusblock exiting")
}

// run executes scheduler sessions until ctx is canceled. Each session builds
// an immutable registry of today's tasks and polls against it; the refresh
// cron ends the session (releasing every block through the scheduler's
// normal cleanup path) and a fresh feed fetch starts the next one.
func run(ctx context.Context, conf *config.Config, blk blocker.Blocker, loc *time.Location) error {
	fetcher := ics.NewFetcher()
	tick := time.Duration(conf.TickSeconds) * time.Second

	for {
		reg, err := buildRegistry(ctx, fetcher, conf.ICSURL, loc)
		if err != nil {
			return err
		}

		sessionCtx, endSession := context.WithCancel(ctx)

		cr := cron.New(cron.WithLocation(loc))
		if _, err := cr.AddFunc(conf.RefreshCron, func() {
			appLog.Info("refresh schedule fired, rebuilding task set", "schedule", conf.RefreshCron)
			endSession()
		}); err != nil {
			endSession()
			return fmt.Errorf("invalid refresh schedule %q: %w", conf.RefreshCron, err)
		}
		cr.Start()

		err = scheduler.New(reg, blk, scheduler.Config{Tick: tick}).Run(sessionCtx)

		<-cr.Stop().Done()
		endSession()

		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// buildRegistry runs the fetch -> parse -> expand -> filter pipeline once.
// Any failure aborts the run: blocking never starts without a validated
// schedule.
func buildRegistry(ctx context.Context, fetcher *ics.Fetcher, url string, loc *time.Location) (*registry.Registry, error) {
	body, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	templates, err := ics.Parse(body, loc)
	if err != nil {
		return nil, err
	}

	now := time.Now().In(loc)
	occurrences, err := ics.ExpandAll(templates, ics.WeekHorizon(now))
	if err != nil {
		return nil, err
	}

	today := registry.FilterToday(occurrences, now)
	appLog.Info("task registry built",
		"templates", len(templates),
		"occurrences", len(occurrences),
		"today", len(today),
	)
	return registry.New(today), nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/focusblock/config.yaml", "Path to config file")
	flag.StringVar(&cfg.feedURL, "url", "", "Calendar feed URL (overrides config if set)")
	flag.BoolVar(&cfg.dryRun, "dry-run", false, "Log enforcement actions without applying them")

	flag.Parse()

	return cfg
}
