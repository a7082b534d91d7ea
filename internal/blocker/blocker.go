// Package blocker is the enforcement boundary: it terminates processes and
// rewrites the hosts file. All three operations are idempotent and absorb
// per-target failures internally; the scheduler never sees them fail.
package blocker

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"time"

	appLog "focusblock/internal/log"
)

// Blocker performs the platform-specific blocking actions. Calls are
// synchronous: they return once the action is applied or skipped.
type Blocker interface {
	BlockApps(apps []string)
	BlockWebsites(hosts []string)
	UnblockWebsites(hosts []string)
}

// Config selects the hosts file and redirect target. Zero values pick the
// platform defaults.
type Config struct {
	HostsPath  string
	RedirectIP string

	// DryRun logs every action instead of enforcing it.
	DryRun bool
}

// cmdTimeout bounds each spawned enforcement command so a hung pkill or
// ipconfig cannot stall the polling loop forever.
const cmdTimeout = 10 * time.Second

// runner executes one command line. Swapped out in tests.
type runner func(argv []string) error

// execBlocker drives one platform's command set. The platforms differ only
// in their kill and DNS-flush command lines and hosts file location, so a
// single variant type parameterized by those tables covers all of them.
type execBlocker struct {
	hosts    *hostsFile
	run      runner
	killArgs func(app string) []string
	dnsFlush [][]string
}

// New selects the enforcement variant for the current platform.
func New(cfg Config) (Blocker, error) {
	return newForOS(runtime.GOOS, cfg)
}

func newForOS(goos string, cfg Config) (Blocker, error) {
	if cfg.DryRun {
		return &dryRunBlocker{}, nil
	}

	var b *execBlocker
	switch goos {
	case "windows":
		b = newWindowsBlocker(cfg)
	case "darwin":
		b = newDarwinBlocker(cfg)
	case "linux":
		b = newLinuxBlocker(cfg)
	default:
		return nil, fmt.Errorf("unsupported platform %q", goos)
	}
	return b, nil
}

func (b *execBlocker) BlockApps(apps []string) {
	for _, app := range apps {
		if app == "" {
			continue
		}
		if err := b.run(b.killArgs(app)); err != nil {
			// Most commonly: no such process running. Safe no-op.
			appLog.Debug("app kill skipped", "app", app, "err", err)
		}
	}
}

func (b *execBlocker) BlockWebsites(hosts []string) {
	if len(hosts) == 0 {
		return
	}
	if err := b.hosts.block(hosts); err != nil {
		appLog.Error("failed to update hosts file", err, "path", b.hosts.path)
		return
	}
	b.flushDNS()
}

func (b *execBlocker) UnblockWebsites(hosts []string) {
	if len(hosts) == 0 {
		return
	}
	if err := b.hosts.unblock(hosts); err != nil {
		appLog.Error("failed to restore hosts file", err, "path", b.hosts.path)
		return
	}
	b.flushDNS()
}

func (b *execBlocker) flushDNS() {
	for _, argv := range b.dnsFlush {
		if err := b.run(argv); err != nil {
			appLog.Debug("dns flush command failed", "cmd", argv[0], "err", err)
		}
	}
}

// runCommand runs argv with discarded output under cmdTimeout.
func runCommand(argv []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}

// dryRunBlocker logs what would happen and touches nothing.
type dryRunBlocker struct{}

func (*dryRunBlocker) BlockApps(apps []string) {
	appLog.Info("dry-run: would kill apps", "apps", apps)
}

func (*dryRunBlocker) BlockWebsites(hosts []string) {
	appLog.Info("dry-run: would block websites", "websites", hosts)
}

func (*dryRunBlocker) UnblockWebsites(hosts []string) {
	appLog.Info("dry-run: would unblock websites", "websites", hosts)
}
