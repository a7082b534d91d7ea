package blocker

// Per-platform command tables. App blocking is process termination by name
// pattern; website blocking is hosts-file redirection plus a DNS cache flush
// so the edit takes effect without waiting for the resolver.

func newWindowsBlocker(cfg Config) *execBlocker {
	path := cfg.HostsPath
	if path == "" {
		path = DefaultHostsPath("windows")
	}
	return &execBlocker{
		hosts: newHostsFile(path, cfg.RedirectIP),
		run:   runCommand,
		killArgs: func(app string) []string {
			return []string{"taskkill", "/IM", app + "*", "/F"}
		},
		dnsFlush: [][]string{
			{"ipconfig", "/flushdns"},
		},
	}
}

func newDarwinBlocker(cfg Config) *execBlocker {
	path := cfg.HostsPath
	if path == "" {
		path = DefaultHostsPath("darwin")
	}
	return &execBlocker{
		hosts: newHostsFile(path, cfg.RedirectIP),
		run:   runCommand,
		killArgs: func(app string) []string {
			return []string{"pkill", "-f", app}
		},
		dnsFlush: [][]string{
			{"dscacheutil", "-flushcache"},
			{"killall", "-HUP", "mDNSResponder"},
		},
	}
}

func newLinuxBlocker(cfg Config) *execBlocker {
	path := cfg.HostsPath
	if path == "" {
		path = DefaultHostsPath("linux")
	}
	return &execBlocker{
		hosts: newHostsFile(path, cfg.RedirectIP),
		run:   runCommand,
		killArgs: func(app string) []string {
			return []string{"pkill", "-f", app}
		},
		// Best effort: systemd-resolved systems only, absorbed elsewhere.
		dnsFlush: [][]string{
			{"resolvectl", "flush-caches"},
		},
	}
}
