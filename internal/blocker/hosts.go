package blocker

import (
	"fmt"
	"os"
	"strings"
)

const defaultRedirectIP = "127.0.0.1"

// hostsFile edits the system hosts file. Blocking appends one
// "<redirect_ip> <host>" line per host; unblocking removes every line that
// mentions one of the hosts. Both operations are idempotent.
type hostsFile struct {
	path       string
	redirectIP string
}

func newHostsFile(path, redirectIP string) *hostsFile {
	if redirectIP == "" {
		redirectIP = defaultRedirectIP
	}
	return &hostsFile{path: path, redirectIP: redirectIP}
}

// block appends entries for hosts not already present in the file.
func (h *hostsFile) block(hosts []string) error {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return err
	}
	content := string(data)

	var add strings.Builder
	for _, host := range hosts {
		if host == "" || strings.Contains(content, host) {
			continue
		}
		fmt.Fprintf(&add, "\n%s %s", h.redirectIP, host)
	}
	if add.Len() == 0 {
		return nil
	}

	f, err := os.OpenFile(h.path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(add.String()); err != nil {
		return err
	}
	return f.Sync()
}

// unblock rewrites the file without any line mentioning one of hosts.
func (h *hostsFile) unblock(hosts []string) error {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return err
	}

	lines := strings.Split(string(data), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if mentionsAny(line, hosts) {
			continue
		}
		kept = append(kept, line)
	}

	info, err := os.Stat(h.path)
	if err != nil {
		return err
	}
	return os.WriteFile(h.path, []byte(strings.Join(kept, "\n")), info.Mode().Perm())
}

func mentionsAny(line string, hosts []string) bool {
	for _, host := range hosts {
		if host != "" && strings.Contains(line, host) {
			return true
		}
	}
	return false
}

// Preflight verifies the hosts file at path is writable. The daemon refuses
// to start blocking when it cannot later undo the block.
func Preflight(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("hosts file not writable (run elevated?): %w", err)
	}
	return f.Close()
}

// DefaultHostsPath returns the platform's hosts file location.
func DefaultHostsPath(goos string) string {
	if goos == "windows" {
		return `C:\Windows\System32\drivers\etc\hosts`
	}
	return "/etc/hosts"
}
