// Package status gathers host health for the /status command.
package status

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

// Runner executes a probe command and returns its trimmed output.
type Runner func(ctx context.Context, name string, args ...string) string

// Collector implements ports.StatusCollector with cheap local probes.
type Collector struct {
	toolsToCheck []string
	run          Runner
}

// NewCollector builds a collector probing the real host.
func NewCollector() *Collector {
	return &Collector{
		toolsToCheck: []string{"git", "go", "node", "npm", "python3", "docker", "make", "screencapture"},
		run:          runCmd,
	}
}

// Collect implements ports.StatusCollector. Probes that fail leave their
// field empty.
func (c *Collector) Collect(ctx context.Context) (domain.HostStatus, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = c.run(ctx, "hostname")
	}

	st := domain.HostStatus{
		Hostname:       hostname,
		OS:             runtime.GOOS,
		User:           os.Getenv("USER"),
		Uptime:         c.run(ctx, "uptime"),
		AvailableTools: c.detectTools(),
	}
	if runtime.GOOS == "darwin" {
		st.Battery = batteryLine(c.run(ctx, "pmset", "-g", "batt"))
	}
	return st, nil
}

func (c *Collector) detectTools() []string {
	var available []string
	for _, tool := range c.toolsToCheck {
		if _, err := exec.LookPath(tool); err == nil {
			available = append(available, tool)
		}
	}
	sort.Strings(available)
	return available
}

// batteryLine keeps the interesting line of `pmset -g batt` output.
func batteryLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "%") {
			return strings.TrimSpace(line)
		}
	}
	return strings.TrimSpace(out)
}

func runCmd(ctx context.Context, name string, args ...string) string {
	cctx, cancel := context.WithTimeout(ctx, domain.StatusProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(cctx, name, args...).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

var _ ports.StatusCollector = (*Collector)(nil)
