package process

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"strings"

	ps "github.com/shirou/gopsutil/v3/process"

	"github.com/marcus-crane/spotilocal/shared"
)

var (
	ErrClientNotRunning    = errors.New("spotify client is not running")
	ErrWebHelperNotRunning = errors.New("spotify webhelper is not running")
)

// Probe reports whether a process with the given executable name is running.
type Probe interface {
	IsRunning(ctx context.Context, name string) bool
}

// SystemProbe looks through the host's process table.
type SystemProbe struct{}

func (SystemProbe) IsRunning(ctx context.Context, name string) bool {
	processes, err := ps.ProcessesWithContext(ctx)
	if err != nil {
		slog.Debug("Failed to list processes", slog.String("error", err.Error()))
		return false
	}
	for _, p := range processes {
		// Processes can exit between listing and inspection
		pname, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if strings.EqualFold(pname, name) {
			return true
		}
	}
	return false
}

// Names holds the executable names to look for on a given platform.
type Names struct {
	Client    string
	WebHelper string // empty when the platform has no separate webhelper process
}

func NamesFor(goos string) Names {
	if goos == "windows" {
		return Names{Client: shared.PROCESS_CLIENT, WebHelper: shared.PROCESS_WEBHELPER}
	}
	return Names{Client: shared.PROCESS_CLIENT_UNIX}
}

// Check confirms the Spotify client, and on Windows its webhelper, are running.
func Check(ctx context.Context, probe Probe) error {
	return CheckNames(ctx, probe, NamesFor(runtime.GOOS))
}

func CheckNames(ctx context.Context, probe Probe, names Names) error {
	if !probe.IsRunning(ctx, names.Client) {
		return ErrClientNotRunning
	}
	if names.WebHelper != "" && !probe.IsRunning(ctx, names.WebHelper) {
		return ErrWebHelperNotRunning
	}
	return nil
}
