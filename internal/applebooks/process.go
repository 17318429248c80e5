package applebooks

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

// IsRunning reports whether a process with exactly the given name is alive.
// Processes that vanish or deny access while being inspected are ignored.
func IsRunning(ctx context.Context, name string) (bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("applebooks: list processes: %w", err)
	}
	for _, p := range procs {
		n, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if n == name {
			return true, nil
		}
	}
	return false, nil
}
