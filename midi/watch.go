package midi

import (
	"context"
	"slices"
	"time"

	"midistyle/debug"
)

// PortChange is emitted when the set of ports differs from the previous scan
type PortChange struct {
	Added   []string
	Removed []string
	Inputs  []string
	Outputs []string
}

// Watch polls the driver every interval and reports port changes. The first
// scan reports every port as added. The channel is closed when ctx is done.
func Watch(ctx context.Context, interval time.Duration) <-chan PortChange {
	events := make(chan PortChange, 16)
	go func() {
		defer close(events)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var prev []string
		for {
			if ports, err := scan(DefaultTimeout); err != nil {
				debug.Log("port", "watch: %v", err)
			} else {
				change := PortChange{Inputs: portNames(ports.ins), Outputs: portNames(ports.outs)}
				cur := append(slices.Clone(change.Inputs), change.Outputs...)
				change.Added, change.Removed = diffNames(prev, cur)
				prev = cur
				if len(change.Added) > 0 || len(change.Removed) > 0 {
					select {
					case events <- change:
					case <-ctx.Done():
						return
					}
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return events
}

func portNames[P interface{ String() string }](ports []P) []string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names
}

// diffNames compares two port name lists, duplicates counted
func diffNames(prev, cur []string) (added, removed []string) {
	seen := make(map[string]int, len(prev))
	for _, n := range prev {
		seen[n]++
	}
	for _, n := range cur {
		if seen[n] > 0 {
			seen[n]--
			continue
		}
		added = append(added, n)
	}
	for _, n := range prev {
		if seen[n] > 0 {
			seen[n]--
			removed = append(removed, n)
		}
	}
	return added, removed
}
