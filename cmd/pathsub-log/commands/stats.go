package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pathsub/pathsub-go/pkg/log"
	"github.com/pathsub/pathsub-go/pkg/pathtree"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents  int
	EventsByKind map[log.Kind]int

	// Paths is keyed by pathtree.Path.Key, so segment lists that render
	// alike (["a/b"] and ["a","b"]) stay apart.
	Paths map[string]*PathStats
	Errors       int
	TimeRange    struct {
		Start time.Time
		End   time.Time
	}
}

// PathStats holds statistics for a single path.
type PathStats struct {
	Path        pathtree.Path
	FirstSeen   time.Time
	LastSeen    time.Time
	Events      int
	Publishes   int
	Armed       int
	Settlements int
	Delivered   int
}

// Unobserved is the number of publishes that merged data at a path
// without subscribers.
func (p *PathStats) Unobserved() int {
	return p.Publishes - p.Armed
}

// Coalesced is the number of armed publishes that did not get their own
// settlement.
func (p *PathStats) Coalesced() int {
	if p.Armed < p.Settlements {
		return 0
	}
	return p.Armed - p.Settlements
}

// CollectStats reads every event of the trace file at path.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByKind: make(map[log.Kind]int),
		Paths:        make(map[string]*PathStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByKind[event.Kind]++

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		path := pathtree.Path(event.Path)
		key := path.Key()
		ps, ok := stats.Paths[key]
		if !ok {
			ps = &PathStats{
				Path:      path.Clone(),
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
			}
			stats.Paths[key] = ps
		}
		ps.Events++
		if event.Timestamp.After(ps.LastSeen) {
			ps.LastSeen = event.Timestamp
		}

		switch event.Kind {
		case log.KindPublish:
			ps.Publishes++
			if event.Armed {
				ps.Armed++
			}
		case log.KindSettle:
			ps.Settlements++
			ps.Delivered += event.Listeners
		case log.KindError:
			stats.Errors++
		}
	}

	return stats, nil
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== pathsub Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Kind:")
	for _, kind := range []log.Kind{log.KindSubscribe, log.KindUnsubscribe, log.KindPublish, log.KindSettle, log.KindError} {
		if count := stats.EventsByKind[kind]; count > 0 {
			fmt.Fprintf(w, "  %-13s %d\n", kind.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Paths: %d\n", len(stats.Paths))
	if len(stats.Paths) > 0 {
		paths := make([]*PathStats, 0, len(stats.Paths))
		for _, ps := range stats.Paths {
			paths = append(paths, ps)
		}
		sort.Slice(paths, func(i, j int) bool {
			return paths[i].Path.Key() < paths[j].Path.Key()
		})

		fmt.Fprintln(w)
		for _, ps := range paths {
			fmt.Fprintf(w, "  %q: %d events, %d publishes, %d unobserved, %d settlements, %d coalesced, %d delivered\n",
				[]string(ps.Path), ps.Events, ps.Publishes, ps.Unobserved(), ps.Settlements, ps.Coalesced(), ps.Delivered)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
