// Package commands implements the pathsub-log CLI commands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pathsub/pathsub-go/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp KIND path [sub:id]
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s %-11s %s", ts, event.Kind.String(), event.PathString())
	if event.SubscriptionID != "" {
		fmt.Fprintf(w, " [sub:%s]", shortenID(event.SubscriptionID))
	}
	fmt.Fprintln(w)

	switch event.Kind {
	case log.KindSubscribe, log.KindUnsubscribe:
		fmt.Fprintf(w, "  Listeners: %d\n", event.Listeners)
	case log.KindPublish:
		if event.Armed {
			fmt.Fprintf(w, "  Pending: %d\n", event.Pending)
		} else {
			fmt.Fprintln(w, "  Unobserved: no subscribers, nothing armed")
		}
		if event.Patch != nil {
			fmt.Fprintf(w, "  Keys: %v\n", sortedKeys(event.Patch))
			if data, err := json.Marshal(event.Patch); err == nil {
				fmt.Fprintf(w, "  Patch: %s\n", data)
			}
		}
	case log.KindSettle:
		fmt.Fprintf(w, "  Delivered: %d\n", event.Listeners)
	case log.KindError:
		fmt.Fprintf(w, "  Message: %s\n", event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenID returns the first 8 characters of a subscription ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RunView prints every event of the trace file at path that matches filter.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		formatEvent(output, event)
	}

	return nil
}
