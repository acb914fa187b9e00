package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/pathsub/pathsub-go/pkg/log"
	"github.com/pathsub/pathsub-go/pkg/pathtree"
)

// FilterOptions specifies filtering criteria as given on the command line.
type FilterOptions struct {
	Output         string
	Kind           string
	Path           string
	SubscriptionID string
	TimeStart      string
	TimeEnd        string
}

// BuildFilter converts command line options into a trace filter.
func BuildFilter(opts FilterOptions) (log.Filter, error) {
	filter := log.Filter{SubscriptionID: opts.SubscriptionID}

	if opts.Kind != "" {
		k, ok := log.ParseKind(opts.Kind)
		if !ok {
			return filter, fmt.Errorf("invalid kind: %s (must be subscribe, unsubscribe, publish, settle, or error)", opts.Kind)
		}
		filter.Kind = &k
	}

	if opts.Path != "" {
		p, err := pathtree.Parse(opts.Path)
		if err != nil {
			return filter, fmt.Errorf("invalid path %q: %w", opts.Path, err)
		}
		filter.PathPrefix = p
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	return filter, nil
}

// RunFilter copies the events of path matching opts into opts.Output and
// returns how many were written.
func RunFilter(path string, opts FilterOptions) (int, error) {
	filter, err := BuildFilter(opts)
	if err != nil {
		return 0, err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	logger, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read event: %w", err)
		}

		logger.Log(event)
		count++
	}
	return count, nil
}
