package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pathsub/pathsub-go/pkg/log"
)

// exportRecord is the JSON form of an event. Kind is written by name so
// the output is readable without this package.
type exportRecord struct {
	Timestamp      time.Time      `json:"timestamp"`
	Kind           string         `json:"kind"`
	Path           string         `json:"path"`
	SubscriptionID string         `json:"subscription_id,omitempty"`
	Listeners      int            `json:"listeners,omitempty"`
	Pending        int            `json:"pending,omitempty"`
	Patch          map[string]any `json:"patch,omitempty"`
	Error          string         `json:"error,omitempty"`
	Armed          bool           `json:"armed,omitempty"`
}

func newExportRecord(event log.Event) exportRecord {
	return exportRecord{
		Timestamp:      event.Timestamp.UTC(),
		Kind:           event.Kind.String(),
		Path:           event.PathString(),
		SubscriptionID: event.SubscriptionID,
		Listeners:      event.Listeners,
		Pending:        event.Pending,
		Patch:          event.Patch,
		Error:          event.Error,
		Armed:          event.Armed,
	}
}

// RunExport writes the trace file as JSON lines to output, or to stdout
// when output is empty.
func RunExport(path, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return exportJSONL(reader, w)
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(newExportRecord(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}
