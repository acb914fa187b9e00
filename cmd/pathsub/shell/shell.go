// Package shell provides the interactive command line for pathsub.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"gopkg.in/yaml.v3"

	"github.com/pathsub/pathsub-go/pkg/pathtree"
	"github.com/pathsub/pathsub-go/pkg/subscription"
)

// Shell reads commands and applies them to a store.
type Shell struct {
	store *subscription.Store
	rl    *readline.Instance

	outMu sync.Mutex
	out   io.Writer
	err   io.Writer

	// Subscriptions created from this shell, in creation order.
	subsMu sync.Mutex
	subs   []*subscription.Subscription
}

// New creates a shell reading from the terminal.
func New(store *subscription.Store) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "pathsub> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	sh := NewWithOutput(store, rl.Stdout(), rl.Stderr())
	sh.rl = rl
	return sh, nil
}

// NewWithOutput creates a shell that is driven through Execute and writes
// to out and errOut.
func NewWithOutput(store *subscription.Store, out, errOut io.Writer) *Shell {
	return &Shell{
		store: store,
		out:   out,
		err:   errOut,
	}
}

// Stderr returns a writer that does not interfere with the prompt.
func (s *Shell) Stderr() io.Writer {
	return s.err
}

// Close releases the terminal.
func (s *Shell) Close() {
	if s.rl != nil {
		s.rl.Close()
	}
}

// Run reads commands until EOF, "quit" or ctx is cancelled.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			s.printf("Exiting...\n")
			cancel()
			return
		}

		if quit := s.Execute(line); quit {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns true when the shell should
// exit.
func (s *Shell) Execute(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "help", "?":
		s.printHelp()
	case "sub", "s":
		s.cmdSubscribe(rest)
	case "unsub", "u":
		s.cmdUnsubscribe(rest)
	case "pub", "p":
		s.cmdPublish(rest)
	case "get", "g":
		s.cmdGet(rest)
	case "subs", "l":
		s.cmdList()
	case "dump", "d":
		s.cmdGet("")
	case "quit", "exit", "q":
		return true
	default:
		s.printf("Unknown command: %s (type 'help')\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	s.printf(`Commands:
  sub <path>              Subscribe and print settled values
  unsub <id-prefix>       Remove a subscription made here
  pub <path> <mapping>    Merge a YAML mapping, e.g. pub user {age: 2}
  get [path]              Print the value at path (whole tree if omitted)
  subs                    List subscriptions made here
  dump                    Print the whole tree
  help                    Show this help
  quit                    Exit
`)
}

func (s *Shell) cmdSubscribe(arg string) {
	path, err := pathtree.Parse(arg)
	if err != nil {
		s.printf("Error: %v\n", err)
		return
	}

	sub := s.store.Subscribe(path, s.notify)

	s.subsMu.Lock()
	s.subs = append(s.subs, sub)
	s.subsMu.Unlock()

	s.printf("Subscribed %s to %s\n", shortID(sub.ID), path)
}

func (s *Shell) cmdUnsubscribe(arg string) {
	if arg == "" {
		s.printf("Usage: unsub <id-prefix>\n")
		return
	}

	s.subsMu.Lock()
	var matches []int
	for i, sub := range s.subs {
		if strings.HasPrefix(sub.ID, arg) {
			matches = append(matches, i)
		}
	}
	if len(matches) != 1 {
		s.subsMu.Unlock()
		if len(matches) == 0 {
			s.printf("No subscription matches %q\n", arg)
		} else {
			s.printf("%d subscriptions match %q, use a longer prefix\n", len(matches), arg)
		}
		return
	}
	sub := s.subs[matches[0]]
	s.subs = append(s.subs[:matches[0]], s.subs[matches[0]+1:]...)
	s.subsMu.Unlock()

	sub.Unsubscribe()
	s.printf("Unsubscribed %s from %s\n", shortID(sub.ID), sub.Path())
}

func (s *Shell) cmdPublish(arg string) {
	pathArg, patchArg, _ := strings.Cut(arg, " ")
	if pathArg == "" || strings.TrimSpace(patchArg) == "" {
		s.printf("Usage: pub <path> <mapping>\n")
		return
	}

	path, err := pathtree.Parse(pathArg)
	if err != nil {
		s.printf("Error: %v\n", err)
		return
	}
	patch, err := parsePatch(patchArg)
	if err != nil {
		s.printf("Error: %v\n", err)
		return
	}

	if err := s.store.Publish(path, patch); err != nil {
		s.printf("Error: %v\n", err)
		return
	}
	s.printf("Published %d key(s) to %s\n", len(patch), path)
}

func (s *Shell) cmdGet(arg string) {
	path, err := pathtree.Parse(arg)
	if err != nil {
		s.printf("Error: %v\n", err)
		return
	}

	value, found := s.store.Get(path)
	if !found {
		s.printf("%s: (absent)\n", path)
		return
	}
	s.printf("%s:\n%s", path, render(value))
}

func (s *Shell) cmdList() {
	s.subsMu.Lock()
	subs := make([]*subscription.Subscription, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	if len(subs) == 0 {
		s.printf("No subscriptions\n")
		return
	}

	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Path().String() < subs[j].Path().String()
	})
	for _, sub := range subs {
		state := "active"
		if !sub.IsActive() {
			state = "inactive"
		}
		s.printf("  %s  %-24s %s\n", shortID(sub.ID), sub.Path(), state)
	}
}

// notify is the callback for every subscription made from the shell.
func (s *Shell) notify(value any, sub *subscription.Subscription) {
	s.printf("[%s] %s changed:\n%s", shortID(sub.ID), sub.Path(), render(value))
}

func (s *Shell) printf(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// parsePatch parses a YAML mapping such as "{age: 2, name: Bo}".
func parsePatch(input string) (map[string]any, error) {
	var patch map[string]any
	if err := yaml.Unmarshal([]byte(input), &patch); err != nil {
		return nil, fmt.Errorf("invalid mapping: %w", err)
	}
	if patch == nil {
		return nil, fmt.Errorf("invalid mapping: %q is empty", input)
	}
	return pathtree.NormalizeTree(patch), nil
}

// render formats value as indented YAML.
func render(value any) string {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Sprintf("  %v\n", value)
	}
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// shortID returns the first 8 characters of a subscription ID.
func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
