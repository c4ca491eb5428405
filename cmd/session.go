package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/brettbedarf/chatfs/commands"
	"github.com/brettbedarf/chatfs/filesystem"
)

const (
	welcomeText     = "Welcome to chatfs! Type 'help' to see available commands, ':quit' to leave."
	metaHelpText    = "Unknown meta command. Available: :cd [path], :pwd, :open <path>, :close, :files [query], :quit"
	maxLineBytes    = 1 << 20
	maxSuggestions  = 10
	noFileOpenText  = "No file is open."
	noMatchingFiles = "No matching files."
)

// sessionFS is what the session reads directly, outside the command grammar
type sessionFS interface {
	Stat(p string) (filesystem.NodeInfo, error)
	ReadFile(p string) (string, error)
	FilePaths() []string
}

// session is the line-oriented presentation layer. It owns the current
// directory and the open file; the namespace only tells it what changed.
type session struct {
	fs  sessionFS
	in  *commands.Interpreter
	out io.Writer

	mu   sync.Mutex
	cwd  string
	open string
}

func newSession(out io.Writer) *session {
	return &session{out: out, cwd: filesystem.RootPath}
}

// attach completes construction once the namespace exists, since the
// namespace needs the session's change hook first.
func (s *session) attach(fs sessionFS, in *commands.Interpreter) {
	s.fs = fs
	s.in = in
}

func (s *session) interpreterOptions() []commands.Option {
	return []commands.Option{
		commands.WithCurrentPath(s.currentPath),
		commands.WithOpenFile(s.isOpen),
	}
}

func (s *session) currentPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd
}

func (s *session) isOpen(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open != "" && s.open == p
}

// onChange follows the last change into its directory and closes the
// open file if it no longer exists.
func (s *session) onChange(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cwd = dir
	if s.open == "" {
		return
	}
	if info, err := s.fs.Stat(s.open); err != nil || info.IsDir() {
		s.open = ""
	}
}

func (s *session) run(ctx context.Context, r io.Reader) error {
	fmt.Fprintln(s.out, welcomeText)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for {
		fmt.Fprintf(s.out, "chatfs:%s> ", s.currentPath())
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return nil
		}
		reply, quit := s.handle(scanner.Text())
		if reply != "" {
			fmt.Fprintln(s.out, reply)
		}
		if quit {
			return nil
		}
	}
	fmt.Fprintln(s.out)
	return scanner.Err()
}

// handle answers one input line. Lines starting with ':' control the
// session itself; everything else goes to the interpreter.
func (s *session) handle(line string) (reply string, quit bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		return s.in.Run(line), false
	}

	fields := commands.Tokenize(trimmed[1:])
	var cmd, arg string
	if len(fields) > 0 {
		cmd = strings.ToLower(fields[0])
	}
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd {
	case "q", "quit", "exit":
		return "", true
	case "cd":
		return s.changeDir(arg), false
	case "pwd":
		return fmt.Sprintf("Current directory: `%s`", s.currentPath()), false
	case "open":
		return s.openFile(arg), false
	case "close":
		return s.closeFile(), false
	case "files":
		return s.suggest(arg), false
	}
	return metaHelpText, false
}

func (s *session) changeDir(p string) string {
	if p == "" {
		p = filesystem.RootPath
	}
	info, err := s.fs.Stat(p)
	if err != nil || !info.IsDir() {
		return fmt.Sprintf("Error: `%s` is not a directory.", p)
	}

	s.mu.Lock()
	s.cwd = info.Path
	s.mu.Unlock()
	return fmt.Sprintf("Current directory: `%s`", info.Path)
}

func (s *session) openFile(p string) string {
	if p == "" {
		return "Usage: :open <path>"
	}
	content, err := s.fs.ReadFile(p)
	if err != nil {
		return fmt.Sprintf("Error: Could not open `%s`. It might not exist or is not a file.", p)
	}

	canonical := filesystem.Canonical(p)
	s.mu.Lock()
	s.open = canonical
	s.mu.Unlock()
	return fmt.Sprintf("Opened `%s`:\n```\n%s\n```", canonical, content)
}

func (s *session) closeFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == "" {
		return noFileOpenText
	}
	closed := s.open
	s.open = ""
	return fmt.Sprintf("Closed `%s`.", closed)
}

// suggest lists file paths containing query, open file first
func (s *session) suggest(query string) string {
	query = strings.ToLower(query)

	s.mu.Lock()
	open := s.open
	s.mu.Unlock()

	var matches []string
	if open != "" && strings.Contains(strings.ToLower(open), query) {
		matches = append(matches, open)
	}
	for _, p := range s.fs.FilePaths() {
		if len(matches) == maxSuggestions {
			break
		}
		if p != open && strings.Contains(strings.ToLower(p), query) {
			matches = append(matches, p)
		}
	}

	if len(matches) == 0 {
		return noMatchingFiles
	}
	return strings.Join(matches, "\n")
}
