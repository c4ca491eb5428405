// Package commands turns free-text command lines into namespace operations
// and renders the outcome as a reply for the user.
package commands

import (
	"fmt"
	"strings"

	"github.com/brettbedarf/chatfs/filesystem"
	"github.com/brettbedarf/chatfs/internal/metrics"
	"github.com/brettbedarf/chatfs/internal/util"
)

// FileSystem is the part of [filesystem.Namespace] the interpreter drives
type FileSystem interface {
	CreateFile(p, content string) error
	CreateDirectory(p string) error
	ReadFile(p string) (string, error)
	UpdateFile(p, content string) error
	DeleteFile(p string) error
	DeleteDirectory(p string) error
	List(p string) ([]string, error)
	Stat(p string) (filesystem.NodeInfo, error)
	LastSaveError() error
}

// ResultKind classifies the reply to one command line
type ResultKind int

const (
	OK ResultKind = iota
	// Empty input
	Empty
	// Usage means a recognised command was missing arguments
	Usage
	// Unknown means the command or its sub-form was not recognised
	Unknown
	// Failed means the namespace rejected the operation
	Failed
	// Internal means dispatch panicked
	Internal
)

func (k ResultKind) String() string {
	switch k {
	case OK:
		return "ok"
	case Empty:
		return "empty"
	case Usage:
		return "usage"
	case Unknown:
		return "unknown"
	case Failed:
		return "failed"
	case Internal:
		return "internal"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the single reply produced for a command line
type Result struct {
	Kind ResultKind
	Text string
}

const (
	emptyInputText    = "Please enter a command."
	unknownText       = "Unknown command. Type 'help' for a list of commands."
	internalErrorText = "An unexpected error occurred while processing the command."
	saveWarningText   = "Warning: the change was applied but could not be saved."
)

// verbs recognised as the first token; anything else is counted as "other"
var knownVerbs = map[string]bool{
	"help": true, "ls": true, "list": true, "mkdir": true, "create": true,
	"rmdir": true, "delete": true, "write": true, "read": true,
}

type Option func(*Interpreter)

// WithCurrentPath supplies the directory listed by a bare ls
func WithCurrentPath(fn func() string) Option {
	return func(in *Interpreter) {
		in.currentPath = fn
	}
}

// WithOpenFile supplies the query for whether a path is open in the
// presentation layer, used to word delete replies.
func WithOpenFile(fn func(path string) bool) Option {
	return func(in *Interpreter) {
		in.isOpen = fn
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(in *Interpreter) {
		in.metrics = m
	}
}

func WithLogger(l util.Logger) Option {
	return func(in *Interpreter) {
		in.logger = l
	}
}

// Interpreter parses command lines and applies them to a FileSystem
type Interpreter struct {
	fs          FileSystem
	currentPath func() string
	isOpen      func(path string) bool
	metrics     *metrics.Metrics
	logger      util.Logger
}

func New(fs FileSystem, opts ...Option) *Interpreter {
	in := &Interpreter{
		fs:          fs,
		currentPath: func() string { return filesystem.RootPath },
		isOpen:      func(string) bool { return false },
		logger:      util.GetLogger("Interpreter"),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run executes line and returns only the reply text
func (in *Interpreter) Run(line string) string {
	return in.Execute(line).Text
}

// Execute parses and runs one command line. It always returns exactly one
// result; a panic anywhere in dispatch becomes an Internal result.
func (in *Interpreter) Execute(line string) (res Result) {
	tokens := Tokenize(line)
	verb := "none"
	if len(tokens) > 0 {
		verb = strings.ToLower(tokens[0])
		if !knownVerbs[verb] {
			verb = "other"
		}
	}

	defer func() {
		if r := recover(); r != nil {
			in.logger.Error().Interface("panic", r).Str("line", line).Msg("Command panicked")
			res = Result{Kind: Internal, Text: internalErrorText}
		}
		in.metrics.ObserveCommand(verb, res.Kind.String())
		in.logger.Debug().Str("verb", verb).Stringer("result", res.Kind).Msg("Command handled")
	}()

	if len(tokens) == 0 {
		return Result{Kind: Empty, Text: emptyInputText}
	}
	return in.dispatch(tokens)
}

func (in *Interpreter) dispatch(tokens []string) Result {
	verb := strings.ToLower(tokens[0])
	args := tokens[1:]
	sub := ""
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
	}

	switch verb {
	case "help":
		return ok(HelpText)

	case "ls", "list":
		if sub == "files" || sub == "file" {
			args = args[1:]
		}
		if len(args) == 0 {
			return in.list(in.currentPath())
		}
		return in.list(args[0])

	case "mkdir", "create":
		switch {
		case sub == "folder":
			if len(args) < 2 {
				return usage("Missing path for create folder. Usage: create folder <path>")
			}
			return in.createDirectory(args[1])
		case verb == "mkdir" && len(args) > 0:
			return in.createDirectory(args[0])
		case sub == "file":
			if len(args) < 2 {
				return usage("Missing path for create file. Usage: create file <path> [content]")
			}
			return in.createFile(args[1], strings.Join(args[2:], " "))
		}
		return usage("Unknown command or missing argument. Usage: create folder <path> or mkdir <path>")

	case "rmdir", "delete":
		switch {
		case sub == "folder":
			if len(args) < 2 {
				return usage("Missing path for delete folder. Usage: delete folder <path>")
			}
			return in.deleteDirectory(args[1])
		case verb == "rmdir":
			if len(args) == 0 {
				return usage("Missing path for rmdir. Usage: rmdir <path> or delete folder <path>")
			}
			// rmdir on a file goes to the directory delete and fails there
			return in.deleteDirectory(args[0])
		case sub == "file":
			if len(args) < 2 {
				return usage("Missing path for delete file. Usage: delete file <path>")
			}
			return in.deleteFile(args[1])
		case len(args) > 0:
			// bare delete <path> assumes a file
			return in.deleteFile(args[0])
		}
		return unknown("Unknown 'delete' command usage. Options: delete file <path>, delete folder <path>.")

	case "write":
		if sub != "file" {
			return unknown("Unknown 'write' command. Did you mean 'write file <path> <content>'?")
		}
		if len(args) < 3 {
			return usage("Missing path or content for write file. Usage: write file <path> <content>")
		}
		return in.updateFile(args[1], strings.Join(args[2:], " "))

	case "read":
		if sub != "file" {
			return unknown("Unknown 'read' command. Did you mean 'read file <path>'?")
		}
		if len(args) < 2 {
			return usage("Missing path for read file. Usage: read file <path>")
		}
		return in.readFile(args[1])
	}

	return unknown(unknownText)
}

func (in *Interpreter) list(p string) Result {
	names, err := in.fs.List(p)
	if err != nil {
		return in.failed(err, "Error: Could not list contents of `%s`. It might not exist or is not a directory.", p)
	}
	if len(names) == 0 {
		return ok(fmt.Sprintf("Directory `%s` is empty.", p))
	}

	entries := make([]filesystem.NodeInfo, 0, len(names))
	for _, name := range names {
		info, err := in.fs.Stat(filesystem.Canonical(p + "/" + name))
		if err != nil {
			info = filesystem.NodeInfo{Name: name}
		}
		entries = append(entries, info)
	}
	filesystem.SortEntries(entries)

	var b strings.Builder
	fmt.Fprintf(&b, "Contents of `%s`:", p)
	for _, e := range entries {
		kind := string(e.Kind)
		if kind == "" {
			kind = "unknown type"
		}
		fmt.Fprintf(&b, "\n- %s (%s)", e.Name, kind)
	}
	return ok(b.String())
}

func (in *Interpreter) createDirectory(p string) Result {
	if err := in.fs.CreateDirectory(p); err != nil {
		return in.failed(err, "Error: Could not create directory `%s`. It might already exist or the path is invalid.", p)
	}
	return in.mutated(fmt.Sprintf("Directory `%s` created successfully.", p))
}

func (in *Interpreter) createFile(p, content string) Result {
	if err := in.fs.CreateFile(p, content); err != nil {
		return in.failed(err, "Error: Could not create file `%s`. It might already exist or the path is invalid.", p)
	}
	return in.mutated(fmt.Sprintf("File `%s` created successfully.", p))
}

func (in *Interpreter) updateFile(p, content string) Result {
	if err := in.fs.UpdateFile(p, content); err != nil {
		return in.failed(err, "Error: Could not update file `%s`. It might not exist or is not a file.", p)
	}
	return in.mutated(fmt.Sprintf("File `%s` updated successfully.", p))
}

func (in *Interpreter) readFile(p string) Result {
	content, err := in.fs.ReadFile(p)
	if err != nil {
		return in.failed(err, "Error: Could not read file `%s`. It might not exist or is not a file.", p)
	}
	return ok(fmt.Sprintf("Content of `%s`:\n```\n%s\n```", p, content))
}

func (in *Interpreter) deleteFile(p string) Result {
	// ask before deleting; afterwards the presentation layer may already
	// have closed it in response to the change notification
	wasOpen := in.isOpen(filesystem.Canonical(p))
	if err := in.fs.DeleteFile(p); err != nil {
		return in.failed(err, "Error: Could not delete file `%s`. It might not exist or is not a file.", p)
	}
	text := fmt.Sprintf("File `%s` deleted successfully.", p)
	if wasOpen {
		text += " It was open and has been closed."
	}
	return in.mutated(text)
}

func (in *Interpreter) deleteDirectory(p string) Result {
	if err := in.fs.DeleteDirectory(p); err != nil {
		return in.failed(err, "Error: Could not delete directory `%s`. It might not exist, not be a directory, or is not empty.", p)
	}
	return in.mutated(fmt.Sprintf("Directory `%s` deleted successfully.", p))
}

// mutated appends a warning when the write-through save of a successful
// mutation failed. A successful save clears LastSaveError, so a non-nil
// value here belongs to this mutation.
func (in *Interpreter) mutated(text string) Result {
	if err := in.fs.LastSaveError(); err != nil {
		return ok(text + "\n" + saveWarningText)
	}
	return ok(text)
}

func (in *Interpreter) failed(err error, format, p string) Result {
	in.logger.Debug().Err(err).Msg("Command failed")
	return Result{Kind: Failed, Text: fmt.Sprintf(format, p)}
}

func ok(text string) Result      { return Result{Kind: OK, Text: text} }
func usage(text string) Result   { return Result{Kind: Usage, Text: text} }
func unknown(text string) Result { return Result{Kind: Unknown, Text: text} }
