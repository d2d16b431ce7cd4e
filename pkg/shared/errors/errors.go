package errors

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// ErrMalformedReport is returned when the scanner output does not have the expected shape.
var ErrMalformedReport = errors.New("malformed scanner report")

// CommandError represents a failed command invocation and the process exit code it maps to.
type CommandError struct {
	ExitCode    int
	CommonError string
	Err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError wrapping err.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Err:         err,
	}
}

// PlacementError is returned when every link-or-copy attempt for a file failed.
// Attempts are kept in the order they were tried.
type PlacementError struct {
	Source      string
	Destination string
	Attempts    []error
}

func (e *PlacementError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all attempts to place file %q at %q have failed", e.Source, e.Destination)
	for _, attempt := range e.Attempts {
		b.WriteString("\n")
		b.WriteString(attempt.Error())
	}
	return b.String()
}

func (e *PlacementError) Unwrap() error {
	return multierr.Combine(e.Attempts...)
}

// Archive operations reported by ArchiveError.
const (
	OpListEntries  = "list entries"
	OpReadEntry    = "read entry"
	OpExtractEntry = "extract entry"
)

// ArchiveError carries the archive, and the entry when known, that an operation failed on.
type ArchiveError struct {
	Archive string
	Entry   string
	Op      string
	Err     error
}

func (e *ArchiveError) Error() string {
	switch e.Op {
	case OpListEntries:
		return fmt.Sprintf("failed to get entries from ZIP file %q: %v", e.Archive, e.Err)
	case OpReadEntry:
		return fmt.Sprintf("failed to read entry %q in ZIP file %q: %v", e.Entry, e.Archive, e.Err)
	case OpExtractEntry:
		return fmt.Sprintf("failed to extract entry %q from ZIP file %q: %v", e.Entry, e.Archive, e.Err)
	}
	if e.Entry != "" {
		return fmt.Sprintf("ZIP file %q entry %q: %s: %v", e.Archive, e.Entry, e.Op, e.Err)
	}
	return fmt.Sprintf("ZIP file %q: %s: %v", e.Archive, e.Op, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// InvocationError is returned when the scanner process exits with an unexpected code.
type InvocationError struct {
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("an unexpected error was thrown when executing the command '%s' (exit code %d): %v. Output: %s",
		e.Command, e.ExitCode, e.Err, e.Output)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// ContractViolationError means the scanner reported a file that was never staged.
type ContractViolationError struct {
	StagedPath string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("scanner reported file %q which is not in the identity map", e.StagedPath)
}
