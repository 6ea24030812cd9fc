package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// ErrorKind classifies expected failures that are reported back to the operator.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindAlreadyExists    ErrorKind = "already_exists"
	KindTooLarge         ErrorKind = "too_large"
	KindBinaryContent    ErrorKind = "binary_content"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindBlocked          ErrorKind = "blocked"
	KindTimeout          ErrorKind = "timeout"
	KindCollaborator     ErrorKind = "collaborator_error"
	KindNoPending        ErrorKind = "no_pending_proposal"
	KindProposalPending  ErrorKind = "proposal_pending"
	KindProposalExpired  ErrorKind = "proposal_expired"
	KindInvalidInput     ErrorKind = "invalid_input"
	KindNotADirectory    ErrorKind = "not_a_directory"
	KindIsADirectory     ErrorKind = "is_a_directory"
	KindFileChanged      ErrorKind = "file_changed"
)

// Error is the typed result-with-reason for expected conditions. Infrastructure
// failures travel as plain wrapped errors instead.
type Error struct {
	Kind   ErrorKind
	Target string
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Target != "" {
		msg += ": " + e.Target
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrAlreadyExists     = &Error{Kind: KindAlreadyExists}
	ErrTooLarge          = &Error{Kind: KindTooLarge}
	ErrBinaryContent     = &Error{Kind: KindBinaryContent}
	ErrPermissionDenied  = &Error{Kind: KindPermissionDenied}
	ErrBlocked           = &Error{Kind: KindBlocked}
	ErrTimeout           = &Error{Kind: KindTimeout}
	ErrCollaborator      = &Error{Kind: KindCollaborator}
	ErrNoPendingProposal = &Error{Kind: KindNoPending}
	ErrProposalPending   = &Error{Kind: KindProposalPending}
	ErrProposalExpired   = &Error{Kind: KindProposalExpired}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrNotADirectory     = &Error{Kind: KindNotADirectory}
	ErrIsADirectory      = &Error{Kind: KindIsADirectory}
	ErrFileChanged       = &Error{Kind: KindFileChanged}
)

func NotFound(path string) error {
	return &Error{Kind: KindNotFound, Target: path}
}

func AlreadyExists(path string) error {
	return &Error{Kind: KindAlreadyExists, Target: path}
}

func TooLarge(path string, size, limit int64) error {
	return &Error{
		Kind:   KindTooLarge,
		Target: path,
		Detail: fmt.Sprintf("%s > %s", humanize.IBytes(uint64(size)), humanize.IBytes(uint64(limit))),
	}
}

func BinaryContent(path string) error {
	return &Error{Kind: KindBinaryContent, Target: path}
}

func PermissionDenied(path string, cause error) error {
	return &Error{Kind: KindPermissionDenied, Target: path, Err: cause}
}

func Blocked(command string, reasons ...string) error {
	e := &Error{Kind: KindBlocked, Target: command}
	if len(reasons) > 0 {
		e.Detail = reasons[0]
	}
	return e
}

func Timeout(op string, after time.Duration) error {
	return &Error{Kind: KindTimeout, Target: op, Detail: after.String()}
}

func CollaboratorError(op string, cause error) error {
	return &Error{Kind: KindCollaborator, Target: op, Err: cause}
}

func NoPendingProposal() error {
	return &Error{Kind: KindNoPending}
}

func ProposalPending(kind ActionKind) error {
	return &Error{Kind: KindProposalPending, Target: string(kind)}
}

func ProposalExpired(kind ActionKind, age time.Duration) error {
	return &Error{Kind: KindProposalExpired, Target: string(kind), Detail: age.Round(time.Second).String()}
}

func InvalidInput(detail string) error {
	return &Error{Kind: KindInvalidInput, Detail: detail}
}

func NotADirectory(path string) error {
	return &Error{Kind: KindNotADirectory, Target: path}
}

func IsADirectory(path string) error {
	return &Error{Kind: KindIsADirectory, Target: path}
}

// FileChanged reports that path no longer holds the content a proposal was
// drafted against.
func FileChanged(path string) error {
	return &Error{Kind: KindFileChanged, Target: path}
}

// KindOf returns the kind of a typed error, or "" for infrastructure failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
