// SPDX-License-Identifier: Apache-2.0

// Package enginerr defines the single domain-scoped error type the core
// raises and its seven kinds. The CLI layer is the only place that
// catches these and maps them to process exit codes; nothing in this
// module swallows one silently.
package enginerr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind identifies one of the seven error kinds the engine can raise.
type Kind string

const (
	AmbiguousDiff         Kind = "ambiguous_diff"
	InconsistentDirection Kind = "inconsistent_direction"
	BookkeepingAbsent     Kind = "bookkeeping_absent"
	DDLFailure            Kind = "ddl_failure"
	ChecksumMismatch      Kind = "checksum_mismatch"
	MilestoneStepBanned   Kind = "milestone_step_banned"
	AnswerError           Kind = "answer_error"
)

// Error is the engine's single domain-scoped exception type. It wraps an
// underlying cause (if any) using cockroachdb/errors so that %+v in the CLI
// layer prints a stack trace captured at the point the Kind was raised.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func newf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		cause:   errors.WithStack(cause),
	}
}

// NewAmbiguousDiff is raised when the Patch Generator cannot decide whether
// a name-set mismatch at a given level is a rename, a create+drop, or a
// mixture, and no (or an unresolvable) disambiguation answer was supplied.
func NewAmbiguousDiff(kind string, names0, names1 []string) *Error {
	return newf(AmbiguousDiff, nil,
		"ambiguous %s diff: names0=%v names1=%v requires disambiguation", kind, names0, names1)
}

// NewInconsistentDirection is raised when planning detects that some
// DBSchemaVersion row requires a forward migration while another requires a
// backward one.
func NewInconsistentDirection() *Error {
	return newf(InconsistentDirection, nil,
		"migration direction is inconsistent: some components require forward, others backward")
}

// NewBookkeepingAbsent signals the degraded-but-recoverable case where a
// bookkeeping table does not yet exist; callers should keep operating on an
// in-memory fallback rather than failing.
func NewBookkeepingAbsent(table string) *Error {
	return newf(BookkeepingAbsent, nil, "bookkeeping table %q does not yet exist", table)
}

// NewDDLFailure wraps a failure from the DDL Dialect Adapter while applying
// a single operation.
func NewDDLFailure(database string, opDescription string, cause error) *Error {
	return newf(DDLFailure, cause, "applying operation %s on database %q failed", opDescription, database)
}

// NewChecksumMismatch is raised when a loaded VersionDocument's stored
// checksum attribute disagrees with the recomputed value for the same
// canonical bytes.
func NewChecksumMismatch(component string, version int, want, got string) *Error {
	return newf(ChecksumMismatch, nil,
		"checksum mismatch for component %q version %d: stored=%s recomputed=%s", component, version, want, got)
}

// NewMilestoneStepBanned is raised when a pattern selects a step that has
// no implementation for the requested direction.
func NewMilestoneStepBanned(step, direction string) *Error {
	return newf(MilestoneStepBanned, nil, "step %q has no %s implementation", step, direction)
}

// NewAnswerError is raised when the user's response to an interactive
// disambiguation prompt is malformed; the caller re-prompts on receipt.
func NewAnswerError(reason string) *Error {
	return newf(AnswerError, nil, "malformed disambiguation answer: %s", reason)
}

// As reports whether err is (or wraps) an *Error of the given Kind.
func As(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// ExitCode maps any error to a process exit code: 0 for nil, 1 for any
// engine Error (or anything else).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
