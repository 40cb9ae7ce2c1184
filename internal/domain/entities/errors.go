package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors for caller-side classification with errors.Is.
var (
	// ErrNoEntries means the knowledge base text contained no recognizable Q/A pairs.
	ErrNoEntries = errors.New("knowledge base contains no Q/A entries")

	// ErrEmptyQuestion means the question was blank after trimming.
	ErrEmptyQuestion = errors.New("question is empty")
)

// FailureKind classifies a backend interaction failure.
type FailureKind string

const (
	FailureTimeout     FailureKind = "timeout"
	FailureUnreachable FailureKind = "unreachable"
	FailureMalformed   FailureKind = "malformed_response"
	FailureUnknown     FailureKind = "unknown"
)

// Transient reports whether a retry with the same prompt may succeed.
func (k FailureKind) Transient() bool {
	return k == FailureTimeout || k == FailureUnreachable
}

// BackendError is a classified failure from the language-model backend.
// The invoker never lets a transport error escape unclassified; anything
// it cannot recognize carries FailureUnknown.
type BackendError struct {
	Kind   FailureKind
	Detail string
	Err    error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("backend %s: %s", e.Kind, e.Detail)
}

func (e *BackendError) Unwrap() error { return e.Err }

// PipelineError annotates a failure with the pipeline stage that produced it.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("answer pipeline stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// BackendKind extracts the failure kind from an error chain, defaulting to
// FailureUnknown when the chain contains no BackendError.
func BackendKind(err error) (FailureKind, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return FailureUnknown, false
}
