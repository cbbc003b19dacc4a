// Package errmsg defines the pipeline error type every install-time
// failure is wrapped in before it reaches a log sink, so every error line
// carries the package, the failing step, and a remediation hint.
package errmsg

import "fmt"

// Step names a stage of the install pipeline, used to tag errors and log
// lines.
type Step string

const (
	StepResolve  Step = "resolve"
	StepFetch    Step = "fetch"
	StepVerify   Step = "verify"
	StepReview   Step = "review"
	StepBuild    Step = "build"
	StepInstall  Step = "install"
	StepCleanup  Step = "cleanup"
	StepBackup   Step = "backup"
	StepRollback Step = "rollback"
	StepHook     Step = "hook"
	StepConfig   Step = "config"
)

// Error wraps an underlying error with the package it concerns, the step
// that failed, and a remediation hint shown to the user.
type Error struct {
	Package string
	Step    Step
	Hint    string
	Err     error
}

func (e *Error) Error() string {
	prefix := fmt.Sprintf("%s: %s", e.Package, e.Step)
	if e.Package == "" {
		prefix = string(e.Step)
	}
	if e.Hint != "" {
		return fmt.Sprintf("%s failed: %v (%s)", prefix, e.Err, e.Hint)
	}
	return fmt.Sprintf("%s failed: %v", prefix, e.Err)
}

// Unwrap exposes the underlying error to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Err }

// New builds a pipeline Error.
func New(pkg string, step Step, hint string, err error) *Error {
	return &Error{Package: pkg, Step: step, Hint: hint, Err: err}
}

// Line renders the error as a single log line: package, step, and hint.
func (e *Error) Line() string {
	return e.Error()
}
