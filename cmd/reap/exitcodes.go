package main

import (
	"errors"
	"os"

	"github.com/reap-dev/reap/internal/errmsg"
)

// Exit codes, enabling scripts to distinguish failure modes. A bulk
// command (install/upgrade of more than one package) reports per-package
// failures in the log and its own summary line, and returns nil itself so
// the rest of the batch still runs — only a failure that stops the whole
// command before it can even start (bad config, an unresolved single
// operation) changes the process exit code.
const (
	ExitSuccess       = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitResolveFailed = 3
	ExitNetwork       = 4
	ExitVerifyFailed  = 5
	ExitInstallFailed = 6
	ExitConfigInvalid = 7
)

// exitCodeFor inspects err for a wrapped *errmsg.Error and picks the exit
// code matching the stage that failed. A plain error (usage errors, or any
// error a RunE returns without going through errmsg) falls back to
// ExitGeneral.
func exitCodeFor(err error) int {
	var pipelineErr *errmsg.Error
	if !errors.As(err, &pipelineErr) {
		return ExitGeneral
	}

	switch pipelineErr.Step {
	case errmsg.StepConfig:
		return ExitConfigInvalid
	case errmsg.StepResolve:
		return ExitResolveFailed
	case errmsg.StepFetch:
		return ExitNetwork
	case errmsg.StepVerify:
		return ExitVerifyFailed
	case errmsg.StepBuild, errmsg.StepInstall, errmsg.StepReview, errmsg.StepBackup, errmsg.StepRollback, errmsg.StepCleanup, errmsg.StepHook:
		return ExitInstallFailed
	default:
		return ExitGeneral
	}
}

func exitWithCode(code int) {
	os.Exit(code)
}
