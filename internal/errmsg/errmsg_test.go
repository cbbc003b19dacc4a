package errmsg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorLine(t *testing.T) {
	base := errors.New("missing PKGBUILD.sig")
	err := New("foo", StepVerify, "Use --insecure to override", base)

	assert.Contains(t, err.Line(), "foo")
	assert.Contains(t, err.Line(), "verify")
	assert.Contains(t, err.Line(), "Use --insecure to override")
	assert.Contains(t, err.Line(), "missing PKGBUILD.sig")
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("exit status 1")
	err := New("foo", StepBuild, "", base)

	require.ErrorIs(t, err, base)
}

func TestErrorWithoutHint(t *testing.T) {
	err := New("foo", StepFetch, "", errors.New("clone failed"))
	assert.NotContains(t, err.Line(), "()")
}

func TestErrorWithoutPackageOmitsLeadingColon(t *testing.T) {
	err := New("", StepConfig, "", errors.New("no config directory"))
	assert.Equal(t, "config failed: no config directory", err.Line())
}
