package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitNonEmpty_TrimsAndDropsBlanks(t *testing.T) {
	assert.Equal(t, []string{"pacman", "aur", "flatpak"}, splitNonEmpty("pacman, aur,flatpak"))
}

func TestSplitNonEmpty_EmptyStringYieldsNil(t *testing.T) {
	assert.Nil(t, splitNonEmpty(""))
}
