package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdinConfirmer(t *testing.T) {
	cases := map[string]bool{
		"y\n":     true,
		"yes\n":   true,
		"YES\n":   true,
		" y \n":   true,
		"n\n":     false,
		"no\n":    false,
		"\n":      false,
		"maybe\n": false,
	}
	for input, want := range cases {
		var out strings.Builder
		confirm := stdinConfirmer(strings.NewReader(input), &out)
		assert.Equal(t, want, confirm("proceed?"), "input %q", input)
		assert.Contains(t, out.String(), "proceed? [y/N]:")
	}

	// EOF without an answer means no.
	var out strings.Builder
	confirm := stdinConfirmer(strings.NewReader(""), &out)
	assert.False(t, confirm("proceed?"))
}

func TestAutoConfirm(t *testing.T) {
	assert.True(t, autoConfirm()("anything"))
}
